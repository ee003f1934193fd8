package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	reload     key.Binding
	toggleHelp key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	quickAdd   key.Binding
	remove     key.Binding
	complete   key.Binding
	reopen     key.Binding
	prevDay    key.Binding
	nextDay    key.Binding
	today      key.Binding
	insight    key.Binding
	copyDay    key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "activity up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "activity down")),
		quickAdd:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "add activity")),
		remove:     key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove activity")),
		complete:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "finalize day")),
		reopen:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "reopen day")),
		prevDay:    key.NewBinding(key.WithKeys("[", "h", "left"), key.WithHelp("[", "previous day")),
		nextDay:    key.NewBinding(key.WithKeys("]", "l", "right"), key.WithHelp("]", "next day")),
		today:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		insight:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "insight")),
		copyDay:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy day")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.quickAdd, k.complete, k.reopen, k.prevDay, k.nextDay, k.insight, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.quickAdd, k.remove, k.complete, k.reopen, k.moveUp, k.moveDown},
		{k.prevDay, k.nextDay, k.today, k.insight, k.copyDay},
		{k.toggleHelp, k.reload, k.quit},
	}
}
