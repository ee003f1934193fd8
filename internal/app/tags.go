package app

import (
	"context"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/hylla/dayflow/internal/domain"
)

// TagRegistry owns the tag set of the loaded user. Until a set is stored the
// built-in defaults are served.
type TagRegistry struct {
	mu     sync.Mutex
	repo   Repository
	idGen  IDGenerator
	intn   func(int) int
	userID string
	tags   []domain.Tag
}

// NewTagRegistry constructs a registry. intn picks palette colors and
// defaults to math/rand.
func NewTagRegistry(repo Repository, idGen IDGenerator, intn func(int) int) *TagRegistry {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if intn == nil {
		intn = rand.IntN
	}
	return &TagRegistry{
		repo:  repo,
		idGen: idGen,
		intn:  intn,
		tags:  domain.DefaultTags(),
	}
}

// SetColorPicker replaces the palette selector.
func (r *TagRegistry) SetColorPicker(intn func(int) int) {
	if intn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intn = intn
}

func (r *TagRegistry) reset(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userID = userID
	r.tags = domain.DefaultTags()
}

func (r *TagRegistry) load(ctx context.Context, userID string) error {
	tags, ok, err := r.repo.GetTagSet(ctx, userID)
	if err != nil {
		return persistenceError("get tag set", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userID = userID
	if !ok {
		r.tags = domain.DefaultTags()
		return nil
	}
	r.tags = slices.Clone(tags)
	return nil
}

// List returns the available tags in registry order.
func (r *TagRegistry) List() []domain.Tag {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.tags)
}

// Create adds a tag named name with a palette color.
func (r *TagRegistry) Create(ctx context.Context, name string) (domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(ctx, name)
}

func (r *TagRegistry) createLocked(ctx context.Context, name string) (domain.Tag, error) {
	if r.userID == "" {
		return domain.Tag{}, ErrUnauthenticated
	}
	color := domain.TagPalette[r.intn(len(domain.TagPalette))]
	tag, err := domain.NewTag(r.idGen(), name, color, "")
	if err != nil {
		return domain.Tag{}, validationError(err)
	}
	next := append(slices.Clone(r.tags), tag)
	if err := r.saveLocked(ctx, next); err != nil {
		return domain.Tag{}, err
	}
	return tag, nil
}

// Update edits the name, color or icon of an existing tag. Activities keep
// the tag copy they were logged with.
func (r *TagRegistry) Update(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.userID == "" {
		return domain.Tag{}, ErrUnauthenticated
	}
	idx := slices.IndexFunc(r.tags, func(t domain.Tag) bool { return t.ID == tag.ID })
	if idx < 0 {
		return domain.Tag{}, ErrNotFound
	}
	updated, err := domain.NewTag(tag.ID, tag.Name, tag.Color, tag.Icon)
	if err != nil {
		return domain.Tag{}, validationError(err)
	}
	if updated.Color == "" {
		updated.Color = r.tags[idx].Color
	}
	next := slices.Clone(r.tags)
	next[idx] = updated
	if err := r.saveLocked(ctx, next); err != nil {
		return domain.Tag{}, err
	}
	return updated, nil
}

// Save replaces the stored tag set.
func (r *TagRegistry) Save(ctx context.Context, tags []domain.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.userID == "" {
		return ErrUnauthenticated
	}
	for _, tag := range tags {
		if _, err := domain.NewTag(tag.ID, tag.Name, tag.Color, tag.Icon); err != nil {
			return validationError(err)
		}
	}
	return r.saveLocked(ctx, slices.Clone(tags))
}

// Resolve maps tag names to tags, creating unknown names when create is set.
// Unknown names without create yield ErrNotFound.
func (r *TagRegistry) Resolve(ctx context.Context, names []string, create bool) ([]domain.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if tag, ok := domain.FindTagByName(r.tags, name); ok {
			if !slices.ContainsFunc(out, func(t domain.Tag) bool { return t.ID == tag.ID }) {
				out = append(out, tag)
			}
			continue
		}
		if !create {
			return nil, ErrNotFound
		}
		tag, err := r.createLocked(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, nil
}

func (r *TagRegistry) saveLocked(ctx context.Context, tags []domain.Tag) error {
	if err := r.repo.PutTagSet(ctx, r.userID, tags); err != nil {
		return persistenceError("put tag set", err)
	}
	r.tags = tags
	return nil
}
