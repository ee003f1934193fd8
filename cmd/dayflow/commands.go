package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hylla/dayflow/internal/adapters/server"
	"github.com/hylla/dayflow/internal/adapters/server/common"
	"github.com/hylla/dayflow/internal/app"
	"github.com/hylla/dayflow/internal/config"
	"github.com/hylla/dayflow/internal/domain"
	"github.com/hylla/dayflow/internal/tui"
	"github.com/markusmobius/go-dateparser"
	"github.com/spf13/cobra"
)

// runTUI starts the interactive journal screen.
func (c *cli) runTUI(ctx context.Context) error {
	return c.withSession(ctx, "tui", func(s *session) error {
		m := tui.NewModel(
			s.service,
			tui.WithInsightGenerator(s.insight),
			tui.WithShowHelp(s.cfg.TUI.ShowHelp),
			tui.WithMarkdownStyle(s.cfg.TUI.MarkdownStyle),
		)
		s.logger.Info("starting tui program loop")
		if _, err := programFactory(m).Run(); err != nil {
			return fmt.Errorf("run tui program: %w", err)
		}
		return nil
	})
}

func (c *cli) pathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the resolved config and data locations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := c.resolvedPaths()
			if err != nil {
				return err
			}
			out := c.stdout
			_, _ = fmt.Fprintf(out, "app: %s\n", c.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", c.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", c.resolveConfigPath(paths))
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(out, "logs: %s\n", paths.LogDir)
			return nil
		},
	}
}

func (c *cli) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := c.resolvedPaths()
			if err != nil {
				return err
			}
			path := c.resolveConfigPath(paths)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config %q already exists (use --force to overwrite)", path)
			}
			if err := config.Write(path, config.Default(paths.DBPath)); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(c.stdout, "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	cmd.AddCommand(initCmd)
	return cmd
}

func (c *cli) dayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Create, browse and finalize days",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded days, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), "day list", func(s *session) error {
				days, err := s.journal.ListDays(cmd.Context())
				if err != nil {
					return err
				}
				if c.jsonOut {
					return writeJSON(c.stdout, map[string]any{"days": days})
				}
				if len(days) == 0 {
					_, _ = fmt.Fprintln(c.stdout, "no days recorded")
					return nil
				}
				for _, day := range days {
					_, _ = fmt.Fprintf(c.stdout, "%s  %-9s %2d activities  level %.1f\n",
						day.Date, dayState(day.Day), len(day.Activities), levelOf(day.Day))
				}
				return nil
			})
		},
	}

	var showDate string
	show := &cobra.Command{
		Use:   "show",
		Short: "Show one day (the current day by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDateArg(showDate, clock())
			if err != nil {
				return err
			}
			return c.withSession(cmd.Context(), "day show", func(s *session) error {
				day, err := s.journal.GetDay(cmd.Context(), orCurrent(date))
				if err != nil {
					return err
				}
				return c.printDay(day)
			})
		},
	}
	addDateFlag(show, &showDate)

	var createDate string
	var createReopen bool
	create := &cobra.Command{
		Use:   "create",
		Short: "Open the day for a date (today by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDateArg(createDate, clock())
			if err != nil {
				return err
			}
			return c.withSession(cmd.Context(), "day create", func(s *session) error {
				res, err := s.journal.CreateDay(cmd.Context(), common.CreateDayRequest{Date: date})
				if err != nil {
					return err
				}
				day, ok, err := c.confirmReopen(cmd.Context(), s, res.Day, res.NeedsReopen, createReopen)
				if err != nil || !ok {
					return err
				}
				if !res.Existed {
					_, _ = fmt.Fprintf(c.stdout, "started %s (saved with its first activity)\n", day.Date)
				}
				return c.printDay(day)
			})
		},
	}
	addDateFlag(create, &createDate)
	addReopenFlag(create, &createReopen)

	var selectDate string
	var selectReopen bool
	selectCmd := &cobra.Command{
		Use:   "select",
		Short: "Select a recorded day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDateArg(selectDate, clock())
			if err != nil {
				return err
			}
			if date == "" {
				return errors.New("--date is required")
			}
			return c.withSession(cmd.Context(), "day select", func(s *session) error {
				res, err := s.service.SelectDay(cmd.Context(), date)
				if err != nil {
					return err
				}
				view, err := s.journal.GetDay(cmd.Context(), res.Day.Date)
				if err != nil {
					return err
				}
				day, ok, err := c.confirmReopen(cmd.Context(), s, view, res.NeedsReopen, selectReopen)
				if err != nil || !ok {
					return err
				}
				return c.printDay(day)
			})
		},
	}
	addDateFlag(selectCmd, &selectDate)
	addReopenFlag(selectCmd, &selectReopen)

	cmd.AddCommand(
		list,
		show,
		create,
		selectCmd,
		c.dayMutation("complete", "Finalize a day and stamp its commitment level", func(ctx context.Context, j common.JournalService, date string) (common.DayView, error) {
			return j.CompleteDay(ctx, date)
		}),
		c.dayMutation("reopen", "Reopen a finalized day for editing", func(ctx context.Context, j common.JournalService, date string) (common.DayView, error) {
			return j.ReopenDay(ctx, date)
		}),
		c.dayDeleteCommand(),
	)
	return cmd
}

// dayMutation builds a date-targeted command that returns the updated day.
func (c *cli) dayMutation(use, short string, fn func(context.Context, common.JournalService, string) (common.DayView, error)) *cobra.Command {
	var rawDate string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDateArg(rawDate, clock())
			if err != nil {
				return err
			}
			return c.withSession(cmd.Context(), "day "+use, func(s *session) error {
				day, err := fn(cmd.Context(), s.journal, orCurrent(date))
				if err != nil {
					return err
				}
				return c.printDay(day)
			})
		},
	}
	addDateFlag(cmd, &rawDate)
	return cmd
}

func (c *cli) dayDeleteCommand() *cobra.Command {
	var rawDate string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a day and all of its activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDateArg(rawDate, clock())
			if err != nil {
				return err
			}
			if date == "" {
				return errors.New("--date is required")
			}
			return c.withSession(cmd.Context(), "day delete", func(s *session) error {
				if err := s.journal.DeleteDay(cmd.Context(), date); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(c.stdout, "deleted %s\n", date)
				return nil
			})
		},
	}
	addDateFlag(cmd, &rawDate)
	return cmd
}

// confirmReopen stops on a finalized day unless the caller passed --reopen.
// ok is false when the prompt was printed and nothing changed.
func (c *cli) confirmReopen(ctx context.Context, s *session, day common.DayView, needsReopen, reopen bool) (common.DayView, bool, error) {
	if !needsReopen {
		return day, true, nil
	}
	if !reopen {
		_, _ = fmt.Fprintf(c.stdout, "%s is finalized. Reopen it to edit? Rerun with --reopen to confirm.\n", day.Date)
		return day, false, nil
	}
	reopened, err := s.journal.ReopenDay(ctx, day.Date)
	if err != nil {
		return common.DayView{}, false, err
	}
	_, _ = fmt.Fprintf(c.stdout, "reopened %s\n", day.Date)
	return reopened, true, nil
}

func (c *cli) activityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Log and edit activities",
	}

	var (
		addDate    string
		addReopen  bool
		addPrivate bool
	)
	add := &cobra.Command{
		Use:     "add HH:MM-HH:MM description [#tag ...]",
		Short:   "Log an activity on a day (today by default)",
		Example: "  dayflow activity add 07:00-08:00 Morning run #Exercise",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quick, err := domain.ParseQuickAdd(strings.Join(args, " "))
			if err != nil {
				return err
			}
			date, err := parseDateArg(addDate, clock())
			if err != nil {
				return err
			}
			return c.withSession(cmd.Context(), "activity add", func(s *session) error {
				res, err := s.journal.CreateDay(cmd.Context(), common.CreateDayRequest{Date: date})
				if err != nil {
					return err
				}
				day, ok, err := c.confirmReopen(cmd.Context(), s, res.Day, res.NeedsReopen, addReopen)
				if err != nil || !ok {
					return err
				}
				view, err := s.journal.AddActivity(cmd.Context(), quickRequest(day.Date, "", quick, addPrivate))
				if err != nil {
					return err
				}
				return c.printDay(view)
			})
		},
	}
	addDateFlag(add, &addDate)
	addReopenFlag(add, &addReopen)
	add.Flags().BoolVar(&addPrivate, "private", false, "keep the activity out of insight requests")

	var (
		editDate    string
		editID      string
		editPrivate bool
	)
	edit := &cobra.Command{
		Use:   "edit --id ID HH:MM-HH:MM description [#tag ...]",
		Short: "Replace an activity's times, description and tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quick, err := domain.ParseQuickAdd(strings.Join(args, " "))
			if err != nil {
				return err
			}
			date, err := parseDateArg(editDate, clock())
			if err != nil {
				return err
			}
			return c.withSession(cmd.Context(), "activity edit", func(s *session) error {
				res, err := s.journal.EditActivity(cmd.Context(), quickRequest(orCurrent(date), editID, quick, editPrivate))
				if err != nil {
					return err
				}
				if !res.Changed {
					_, _ = fmt.Fprintf(c.stdout, "no activity %s on %s\n", editID, res.Day.Date)
				}
				return c.printDay(res.Day)
			})
		},
	}
	addDateFlag(edit, &editDate)
	edit.Flags().StringVar(&editID, "id", "", "activity id")
	edit.Flags().BoolVar(&editPrivate, "private", false, "keep the activity out of insight requests")
	_ = edit.MarkFlagRequired("id")

	var (
		removeDate string
		removeID   string
	)
	remove := &cobra.Command{
		Use:   "remove --id ID",
		Short: "Remove an activity; removing the last one deletes the day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDateArg(removeDate, clock())
			if err != nil {
				return err
			}
			return c.withSession(cmd.Context(), "activity remove", func(s *session) error {
				res, err := s.journal.RemoveActivity(cmd.Context(), common.RemoveActivityRequest{
					Date:       orCurrent(date),
					ActivityID: removeID,
				})
				if err != nil {
					return err
				}
				if c.jsonOut {
					return writeJSON(c.stdout, res)
				}
				switch {
				case !res.Removed:
					_, _ = fmt.Fprintf(c.stdout, "no activity %s\n", removeID)
				case res.DayDeleted:
					_, _ = fmt.Fprintln(c.stdout, "removed the last activity; day deleted")
				default:
					_, _ = fmt.Fprintf(c.stdout, "removed %s\n", removeID)
				}
				if res.Day != nil {
					return c.printDay(*res.Day)
				}
				return nil
			})
		},
	}
	addDateFlag(remove, &removeDate)
	remove.Flags().StringVar(&removeID, "id", "", "activity id")
	_ = remove.MarkFlagRequired("id")

	var nextDate string
	next := &cobra.Command{
		Use:   "next",
		Short: "Print the suggested start time for the next activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDateArg(nextDate, clock())
			if err != nil {
				return err
			}
			return c.withSession(cmd.Context(), "activity next", func(s *session) error {
				start, err := s.journal.NextStartTime(cmd.Context(), orCurrent(date))
				if err != nil {
					return err
				}
				if c.jsonOut {
					return writeJSON(c.stdout, map[string]string{"next_start_time": start})
				}
				_, _ = fmt.Fprintln(c.stdout, start)
				return nil
			})
		},
	}
	addDateFlag(next, &nextDate)

	cmd.AddCommand(add, edit, remove, next)
	return cmd
}

// quickRequest maps a parsed quick-add line onto a transport request.
func quickRequest(date, activityID string, q domain.QuickAdd, private bool) common.ActivityRequest {
	return common.ActivityRequest{
		Date:        date,
		ActivityID:  activityID,
		StartTime:   q.StartTime,
		EndTime:     q.EndTime,
		Description: q.Description,
		Tags:        q.TagNames,
		IsPrivate:   private,
		CreateTags:  true,
	}
}

func (c *cli) tagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage activity tags",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the available tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), "tag list", func(s *session) error {
				tags, err := s.journal.ListTags(cmd.Context())
				if err != nil {
					return err
				}
				if c.jsonOut {
					return writeJSON(c.stdout, map[string]any{"tags": tags})
				}
				for _, tag := range tags {
					_, _ = fmt.Fprintf(c.stdout, "%-20s %s %s %s\n", tag.ID, tag.Color, tag.Name, tag.Icon)
				}
				return nil
			})
		},
	}

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a tag with a palette color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), "tag create", func(s *session) error {
				tag, err := s.journal.CreateTag(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return c.printTag(tag)
			})
		},
	}

	var (
		editID    string
		editName  string
		editColor string
		editIcon  string
	)
	edit := &cobra.Command{
		Use:   "edit --id ID",
		Short: "Rename or restyle a tag; logged activities keep their copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), "tag edit", func(s *session) error {
				registry := s.service.Tags()
				tag, ok := domain.FindTagByID(registry.List(), editID)
				if !ok {
					return fmt.Errorf("tag %q: %w", editID, app.ErrNotFound)
				}
				if cmd.Flags().Changed("name") {
					tag.Name = editName
				}
				if cmd.Flags().Changed("color") {
					tag.Color = editColor
				}
				if cmd.Flags().Changed("icon") {
					tag.Icon = editIcon
				}
				updated, err := registry.Update(cmd.Context(), tag)
				if err != nil {
					return err
				}
				return c.printTag(updated)
			})
		},
	}
	edit.Flags().StringVar(&editID, "id", "", "tag id")
	edit.Flags().StringVar(&editName, "name", "", "new tag name")
	edit.Flags().StringVar(&editColor, "color", "", "new tag color (#RRGGBB)")
	edit.Flags().StringVar(&editIcon, "icon", "", "new tag icon")
	_ = edit.MarkFlagRequired("id")

	cmd.AddCommand(list, create, edit)
	return cmd
}

func (c *cli) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show usage statistics, the daily goal and highlights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), "stats", func(s *session) error {
				view, err := s.journal.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if c.jsonOut {
					return writeJSON(c.stdout, view)
				}
				out := c.stdout
				_, _ = fmt.Fprintf(out, "daily goal: %d\n", view.DailyGoal)
				_, _ = fmt.Fprintf(out, "activities: %d (%.1f per day)\n", view.Stats.TotalActivities, view.Stats.AverageActivities)
				_, _ = fmt.Fprintf(out, "days: %d finalized, %d pending\n", view.Stats.FinalizedDays, view.Stats.PendingDays)
				if h := view.Highlights; h.MostProductiveDay != "" {
					_, _ = fmt.Fprintf(out, "most productive: %s (%d)\n", h.MostProductiveDay, h.MostProductiveCount)
				}
				if h := view.Highlights; h.TopTag != "" {
					_, _ = fmt.Fprintf(out, "top tag: %s (%d)\n", h.TopTag, h.TopTagCount)
				}
				return nil
			})
		},
	}
}

func (c *cli) seriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "series",
		Short: "Print the commitment history, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), "series", func(s *session) error {
				series, err := s.journal.CommitmentSeries(cmd.Context())
				if err != nil {
					return err
				}
				if c.jsonOut {
					return writeJSON(c.stdout, map[string]any{"series": series})
				}
				for _, point := range series {
					_, _ = fmt.Fprintf(c.stdout, "%s  %4.1f  %s\n", point.Date, point.Level, strings.Repeat("#", int(point.Level)))
				}
				return nil
			})
		},
	}
}

func (c *cli) insightCommand() *cobra.Command {
	var (
		rawDate     string
		instruction string
	)
	cmd := &cobra.Command{
		Use:   "insight",
		Short: "Ask the insight provider about a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDateArg(rawDate, clock())
			if err != nil {
				return err
			}
			return c.withSession(cmd.Context(), "insight", func(s *session) error {
				res, err := s.journal.Insight(cmd.Context(), common.InsightRequest{
					Date:        orCurrent(date),
					Instruction: instruction,
				})
				if err != nil {
					return err
				}
				if c.jsonOut {
					return writeJSON(c.stdout, res)
				}
				_, _ = fmt.Fprintln(c.stdout, strings.TrimSpace(res.Text))
				return nil
			})
		},
	}
	addDateFlag(cmd, &rawDate)
	cmd.Flags().StringVar(&instruction, "instruction", "", "what to ask about the day")
	return cmd
}

func (c *cli) exportCommand() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), "export", func(s *session) error {
				return runExport(cmd.Context(), s.service, outPath, c.stdout)
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

func (c *cli) importCommand() *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert days and tags from a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), "import", func(s *session) error {
				if err := runImport(cmd.Context(), s.service, inPath); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(c.stdout, "imported %s (%d days)\n", inPath, len(s.service.Days()))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input snapshot JSON file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func (c *cli) serveCommand() *cobra.Command {
	var (
		bind        string
		apiEndpoint string
		mcpEndpoint string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and MCP tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.withSession(ctx, "serve", func(s *session) error {
				cfg := server.Config{
					HTTPBind:      firstNonEmpty(bind, s.cfg.Server.HTTPBind),
					APIEndpoint:   firstNonEmpty(apiEndpoint, s.cfg.Server.APIEndpoint),
					MCPEndpoint:   firstNonEmpty(mcpEndpoint, s.cfg.Server.MCPEndpoint),
					ServerName:    "dayflow",
					ServerVersion: version,
				}
				s.logger.Info("serving", "http", cfg.HTTPBind, "api", cfg.APIEndpoint, "mcp", cfg.MCPEndpoint)
				return server.Run(ctx, cfg, server.Dependencies{Journal: s.journal, Logger: s.logger})
			})
		},
	}
	cmd.Flags().StringVar(&bind, "http", "", "listen address (default from config)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "REST mount path (default from config)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP mount path (default from config)")
	return cmd
}

// runExport writes the snapshot to outPath, or stdout for "-".
func runExport(ctx context.Context, svc *app.Service, outPath string, stdout io.Writer) error {
	snap, err := svc.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot json: %w", err)
	}
	encoded = append(encoded, '\n')

	if outPath == "" || outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// runImport reads a snapshot file and upserts it.
func runImport(ctx context.Context, svc *app.Service, inPath string) error {
	if strings.TrimSpace(inPath) == "" {
		return errors.New("--in is required")
	}
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return fmt.Errorf("decode snapshot json: %w", err)
	}
	if err := svc.ImportSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	return nil
}

// parseDateArg accepts YYYY-MM-DD, "current", or natural language such as
// "yesterday". An empty value stays empty.
func parseDateArg(raw string, now time.Time) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, common.CurrentDay) {
		return "", nil
	}
	if date, err := domain.NormalizeDate(raw); err == nil {
		return date, nil
	}
	parsed, err := dateparser.Parse(&dateparser.Configuration{
		CurrentTime:         now,
		PreferredDateSource: dateparser.Past,
	}, raw)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", raw, domain.ErrInvalidDate)
	}
	return domain.DateOf(parsed.Time), nil
}

func orCurrent(date string) string {
	if date == "" {
		return common.CurrentDay
	}
	return date
}

func addDateFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "date", "", "day to use: YYYY-MM-DD or words like \"yesterday\"")
}

func addReopenFlag(cmd *cobra.Command, target *bool) {
	cmd.Flags().BoolVar(target, "reopen", false, "reopen the day if it is finalized")
}

func (c *cli) printDay(day common.DayView) error {
	if c.jsonOut {
		return writeJSON(c.stdout, day)
	}
	out := c.stdout
	_, _ = fmt.Fprintf(out, "%s  %s  goal %d/%d", day.Date, dayState(day.Day), day.Progress.Count, day.Progress.Goal)
	if day.Completed() {
		_, _ = fmt.Fprintf(out, "  level %.1f", levelOf(day.Day))
	}
	_, _ = fmt.Fprintln(out)
	for _, a := range day.SortedActivities() {
		_, _ = fmt.Fprintf(out, "  %s-%s  %s", a.StartTime, a.EndTime, a.Description)
		for _, tag := range a.Tags {
			_, _ = fmt.Fprintf(out, " #%s", tag.Name)
		}
		if a.IsPrivate {
			_, _ = fmt.Fprint(out, " (private)")
		}
		_, _ = fmt.Fprintf(out, "  [%s]\n", a.ID)
	}
	if !day.Completed() {
		_, _ = fmt.Fprintf(out, "next start: %s\n", day.NextStartTime)
	}
	return nil
}

func (c *cli) printTag(tag domain.Tag) error {
	if c.jsonOut {
		return writeJSON(c.stdout, tag)
	}
	_, _ = fmt.Fprintf(c.stdout, "%s %s %s\n", tag.ID, tag.Color, tag.Name)
	return nil
}

func dayState(day domain.Day) string {
	if day.Completed() {
		return "finalized"
	}
	return "open"
}

func levelOf(day domain.Day) float64 {
	if day.CommitmentLevel == nil {
		return 0
	}
	return *day.CommitmentLevel
}

func writeJSON(w io.Writer, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", encoded)
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
