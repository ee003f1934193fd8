package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/hylla/dayflow/internal/adapters/insight/gemini"
	"github.com/hylla/dayflow/internal/adapters/insight/local"
	"github.com/hylla/dayflow/internal/adapters/server/common"
	"github.com/hylla/dayflow/internal/adapters/storage/badgerdb"
	"github.com/hylla/dayflow/internal/adapters/storage/boltdb"
	"github.com/hylla/dayflow/internal/adapters/storage/sqlite"
	"github.com/hylla/dayflow/internal/app"
	"github.com/hylla/dayflow/internal/config"
	"github.com/hylla/dayflow/internal/domain"
	"github.com/hylla/dayflow/internal/platform"
	"github.com/spf13/cobra"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// clock is swapped by tests that need a fixed "today".
var clock = time.Now

func main() {
	ctx := context.Background()
	root := newRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := fang.Execute(ctx, root, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// run executes one command line without the fang wrapper.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(strings.NewReader(""), stdout, stderr)
	root.SetArgs(args)
	root.SilenceErrors = true
	root.SilenceUsage = true
	return root.ExecuteContext(ctx)
}

// cli holds the global flags and output streams shared by every command.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	dbPath     string
	backend    string
	appName    string
	devMode    bool
	jsonOut    bool
}

// newRootCommand builds the dayflow command tree.
func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}

	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("DAYFLOW_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	defaultApp := "dayflow"
	if envApp := strings.TrimSpace(os.Getenv("DAYFLOW_APP_NAME")); envApp != "" {
		defaultApp = envApp
	}

	root := &cobra.Command{
		Use:     "dayflow",
		Short:   "Log what you did today and watch your commitment grow",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd.Context())
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to config TOML")
	flags.StringVar(&c.dbPath, "db", "", "path to the journal store")
	flags.StringVar(&c.backend, "backend", "", "storage backend override (sqlite|bolt|badger)")
	flags.StringVar(&c.appName, "app", defaultApp, "application name for config/data path resolution")
	flags.BoolVar(&c.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	flags.BoolVar(&c.jsonOut, "json", false, "print JSON instead of text")

	root.AddCommand(
		c.pathsCommand(),
		c.configCommand(),
		c.dayCommand(),
		c.activityCommand(),
		c.tagCommand(),
		c.statsCommand(),
		c.seriesCommand(),
		c.insightCommand(),
		c.exportCommand(),
		c.importCommand(),
		c.serveCommand(),
	)
	return root
}

// resolvedPaths returns the platform paths for the selected app name.
func (c *cli) resolvedPaths() (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: c.appName,
		DevMode: c.devMode,
	})
}

// resolveConfigPath applies flag, env, then platform precedence.
func (c *cli) resolveConfigPath(paths platform.Paths) string {
	if strings.TrimSpace(c.configPath) != "" {
		return c.configPath
	}
	if envPath := strings.TrimSpace(os.Getenv("DAYFLOW_CONFIG")); envPath != "" {
		return envPath
	}
	return paths.ConfigPath
}

// loadConfig resolves paths and config with CLI and environment overrides applied.
func (c *cli) loadConfig() (config.Config, platform.Paths, string, error) {
	paths, err := c.resolvedPaths()
	if err != nil {
		return config.Config{}, platform.Paths{}, "", err
	}
	configPath := c.resolveConfigPath(paths)

	dbPath := strings.TrimSpace(c.dbPath)
	if dbPath == "" {
		dbPath = strings.TrimSpace(os.Getenv("DAYFLOW_DB_PATH"))
	}
	cfg, err := config.Load(configPath, config.Default(paths.DBPath))
	if err != nil {
		return config.Config{}, platform.Paths{}, "", fmt.Errorf("load config %q: %w", configPath, err)
	}
	if backend := strings.TrimSpace(c.backend); backend != "" {
		cfg.Database.Backend = config.Backend(backend)
	}
	switch {
	case dbPath != "":
		cfg.Database.Path = dbPath
	case cfg.Database.Path == paths.DBPath:
		cfg.Database.Path = paths.StorePath(string(cfg.Database.Backend))
	}
	if user := strings.TrimSpace(os.Getenv("DAYFLOW_USER")); user != "" {
		cfg.Identity.UserID = user
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, platform.Paths{}, "", fmt.Errorf("validate config %q: %w", configPath, err)
	}
	return cfg, paths, configPath, nil
}

// closableRepository is a Persistence Port that owns an open store.
type closableRepository interface {
	app.Repository
	Close() error
}

// openRepository opens the configured storage backend.
func openRepository(cfg config.DatabaseConfig) (closableRepository, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlite.Open(cfg.Path)
	case config.BackendBolt:
		return boltdb.Open(cfg.Path)
	case config.BackendBadger:
		return badgerdb.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database backend: %q", cfg.Backend)
	}
}

// newInsightGenerator builds the configured provider. A gemini provider
// without an API key yields no generator so insight reports unavailable.
func newInsightGenerator(ctx context.Context, cfg config.InsightConfig, logger *runtimeLogger) (app.InsightGenerator, error) {
	switch cfg.Provider {
	case config.InsightGemini:
		apiKey := strings.TrimSpace(os.Getenv(cfg.APIKeyEnv))
		if apiKey == "" {
			logger.Warn("gemini api key missing, insight disabled", "env", cfg.APIKeyEnv)
			return nil, nil
		}
		gen, err := gemini.New(ctx, gemini.Config{
			APIKey: apiKey,
			Model:  cfg.Model,
			System: cfg.SystemInstruction,
		})
		if err != nil {
			return nil, fmt.Errorf("configure gemini insight: %w", err)
		}
		return gen, nil
	default:
		return local.Generator{}, nil
	}
}

// session is everything one command needs once storage is open.
type session struct {
	cfg        config.Config
	paths      platform.Paths
	configPath string
	logger     *runtimeLogger
	service    *app.Service
	journal    *common.AppServiceAdapter
	insight    app.InsightGenerator
	closeRepo  func() error
}

// openSession resolves config, opens storage and loads the user's journal.
func (c *cli) openSession(ctx context.Context, command string) (*session, error) {
	cfg, paths, configPath, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newRuntimeLogger(c.stderr, c.appName, paths.LogDir, cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// The TUI owns the terminal; runtime logs only reach the file sink.
		logger.SetConsoleEnabled(false)
	}
	logger.Info("startup configuration resolved", "app", c.appName, "dev_mode", c.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	if path := logger.FilePath(); path != "" {
		logger.Info("file logging enabled", "path", path)
	}

	logger.Info("opening repository", "backend", cfg.Database.Backend, "db_path", cfg.Database.Path)
	repo, err := openRepository(cfg.Database)
	if err != nil {
		logger.Error("repository open failed", "backend", cfg.Database.Backend, "db_path", cfg.Database.Path, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open %s repository: %w", cfg.Database.Backend, err)
	}

	gen, err := newInsightGenerator(ctx, cfg.Insight, logger)
	if err != nil {
		_ = repo.Close()
		_ = logger.Close()
		return nil, err
	}

	svc := app.NewService(repo, app.StaticIdentity(cfg.Identity.UserID), uuid.NewString, clock, app.ServiceConfig{
		Goal: domain.GoalOptions{
			DefaultGoal: cfg.Goal.DefaultGoal,
			MaxGoal:     cfg.Goal.MaxGoal,
			WindowSize:  cfg.Goal.WindowSize,
		},
	})
	if err := svc.Load(ctx); err != nil {
		logger.Error("journal load failed", "user", cfg.Identity.UserID, "err", err)
		_ = repo.Close()
		_ = logger.Close()
		return nil, fmt.Errorf("load journal: %w", err)
	}
	logger.Debug("journal loaded", "user", cfg.Identity.UserID, "days", len(svc.Days()))

	return &session{
		cfg:        cfg,
		paths:      paths,
		configPath: configPath,
		logger:     logger,
		service:    svc,
		journal:    common.NewAppServiceAdapter(svc, gen),
		insight:    gen,
		closeRepo:  repo.Close,
	}, nil
}

// Close releases storage and log sinks.
func (s *session) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.closeRepo != nil {
		if err := s.closeRepo(); err != nil {
			s.logger.Warn("repository close failed", "db_path", s.cfg.Database.Path, "err", err)
			errs = append(errs, err)
		}
	}
	if err := s.logger.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close runtime log sink: %w", err))
	}
	return errors.Join(errs...)
}

// withSession opens a session around fn and logs the command flow.
func (c *cli) withSession(ctx context.Context, command string, fn func(*session) error) (err error) {
	s, err := c.openSession(ctx, command)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	s.logger.Info("command flow start", "command", command)
	if err := fn(s); err != nil {
		s.logger.Error("command flow failed", "command", command, "err", err)
		return err
	}
	s.logger.Info("command flow complete", "command", command)
	return nil
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
