package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"daybook/internal/api"
	"daybook/internal/config"
	"daybook/internal/debug"
	"daybook/internal/session"
	"daybook/internal/telemetry"
	"daybook/internal/ui"
	"daybook/internal/ui/theme"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type cliFlags struct {
	apiURL  string
	theme   string
	debug   bool
	version bool
	stats   bool
}

func newRootCmd() *cobra.Command {
	var flags cliFlags
	cmd := &cobra.Command{
		Use:           "daybook",
		Short:         "Plan and track daily goals from the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.version {
				printVersion(cmd.OutOrStdout())
				return nil
			}
			return run(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.apiURL, "api-url", config.DefaultAPIBaseURL, "Base URL of the goals API")
	f.StringVar(&flags.theme, "theme", config.DefaultTheme, "Color theme ("+strings.Join(theme.Available(), ", ")+")")
	f.BoolVar(&flags.debug, "debug", false, "Write a debug log to ~/.daybook/debug.log")
	f.BoolVar(&flags.version, "version", false, "Print version information and exit")
	f.BoolVar(&flags.stats, "stats", false, "Print request timings on exit")
	return cmd
}

// overridesFromFlags returns config overrides for flags the user actually set,
// so config files and env still win over flag defaults.
func overridesFromFlags(cmd *cobra.Command, flags cliFlags) map[string]any {
	overrides := map[string]any{}
	if cmd.Flags().Changed("api-url") {
		overrides[config.KeyAPIBaseURL] = strings.TrimSpace(flags.apiURL)
	}
	if cmd.Flags().Changed("theme") {
		overrides[config.KeyTheme] = strings.TrimSpace(flags.theme)
	}
	return overrides
}

func run(cmd *cobra.Command, flags cliFlags) error {
	started := time.Now()
	spin := newStartupSpinner(cmd.ErrOrStderr(), defaultSpinnerDelay)
	defer spin.Stop()

	spin.Stage(stageLoadingSettings, "")
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("initialize config: %w", err)
	}
	if err := config.ApplyOverrides(overridesFromFlags(cmd, flags)); err != nil {
		return fmt.Errorf("apply flags: %w", err)
	}
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := debug.Init(flags.debug); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: debug log disabled: %v\n", err)
	}
	defer debug.Close()
	log := debug.Logger()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	spin.Stage(stageOpeningSession, settings.SessionPath)
	store, closeStore := openSession(ctx, settings, session.OpenSQLite, log)
	defer closeStore()

	spin.Stage(stageConnecting, settings.APIBaseURL)
	monitor := telemetry.NewMonitor()
	limiter, err := api.NewLoginLimiter(settings.LoginRate)
	if err != nil {
		return fmt.Errorf("%s: %w", config.KeyLoginRate, err)
	}
	client, err := api.NewClient(settings.APIBaseURL, store,
		api.WithTimeout(settings.APITimeout),
		api.WithRetry(settings.RetryMaxAttempts, settings.RetryBaseDelay),
		api.WithLoginLimiter(limiter),
		api.WithMonitor(monitor),
		api.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("create api client: %w", err)
	}

	if !theme.SetTheme(settings.Theme) {
		log.Warn("unknown theme, keeping default", zap.String("theme", settings.Theme))
	}
	log.Info("starting",
		zap.String("version", Version),
		zap.String("api", client.BaseURL()),
		zap.Bool("obfuscated", settings.SessionObfuscate),
	)

	spin.Stage(stageReady, "")
	appCfg := ui.Config{
		Backend:   client,
		Session:   store,
		Monitor:   monitor,
		SaveTheme: config.SaveTheme,
		CopyText:  clipboard.WriteAll,
		Version:   Version,
	}
	runErr := runProgram(appCfg, ui.NewApp, func(app *ui.App) programRunner {
		spin.Stop()
		return tea.NewProgram(app,
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
			tea.WithContext(ctx),
		)
	})

	if flags.stats {
		ops, err := monitor.Summary()
		if err != nil {
			log.Warn("summarize timings", zap.Error(err))
		}
		printSessionSummary(cmd.OutOrStdout(), SessionSummary{
			Version:  Version,
			Duration: time.Since(started),
			Ops:      ops,
		})
	}
	return runErr
}

type sessionOpener func(ctx context.Context, path string) (*session.SQLiteStore, error)

// openSession opens the session database, falling back to memory so the app
// still runs (without remembering the login) when the file is unusable.
func openSession(ctx context.Context, settings config.Settings, open sessionOpener, log *zap.Logger) (session.Store, func()) {
	db, err := open(ctx, settings.SessionPath)
	if err != nil {
		log.Warn("session database unavailable, using memory",
			zap.String("path", settings.SessionPath),
			zap.Error(err),
		)
		return session.NewMemoryStore(), func() {}
	}

	var store session.Store = db
	if settings.SessionObfuscate {
		store = session.NewObfuscated(db)
	}
	return store, func() {
		if err := db.Close(); err != nil {
			log.Warn("close session database", zap.Error(err))
		}
	}
}

type programRunner interface {
	Run() (tea.Model, error)
}

type programFactory func(*ui.App) programRunner

func runProgram(cfg ui.Config, builder func(ui.Config) (*ui.App, error), factory programFactory) error {
	app, err := builder(cfg)
	if err != nil {
		if errors.Is(err, ui.ErrNoBackend) || errors.Is(err, ui.ErrNoSession) {
			return err
		}
		return fmt.Errorf("initialize UI: %w", err)
	}
	defer app.Close()
	if factory == nil {
		return fmt.Errorf("program factory is nil")
	}
	prog := factory(app)
	if prog == nil {
		return fmt.Errorf("program is nil")
	}
	if _, err := prog.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return fmt.Errorf("run UI: %w", err)
	}
	return nil
}
