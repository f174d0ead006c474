package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sherifabdallah/easyapply/internal/advisor"
	"github.com/sherifabdallah/easyapply/internal/config"
	"github.com/sherifabdallah/easyapply/internal/dom"
	"github.com/sherifabdallah/easyapply/internal/flow"
	"github.com/sherifabdallah/easyapply/internal/form"
	"github.com/sherifabdallah/easyapply/internal/gate"
	"github.com/sherifabdallah/easyapply/internal/history"
	"github.com/sherifabdallah/easyapply/internal/observability"
	"github.com/sherifabdallah/easyapply/internal/profile"
	"github.com/sherifabdallah/easyapply/internal/runner"
)

// newApplyCmd creates and configures the `apply` command.
func newApplyCmd() *cobra.Command {
	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Searches for jobs and works through their application wizards",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their Viper keys so command-line flags override
			// values from the config file and environment variables.
			if err := viper.BindPFlag("search.keywords", cmd.Flags().Lookup("keywords")); err != nil {
				return err
			}
			if err := viper.BindPFlag("search.location", cmd.Flags().Lookup("location")); err != nil {
				return err
			}
			if err := viper.BindPFlag("search.max_applications", cmd.Flags().Lookup("max-applications")); err != nil {
				return err
			}
			return viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use the context passed from main.go (signal-aware).
			ctx := cmd.Context()
			logger := observability.GetLogger().With(
				zap.String("session_id", uuid.NewString()))

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			// Credentials and the advisory key come from the environment,
			// never the config file.
			cfg.Credentials.Email = os.Getenv("LINKEDIN_EMAIL")
			cfg.Credentials.Password = os.Getenv("LINKEDIN_PASSWORD")
			if cfg.Credentials.Email == "" || cfg.Credentials.Password == "" {
				return fmt.Errorf("LINKEDIN_EMAIL and LINKEDIN_PASSWORD must be set in the environment or .env")
			}
			if cfg.Advisor.APIKey == "" {
				cfg.Advisor.APIKey = os.Getenv("GROQ_API_KEY")
				if cfg.Advisor.Provider == config.ProviderGemini {
					cfg.Advisor.APIKey = os.Getenv("GEMINI_API_KEY")
				}
			}

			logger.Info("Starting application session",
				zap.String("keywords", cfg.Search.Keywords),
				zap.String("location", cfg.Search.Location),
				zap.Int("max_applications", cfg.Search.MaxApplications),
			)

			components, err := initializeSessionComponents(ctx, cfg, logger)
			if err != nil {
				if components != nil {
					components.Shutdown()
				}
				return fmt.Errorf("failed to initialize session components: %w", err)
			}
			defer components.Shutdown()

			stats, err := components.Runner.Run(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Warn("Session aborted gracefully")
				} else {
					logger.Error("Session failed", zap.Error(err))
				}
				printSummary(stats)
				return err
			}

			printSummary(stats)
			return nil
		},
	}

	applyCmd.Flags().StringP("keywords", "k", "software engineer", "Job search keywords. (Overrides config/env)")
	applyCmd.Flags().StringP("location", "l", "", "Job search location. (Overrides config/env)")
	applyCmd.Flags().IntP("max-applications", "n", 10, "Stop after this many submitted applications. (Overrides config/env)")
	applyCmd.Flags().Bool("headless", false, "Run the browser headless. (Overrides config/env)")

	return applyCmd
}

// sessionComponents holds initialized services.
type sessionComponents struct {
	Session *dom.Session
	Runner  *runner.Runner
}

// Shutdown closes the browser session.
func (sc *sessionComponents) Shutdown() {
	if sc.Session != nil {
		sc.Session.Close()
	}
}

// initializeSessionComponents handles dependency injection.
func initializeSessionComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sessionComponents, error) {
	components := &sessionComponents{}

	// 1. Candidate profile and history
	candidate, err := profile.Load(cfg.Profile.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate profile: %w", err)
	}

	store, err := history.Load(cfg.History.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load application history: %w", err)
	}

	// 2. Advisory service. Construction or verification failure downgrades
	// to deterministic-only resolution rather than aborting the run.
	var adv advisor.Advisor
	client, err := advisor.NewClient(ctx, cfg.Advisor, logger)
	if err != nil {
		logger.Warn("Advisory service unavailable, continuing in basic mode", zap.Error(err))
	} else {
		verifyCtx, cancel := context.WithTimeout(ctx, cfg.Advisor.Timeout)
		defer cancel()
		if v, ok := client.(advisor.Verifier); ok {
			if err := v.Verify(verifyCtx); err != nil {
				logger.Warn("Advisory service verification failed, continuing in basic mode", zap.Error(err))
				client = nil
			}
		}
		adv = client
	}

	// 3. Browser session
	session, err := dom.NewSession(ctx, cfg.Browser, cfg.Network)
	if err != nil {
		return components, fmt.Errorf("failed to launch browser session: %w", err)
	}
	components.Session = session

	// 4. Core pipeline
	resolver := form.NewResolver(candidate, adv, logger)
	choices := form.NewChoiceResolver(candidate, logger)
	filler := form.NewFiller(session, resolver, choices, candidate, cfg.Network.SettleDelay, logger)
	fl := flow.New(session, filler, cfg.Flow, cfg.Network, logger)
	g := gate.New(adv, candidate, logger)

	components.Runner = runner.New(session, g, fl, store, cfg, logger)
	return components, nil
}

func printSummary(stats runner.Stats) {
	fmt.Printf("\nSession complete at %s\n", time.Now().Format(time.Kitchen))
	fmt.Printf("  Jobs searched: %d\n", stats.Searched)
	fmt.Printf("  Applications submitted: %d\n", stats.Applied)
	fmt.Printf("  Jobs skipped: %d\n", stats.Skipped)
	fmt.Printf("  Errors: %d\n", stats.Errors)
}

func init() {
	rootCmd.AddCommand(newApplyCmd())
}
