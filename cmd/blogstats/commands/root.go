package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"blogstats/cmd/app"
	"blogstats/internal/config"
	"blogstats/internal/metrics"
	"blogstats/internal/middleware"
)

var (
	// Global flags
	envFile    string
	jsonOutput bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "blogstats",
	Short: "Blog reports and statistics over a PostgreSQL blog database",
	Long: `blogstats builds reports over the blog database: the dashboard, the sidebar,
per-user statistics, popular posts and the user activity export. It also
recomputes the derived comment and tag counters stored on each post.

Configuration comes from the environment, optionally seeded from an env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		cfg = config.LoadConfig(files...)

		if err := cfg.Validate(); err != nil {
			return err
		}
		return app.SetupLogger(cfg)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Env file to load (default: .env when present)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// withApp connects the backends, runs fn under timeout and tears everything down afterwards.
func withApp(cmd *cobra.Command, timeout time.Duration, fn func(ctx context.Context, c *app.Components) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	stopMetrics := startMetricsServer(cfg.MetricsAddr)
	defer stopMetrics()

	c, err := app.App(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(ctx, c)
}

// startMetricsServer exposes /metrics while a command runs. An empty addr disables it.
func startMetricsServer(addr string) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", middleware.Chain(metrics.Handler(), middleware.Recover, middleware.Logging, middleware.GetOnly))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.WithField("addr", addr).Info("starting metrics server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("metrics server shutdown")
		}
	}
}
