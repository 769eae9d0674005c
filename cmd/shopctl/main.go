// Command shopctl is a terminal shopper for the storefront: it keeps an
// anonymous cart and wishlist on disk and merges them into the account on
// login.
package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"storefront/internal/localstore"
	"storefront/internal/platform/logger"
	"storefront/internal/platform/metrics"
	"storefront/internal/reconcile"
	"storefront/internal/shopper"
	"storefront/internal/storefront/client"
)

type app struct {
	apiURL   string
	stateDir string
	timeout  time.Duration
	verbose  bool
	// metricsFile receives the merge metrics in Prometheus text format
	// after each command, for node_exporter's textfile collector.
	metricsFile string

	registry *prometheus.Registry
	shop     *shopper.Shopper
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Browse the storefront cart and wishlist from a terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", envOr("STOREFRONT_API_URL", "http://localhost:8080"), "storefront API base URL")
	root.PersistentFlags().StringVar(&a.stateDir, "state-dir", envOr("STOREFRONT_STATE_DIR", defaultStateDir()), "directory holding the local cart, wishlist and session")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "timeout for one command")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", os.Getenv("SHOPCTL_METRICS_FILE"), "write merge metrics to this file after each command")

	root.AddCommand(
		newCartCmd(a),
		newWishlistCmd(a),
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
	)
	return root
}

func (a *app) open(stderr io.Writer) error {
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(stderr, level, "text")

	kv, err := localstore.NewFile(a.stateDir)
	if err != nil {
		return err
	}
	api, err := client.New(a.apiURL)
	if err != nil {
		return err
	}
	a.registry = prometheus.NewRegistry()
	a.shop = shopper.New(kv, api,
		shopper.WithLogger(log),
		shopper.WithReconcilerOptions(reconcile.WithMetrics(metrics.NewMerge(a.registry))),
	)
	return nil
}

// close waits for any merge the command started, then flushes metrics.
func (a *app) close() error {
	if a.shop == nil {
		return nil
	}
	a.shop.Close()
	if a.metricsFile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(a.metricsFile, a.registry)
}

// ctx bounds one command by --timeout.
func (a *app) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".storefront"
	}
	return filepath.Join(home, ".storefront")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
