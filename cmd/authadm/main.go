package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tgoo/authadm/pkg/app"
	"github.com/tgoo/authadm/pkg/config"
	"github.com/tgoo/authadm/pkg/transport"
)

var (
	// Version information set at build time.
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile  string
	logLevel string
	log      *logrus.Logger
)

func main() {
	log = logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Fatal("Failed to execute command")
	}
}

var rootCmd = &cobra.Command{
	Use:   "authadm",
	Short: "Admin console for the TGOO multi-platform auth service",
	Long: `Authadm is the super-administrator console for a multi-platform
authentication service. It manages platforms (tenants) and their users:
create, edit, approve, block, and reset passwords, all through the
service's admin REST API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}

		log.SetLevel(level)

		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("authadm %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level ("+strings.Join(logLevels(), ", ")+")")

	rootCmd.AddCommand(versionCmd)
}

func logLevels() []string {
	levels := make([]string, 0, len(logrus.AllLevels))
	for _, level := range logrus.AllLevels {
		levels = append(levels, level.String())
	}

	return levels
}

// loginRedirector tells a terminal user how to get back to a session. The
// browser console navigates to /login here; the CLI points at the login
// command instead.
type loginRedirector struct {
	log logrus.FieldLogger
}

func (r *loginRedirector) RedirectToLogin() {
	r.log.Info("Run 'authadm login' to sign in again")
}

// newApp loads configuration and builds the application container.
func newApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	a := app.New(
		log, cfg,
		transport.NewLogNotifier(log),
		&loginRedirector{log: log},
	)

	if err := a.Start(ctx); err != nil {
		return nil, err
	}

	return a, nil
}
