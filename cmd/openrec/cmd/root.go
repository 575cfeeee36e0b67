// Package cmd implements the openrec command tree.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openrec/openrec/pkg/logging"
)

var (
	configFile string
	verbose    bool
	quiet      bool
	logFormat  string

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "openrec",
	Short: "File-based reconciliation runner",
	Long: `OpenRec runs file-based reconciliation controls: schema'd CSV
extracts are loaded into a typed grid and cross-validated according to an
operator-authored charter before matching.`,
	PersistentPreRun: setupLogging,
}

// Execute adds all child commands to the root command and runs it.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.openrec.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "errors only")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto", "log format (auto, console, json)")

	rootCmd.SilenceUsage = true
}

// initConfig reads the config file and environment.
func initConfig() {
	// .env files load before viper env binding; .env.local wins.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("OPENREC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".openrec")
		}
	}

	// A missing config file is fine; flags and env cover everything.
	_ = viper.ReadInConfig()
}

// setupLogging configures the global logger from flags and environment.
func setupLogging(_ *cobra.Command, _ []string) {
	level := viper.GetString("log_level")
	switch {
	case verbose:
		level = "debug"
	case quiet:
		level = "error"
	case level == "":
		level = "info"
	}

	logging.Configure(&logging.Config{
		Level:  level,
		Format: logFormat,
		Output: viper.GetString("log_output"),
	})
}
