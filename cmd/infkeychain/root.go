package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zx06/infkeychain/internal/config"
	"github.com/zx06/infkeychain/internal/errors"
	"github.com/zx06/infkeychain/internal/log"
)

// Build-time variables (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Config holds the resolved configuration
type Config struct {
	FormatStr   string
	ConfigStr   string
	ProfileStr  string
	BackendStr  string
	LogLevelStr string
	Resolved    config.Resolved
	Logger      *slog.Logger
}

// GlobalConfig holds the global configuration state
var GlobalConfig = &Config{}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "infkeychain",
		Short:         "Read and write passwords in the platform secure credential store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// CLI > ENV > Config
			formatSet := cmd.Flags().Changed("format")
			profileSet := cmd.Flags().Changed("profile")
			configSet := cmd.Flags().Changed("config")
			backendSet := cmd.Flags().Changed("backend")
			logLevelSet := cmd.Flags().Changed("log-level")
			if configSet && GlobalConfig.ConfigStr == "" {
				return errors.New(errors.CodeCfgInvalid, "config path is empty", nil)
			}

			r, xe := config.Resolve(config.Options{
				ConfigPath:     GlobalConfig.ConfigStr,
				CLIProfile:     GlobalConfig.ProfileStr,
				CLIProfileSet:  profileSet,
				CLIFormat:      GlobalConfig.FormatStr,
				CLIFormatSet:   formatSet,
				CLIBackend:     GlobalConfig.BackendStr,
				CLIBackendSet:  backendSet,
				CLILogLevel:    GlobalConfig.LogLevelStr,
				CLILogLevelSet: logLevelSet,
				EnvProfile:     os.Getenv("INFKC_PROFILE"),
				EnvFormat:      os.Getenv("INFKC_FORMAT"),
				EnvBackend:     os.Getenv("INFKC_BACKEND"),
				EnvService:     os.Getenv("INFKC_SERVICE"),
				EnvLogLevel:    os.Getenv("INFKC_LOG_LEVEL"),
				WorkDir:        "",
				HomeDir:        "",
			})
			if xe != nil {
				return xe
			}
			level, xe := log.ParseLevel(r.LogLevel)
			if xe != nil {
				return xe
			}
			GlobalConfig.Resolved = r
			GlobalConfig.FormatStr = r.Format
			GlobalConfig.ProfileStr = r.ProfileName
			GlobalConfig.BackendStr = r.Backend
			GlobalConfig.Logger = log.NewWithLevel(cmd.ErrOrStderr(), level)
			GlobalConfig.Logger.Debug("configuration resolved",
				"config_path", r.ConfigPath,
				"profile", r.ProfileName,
				"backend", r.Backend,
				"format", r.Format,
			)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&GlobalConfig.ConfigStr, "config", "", "Config file path (YAML); default: ./infkeychain.yaml or $HOME/.config/infkeychain/infkeychain.yaml")
	root.PersistentFlags().StringVarP(&GlobalConfig.ProfileStr, "profile", "p", "", "Profile name (config: profiles.<name>)")
	root.PersistentFlags().StringVarP(&GlobalConfig.FormatStr, "format", "f", "auto", "Output format: json|yaml|table|csv|auto")
	root.PersistentFlags().StringVarP(&GlobalConfig.BackendStr, "backend", "b", config.DefaultBackend, "Secure storage backend: os|keyring|memory")
	root.PersistentFlags().StringVar(&GlobalConfig.LogLevelStr, "log-level", "info", "Log level: debug|info|warn|error")

	return root
}
