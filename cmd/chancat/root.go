package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrjoshuak/go-chancat/internal/logger"
)

const (
	logFormatFlag = "log-format"
	logLevelFlag  = "log-level"
	configFlag    = "config"
)

// newRootCommand builds the command tree. Each command tree owns its viper
// instance, which reads flags, then CHANCAT_* environment variables, then
// config.yaml.
func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CHANCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, path := range []string{".", "$HOME/.chancat", "/etc/chancat"} {
		v.AddConfigPath(path)
	}

	root := &cobra.Command{
		Use:           "chancat",
		Short:         "Concatenate image components",
		Long:          "chancat combines images of equal size and element type into one image whose pixels hold every input's components in order.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return readConfig(v)
		},
	}

	flags := root.PersistentFlags()
	flags.String(logFormatFlag, "text", "log format: text or json")
	flags.String(logLevelFlag, "warn", "log level: debug, info, warn, error or none")
	flags.String(configFlag, "", "path to a config file (default config.yaml in the search paths)")

	root.AddCommand(newConcatCommand(v), newInfoCommand(v), newVersionCommand())
	return root
}

func readConfig(v *viper.Viper) error {
	if path := v.GetString(configFlag); path != "" {
		v.SetConfigFile(path)
	}
	err := v.ReadInConfig()
	if err != nil && !errors.As(err, &viper.ConfigFileNotFoundError{}) {
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func newLogger(v *viper.Viper) (*logger.ZapLogger, error) {
	return logger.NewLogger(v.GetString(logFormatFlag), v.GetString(logLevelFlag))
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chancat version %s\n", version)
		},
	}
}
