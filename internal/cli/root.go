package cli

import (
	"fmt"

	"github.com/kerraform/kota/internal/cli/snapshot"
	"github.com/kerraform/kota/internal/logging"
	"github.com/kerraform/kota/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kota-cli",
		Short:         "CLI for kota, OTA metadata normalizer",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("log-level", string(logging.LevelWarn), "Log level written to stderr (debug, info, warn, error)")
	viper.BindEnv("log-level", "KOTA_LOG_LEVEL")
	viper.BindPFlag("log-level", flags.Lookup("log-level"))

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newNormalizeCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newLintCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newRawURLCmd())
	cmd.AddCommand(snapshot.NewCmd())
	return cmd
}

func Execute() error {
	return newRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "version: %s\n", version.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", version.Commit)
			return nil
		},
	}
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	return logging.NewLogger(cmd.ErrOrStderr(), logging.Level(viper.GetString("log-level")), logging.FormatConsole)
}
