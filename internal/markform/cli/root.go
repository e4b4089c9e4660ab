package cli

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jlevy/markform/pkg/logger"
)

// NewDefaultMarkformCommand builds the markform root command and its full
// subcommand tree, the entry point cmd/markform/markform.go calls.
func NewDefaultMarkformCommand() *cobra.Command {
	var logPath, logLevel string

	cmd := &cobra.Command{
		Use:           "markform",
		Short:         "Parse, inspect, fill, and export Markform agent forms",
		SilenceUsage:  true,
		SilenceErrors: false,
		Long: heredoc.Doc(`
			markform operates on .form.md files: Markdown documents carrying
			embedded Markdoc tags that describe an agent-fillable form.

			It covers the full lifecycle: parsing and validating a form,
			inspecting its structure and outstanding issues, applying
			patches, driving an automated fill loop, exporting values /
			JSON Schema / a rendered report, and serving the same
			operations to an agent over MCP.
		`),
		Example: heredoc.Doc(`
			markform inspect onboarding.form.md
			markform apply onboarding.form.md --patches patches.json --out onboarding.form.md
			markform export onboarding.form.md --format report
			markform serve onboarding.form.md
		`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.InitLog(logPath); err != nil {
				return err
			}
			logger.SetLevel(logLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logPath, "log-file", "", "Write logs to this file instead of stderr.")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error.")
	_ = viper.BindPFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newInspectCmd(),
		newApplyCmd(),
		newFillCmd(),
		newExportCmd(),
		newServeCmd(),
	)

	return cmd
}
