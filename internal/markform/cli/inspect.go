package cli

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/jlevy/markform/internal/markform/inspector"
)

func newInspectCmd() *cobra.Command {
	var rolesCSV string

	cmd := &cobra.Command{
		Use:   "inspect <file.form.md>",
		Short: "Print structure, per-role progress, and a priority-ordered issue list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := loadForm(args[0])
			if err != nil {
				return err
			}

			var opts inspector.Options
			if rolesCSV != "" {
				opts.TargetRoles = inspector.NewRoleSet(strings.Split(rolesCSV, ","))
			}

			report := inspector.Inspect(form, opts)
			out, err := sonic.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&rolesCSV, "roles", "", "Comma-separated roles to filter the issue list by")
	return cmd
}
