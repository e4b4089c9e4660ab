package cli

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jlevy/markform/internal/markform/export"
)

func newExportCmd() *cobra.Command {
	var format string
	var width int

	cmd := &cobra.Command{
		Use:   "export <file.form.md>",
		Short: "Export values, JSON Schema, or a rendered report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := loadForm(args[0])
			if err != nil {
				return err
			}

			switch format {
			case "values":
				out, err := export.ValuesJSON(form)
				if err != nil {
					return fmt.Errorf("export values: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			case "schema":
				out, err := export.SchemaJSON(form)
				if err != nil {
					return fmt.Errorf("export schema: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			case "report":
				md, err := export.RenderReport(form)
				if err != nil {
					return fmt.Errorf("export report: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderMarkdownToTerminal(md, width))
			default:
				return fmt.Errorf("export: unknown --format %q (want values, schema, or report)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "values", "Output format: values, schema, or report")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width for --format report (0 = detect terminal width)")
	return cmd
}

// renderMarkdownToTerminal renders report Markdown for terminal display,
// mirroring the teacher's chat TUI rendering (internal/echoctl/cmd/chat/tui.go).
func renderMarkdownToTerminal(content string, width int) string {
	if width <= 0 {
		if w, _, err := term.GetSize(0); err == nil && w > 0 {
			width = w
		} else {
			width = 76
		}
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithColorProfile(termenv.ANSI256),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
