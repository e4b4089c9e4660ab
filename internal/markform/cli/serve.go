package cli

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/jlevy/markform/internal/markform/mcpserver"
	"github.com/jlevy/markform/pkg/logger"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <file.form.md>",
		Short: "Serve the agent-facing tool surface (inspect/apply/export/get_markdown) over MCP stdio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := loadForm(args[0])
			if err != nil {
				return err
			}

			sess := mcpserver.NewSession(form)
			srv := server.NewMCPServer("markform", "0.1.0")
			mcpserver.Register(srv, sess)

			logger.InfoX(mcpserver.ModuleName, "[cli] serving %s over MCP stdio", args[0])
			if err := server.ServeStdio(srv); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}
	return cmd
}
