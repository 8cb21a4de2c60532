package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentic-research/fextract/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve extraction tools over MCP on stdin/stdout",
	Long: `serve speaks the Model Context Protocol on stdin/stdout and exposes the
extract_directory, extract_file and list_formats tools. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, reg, err := setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		srv := mcpserver.NewServer(reg, logger, Version)
		srv.Workers = cfg.Workers
		return srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
