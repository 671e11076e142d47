package mcp

import (
	"github.com/spf13/cobra"
)

// Command returns the MCP server command. newService is called once the
// command runs so flags and configuration are already parsed.
func Command(newService func() (Service, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			return NewServer(svc).Run()
		},
	}
}
