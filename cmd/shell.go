package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/brettbedarf/mirrorfs/internal/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run the interactive command shell",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		return shell.New(a.svc, os.Stdin, os.Stdout).Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
