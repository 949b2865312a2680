package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/brettbedarf/mirrorfs/internal/util"
	"github.com/brettbedarf/mirrorfs/requests"
	"github.com/brettbedarf/mirrorfs/server"
)

var nodesDef string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Loads the tree from its JSON snapshot, optionally applies a seed file of
node definitions and serves the HTTP API until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&nodesDef, "nodes", "n", "", "Path to a JSON array of node definitions applied at startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger := util.GetLogger("main")

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if nodesDef != "" {
		reqs, err := requests.LoadSeedFile(afero.NewOsFs(), nodesDef)
		if err != nil {
			return err
		}
		report, err := a.svc.Seed(ctx, reqs)
		if err != nil {
			return err
		}
		logger.Info().Int("nodes", len(reqs)).Int("warnings", len(report.Warnings)).Msg("Applied node definitions")
	}

	srv := server.New(a.svc, a.events)
	return srv.Run(ctx, cfg.Addr())
}
