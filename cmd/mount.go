package main

import (
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brettbedarf/mirrorfs/fusefs"
	"github.com/brettbedarf/mirrorfs/internal/util"
	"github.com/brettbedarf/mirrorfs/server"
)

var (
	umount    bool
	mountHTTP bool
)

var mountCmd = &cobra.Command{
	Use:   "mount <mountpoint>",
	Short: "Mount the tree read-only over FUSE",
	Long: `Mounts the live tree read-only at the given mount point. Unless --http=false
is passed the HTTP API is served alongside, so changes made through it show up
in the mount immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: runMount,
}

func init() {
	mountCmd.Flags().BoolVarP(&umount, "umount", "u", false,
		"Unmount the fs first if needed before mounting again. Useful for debuggers that don't exit properly.")
	mountCmd.Flags().BoolVar(&mountHTTP, "http", true, "Serve the HTTP API while mounted")
	rootCmd.AddCommand(mountCmd)
}

func runMount(cmd *cobra.Command, args []string) error {
	mnt := args[0]
	logger := util.GetLogger("main")

	if umount {
		// we ignore error here if not already mounted
		exec.Command("fusermount", "-u", mnt).Run() // nolint:errcheck
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	view := fusefs.New(a.svc.FS(), cfg)
	if err := view.Serve(mnt); err != nil {
		logger.Error().Err(err).Str("mountpoint", mnt).Msg("Failed to mount filesystem")
		return err
	}
	logger.Info().Str("mountpoint", mnt).Msg("Filesystem mounted successfully")

	var serveErr error
	if mountHTTP {
		serveErr = server.New(a.svc, a.events).Run(ctx, cfg.Addr())
	} else {
		<-ctx.Done()
	}
	logger.Info().Msg("Unmounting filesystem")

	if err := view.Unmount(); err != nil {
		logger.Error().Err(err).Msg("Failed to unmount filesystem")
		return err
	}
	view.Wait()
	logger.Info().Msg("Filesystem unmounted successfully")
	return serveErr
}
