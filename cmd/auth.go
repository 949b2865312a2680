package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/brettbedarf/mirrorfs/adapters"
	"github.com/brettbedarf/mirrorfs/internal/util"
)

var authCode string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize Google Drive access and cache the token",
	Long: `Prints the Google consent URL, reads the authorization code (from --code or
stdin) and stores the resulting token at the configured token path.`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

func init() {
	authCmd.Flags().StringVar(&authCode, "code", "", "Authorization code; prompted for when empty")
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, _ []string) error {
	disk := afero.NewOsFs()
	oauthCfg, err := adapters.DriveOAuthConfig(cfg, disk)
	if err != nil {
		return err
	}

	code := authCode
	if code == "" {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Open this URL in a browser and authorize access:\n\n%s\n\nAuthorization code: ",
			adapters.AuthCodeURL(oauthCfg, "mirrorfs"))
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read authorization code: %w", err)
		}
		code = strings.TrimSpace(line)
	}
	if code == "" {
		return fmt.Errorf("empty authorization code")
	}

	if _, err := adapters.ExchangeAndSave(cmd.Context(), oauthCfg, code, disk, cfg.DriveTokenPath); err != nil {
		return err
	}
	logger := util.GetLogger("main")
	logger.Info().Str("token", cfg.DriveTokenPath).Msg("Saved drive token")
	return nil
}
