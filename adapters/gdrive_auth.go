package adapters

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/brettbedarf/mirrorfs/config"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// OOB-style redirect used by installed apps that paste the code back by hand
const driveRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// DriveOAuthConfig builds the OAuth client config. An explicit client id and
// secret take precedence over the credentials file.
func DriveOAuthConfig(cfg *config.Config, disk afero.Fs) (*oauth2.Config, error) {
	if cfg.DriveClientID != "" && cfg.DriveClientSecret != "" {
		return &oauth2.Config{
			ClientID:     cfg.DriveClientID,
			ClientSecret: cfg.DriveClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  driveRedirectURL,
			Scopes:       []string{drive.DriveFileScope},
		}, nil
	}

	data, err := afero.ReadFile(disk, cfg.DriveCredentialsPath)
	if err != nil {
		return nil, errors.Wrapf(err, "read drive credentials %s", cfg.DriveCredentialsPath)
	}
	oauthCfg, err := google.ConfigFromJSON(data, drive.DriveFileScope)
	if err != nil {
		return nil, errors.Wrap(err, "parse drive credentials")
	}
	return oauthCfg, nil
}

// AuthCodeURL is the consent page the user visits to obtain an auth code
func AuthCodeURL(oauthCfg *oauth2.Config, state string) string {
	return oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeAndSave trades an auth code for a token and caches it at path
func ExchangeAndSave(ctx context.Context, oauthCfg *oauth2.Config, code string, disk afero.Fs, path string) (*oauth2.Token, error) {
	tok, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "exchange auth code")
	}
	if err := SaveToken(disk, path, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// LoadToken reads a cached OAuth token
func LoadToken(disk afero.Fs, path string) (*oauth2.Token, error) {
	data, err := afero.ReadFile(disk, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read token %s", path)
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, errors.Wrapf(err, "decode token %s", path)
	}
	return tok, nil
}

// SaveToken writes tok to path readable by the owner only
func SaveToken(disk afero.Fs, path string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return errors.Wrap(err, "encode token")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := disk.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	if err := afero.WriteFile(disk, path, data, os.FileMode(0o600)); err != nil {
		return errors.Wrapf(err, "write token %s", path)
	}
	return nil
}
