package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/Checker-Finance/battlenet/internal/apierr"
)

// DefaultSecretsFile is where the secrets file is looked up when no path is configured.
const DefaultSecretsFile = "~/.bnet_secrets.json"

// FileProvider reads credentials from a JSON object with CLIENTID and BLSECRET keys.
//
// A missing file is not an error. A file that exists must carry both keys.
type FileProvider struct {
	fs   afero.Fs
	path string
	home func() (string, error)
}

// NewFileProvider creates a FileProvider on fs. A nil fs uses the OS filesystem,
// a nil home uses os.UserHomeDir for "~" expansion.
func NewFileProvider(fs afero.Fs, path string, home func() (string, error)) *FileProvider {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if path == "" {
		path = DefaultSecretsFile
	}
	if home == nil {
		home = os.UserHomeDir
	}
	return &FileProvider{fs: fs, path: path, home: home}
}

func (p *FileProvider) Name() string { return "file" }

// Path returns the configured path with a leading "~" expanded.
func (p *FileProvider) Path() string {
	return ExpandHome(p.path, p.home)
}

func (p *FileProvider) Lookup(context.Context) (Credentials, error) {
	path := p.Path()

	exists, err := afero.Exists(p.fs, path)
	if err != nil {
		return Credentials{}, &apierr.ConfigurationError{Msg: "stat secrets file " + path, Err: err}
	}
	if !exists {
		return Credentials{}, nil
	}

	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return Credentials{}, &apierr.ConfigurationError{Msg: "read secrets file " + path, Err: err}
	}
	return parseSecretsFile(path, data)
}

// parseSecretsFile requires both keys to be present as strings.
func parseSecretsFile(path string, data []byte) (Credentials, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Credentials{}, &apierr.ConfigurationError{Msg: "invalid secrets file " + path, Err: err}
	}

	var creds Credentials
	for _, key := range []string{EnvClientID, EnvSecret} {
		v, ok := raw[key]
		if !ok {
			return Credentials{}, &apierr.ConfigurationError{Key: key}
		}
		s, ok := v.(string)
		if !ok {
			return Credentials{}, &apierr.ConfigurationError{
				Key: key,
				Msg: fmt.Sprintf("configuration key %s must be a string", key),
			}
		}
		if key == EnvClientID {
			creds.ClientID = s
		} else {
			creds.Secret = s
		}
	}
	return creds, nil
}

// ExpandHome replaces a leading "~" with the directory returned by home.
// If home fails the path is returned unchanged.
func ExpandHome(path string, home func() (string, error)) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	dir, err := home()
	if err != nil || dir == "" {
		return path
	}
	return filepath.Join(dir, strings.TrimPrefix(path, "~"))
}
