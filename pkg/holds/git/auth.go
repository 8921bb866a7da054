package git

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"helpdesk-hq/custodian/pkg/config"
)

// AuthProvider supplies git transport credentials.
type AuthProvider interface {
	// GetAuth returns the transport authentication method.
	GetAuth() (transport.AuthMethod, error)

	// Type names the auth mechanism for logging.
	Type() string
}

// TokenAuth authenticates over HTTPS with a personal access token
// (GitHub, GitLab, Bitbucket).
type TokenAuth struct {
	token string
}

// NewTokenAuth creates a token auth provider. The token needs repository
// read permission only.
func NewTokenAuth(token string) *TokenAuth {
	return &TokenAuth{token: token}
}

// GetAuth returns HTTP basic auth with the token as password. The
// username is ignored by token-auth hosts.
func (a *TokenAuth) GetAuth() (transport.AuthMethod, error) {
	if a.token == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}
	return &http.BasicAuth{
		Username: "git",
		Password: a.token,
	}, nil
}

// Type returns "token".
func (a *TokenAuth) Type() string {
	return "token"
}

// SSHAuth authenticates with an SSH private key, optionally encrypted.
type SSHAuth struct {
	keyPath    string
	passphrase string
}

// NewSSHAuth creates an SSH key auth provider. passphrase is empty for
// unencrypted keys.
func NewSSHAuth(keyPath, passphrase string) *SSHAuth {
	return &SSHAuth{keyPath: keyPath, passphrase: passphrase}
}

// GetAuth loads the key. The key file must exist and not be readable by
// group or others.
func (a *SSHAuth) GetAuth() (transport.AuthMethod, error) {
	if a.keyPath == "" {
		return nil, fmt.Errorf("ssh key path cannot be empty")
	}

	info, err := os.Stat(a.keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access SSH key file: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		return nil, fmt.Errorf("SSH key file permissions too open (%o), should be 0600", mode)
	}

	auth, err := ssh.NewPublicKeysFromFile("git", a.keyPath, a.passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key: %w", err)
	}
	return auth, nil
}

// Type returns "ssh".
func (a *SSHAuth) Type() string {
	return "ssh"
}

// NoAuth is for public repositories.
type NoAuth struct{}

// NewNoAuth creates a provider that sends no credentials.
func NewNoAuth() *NoAuth {
	return &NoAuth{}
}

// GetAuth returns nil, which go-git treats as anonymous access.
func (a *NoAuth) GetAuth() (transport.AuthMethod, error) {
	return nil, nil
}

// Type returns "none".
func (a *NoAuth) Type() string {
	return "none"
}

// NewAuthProvider builds the provider selected by the configuration.
// Supported types: "token", "ssh", "none" (the default).
func NewAuthProvider(cfg *config.GitAuthConfig) (AuthProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("auth config cannot be nil")
	}

	switch cfg.Type {
	case "token":
		if cfg.Token == "" {
			return nil, fmt.Errorf("token auth requires non-empty token")
		}
		return NewTokenAuth(cfg.Token), nil

	case "ssh":
		if cfg.SSHKeyPath == "" {
			return nil, fmt.Errorf("ssh auth requires ssh_key_path")
		}
		return NewSSHAuth(cfg.SSHKeyPath, cfg.SSHKeyPassphrase), nil

	case "none", "":
		return NewNoAuth(), nil

	default:
		return nil, fmt.Errorf("unknown auth type: %s", cfg.Type)
	}
}
