package git

import (
	goerrors "errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/mattn/go-isatty"
)

// ErrCredentialsExhausted is returned by a CredentialProvider that has no
// further credentials to offer for a remote.
var ErrCredentialsExhausted = goerrors.New("no more credentials available")

// CredentialProvider supplies authentication material for a remote URL on
// demand. Resolve is called with an increasing attempt number (starting
// at 1) each time the remote rejects the previously offered credential;
// returning ErrCredentialsExhausted ends the negotiation.
//
// Credentials are per-attempt and never persisted. The interface is the
// extension point for additional transports (SSH keys would be a second
// implementation; negotiation logic stays untouched).
type CredentialProvider interface {
	Resolve(url string, attempt int) (transport.AuthMethod, error)

	// Describe names the provider kind for debug output; it must never
	// include secret material
	Describe() string
}

// UserPassCredentials offers a fixed HTTPS username/password pair once
type UserPassCredentials struct {
	Username string
	Password string
}

// Resolve implements CredentialProvider
func (c *UserPassCredentials) Resolve(_ string, attempt int) (transport.AuthMethod, error) {
	if attempt > 1 {
		// The pair was already rejected; offering it again cannot succeed
		return nil, ErrCredentialsExhausted
	}
	return &githttp.BasicAuth{Username: c.Username, Password: c.Password}, nil
}

// Describe implements CredentialProvider
func (c *UserPassCredentials) Describe() string {
	return fmt.Sprintf("https username/password (user %s)", c.Username)
}

// TokenCredentials offers a fixed bearer token once
type TokenCredentials struct {
	Token string
}

// Resolve implements CredentialProvider
func (c *TokenCredentials) Resolve(_ string, attempt int) (transport.AuthMethod, error) {
	if attempt > 1 {
		return nil, ErrCredentialsExhausted
	}
	return &githttp.TokenAuth{Token: c.Token}, nil
}

// Describe implements CredentialProvider
func (c *TokenCredentials) Describe() string {
	return "https token"
}

// TerminalCredentials interactively prompts for a username and password.
// It refuses to prompt when stdin is not a terminal.
type TerminalCredentials struct{}

// Resolve implements CredentialProvider
func (c *TerminalCredentials) Resolve(url string, _ int) (transport.AuthMethod, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return nil, ErrCredentialsExhausted
	}

	var username string
	if err := survey.AskOne(&survey.Input{Message: fmt.Sprintf("Username for %s:", url)}, &username); err != nil {
		return nil, ErrCredentialsExhausted
	}

	var password string
	if err := survey.AskOne(&survey.Password{Message: fmt.Sprintf("Password for %s:", url)}, &password); err != nil {
		return nil, ErrCredentialsExhausted
	}

	return &githttp.BasicAuth{Username: username, Password: password}, nil
}

// Describe implements CredentialProvider
func (c *TerminalCredentials) Describe() string {
	return "interactive terminal prompt"
}

// ChainCredentials tries each provider in order, moving to the next when
// one is exhausted. Attempt numbers restart at 1 for each provider.
type ChainCredentials struct {
	Providers []CredentialProvider

	index  int
	offset int
}

// NewChainCredentials creates a chain over the given providers
func NewChainCredentials(providers ...CredentialProvider) *ChainCredentials {
	return &ChainCredentials{Providers: providers}
}

// Resolve implements CredentialProvider
func (c *ChainCredentials) Resolve(url string, attempt int) (transport.AuthMethod, error) {
	for c.index < len(c.Providers) {
		auth, err := c.Providers[c.index].Resolve(url, attempt-c.offset)
		if err == nil {
			return auth, nil
		}
		if !goerrors.Is(err, ErrCredentialsExhausted) {
			return nil, err
		}
		c.index++
		c.offset = attempt - 1
	}
	return nil, ErrCredentialsExhausted
}

// Describe implements CredentialProvider
func (c *ChainCredentials) Describe() string {
	if c.index < len(c.Providers) {
		return c.Providers[c.index].Describe()
	}
	return "exhausted credential chain"
}
