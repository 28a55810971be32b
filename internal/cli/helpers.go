package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/psomani16k/gittwo/internal/config"
	"github.com/psomani16k/gittwo/internal/git"
	"github.com/psomani16k/gittwo/internal/output"
	"github.com/psomani16k/gittwo/internal/runtime"
)

// credentialFlags are the authentication flags shared by the network
// commands (clone, push, fetch, pull)
type credentialFlags struct {
	username string
	password string
	token    string
}

// addCredentialFlags registers the shared authentication flags on a command
func addCredentialFlags(cmd *cobra.Command, flags *credentialFlags) {
	cmd.Flags().StringVar(&flags.username, "username", "", "HTTPS username offered to the remote")
	cmd.Flags().StringVar(&flags.password, "password", "", "HTTPS password offered to the remote")
	cmd.Flags().StringVar(&flags.token, "token", "", "HTTPS bearer token offered to the remote")
}

// loadConfig reads the user configuration, degrading to the zero config
// on error so commands keep working without one
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		return &config.Config{}
	}
	return cfg
}

// openRepository opens the repository at the -C directory and wraps it in
// a runtime context
func openRepository() (*runtime.Context, error) {
	repo, err := git.Open(workDir)
	if err != nil {
		return nil, err
	}
	ctx := runtime.NewContext(repo, loadConfig())
	ctx.Splog.SetQuiet(quietMode)
	return ctx, nil
}

// newSplog builds a console logger honoring the persistent -q flag, for
// commands that run without an opened repository
func newSplog() *output.Splog {
	splog := output.NewSplog()
	splog.SetQuiet(quietMode)
	return splog
}

// progressWriter selects the sink for side-band progress output from the
// remote; quiet runs drop it
func progressWriter(splog *output.Splog) io.Writer {
	if splog.IsQuiet() {
		return nil
	}
	return os.Stderr
}

// credentialProvider builds the credential chain for a network command:
// explicit flags first, then the config file, then an interactive prompt.
func credentialProvider(flags credentialFlags, cfg *config.Config) git.CredentialProvider {
	var providers []git.CredentialProvider

	if flags.token != "" {
		providers = append(providers, &git.TokenCredentials{Token: flags.token})
	}
	if flags.username != "" {
		providers = append(providers, &git.UserPassCredentials{
			Username: flags.username,
			Password: flags.password,
		})
	}

	if cfg != nil {
		if cfg.Auth.Token != "" {
			providers = append(providers, &git.TokenCredentials{Token: cfg.Auth.Token})
		}
		if cfg.Auth.Username != "" {
			providers = append(providers, &git.UserPassCredentials{
				Username: cfg.Auth.Username,
				Password: cfg.Auth.Password,
			})
		}
	}

	providers = append(providers, &git.TerminalCredentials{})

	return git.NewChainCredentials(providers...)
}
