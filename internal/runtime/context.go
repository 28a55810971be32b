package runtime

import (
	"github.com/psomani16k/gittwo/internal/config"
	"github.com/psomani16k/gittwo/internal/git"
	"github.com/psomani16k/gittwo/internal/output"
)

// Context provides access to the repository handle, user configuration
// and output for commands
type Context struct {
	Repo   *git.Repository
	Config *config.Config
	Splog  *output.Splog
}

// NewContext creates a new context around an opened repository
func NewContext(repo *git.Repository, cfg *config.Config) *Context {
	if cfg == nil {
		cfg = &config.Config{}
	}

	splog := output.NewSplog()
	if cfg.Log.File != "" {
		if s, err := output.NewSplogWithConfig(cfg.Log.File); err == nil {
			splog = s
		}
	}

	return &Context{
		Repo:   repo,
		Config: cfg,
		Splog:  splog,
	}
}
