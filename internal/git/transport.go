package git

import (
	"context"
	goerrors "errors"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/google/uuid"

	"github.com/psomani16k/gittwo/internal/errors"
	"github.com/psomani16k/gittwo/internal/output"
)

// TransportStage identifies where in a clone/push/fetch exchange the
// negotiation currently is. Stages are entered in order and never
// re-entered; a failure is reported with the stage it originated from.
type TransportStage int

const (
	StageIdle TransportStage = iota
	StageConnecting
	StageNegotiating
	StageTransferring
	StageUpdatingRefs
	StageDone
	StageFailed
)

func (s TransportStage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageConnecting:
		return "connecting"
	case StageNegotiating:
		return "negotiating"
	case StageTransferring:
		return "transferring"
	case StageUpdatingRefs:
		return "updating-refs"
	case StageDone:
		return "done"
	default:
		return "failed"
	}
}

// maxAuthAttempts bounds how many rejected credentials the negotiator
// will accept before reporting ErrAuthenticationFailed.
const maxAuthAttempts = 3

// negotiation tracks one transport exchange. Each exchange gets its own
// session id for correlation in debug logs.
type negotiation struct {
	op      string
	session string
	stage   TransportStage
	splog   *output.Splog
}

func newNegotiation(op string, splog *output.Splog) *negotiation {
	if splog == nil {
		splog = output.NewSplog()
		splog.SetQuiet(true)
	}
	return &negotiation{
		op:      op,
		session: uuid.NewString(),
		stage:   StageIdle,
		splog:   splog,
	}
}

// enter advances the state machine to the given stage
func (n *negotiation) enter(stage TransportStage) {
	n.stage = stage
	n.splog.Debug("%s [%s]: %s", n.op, n.session, stage)
}

// fail marks the exchange failed and wraps err with the current stage
func (n *negotiation) fail(err error) error {
	stage := n.stage
	n.stage = StageFailed
	n.splog.Debug("%s [%s]: failed while %s: %v", n.op, n.session, stage, err)
	return errors.NewTransportError(n.op, stage.String(), err)
}

// done marks the exchange complete
func (n *negotiation) done() {
	n.enter(StageDone)
}

// isAuthRejection reports whether the remote rejected the offered
// credential (as opposed to any other transport failure)
func isAuthRejection(err error) bool {
	return goerrors.Is(err, transport.ErrAuthenticationRequired) ||
		goerrors.Is(err, transport.ErrAuthorizationFailed)
}

// withCredentials runs fn with the initial credential first (nil means
// an anonymous attempt) and, once the remote demands authentication,
// re-invokes it with credentials resolved from the provider until one is
// accepted. A remote may accept one stage of an exchange anonymously and
// demand authentication for the next, so every remote-facing call runs
// under this loop with whatever credential the previous stage settled
// on. A nil or exhausted provider turns a demand for authentication into
// ErrAuthenticationFailed, as does the remote rejecting maxAuthAttempts
// credentials in a row.
func withCredentials(ctx context.Context, url string, provider CredentialProvider, initial transport.AuthMethod, fn func(transport.AuthMethod) error) error {
	err := fn(initial)
	if err == nil || !isAuthRejection(err) {
		return err
	}
	if provider == nil {
		return errors.ErrAuthenticationFailed
	}

	for attempt := 1; attempt <= maxAuthAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		auth, err := provider.Resolve(url, attempt)
		if err != nil {
			if goerrors.Is(err, ErrCredentialsExhausted) {
				return errors.ErrAuthenticationFailed
			}
			return err
		}

		err = fn(auth)
		if err == nil {
			return nil
		}
		if !isAuthRejection(err) {
			return err
		}
	}

	return errors.ErrAuthenticationFailed
}
