package reconciler

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/cachectl/cachectl/resource"
	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

// Defaults for the provisioning wait schedule: one poll every 10 seconds,
// giving up after 180 attempts (~30 minutes).
var (
	DefaultPollInterval = 10 * time.Second
	DefaultPollAttempts = 180
)

// A Ref uniquely identifies a resource within the provider.
type Ref struct {
	ResourceGroup string
	Name          string
}

func (r Ref) String() string { return r.ResourceGroup + "/" + r.Name }

// Remote is a snapshot of a resource's state as reported by the provider.
type Remote interface {
	// Provisioned reports whether the resource has reached its terminal
	// provisioning state.
	Provisioned() bool
}

// A Client performs calls against the provider's management API.
//
// Get returns the current remote state. found reports whether the resource
// exists; a false found with a nil error is the expected outcome for a
// resource that does not exist, not a failure.
//
// Create has create-or-update semantics: creating a name that already exists
// replaces its configuration. The spec must carry every mutable field, as the
// provider does not merge partial updates. Create blocks until the provider
// has accepted the operation and returns the snapshot from the operation
// result; the resource may still be provisioning at that point.
type Client interface {
	Get(ctx context.Context, ref Ref) (remote Remote, found bool, err error)
	Create(ctx context.Context, ref Ref, spec interface{}) (Remote, error)
	Delete(ctx context.Context, ref Ref) error
}

// Desired declares the target state for a single resource.
type Desired struct {
	Ref       Ref
	Existence resource.Existence

	// Spec is the full desired configuration, passed through to
	// Client.Create. Unused when Existence is Absent.
	Spec interface{}
}

// A Result describes the outcome of one reconciliation pass.
type Result struct {
	// Changed reports whether a mutating call was issued, or, in dry run,
	// whether one would have been.
	Changed   bool
	Existence resource.Existence
	Ref       Ref

	// Remote is the post-reconciliation snapshot, taken after the
	// provisioning wait. Nil when the resource is absent or when dry run
	// skipped the mutation.
	Remote Remote
}

// A RemoteCallError is returned when a call to the provider fails for any
// reason other than the resource not existing. The reconciler does not retry
// it; the provider's message is preserved in the chain.
type RemoteCallError struct {
	Op  string // get, create or delete
	Ref Ref
	Err error
}

func (e *RemoteCallError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Ref, e.Err) }
func (e *RemoteCallError) Unwrap() error { return e.Err }

// A TimeoutError is returned when the provisioning wait exhausted its attempt
// budget. The remote resource may still finish provisioning after the fact;
// re-invoking later is safe.
type TimeoutError struct {
	Ref      Ref
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s did not finish provisioning after %d attempts", e.Ref, e.Attempts)
}

// A Reconciler converges one resource per invocation.
//
// Invocations are synchronous and do not overlap; the calling goroutine
// blocks for the duration of the pass, including the provisioning wait.
type Reconciler struct {
	Client Client

	// DryRun skips all mutating calls and the provisioning wait. The result
	// reports what would have changed.
	DryRun bool

	// Logger logs reconciliation updates. If not set, logs are discarded.
	Logger *zap.Logger

	// Backoff controls the provisioning wait schedule. If not set, a
	// constant DefaultPollInterval capped at DefaultPollAttempts is used.
	Backoff func() backoff.BackOff
}

// Reconcile converges the resource identified by d.Ref to the desired state.
//
// At most one mutating call is issued. Any provider failure other than not
// found is returned as a *RemoteCallError; exhausting the provisioning wait
// returns a *TimeoutError.
func (r *Reconciler) Reconcile(ctx context.Context, d Desired) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(
		zap.String("id", ksuid.New().String()),
		zap.String("resource_group", d.Ref.ResourceGroup),
		zap.String("name", d.Ref.Name),
	)

	logger.Info("Reconcile", zap.Stringer("desired", d.Existence), zap.Bool("dry_run", r.DryRun))

	_, found, err := r.Client.Get(ctx, d.Ref)
	if err != nil {
		return nil, &RemoteCallError{Op: "get", Ref: d.Ref, Err: err}
	}
	logger.Debug("Fetched current state", zap.Bool("found", found))

	if d.Existence == resource.Absent {
		if !found {
			logger.Info("Done", zap.Bool("changed", false))
			return &Result{Changed: false, Existence: resource.Absent, Ref: d.Ref}, nil
		}
		if r.DryRun {
			logger.Info("Would delete resource")
			return &Result{Changed: true, Existence: resource.Absent, Ref: d.Ref}, nil
		}
		logger.Info("Deleting resource")
		if err := r.Client.Delete(ctx, d.Ref); err != nil {
			return nil, &RemoteCallError{Op: "delete", Ref: d.Ref, Err: err}
		}
		logger.Info("Done", zap.Bool("changed", true))
		return &Result{Changed: true, Existence: resource.Absent, Ref: d.Ref}, nil
	}

	if r.DryRun {
		if found {
			logger.Info("Would update resource")
		} else {
			logger.Info("Would create resource")
		}
		return &Result{Changed: true, Existence: resource.Present, Ref: d.Ref}, nil
	}

	if found {
		logger.Info("Updating resource")
	} else {
		logger.Info("Creating resource")
	}
	remote, err := r.Client.Create(ctx, d.Ref, d.Spec)
	if err != nil {
		return nil, &RemoteCallError{Op: "create", Ref: d.Ref, Err: err}
	}

	if !remote.Provisioned() {
		remote, err = r.waitProvisioned(ctx, d.Ref, logger)
		if err != nil {
			return nil, err
		}
	}

	logger.Info("Done", zap.Bool("changed", true))
	return &Result{Changed: true, Existence: resource.Present, Ref: d.Ref, Remote: remote}, nil
}

// errProvisioning marks a poll attempt that found the resource still
// provisioning. It is retried on the fixed schedule.
var errProvisioning = errors.New("still provisioning")

// waitProvisioned polls the resource until the provider reports it
// provisioned, on the schedule given by the Backoff field.
func (r *Reconciler) waitProvisioned(ctx context.Context, ref Ref, logger *zap.Logger) (Remote, error) {
	algo := r.Backoff
	if algo == nil {
		algo = func() backoff.BackOff {
			return backoff.WithMaxRetries(
				backoff.NewConstantBackOff(DefaultPollInterval),
				uint64(DefaultPollAttempts-1),
			)
		}
	}

	var remote Remote
	attempts := 0
	op := func() error {
		attempts++
		cur, found, err := r.Client.Get(ctx, ref)
		if err != nil {
			return backoff.Permanent(&RemoteCallError{Op: "get", Ref: ref, Err: err})
		}
		if !found {
			// The provider may briefly not return the resource right after
			// create. Keep polling; the attempt cap bounds it.
			logger.Debug("Not yet visible", zap.Int("attempt", attempts))
			return errProvisioning
		}
		remote = cur
		if !cur.Provisioned() {
			logger.Debug("Waiting for provisioning", zap.Int("attempt", attempts))
			return errProvisioning
		}
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(algo(), ctx))
	switch {
	case err == nil:
		logger.Debug("Provisioned", zap.Int("attempts", attempts))
		return remote, nil
	case stderrors.Is(err, errProvisioning):
		return nil, &TimeoutError{Ref: ref, Attempts: attempts}
	default:
		// Transport failure during polling, or context cancellation.
		return nil, err
	}
}
