package reconciler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cachectl/cachectl/resource"
	"github.com/cachectl/cachectl/resource/reconciler"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"
)

// fakeClient is a recording client. Before the first Create call, Get serves
// the initial remote state. After Create, Get is served by the poll function,
// called with a 1-based poll attempt number.
type fakeClient struct {
	existing   *resource.RemoteCache
	getErr     error
	createErr  error
	deleteErr  error
	createSnap *resource.RemoteCache
	poll       func(n int) (*resource.RemoteCache, bool, error)

	gets, creates, deletes, polls int
	gotSpec                       interface{}
}

func (c *fakeClient) Get(ctx context.Context, ref reconciler.Ref) (reconciler.Remote, bool, error) {
	c.gets++
	if c.creates > 0 {
		c.polls++
		snap, found, err := c.poll(c.polls)
		if err != nil {
			return nil, false, err
		}
		if !found {
			return nil, false, nil
		}
		return snap, true, nil
	}
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	if c.existing == nil {
		return nil, false, nil
	}
	return c.existing, true, nil
}

func (c *fakeClient) Create(ctx context.Context, ref reconciler.Ref, spec interface{}) (reconciler.Remote, error) {
	c.creates++
	c.gotSpec = spec
	if c.createErr != nil {
		return nil, c.createErr
	}
	return c.createSnap, nil
}

func (c *fakeClient) Delete(ctx context.Context, ref reconciler.Ref) error {
	c.deletes++
	return c.deleteErr
}

func snap(state string) *resource.RemoteCache {
	return &resource.RemoteCache{
		ID:                "/subscriptions/sub/resourceGroups/rg1/providers/Microsoft.Cache/Redis/cache1",
		Name:              "cache1",
		Location:          "westus",
		ProvisioningState: state,
		HostName:          "cache1.redis.cache.windows.net",
		Port:              6379,
		SSLPort:           6380,
	}
}

// pollStates serves provisioning states per poll attempt, repeating the last
// state once the list is exhausted.
func pollStates(states ...string) func(n int) (*resource.RemoteCache, bool, error) {
	return func(n int) (*resource.RemoteCache, bool, error) {
		if n > len(states) {
			n = len(states)
		}
		return snap(states[n-1]), true, nil
	}
}

// testBackoff polls without sleeping, with the production attempt cap.
func testBackoff() backoff.BackOff {
	return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(reconciler.DefaultPollAttempts-1))
}

func TestReconciler_Reconcile(t *testing.T) {
	ref := reconciler.Ref{ResourceGroup: "rg1", Name: "cache1"}
	spec := &resource.CacheSpec{
		Name:          "cache1",
		ResourceGroup: "rg1",
		Location:      "westus",
		SKU:           resource.SKU{Name: "Premium", Family: "P", Capacity: 1},
		ShardCount:    2,
	}

	tests := []struct {
		name    string
		client  *fakeClient
		desired reconciler.Desired
		dryRun  bool

		want        *reconciler.Result
		wantCreates int
		wantDeletes int
		wantPolls   int
	}{
		{
			name:    "AbsentNotFound",
			client:  &fakeClient{},
			desired: reconciler.Desired{Ref: ref, Existence: resource.Absent},
			want:    &reconciler.Result{Changed: false, Existence: resource.Absent, Ref: ref},
		},
		{
			name:    "AbsentFound",
			client:  &fakeClient{existing: snap(resource.StateSucceeded)},
			desired: reconciler.Desired{Ref: ref, Existence: resource.Absent},
			want:    &reconciler.Result{Changed: true, Existence: resource.Absent, Ref: ref},

			wantDeletes: 1,
		},
		{
			name: "PresentNotFound",
			client: &fakeClient{
				createSnap: snap("Creating"),
				poll:       pollStates("Creating", "Creating", resource.StateSucceeded),
			},
			desired: reconciler.Desired{Ref: ref, Existence: resource.Present, Spec: spec},
			want: &reconciler.Result{
				Changed:   true,
				Existence: resource.Present,
				Ref:       ref,
				Remote:    snap(resource.StateSucceeded),
			},

			wantCreates: 1,
			wantPolls:   3,
		},
		{
			name: "PresentFound",
			client: &fakeClient{
				existing:   snap(resource.StateSucceeded),
				createSnap: snap("Updating"),
				poll:       pollStates(resource.StateSucceeded),
			},
			desired: reconciler.Desired{Ref: ref, Existence: resource.Present, Spec: spec},
			want: &reconciler.Result{
				Changed:   true,
				Existence: resource.Present,
				Ref:       ref,
				Remote:    snap(resource.StateSucceeded),
			},

			wantCreates: 1,
			wantPolls:   1,
		},
		{
			name: "PresentCreateImmediatelyProvisioned",
			client: &fakeClient{
				createSnap: snap(resource.StateSucceeded),
			},
			desired: reconciler.Desired{Ref: ref, Existence: resource.Present, Spec: spec},
			want: &reconciler.Result{
				Changed:   true,
				Existence: resource.Present,
				Ref:       ref,
				Remote:    snap(resource.StateSucceeded),
			},

			wantCreates: 1,
			wantPolls:   0,
		},
		{
			name: "PresentNotVisibleRightAfterCreate",
			client: &fakeClient{
				createSnap: snap("Creating"),
				poll: func(n int) (*resource.RemoteCache, bool, error) {
					if n == 1 {
						return nil, false, nil
					}
					return snap(resource.StateSucceeded), true, nil
				},
			},
			desired: reconciler.Desired{Ref: ref, Existence: resource.Present, Spec: spec},
			want: &reconciler.Result{
				Changed:   true,
				Existence: resource.Present,
				Ref:       ref,
				Remote:    snap(resource.StateSucceeded),
			},

			wantCreates: 1,
			wantPolls:   2,
		},
		{
			name:    "DryRunAbsentFound",
			client:  &fakeClient{existing: snap(resource.StateSucceeded)},
			desired: reconciler.Desired{Ref: ref, Existence: resource.Absent},
			dryRun:  true,
			want:    &reconciler.Result{Changed: true, Existence: resource.Absent, Ref: ref},
		},
		{
			name:    "DryRunAbsentNotFound",
			client:  &fakeClient{},
			desired: reconciler.Desired{Ref: ref, Existence: resource.Absent},
			dryRun:  true,
			want:    &reconciler.Result{Changed: false, Existence: resource.Absent, Ref: ref},
		},
		{
			name:    "DryRunPresentNotFound",
			client:  &fakeClient{},
			desired: reconciler.Desired{Ref: ref, Existence: resource.Present, Spec: spec},
			dryRun:  true,
			want:    &reconciler.Result{Changed: true, Existence: resource.Present, Ref: ref},
		},
		{
			name:    "DryRunPresentFound",
			client:  &fakeClient{existing: snap(resource.StateSucceeded)},
			desired: reconciler.Desired{Ref: ref, Existence: resource.Present, Spec: spec},
			dryRun:  true,
			want:    &reconciler.Result{Changed: true, Existence: resource.Present, Ref: ref},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reco := &reconciler.Reconciler{
				Client:  tt.client,
				DryRun:  tt.dryRun,
				Logger:  zaptest.NewLogger(t),
				Backoff: testBackoff,
			}

			got, err := reco.Reconcile(context.Background(), tt.desired)
			if err != nil {
				t.Fatalf("Reconcile() error = %v", err)
			}

			if diff := cmp.Diff(got, tt.want); diff != "" {
				t.Errorf("Result (-got +want)\n%s", diff)
			}
			if tt.client.creates != tt.wantCreates {
				t.Errorf("creates = %d, want %d", tt.client.creates, tt.wantCreates)
			}
			if tt.client.deletes != tt.wantDeletes {
				t.Errorf("deletes = %d, want %d", tt.client.deletes, tt.wantDeletes)
			}
			if tt.client.polls != tt.wantPolls {
				t.Errorf("polls = %d, want %d", tt.client.polls, tt.wantPolls)
			}
			if tt.wantCreates > 0 && !tt.dryRun {
				if tt.client.gotSpec != tt.desired.Spec {
					t.Errorf("create spec = %v, want %v", tt.client.gotSpec, tt.desired.Spec)
				}
			}
		})
	}
}

func TestReconciler_Reconcile_remoteErrors(t *testing.T) {
	ref := reconciler.Ref{ResourceGroup: "rg1", Name: "cache1"}
	boom := errors.New("connection reset")

	tests := []struct {
		name    string
		client  *fakeClient
		desired reconciler.Desired
		wantOp  string
	}{
		{
			name:    "GetFails",
			client:  &fakeClient{getErr: boom},
			desired: reconciler.Desired{Ref: ref, Existence: resource.Present},
			wantOp:  "get",
		},
		{
			name:    "DeleteFails",
			client:  &fakeClient{existing: snap(resource.StateSucceeded), deleteErr: boom},
			desired: reconciler.Desired{Ref: ref, Existence: resource.Absent},
			wantOp:  "delete",
		},
		{
			name:    "CreateFails",
			client:  &fakeClient{createErr: boom},
			desired: reconciler.Desired{Ref: ref, Existence: resource.Present},
			wantOp:  "create",
		},
		{
			name: "PollFails",
			client: &fakeClient{
				createSnap: snap("Creating"),
				poll: func(n int) (*resource.RemoteCache, bool, error) {
					if n == 3 {
						return nil, false, boom
					}
					return snap("Creating"), true, nil
				},
			},
			desired: reconciler.Desired{Ref: ref, Existence: resource.Present},
			wantOp:  "get",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reco := &reconciler.Reconciler{
				Client:  tt.client,
				Logger:  zaptest.NewLogger(t),
				Backoff: testBackoff,
			}

			res, err := reco.Reconcile(context.Background(), tt.desired)
			if res != nil {
				t.Errorf("Reconcile() result = %v, want nil", res)
			}
			var rce *reconciler.RemoteCallError
			if !errors.As(err, &rce) {
				t.Fatalf("Reconcile() error = %v, want *RemoteCallError", err)
			}
			if rce.Op != tt.wantOp {
				t.Errorf("error op = %q, want %q", rce.Op, tt.wantOp)
			}
			if !errors.Is(err, boom) {
				t.Errorf("error chain does not contain the provider error: %v", err)
			}
		})
	}
}

func TestReconciler_Reconcile_pollCount(t *testing.T) {
	// The wait loop must poll exactly K+1 times when the provider reports
	// the cache provisioning for the first K polls.
	ref := reconciler.Ref{ResourceGroup: "rg1", Name: "cache1"}

	for _, k := range []int{0, 1, 5, 42, 179} {
		client := &fakeClient{
			createSnap: snap("Creating"),
			poll: func(n int) (*resource.RemoteCache, bool, error) {
				if n <= k {
					return snap("Creating"), true, nil
				}
				return snap(resource.StateSucceeded), true, nil
			},
		}
		reco := &reconciler.Reconciler{
			Client:  client,
			Backoff: testBackoff,
		}

		res, err := reco.Reconcile(context.Background(), reconciler.Desired{Ref: ref, Existence: resource.Present})
		if err != nil {
			t.Fatalf("K=%d: Reconcile() error = %v", k, err)
		}
		if client.polls != k+1 {
			t.Errorf("K=%d: polls = %d, want %d", k, client.polls, k+1)
		}
		if res.Remote == nil || !res.Remote.Provisioned() {
			t.Errorf("K=%d: result snapshot not provisioned", k)
		}
	}
}

func TestReconciler_Reconcile_pollTimeout(t *testing.T) {
	ref := reconciler.Ref{ResourceGroup: "rg1", Name: "cache1"}
	client := &fakeClient{
		createSnap: snap("Creating"),
		poll: func(n int) (*resource.RemoteCache, bool, error) {
			return snap("Creating"), true, nil
		},
	}
	reco := &reconciler.Reconciler{
		Client:  client,
		Logger:  zaptest.NewLogger(t),
		Backoff: testBackoff,
	}

	_, err := reco.Reconcile(context.Background(), reconciler.Desired{Ref: ref, Existence: resource.Present})
	var te *reconciler.TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("Reconcile() error = %v, want *TimeoutError", err)
	}
	if te.Attempts != reconciler.DefaultPollAttempts {
		t.Errorf("attempts = %d, want %d", te.Attempts, reconciler.DefaultPollAttempts)
	}
	if client.polls != reconciler.DefaultPollAttempts {
		t.Errorf("polls = %d, want %d", client.polls, reconciler.DefaultPollAttempts)
	}
}
