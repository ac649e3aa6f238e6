// Package azure implements the cache client against the Azure Redis
// management API.
//
// The management API is asynchronous: create and delete return an operation
// that is waited on before the call is considered done. That wait is separate
// from the provisioning-state poll the reconciler performs afterwards; a
// completed create operation does not mean the cache is provisioned.
package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/services/redis/mgmt/2018-03-01/redis"
	"github.com/Azure/go-autorest/autorest"
	"github.com/Azure/go-autorest/autorest/azure/auth"
	"github.com/cachectl/cachectl/resource"
	"github.com/cachectl/cachectl/resource/reconciler"
	"github.com/pkg/errors"
)

// api is the subset of the management API the client uses. The operation
// waits are folded in so the client deals in settled results only.
type api interface {
	Get(ctx context.Context, resourceGroup, name string) (redis.ResourceType, error)
	CreateAndWait(ctx context.Context, resourceGroup, name string, params redis.CreateParameters) (redis.ResourceType, error)
	DeleteAndWait(ctx context.Context, resourceGroup, name string) error
	ListKeys(ctx context.Context, resourceGroup, name string) (redis.AccessKeys, error)
}

// A CacheClient performs cache operations against the Azure Redis management
// API. It implements reconciler.Client.
type CacheClient struct {
	api api

	includeKeys bool
}

// An Option configures a CacheClient.
type Option func(*CacheClient)

// WithAccessKeys makes Get fetch the cache's access keys into the snapshot
// once the cache reports itself provisioned. The management GET does not
// return keys, so this costs an extra call per provisioned snapshot.
func WithAccessKeys() Option {
	return func(c *CacheClient) { c.includeKeys = true }
}

// New creates a cache client for the given subscription using the given
// authorizer.
func New(subscriptionID string, authorizer autorest.Authorizer, opts ...Option) *CacheClient {
	mgmt := redis.NewClient(subscriptionID)
	mgmt.Authorizer = authorizer
	c := &CacheClient{api: &managementAPI{client: mgmt}}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewFromEnvironment creates a cache client with credentials resolved from
// the environment (client credentials, certificate, username/password or
// managed identity, in that order).
func NewFromEnvironment(subscriptionID string, opts ...Option) (*CacheClient, error) {
	authorizer, err := auth.NewAuthorizerFromEnvironment()
	if err != nil {
		return nil, errors.Wrap(err, "resolve credentials")
	}
	return New(subscriptionID, authorizer, opts...), nil
}

// Get returns the current state of the cache. A cache that does not exist
// reports found = false with a nil error.
func (c *CacheClient) Get(ctx context.Context, ref reconciler.Ref) (reconciler.Remote, bool, error) {
	res, err := c.api.Get(ctx, ref.ResourceGroup, ref.Name)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "get cache")
	}
	snap := newSnapshot(res)
	if c.includeKeys && snap.Provisioned() {
		keys, err := c.api.ListKeys(ctx, ref.ResourceGroup, ref.Name)
		if err != nil {
			return nil, false, errors.Wrap(err, "list access keys")
		}
		snap.AccessKeys = &resource.AccessKeys{
			PrimaryKey:   deref(keys.PrimaryKey),
			SecondaryKey: deref(keys.SecondaryKey),
		}
	}
	return snap, true, nil
}

// Create creates the cache, or replaces its configuration if it already
// exists. The spec must be a *resource.CacheSpec carrying every mutable
// field; the management API does not merge partial updates.
func (c *CacheClient) Create(ctx context.Context, ref reconciler.Ref, spec interface{}) (reconciler.Remote, error) {
	cs, ok := spec.(*resource.CacheSpec)
	if !ok {
		return nil, errors.Errorf("unsupported spec type %T", spec)
	}
	res, err := c.api.CreateAndWait(ctx, ref.ResourceGroup, ref.Name, createParameters(cs))
	if err != nil {
		return nil, errors.Wrap(err, "create cache")
	}
	return newSnapshot(res), nil
}

// Delete deletes the cache and waits for the delete operation to settle.
func (c *CacheClient) Delete(ctx context.Context, ref reconciler.Ref) error {
	return errors.Wrap(c.api.DeleteAndWait(ctx, ref.ResourceGroup, ref.Name), "delete cache")
}

// managementAPI is the live implementation of api on top of the SDK client.
type managementAPI struct {
	client redis.Client
}

func (m *managementAPI) Get(ctx context.Context, resourceGroup, name string) (redis.ResourceType, error) {
	return m.client.Get(ctx, resourceGroup, name)
}

func (m *managementAPI) CreateAndWait(ctx context.Context, resourceGroup, name string, params redis.CreateParameters) (redis.ResourceType, error) {
	future, err := m.client.Create(ctx, resourceGroup, name, params)
	if err != nil {
		return redis.ResourceType{}, err
	}
	if err := future.WaitForCompletionRef(ctx, m.client.Client); err != nil {
		return redis.ResourceType{}, err
	}
	return future.Result(m.client)
}

func (m *managementAPI) DeleteAndWait(ctx context.Context, resourceGroup, name string) error {
	future, err := m.client.Delete(ctx, resourceGroup, name)
	if err != nil {
		return err
	}
	return future.WaitForCompletionRef(ctx, m.client.Client)
}

func (m *managementAPI) ListKeys(ctx context.Context, resourceGroup, name string) (redis.AccessKeys, error) {
	return m.client.ListKeys(ctx, resourceGroup, name)
}
