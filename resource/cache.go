// Package resource defines the model for a managed Redis cache: the desired
// configuration declared by the user and the read-only snapshot of the state
// reported by the cloud provider.
package resource

// StateSucceeded is the terminal provisioning state reported by the provider
// once a cache is fully provisioned.
const StateSucceeded = "Succeeded"

// A CacheSpec is the full desired configuration for a managed Redis cache.
//
// Every mutable field must be set before the spec is sent to the provider;
// the management API replaces the resource configuration rather than merging
// partial updates.
type CacheSpec struct {
	// Name of the cache. Forms the DNS hostname for the cache and must be
	// unique within the provider.
	Name string `validate:"required,max=63"`

	// ResourceGroup the cache is created in. The group must already exist.
	ResourceGroup string `validate:"required"`

	// Location is the provider region, for example westus. Cannot be changed
	// after the cache is created.
	Location string `validate:"required"`

	// Tags associated with the cache.
	Tags map[string]string

	// SKU selects the pricing tier and size of the cache.
	SKU SKU

	// RedisConfiguration contains Redis settings such as maxmemory-policy.
	// Keys must be settings accepted by the provider.
	RedisConfiguration map[string]string

	// EnableNonSSLPort specifies whether the plaintext Redis server port
	// (6379) is enabled.
	EnableNonSSLPort bool

	// ShardCount is the number of shards on a Premium cluster cache.
	ShardCount int `validate:"gte=0,lte=10"`

	// SubnetID is the full resource ID of a subnet in a virtual network to
	// deploy the cache in. Premium only.
	SubnetID string

	// StaticIP assigns a static IP address to the cache. Required when the
	// cache is deployed inside an existing virtual network.
	StaticIP string `validate:"omitempty,ip"`
}

// A SKU identifies the pricing tier, family and size of a cache.
//
// Family C covers Basic and Standard tiers, family P covers Premium.
type SKU struct {
	Name     string `json:"name" validate:"required,oneof=Basic Standard Premium"`
	Family   string `json:"family" validate:"required,oneof=C P"`
	Capacity int    `json:"capacity" validate:"gte=0,lte=6"`
}

// A RemoteCache is a snapshot of a cache as reported by the provider.
//
// The snapshot is transient and read-only; it is owned by the provider and
// only valid for the invocation that fetched it.
type RemoteCache struct {
	ID                 string
	Name               string
	Location           string
	Tags               map[string]string
	ProvisioningState  string
	HostName           string
	Port               int
	SSLPort            int
	RedisVersion       string
	SKU                SKU
	EnableNonSSLPort   bool
	ShardCount         int
	SubnetID           string
	StaticIP           string
	RedisConfiguration map[string]string

	// AccessKeys is only set when the client was configured to fetch keys
	// and the cache has finished provisioning.
	AccessKeys *AccessKeys
}

// Provisioned reports whether the cache has reached its terminal
// provisioning state.
func (c *RemoteCache) Provisioned() bool {
	return c.ProvisioningState == StateSucceeded
}

// AccessKeys are the authentication keys for a cache.
type AccessKeys struct {
	PrimaryKey   string `json:"primary_key"`
	SecondaryKey string `json:"secondary_key"`
}
