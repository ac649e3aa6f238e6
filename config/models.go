package config

import (
	"github.com/cachectl/cachectl/resource"
)

// A File is the decoded contents of a configuration, after merging all files.
type File struct {
	Caches []*Cache `hcl:"cache,block"`
}

// A Cache declares the desired state of a single cache.
type Cache struct {
	Name          string `hcl:"name,label"`
	ResourceGroup string `hcl:"resource_group"`
	Location      string `hcl:"location"`

	// State is the desired existence, present or absent. Empty means present.
	State string `hcl:"state,optional"`

	Tags               map[string]string `hcl:"tags,optional"`
	SKU                *SKU              `hcl:"sku,block"`
	EnableNonSSLPort   bool              `hcl:"enable_non_ssl_port,optional"`
	ShardCount         int               `hcl:"shard_count,optional"`
	SubnetID           string            `hcl:"subnet_id,optional"`
	StaticIP           string            `hcl:"static_ip,optional"`
	RedisConfiguration map[string]string `hcl:"redis_configuration,optional"`
}

// SKU sets the pricing tier of a cache.
type SKU struct {
	Name     string `hcl:"name"`
	Family   string `hcl:"family"`
	Capacity int    `hcl:"capacity"`
}

// Existence returns the desired existence declared by the block.
func (c *Cache) Existence() (resource.Existence, error) {
	return resource.ParseExistence(c.State)
}

// Spec converts the block to a cache spec. The spec is not validated; callers
// validate before use.
func (c *Cache) Spec() *resource.CacheSpec {
	spec := &resource.CacheSpec{
		Name:               c.Name,
		ResourceGroup:      c.ResourceGroup,
		Location:           c.Location,
		Tags:               c.Tags,
		EnableNonSSLPort:   c.EnableNonSSLPort,
		ShardCount:         c.ShardCount,
		SubnetID:           c.SubnetID,
		StaticIP:           c.StaticIP,
		RedisConfiguration: c.RedisConfiguration,
	}
	if c.SKU != nil {
		spec.SKU = resource.SKU{
			Name:     c.SKU.Name,
			Family:   c.SKU.Family,
			Capacity: c.SKU.Capacity,
		}
	}
	return spec
}
