package azure

import (
	"github.com/Azure/azure-sdk-for-go/services/redis/mgmt/2018-03-01/redis"
	"github.com/Azure/go-autorest/autorest/to"
	"github.com/cachectl/cachectl/resource"
)

// createParameters maps a spec to the management API's create request. Every
// mutable field is set; the create call replaces the remote configuration
// wholesale, so leaving a field out would reset it on an existing cache.
func createParameters(spec *resource.CacheSpec) redis.CreateParameters {
	params := redis.CreateParameters{
		Location: to.StringPtr(spec.Location),
		Tags:     ptrMap(spec.Tags),
		CreateProperties: &redis.CreateProperties{
			Sku: &redis.Sku{
				Name:     redis.SkuName(spec.SKU.Name),
				Family:   redis.SkuFamily(spec.SKU.Family),
				Capacity: to.Int32Ptr(int32(spec.SKU.Capacity)),
			},
			EnableNonSslPort:   to.BoolPtr(spec.EnableNonSSLPort),
			RedisConfiguration: ptrMap(spec.RedisConfiguration),
		},
	}
	if spec.ShardCount > 0 {
		params.ShardCount = to.Int32Ptr(int32(spec.ShardCount))
	}
	if spec.SubnetID != "" {
		params.SubnetID = to.StringPtr(spec.SubnetID)
	}
	if spec.StaticIP != "" {
		params.StaticIP = to.StringPtr(spec.StaticIP)
	}
	return params
}

// newSnapshot maps a management API resource to a snapshot. Responses with no
// properties block (some intermediate operation results) yield a snapshot
// with an empty provisioning state, which counts as not provisioned.
func newSnapshot(res redis.ResourceType) *resource.RemoteCache {
	snap := &resource.RemoteCache{
		ID:       deref(res.ID),
		Name:     deref(res.Name),
		Location: deref(res.Location),
		Tags:     valMap(res.Tags),
	}
	if res.Properties == nil {
		return snap
	}
	p := res.Properties
	snap.ProvisioningState = string(p.ProvisioningState)
	snap.HostName = deref(p.HostName)
	snap.RedisVersion = deref(p.RedisVersion)
	if p.Port != nil {
		snap.Port = int(*p.Port)
	}
	if p.SslPort != nil {
		snap.SSLPort = int(*p.SslPort)
	}
	if p.Sku != nil {
		snap.SKU = resource.SKU{
			Name:   string(p.Sku.Name),
			Family: string(p.Sku.Family),
		}
		if p.Sku.Capacity != nil {
			snap.SKU.Capacity = int(*p.Sku.Capacity)
		}
	}
	if p.EnableNonSslPort != nil {
		snap.EnableNonSSLPort = *p.EnableNonSslPort
	}
	if p.ShardCount != nil {
		snap.ShardCount = int(*p.ShardCount)
	}
	snap.SubnetID = deref(p.SubnetID)
	snap.StaticIP = deref(p.StaticIP)
	snap.RedisConfiguration = valMap(p.RedisConfiguration)
	return snap
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptrMap(m map[string]string) map[string]*string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]*string, len(m))
	for k, v := range m {
		out[k] = to.StringPtr(v)
	}
	return out
}

func valMap(m map[string]*string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = deref(v)
	}
	return out
}
