// Package report maps reconciliation results to a stable, serializable
// output record.
//
// Field names are identical for present and absent outcomes so callers can
// branch on changed and state.status without null-checking every nested
// field; fields that do not apply are left zero.
package report

import (
	"github.com/cachectl/cachectl/resource"
	"github.com/cachectl/cachectl/resource/reconciler"
)

// A Record is the outcome of one reconciliation, suitable for JSON encoding.
type Record struct {
	Changed bool  `json:"changed"`
	State   State `json:"state"`
}

// State describes the final state of a cache.
type State struct {
	Status             string               `json:"status"` // present or absent
	ID                 string               `json:"id"`
	Name               string               `json:"name"`
	Location           string               `json:"location"`
	Tags               map[string]string    `json:"tags"`
	ProvisioningState  string               `json:"provisioning_state"`
	HostName           string               `json:"hostname"`
	Port               int                  `json:"port"`
	SSLPort            int                  `json:"ssl_port"`
	RedisVersion       string               `json:"redis_version"`
	SKU                resource.SKU         `json:"sku"`
	EnableNonSSLPort   bool                 `json:"enable_non_ssl_port"`
	ShardCount         int                  `json:"shard_count"`
	SubnetID           string               `json:"subnet_id"`
	StaticIP           string               `json:"static_ip"`
	RedisConfiguration map[string]string    `json:"redis_configuration"`
	AccessKeys         *resource.AccessKeys `json:"access_keys"`
}

// Format maps a reconciliation result to a Record. It never fails; missing
// parts of the result simply leave their fields zero.
func Format(res *reconciler.Result) Record {
	rec := Record{Changed: res.Changed}
	rec.State.Status = res.Existence.String()
	if res.Existence == resource.Present {
		rec.State.Name = res.Ref.Name
	}

	snap, ok := res.Remote.(*resource.RemoteCache)
	if !ok || snap == nil {
		return rec
	}

	rec.State.ID = snap.ID
	rec.State.Name = snap.Name
	rec.State.Location = snap.Location
	rec.State.Tags = snap.Tags
	rec.State.ProvisioningState = snap.ProvisioningState
	rec.State.HostName = snap.HostName
	rec.State.Port = snap.Port
	rec.State.SSLPort = snap.SSLPort
	rec.State.RedisVersion = snap.RedisVersion
	rec.State.SKU = snap.SKU
	rec.State.EnableNonSSLPort = snap.EnableNonSSLPort
	rec.State.ShardCount = snap.ShardCount
	rec.State.SubnetID = snap.SubnetID
	rec.State.StaticIP = snap.StaticIP
	rec.State.RedisConfiguration = snap.RedisConfiguration
	rec.State.AccessKeys = snap.AccessKeys

	return rec
}
