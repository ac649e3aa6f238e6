package resource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cachectl/cachectl/suggest"
	"go.uber.org/multierr"
	validator "gopkg.in/go-playground/validator.v9"
)

var check = validator.New()

// knownConfigKeys are the Redis settings accepted by the provider.
var knownConfigKeys = []string{
	"databases",
	"hash-max-ziplist-entries",
	"hash-max-ziplist-value",
	"list-max-ziplist-entries",
	"list-max-ziplist-value",
	"maxmemory-delta",
	"maxmemory-policy",
	"maxmemory-reserved",
	"maxmemory-samples",
	"notify-keyspace-events",
	"rdb-backup-enabled",
	"rdb-backup-frequency",
	"rdb-backup-max-snapshot-count",
	"rdb-storage-connection-string",
	"set-max-intset-entries",
	"slowlog-log-slower-than",
	"slowlog-max-len",
	"zset-max-ziplist-entries",
	"zset-max-ziplist-value",
}

// Validate checks that the spec is complete and internally consistent. All
// violations are reported, combined into a single error.
func (s *CacheSpec) Validate() error {
	var err error
	if verr := check.Struct(s); verr != nil {
		for _, fe := range verr.(validator.ValidationErrors) {
			err = multierr.Append(err, fieldError(fe))
		}
	}
	err = multierr.Append(err, s.validateSKU())
	err = multierr.Append(err, s.validateConfigKeys())
	return err
}

func (s *CacheSpec) validateSKU() error {
	var err error
	premium := s.SKU.Name == "Premium"
	if s.SKU.Name != "" && s.SKU.Family != "" && premium != (s.SKU.Family == "P") {
		err = multierr.Append(err, fmt.Errorf(
			"sku family %q does not match sku name %q (C = Basic/Standard, P = Premium)",
			s.SKU.Family, s.SKU.Name,
		))
	}
	switch s.SKU.Family {
	case "C":
		if s.SKU.Capacity < 0 || s.SKU.Capacity > 6 {
			err = multierr.Append(err, fmt.Errorf("sku capacity must be 0-6 for family C, got %d", s.SKU.Capacity))
		}
	case "P":
		if s.SKU.Capacity < 1 || s.SKU.Capacity > 4 {
			err = multierr.Append(err, fmt.Errorf("sku capacity must be 1-4 for family P, got %d", s.SKU.Capacity))
		}
	}
	if !premium {
		if s.ShardCount > 0 {
			err = multierr.Append(err, fmt.Errorf("shard_count requires a Premium sku"))
		}
		if s.SubnetID != "" {
			err = multierr.Append(err, fmt.Errorf("subnet_id requires a Premium sku"))
		}
		if s.StaticIP != "" {
			err = multierr.Append(err, fmt.Errorf("static_ip requires a Premium sku"))
		}
	}
	return err
}

func (s *CacheSpec) validateConfigKeys() error {
	if len(s.RedisConfiguration) == 0 {
		return nil
	}
	known := make(map[string]struct{}, len(knownConfigKeys))
	for _, k := range knownConfigKeys {
		known[k] = struct{}{}
	}
	keys := make([]string, 0, len(s.RedisConfiguration))
	for k := range s.RedisConfiguration {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var err error
	for _, k := range keys {
		if _, ok := known[k]; ok {
			continue
		}
		if sug := suggest.String(k, knownConfigKeys); sug != "" {
			err = multierr.Append(err, fmt.Errorf("unknown redis configuration key %q, did you mean %q?", k, sug))
			continue
		}
		err = multierr.Append(err, fmt.Errorf("unknown redis configuration key %q", k))
	}
	return err
}

var fieldNames = map[string]string{
	"Name":          "name",
	"ResourceGroup": "resource_group",
	"Location":      "location",
	"ShardCount":    "shard_count",
	"StaticIP":      "static_ip",
	"SubnetID":      "subnet_id",
	"SKU.Name":      "sku name",
	"SKU.Family":    "sku family",
	"SKU.Capacity":  "sku capacity",
}

func fieldError(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "CacheSpec.")
	if name, ok := fieldNames[field]; ok {
		field = name
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "oneof":
		return fmt.Errorf("%s must be one of: [%s]", field, fe.Param())
	case "ip":
		return fmt.Errorf("%s must be a valid IP address", field)
	case "max":
		return fmt.Errorf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Errorf("%s must be %s or more", field, fe.Param())
	case "lte":
		return fmt.Errorf("%s must be %s or less", field, fe.Param())
	}
	return fmt.Errorf("%s is invalid (%s)", field, fe.Tag())
}
