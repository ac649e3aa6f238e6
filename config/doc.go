// Package config loads cache declarations from .hcl files on disk.
//
// A configuration consists of one or more cache blocks:
//
//	cache "app1" {
//	  resource_group = "myResourceGroup"
//	  location       = "westus"
//
//	  sku {
//	    name     = "Standard"
//	    family   = "C"
//	    capacity = 2
//	  }
//
//	  redis_configuration = {
//	    maxmemory-policy = "allkeys-lru"
//	  }
//	}
//
// Blocks may be split across any number of files; all .hcl files under the
// project root are merged. A block declares the desired state of one cache:
// present (the default) or absent.
package config
