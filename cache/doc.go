// Package cache holds the contracts shared by the tiered query cache and its
// callers: configuration, cache keys and their serialization, payload codecs,
// logging and metrics hooks, and the error values lookups can return.
//
// # Keys
//
// A Key names the collection a query reads, the statement that ran and its
// ordered parameters:
//
//	key := cache.NewKey("emp", "getEmpById", 3)
//	joined := cache.NewKey("emp", "getEmpWithDeptById", 3).WithRelated("dept")
//
// Two keys are the same entry when their serialized forms match. The default
// serializer tags every value with its kind and quotes strings, so 3 and "3"
// are different keys. It follows pointers, sorts map keys and writes struct
// fields by name. Related collections are part of the key as a sorted set.
//
// Keys that miss a collection or statement fail Validate with ErrInvalidKey.
// So do keys carrying functions, channels or unsafe pointers anywhere in their
// params, since those only serialize by address.
//
// # Configuration
//
// Config is loaded from YAML with LoadConfig or built from DefaultConfig. The
// region fields size the sturdyc client behind the shared tier. ReadOnly
// selects whether sessions share values by identity or decode their own copy
// with the configured Codec (msgpack or cbor).
//
// # See Also
//
// The lookup and session API lives in the tiered package.
package cache
