// Package cache stores raw API payloads keyed by request.
//
// # Backends
//
// All backends implement [Cache]:
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: a collection with a TTL index on the expiry field
//
// [Open] builds the backend named in [Options].
//
// # Keys
//
// A [Keyer] turns requests into keys. [DefaultKeyer] hashes its inputs so
// keys have a fixed length; [ScopedKeyer] prefixes another keyer, which
// keeps payloads from different API hosts apart in a shared backend.
//
// Only initial graph payloads are cached. Neighbour pages change as claims
// are added and are always fetched fresh.
package cache
