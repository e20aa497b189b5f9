// Package cache provides the cache-aside accessor used by the domain services.
//
// # Overview
//
// This package exports three main interfaces and their default implementations:
//
//   - Accessor: fetch, store, store-with-ttl, store-empty and invalidate
//   - Store: the raw key/value backend (Redis or in-process sturdyc)
//   - KeySerializer: builds stable cache keys from an operation name and arguments
//
// # Lookup States
//
// A lookup has three outcomes. Miss means nothing usable is cached. Empty means
// the authoritative store answered with an empty result and that answer was
// cached with StoreEmpty. Hit means a value was decoded into the destination.
//
//	posts, state := cache.Lookup[[]model.Post](ctx, accessor, key)
//	switch state {
//	case cache.Hit:
//		return posts, nil
//	case cache.Empty:
//		return []model.Post{}, nil
//	}
//	// miss: query the database, then Store or StoreEmpty
//
// # Key Serialization
//
// The default key serializer snake_cases the operation name and appends each
// argument, separated by KeySeparator:
//
//	serializer := cache.NewDefaultKeySerializer()
//	serializer.SerializeKey("UserPosts", 42) // "user_posts::42"
//	serializer.SerializeKey("Users", "all")  // "users::all"
//
// Arguments implementing fmt.Stringer use String(). Slices and maps are
// rendered recursively, maps with sorted pairs. Anything else falls back to JSON.
//
// # Error Handling
//
// The accessor never returns errors. A store that is unreachable reads as a
// miss and swallows writes; failures are logged at error level. Callers
// always stay correct through the database.
package cache
