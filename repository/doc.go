// Package repository holds the bun backed data accessors for users, posts
// and comments. Accessors run parameterized statements only; validation,
// caching and invalidation live in the service package.
//
// Lookups by id or email return (nil, nil) when no row matches. Every other
// failure is wrapped as an internal go-errors error naming the entity.
package repository
