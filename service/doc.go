// Package service implements the blog's business operations on top of the
// repository accessors and the cache-aside accessor.
//
// Read paths consult the cache first and fall back to the database on a
// miss. Write paths invalidate or repopulate the entry they affect. Cache
// failures never surface to callers; rule violations are returned as
// go-errors values carrying a category and an HTTP status code.
package service
