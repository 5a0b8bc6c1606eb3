// Package cache provides the bounded LRU cache used by device backends to
// keep derived GPU objects, such as texture views, alive between frames.
//
// Entries are evicted least recently used first once the cache grows past
// its limit. An eviction callback lets the owner release the GPU object
// behind an entry when it leaves the cache, whether by eviction, Delete or
// Clear.
//
//	views := cache.New[uint64, hal.TextureView](256)
//	views.OnEvict(func(_ uint64, v hal.TextureView) { device.DestroyTextureView(v) })
//	view, err := views.GetOrCreate(id, createView)
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
