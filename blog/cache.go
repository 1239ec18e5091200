package blog

import "sync"

// listCache holds the last materialized feed. The feed query joins and
// assembles every post and comment, so reads are served from this snapshot
// and any mutation simply drops it; the next read rebuilds.
type listCache struct {
	mu    sync.RWMutex
	blogs []*Blog
	valid bool
}

// get returns the cached feed and whether it is usable.
func (c *listCache) get() ([]*Blog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blogs, c.valid
}

// set replaces the cached feed.
func (c *listCache) set(blogs []*Blog) {
	c.mu.Lock()
	c.blogs = blogs
	c.valid = true
	c.mu.Unlock()
}

// invalidate drops the snapshot. Called after every write to the posting
// tables.
func (c *listCache) invalidate() {
	c.mu.Lock()
	c.blogs = nil
	c.valid = false
	c.mu.Unlock()
}
