package gravatar

import "sync"

// Cache memoizes resolved photo URLs by email. Entries are written once a
// lookup succeeds and are never invalidated for the lifetime of the
// process. The cache is passed to machines as a dependency so tests can
// substitute a fresh one.
type Cache struct {
	mu   sync.Mutex
	urls map[string]string
}

func NewCache() *Cache {
	return &Cache{urls: make(map[string]string)}
}

func (c *Cache) lookup(email string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	url, ok := c.urls[email]
	return url, ok
}

func (c *Cache) store(email, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urls[email] = url
}
