package memory

import (
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"
)

// ExtractionCache stores parsed extraction results keyed strictly by
// the (session id, template type) pair. Every read, write and
// invalidation goes through the same key derivation so a clear can
// never miss an entry written under a different shape.
type ExtractionCache struct {
	cache *cache.Cache
}

func NewExtractionCache() *ExtractionCache {
	// Entries live until an explicit session clear; results are
	// idempotent for stable input, so no TTL.
	return &ExtractionCache{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func extractionKey(sessionID, templateType string) string {
	return fmt.Sprintf("%s::%s", sessionID, templateType)
}

func (c *ExtractionCache) Get(sessionID, templateType string) (map[string]interface{}, bool) {
	if x, found := c.cache.Get(extractionKey(sessionID, templateType)); found {
		return x.(map[string]interface{}), true
	}
	return nil, false
}

func (c *ExtractionCache) Set(sessionID, templateType string, result map[string]interface{}) {
	c.cache.Set(extractionKey(sessionID, templateType), result, cache.NoExpiration)
}

// InvalidateSession drops every template's entry for the session.
// This is the single invalidation path used by clear and cleanup.
func (c *ExtractionCache) InvalidateSession(sessionID string) {
	prefix := sessionID + "::"
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
}
