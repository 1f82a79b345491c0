package bot

import (
	"github.com/diamondburned/arikawa/v3/discord"
	lru "github.com/hashicorp/golang-lru/v2"
)

// interactionCache remembers recently handled interaction IDs so an event
// re-delivered after a gateway resume is answered only once.
type interactionCache struct {
	cache *lru.Cache[discord.InteractionID, struct{}]
}

// newInteractionCache creates a cache holding at most size IDs.
func newInteractionCache(size int) (*interactionCache, error) {
	c, err := lru.New[discord.InteractionID, struct{}](size)
	if err != nil {
		return nil, err
	}

	return &interactionCache{cache: c}, nil
}

// firstSeen records id and reports whether it had not been seen before.
func (c *interactionCache) firstSeen(id discord.InteractionID) bool {
	seen, _ := c.cache.ContainsOrAdd(id, struct{}{})

	return !seen
}

// Len returns the number of remembered IDs.
func (c *interactionCache) Len() int {
	return c.cache.Len()
}
