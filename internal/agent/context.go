package agent

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/spoolhq/spool-mcp/internal/tools"
)

const listingCacheTTL = 5 * time.Minute

// listingCache holds the last system prompt built from the collection
// listing.
type listingCache struct {
	mu        sync.RWMutex
	prompt    string
	expiresAt time.Time
	sf        singleflight.Group // deduplicate concurrent listing fetches
}

func (c *listingCache) get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.prompt == "" || time.Now().After(c.expiresAt) {
		return "", false
	}
	return c.prompt, true
}

func (c *listingCache) set(prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompt = prompt
	c.expiresAt = time.Now().Add(listingCacheTTL)
}

// SystemPrompt returns the session prompt pre-loaded with the current
// collection listing, so the model can usually skip a list_collections
// round trip. The listing is cached for five minutes and concurrent
// misses share a single fetch via singleflight.
func (a *Agent) SystemPrompt(ctx context.Context) string {
	if prompt, ok := a.listing.get(); ok {
		log.Debug().Msg("collection listing cache hit")
		return prompt
	}

	v, err, _ := a.listing.sf.Do("collections", func() (interface{}, error) {
		// Double-check inside singleflight in case another goroutine
		// populated the cache while we waited to enter.
		if prompt, ok := a.listing.get(); ok {
			return prompt, nil
		}

		fetchStart := time.Now()
		env := a.dispatcher.Invoke(ctx, tools.NameListCollections, map[string]interface{}{})
		if !env.OK() {
			return DefaultSystemPrompt, nil // soft fail, don't cache
		}
		names := collectionNames(env.Payload)
		if len(names) == 0 {
			return DefaultSystemPrompt, nil
		}

		var sb strings.Builder
		sb.WriteString(DefaultSystemPrompt)
		sb.WriteString("\n\nCollections currently available:\n")
		for _, n := range names {
			sb.WriteString("- " + n + "\n")
		}
		sb.WriteString("\nThe listing above is current. Call list_collections only when you need ids or creation times.")

		prompt := sb.String()
		a.listing.set(prompt)

		log.Info().
			Int("collections", len(names)).
			Dur("fetch_ms", time.Since(fetchStart)).
			Msg("collection listing cached")

		return prompt, nil
	})
	if err != nil || v == nil {
		return DefaultSystemPrompt
	}
	return v.(string)
}

// collectionNames digs the name list out of the list_collections payload.
func collectionNames(payload interface{}) []string {
	m, ok := payload.(map[string]interface{})
	if !ok {
		return nil
	}
	items, ok := m["collections"].([]map[string]interface{})
	if !ok {
		return nil
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		if name, ok := item["name"].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}
