// File: internal/services/chatcache/chatcache.go
package chatcache

import (
    "fmt"
    "sync"
    "time"

    "github.com/patrickmn/go-cache"

    "github.com/iyunix/go-visionai/internal/domain"
)

const (
    DefaultExpiration = 30 * time.Minute
    CleanupInterval   = 10 * time.Minute
)

// Cache serves a user's chat listings without touching the chats table while warm.
//
// Entries are keyed by a per-user generation. Invalidate bumps the generation,
// so a listing loaded before a write and stored after it lands under a key no
// reader asks for. Callers take a Token before reading the database and hand
// it back to Set.
type Cache struct {
    store *cache.Cache

    mu   sync.Mutex
    gens map[string]uint64
}

// Token identifies the generation a listing was loaded under.
type Token uint64

func New(expiration, cleanup time.Duration) *Cache {
    return &Cache{
        store: cache.New(expiration, cleanup),
        gens:  make(map[string]uint64),
    }
}

func NewDefault() *Cache {
    return New(DefaultExpiration, CleanupInterval)
}

// Token returns the user's current generation.
func (c *Cache) Token(userID string) Token {
    c.mu.Lock()
    defer c.mu.Unlock()
    return Token(c.gens[userID])
}

// Invalidate drops every listing cached for the user.
func (c *Cache) Invalidate(userID string) {
    c.mu.Lock()
    c.gens[userID]++
    c.mu.Unlock()
}

func unassignedKey(userID string, tok Token) string {
    return fmt.Sprintf("%s/%d/chats", userID, tok)
}

func projectKey(userID, projectID string, tok Token) string {
    return fmt.Sprintf("%s/%d/projects/%s", userID, tok, projectID)
}

// Chats returns the cached listing of chats that are not on a project.
func (c *Cache) Chats(userID string) ([]domain.ChatSummary, bool) {
    return c.get(unassignedKey(userID, c.Token(userID)))
}

func (c *Cache) SetChats(userID string, tok Token, chats []domain.ChatSummary) {
    c.store.SetDefault(unassignedKey(userID, tok), clone(chats))
}

// ProjectChats returns the cached listing of one project's chats.
func (c *Cache) ProjectChats(userID, projectID string) ([]domain.ChatSummary, bool) {
    return c.get(projectKey(userID, projectID, c.Token(userID)))
}

func (c *Cache) SetProjectChats(userID, projectID string, tok Token, chats []domain.ChatSummary) {
    c.store.SetDefault(projectKey(userID, projectID, tok), clone(chats))
}

func (c *Cache) get(key string) ([]domain.ChatSummary, bool) {
    v, ok := c.store.Get(key)
    if !ok {
        return nil, false
    }
    chats, ok := v.([]domain.ChatSummary)
    if !ok {
        return nil, false
    }
    return clone(chats), true
}

// Len reports the number of stored listings, stale generations included until they expire.
func (c *Cache) Len() int {
    return c.store.ItemCount()
}

func clone(in []domain.ChatSummary) []domain.ChatSummary {
    out := make([]domain.ChatSummary, len(in))
    copy(out, in)
    return out
}
