package db

import (
	"ledger-rules/src/models"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/ristretto"
)

// RuleCache keeps ordered rule sets per cache key. Keys are tracked so the
// whole family can be cleared when a rule changes.
type RuleCache struct {
	cache *ristretto.Cache
	keys  struct {
		sync.RWMutex
		m map[string]struct{}
	}
}

func NewRuleCache() (*RuleCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}
	c := &RuleCache{cache: cache}
	c.keys.m = make(map[string]struct{})
	return c, nil
}

func (c *RuleCache) GetRules(key string) ([]models.Rule, bool) {
	value, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	rules, ok := value.([]models.Rule)
	return rules, ok
}

func (c *RuleCache) SetRules(key string, rules []models.Rule) {
	c.keys.Lock()
	c.keys.m[key] = struct{}{}
	c.keys.Unlock()
	if !c.cache.Set(key, rules, 1) {
		log.Debugf("Rule cache dropped key %s", key)
		return
	}
	c.cache.Wait()
}

func (c *RuleCache) ClearAllRules() {
	c.keys.Lock()
	for key := range c.keys.m {
		c.cache.Del(key)
	}
	c.keys.m = make(map[string]struct{})
	c.keys.Unlock()
}

func (c *RuleCache) Close() {
	c.cache.Close()
}
