package element

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Changes maps property keys to their value before the first write of a
// pass, in the order the properties were first written.
type Changes struct {
	m *orderedmap.OrderedMap[string, any]
}

func newChanges() *Changes {
	return &Changes{m: orderedmap.New[string, any]()}
}

func (c *Changes) Len() int {
	if c == nil {
		return 0
	}
	return c.m.Len()
}

func (c *Changes) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Get returns the recorded old value for key.
func (c *Changes) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.m.Get(key)
}

func (c *Changes) Keys() []string {
	keys := make([]string, 0, c.Len())
	c.Range(func(key string, _ any) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Range calls fn for each entry in insertion order until fn returns false.
func (c *Changes) Range(fn func(key string, oldValue any) bool) {
	if c == nil {
		return
	}
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// keep records oldValue for key unless key is already present, so the
// value from before the first write wins.
func (c *Changes) keep(key string, oldValue any) {
	if _, ok := c.m.Get(key); ok {
		return
	}
	c.m.Set(key, oldValue)
}
