package merge

import (
	"container/list"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ConditionCache is a thread-safe LRU cache of compiled expr programs,
// keyed by the raw expression source. It lets NormalizeValidator reject a
// malformed `expr` validator at merge time instead of deferring the
// failure to whatever downstream component runs the request and checks
// the validator against a real response.
type ConditionCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List
}

type conditionEntry struct {
	key     string
	program *vm.Program
}

// NewConditionCache creates a cache holding at most capacity compiled
// programs, evicting least-recently-used entries past that.
func NewConditionCache(capacity int) *ConditionCache {
	if capacity <= 0 {
		capacity = 256
	}
	return &ConditionCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// CompileAndCache compiles src as a boolean expr-lang expression and caches
// the result, or returns the already-cached program for a repeat source
// string. Variables are left unresolved (expr.AllowUndefinedVariables): at
// normalization time the request/response environment the expression will
// run against isn't known yet, only its syntax and that it reduces to bool.
func (c *ConditionCache) CompileAndCache(src string) (*vm.Program, error) {
	c.mu.Lock()
	if elem, ok := c.items[src]; ok {
		c.order.MoveToFront(elem)
		program := elem.Value.(*conditionEntry).program
		c.mu.Unlock()
		return program, nil
	}
	c.mu.Unlock()

	program, err := expr.Compile(src, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[src]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*conditionEntry).program, nil
	}
	elem := c.order.PushFront(&conditionEntry{key: src, program: program})
	c.items[src] = elem
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*conditionEntry).key)
		}
	}
	return program, nil
}

// Len reports the number of distinct expressions currently cached.
func (c *ConditionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
