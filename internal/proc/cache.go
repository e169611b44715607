package proc

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"focusd/internal/event"
	"focusd/internal/logger"
)

// Cache memoizes pid -> cmdline lookups with bounded capacity and LRU
// eviction. The first successful fill for a pid emits a new-pid event;
// an evicted pid emits again if it is re-resolved later. Failed lookups
// are never cached.
type Cache struct {
	entries   *lru.Cache[int, []string]
	inspector Inspector
	sink      event.Sink
}

// NewCache creates a cmdline cache with the given capacity.
func NewCache(capacity int, inspector Inspector, sink event.Sink) (*Cache, error) {
	entries, err := lru.New[int, []string](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create cmdline cache: %w", err)
	}
	return &Cache{
		entries:   entries,
		inspector: inspector,
		sink:      sink,
	}, nil
}

// Resolve returns the command line for pid, consulting the process table
// on a miss. The error from a failed table lookup propagates to the caller.
func (c *Cache) Resolve(pid int) ([]string, error) {
	if cmdline, ok := c.entries.Get(pid); ok {
		return cmdline, nil
	}

	cmdline, err := c.inspector.Cmdline(pid)
	if err != nil {
		return nil, err
	}

	c.entries.Add(pid, cmdline)
	logger.WithComponent("proc").Debug().
		Int("pid", pid).
		Strs("cmdline", cmdline).
		Msg("Discovered process")
	c.sink.Emit(event.NewPID, event.PIDPayload{PID: pid, Cmdline: cmdline})

	return cmdline, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}
