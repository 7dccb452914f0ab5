package command

import "sync"

// Command is a named group of usages kept in registration order.
type Command struct {
	name string

	mu     sync.RWMutex
	usages []*Usage
}

func newCommand(name string, first *Usage) *Command {
	return &Command{name: name, usages: []*Usage{first}}
}

// Name returns the command name
func (c *Command) Name() string { return c.name }

// Usages returns the usages in registration order. The slice is a copy.
func (c *Command) Usages() []*Usage {
	return append([]*Usage(nil), c.snapshot()...)
}

// Len returns the number of usages
func (c *Command) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.usages)
}

// snapshot returns the current slice. The backing array is never written
// after publication, so callers may read it without holding the lock.
func (c *Command) snapshot() []*Usage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.usages
}

// add appends u with copy-on-write so snapshots stay valid
func (c *Command) add(u *Usage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]*Usage, len(c.usages), len(c.usages)+1)
	copy(next, c.usages)
	c.usages = append(next, u)
}
