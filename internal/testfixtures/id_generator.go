package testfixtures

import (
	"strconv"
	"sync"
)

// IDGenerator hands out "<prefix>-<n>" identifiers in issue order, so tests
// can predict the id a store assigns to the next reservation.
type IDGenerator struct {
	mu     sync.Mutex
	prefix string
	issued int
}

// NewIDGenerator returns a generator starting at 1. An empty prefix means
// "reservation".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "reservation"
	}
	return &IDGenerator{prefix: prefix}
}

func (g *IDGenerator) format(n int) string {
	return g.prefix + "-" + strconv.Itoa(n)
}

// Next issues the next identifier.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return g.format(g.issued)
}

// Peek returns the identifier Next would issue without consuming it.
func (g *IDGenerator) Peek() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.format(g.issued + 1)
}

// Last returns the most recently issued identifier, or "" before the first call to Next.
func (g *IDGenerator) Last() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.issued == 0 {
		return ""
	}
	return g.format(g.issued)
}

// Reset restarts the sequence at 1.
func (g *IDGenerator) Reset() {
	g.mu.Lock()
	g.issued = 0
	g.mu.Unlock()
}

// NextFunc exposes Next for injection into stores and services. A nil
// generator yields empty ids.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}
