// Package lifecycle provides a small named-component startup/shutdown
// group, grounded on private/lifecycle/group_test.go's Group/Item shape.
package lifecycle

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Item is one component the gateway process manages: an optional blocking
// Run and an optional Close, both keyed by Name for logging.
type Item struct {
	Name  string
	Run   func(ctx context.Context) error
	Close func() error
}

// Group runs and tears down a set of Items together: Run starts every
// item's Run function as a goroutine in an errgroup; Close closes every
// item with a Close function in reverse registration order, mirroring
// typical defer-stack teardown.
type Group struct {
	log   *zap.Logger
	items []Item
}

func NewGroup(log *zap.Logger) *Group {
	return &Group{log: log}
}

// Add registers item with the group.
func (g *Group) Add(item Item) {
	g.items = append(g.items, item)
}

// Run starts every item with a non-nil Run inside eg, returning
// immediately; failures surface through eg.Wait.
func (g *Group) Run(ctx context.Context, eg *errgroup.Group) {
	for _, item := range g.items {
		item := item
		if item.Run == nil {
			continue
		}
		eg.Go(func() error {
			g.log.Debug("starting", zap.String("name", item.Name))
			return item.Run(ctx)
		})
	}
}

// Close closes every item with a non-nil Close, in reverse registration
// order, continuing past errors (not short-circuiting) and returning the
// first one.
func (g *Group) Close() error {
	var firstErr error
	for i := len(g.items) - 1; i >= 0; i-- {
		item := g.items[i]
		if item.Close == nil {
			continue
		}
		g.log.Debug("closing", zap.String("name", item.Name))
		if err := item.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
