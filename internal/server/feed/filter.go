// Package feed decides which live connections receive which new posts.
package feed

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pointfeed/internal/server/events"
)

// Graph is the read-only view of the follow relation.
type Graph interface {
	FollowingOf(ctx context.Context, userID string) ([]string, error)
}

// ConnectionContext is the viewer state captured when a subscription is
// established. Following is a snapshot and is not refreshed while the
// connection lives; unfollowing mid-connection takes effect on reconnect.
type ConnectionContext struct {
	UserID    string
	Following map[string]struct{}
}

// NewConnectionContext snapshots the set of users userID follows.
func NewConnectionContext(ctx context.Context, g Graph, userID string) (*ConnectionContext, error) {
	ids, err := g.FollowingOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load following of %s: %w", userID, err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &ConnectionContext{UserID: userID, Following: set}, nil
}

// ShouldDeliver reports whether ev's author is in the viewer's following
// set. Viewers do not see their own posts unless they follow themselves.
func ShouldDeliver(cc *ConnectionContext, ev events.Event) bool {
	if cc == nil {
		return false
	}
	_, ok := cc.Following[ev.AuthorID]
	return ok
}

// Filter binds ShouldDeliver to cc for use with events.Bus.Subscribe.
func (cc *ConnectionContext) Filter() events.Filter {
	return func(ev events.Event) bool { return ShouldDeliver(cc, ev) }
}
