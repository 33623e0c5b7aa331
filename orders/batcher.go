package orders

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

// GroupedOrder is one host call: the same order and target for many units.
type GroupedOrder struct {
	Order     OrderType
	UnitIDs   []int
	Point     model.Point
	HasPoint  bool
	TargetID  int
	HasTarget bool
}

// Sink receives grouped orders at flush time.
type Sink interface {
	Issue(order GroupedOrder) error
}

// Batcher accumulates actions for one tick. Pushing a second action for a
// unit replaces the first.
type Batcher struct {
	actions  map[int]BatchableAction
	units    []int // first-push order
	failures int
}

func NewBatcher() *Batcher {
	return &Batcher{actions: make(map[int]BatchableAction)}
}

func (b *Batcher) Push(a BatchableAction) {
	if _, ok := b.actions[a.UnitID]; !ok {
		b.units = append(b.units, a.UnitID)
	}
	b.actions[a.UnitID] = a
}

// Len is the number of units with a pending action.
func (b *Batcher) Len() int { return len(b.actions) }

// Failures counts flushes the sink aborted. Any action pushed before the
// latest failure may never have reached the host.
func (b *Batcher) Failures() int { return b.failures }

// groupKey is the order type followed by the binary target id or point.
func groupKey(a BatchableAction) string {
	key := make([]byte, 0, len(a.Order)+9)
	key = append(key, string(a.Order)...)
	switch {
	case a.HasTarget:
		key = append(key, 't')
		key = binary.LittleEndian.AppendUint32(key, uint32(a.TargetID))
	case a.HasPoint:
		key = append(key, 'p')
		key = binary.LittleEndian.AppendUint32(key, uint32(int32(a.Point.X)))
		key = binary.LittleEndian.AppendUint32(key, uint32(int32(a.Point.Y)))
	}
	return string(key)
}

// Flush issues one call per distinct order/target group, in the order each
// group was first seen, and returns the number of calls made. The batch is
// cleared even if the sink fails part way; remaining groups are dropped.
func (b *Batcher) Flush(sink Sink) (int, error) {
	defer b.reset()
	if len(b.units) == 0 {
		return 0, nil
	}

	var groups []*GroupedOrder
	index := make(map[string]*GroupedOrder)
	for _, id := range b.units {
		a := b.actions[id]
		k := groupKey(a)
		g, ok := index[k]
		if !ok {
			g = &GroupedOrder{Order: a.Order, Point: a.Point, HasPoint: a.HasPoint,
				TargetID: a.TargetID, HasTarget: a.HasTarget}
			index[k] = g
			groups = append(groups, g)
		}
		g.UnitIDs = append(g.UnitIDs, id)
	}

	for i, g := range groups {
		if err := sink.Issue(*g); err != nil {
			b.failures++
			return i, fmt.Errorf("issue %s for %d units: %w", g.Order, len(g.UnitIDs), err)
		}
	}
	slog.Debug("orders flushed", "units", len(b.units), "calls", len(groups))
	return len(groups), nil
}

func (b *Batcher) reset() {
	clear(b.actions)
	b.units = b.units[:0]
}
