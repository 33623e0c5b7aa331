package awareness

import (
	"container/heap"
	"log/slog"

	"github.com/nstehr/vimy/vimy-tactics/config"
	"github.com/nstehr/vimy/vimy-tactics/model"
)

// ScoutTarget is a place worth looking at. Permanent targets are enemy start
// locations; they are only dropped once actually seen.
type ScoutTarget struct {
	Priority  float64
	Point     model.Point
	Permanent bool
}

type scoutQueue []ScoutTarget

func (q scoutQueue) Len() int           { return len(q) }
func (q scoutQueue) Less(i, j int) bool { return q[i].Priority > q[j].Priority }
func (q scoutQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *scoutQueue) Push(x any)        { *q = append(*q, x.(ScoutTarget)) }
func (q *scoutQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// ScoutingManager keeps a max-priority queue of unexplored targets and widens
// the explored radius around our base as the game goes on.
type ScoutingManager struct {
	tun    config.Scouting
	queue  scoutQueue
	origin model.Point
	radius float64 // radius already seeded into the queue

	lastExpandTick int
	queuedSectors  map[[2]int]bool
}

func NewScoutingManager(tun config.Scouting) *ScoutingManager {
	return &ScoutingManager{tun: tun, queuedSectors: make(map[[2]int]bool)}
}

// OnGameStart seeds enemy start locations and the sectors near our base.
func (m *ScoutingManager) OnGameStart(w model.World, sectors *SectorCache) error {
	starts := w.StartLocations()
	if len(starts) == 0 {
		return model.Misconfigured("scouting", "no start locations to scout")
	}
	m.origin = w.OwnStart()
	for _, p := range starts {
		if p == m.origin || w.IsVisible(p.X, p.Y) {
			continue
		}
		m.push(ScoutTarget{Priority: m.tun.StartLocationPriority, Point: p, Permanent: true})
	}
	m.addRadius(sectors, m.tun.InitialRadius)
	m.lastExpandTick = w.Tick()
	slog.Info("scouting seeded", "targets", m.queue.Len(), "radius", m.radius)
	return nil
}

// addRadius enqueues sectors within radius of the origin. Priority decays
// with distance and with how much of the sector is already visible.
func (m *ScoutingManager) addRadius(sectors *SectorCache, radius float64) {
	m.radius = radius
	bw, bh := sectors.Bounds()
	for sy := 0; sy < bh; sy++ {
		for sx := 0; sx < bw; sx++ {
			key := [2]int{sx, sy}
			if m.queuedSectors[key] {
				continue
			}
			center := sectors.SectorCenter(sx, sy)
			dist := center.DistanceTo(m.origin)
			if dist > radius {
				continue
			}
			visibility := 0.0
			if c, ok := sectors.Sector(sx, sy); ok && c.Updated() {
				if !c.Value.HasTiles {
					continue
				}
				visibility = c.Value.VisibilityRatio
			}
			if visibility >= m.tun.VisibilitySaturation {
				continue
			}
			priority := m.tun.SectorPriority * (1 - visibility) * (1 - dist/(radius+1))
			if priority <= 0 {
				continue
			}
			m.queuedSectors[key] = true
			m.push(ScoutTarget{Priority: priority, Point: center})
		}
	}
}

func (m *ScoutingManager) push(t ScoutTarget) { heap.Push(&m.queue, t) }

// OnAiUpdate drops the head while its tile is visible, then widens the
// scouted radius on a fixed tick interval.
func (m *ScoutingManager) OnAiUpdate(w model.World, sectors *SectorCache) {
	for m.queue.Len() > 0 {
		head := m.queue[0]
		if !w.IsVisible(head.Point.X, head.Point.Y) {
			break
		}
		heap.Pop(&m.queue)
		slog.Debug("scout target seen", "x", head.Point.X, "y", head.Point.Y, "permanent", head.Permanent)
	}

	tick := w.Tick()
	if tick-m.lastExpandTick < m.tun.RadiusIntervalTicks || m.radius >= m.tun.MaxRadius {
		return
	}
	m.lastExpandTick = tick
	m.addRadius(sectors, min(m.radius+m.tun.RadiusStep, m.tun.MaxRadius))
}

// GetNewScoutTarget dequeues the highest-priority target. The caller owns it
// and must AddTarget it back if it ends up unused.
func (m *ScoutingManager) GetNewScoutTarget() (ScoutTarget, bool) {
	if m.queue.Len() == 0 {
		return ScoutTarget{}, false
	}
	return heap.Pop(&m.queue).(ScoutTarget), true
}

// AddTarget re-enqueues a target a scout failed to reach.
func (m *ScoutingManager) AddTarget(t ScoutTarget) { m.push(t) }

func (m *ScoutingManager) HasTargets() bool { return m.queue.Len() > 0 }
func (m *ScoutingManager) Len() int         { return m.queue.Len() }
func (m *ScoutingManager) Radius() float64  { return m.radius }
