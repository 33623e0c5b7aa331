package awareness

import (
	"errors"
	"math"
	"sort"

	"github.com/nstehr/vimy/vimy-tactics/grid"
	"github.com/nstehr/vimy/vimy-tactics/model"
)

// Unbounded is the distance of a free tile no sweep has reached from an obstacle.
const Unbounded = math.MaxInt32

var ErrBuildSpaceNotReady = errors.New("build space: distance transform not finished")

// Build-space stages, run as three full raster passes.
const (
	stageSeed     = 0 // obstacles 0, free tiles unbounded
	stageForward  = 1 // min(self, up+1, left+1)
	stageBackward = 2 // min(self, down+1, right+1)
)

// spaceCell keeps each pass's output separately so queries only ever see the
// result of a completed backward sweep.
type spaceCell struct {
	seed     int
	forward  int
	distance int
}

// BuildSpaceCache computes, per tile, the 4-connected distance to the nearest
// unbuildable tile.
type BuildSpaceCache struct {
	cache *grid.Cache[spaceCell]
	scan  *grid.StagedScan

	buildable func(x, y int) bool
}

// NewBuildSpaceCache wires the transform. buildable is read during the seed
// stage only and must be safe to call for any in-bounds tile.
func NewBuildSpaceCache(width, height int, buildable func(x, y int) bool) (*BuildSpaceCache, error) {
	if buildable == nil {
		return nil, model.Misconfigured("buildspace", "nil buildable mask")
	}
	b := &BuildSpaceCache{
		scan:      grid.NewStagedScan(grid.Forward, grid.Forward, grid.Reverse),
		buildable: buildable,
	}
	c, err := grid.New(width, height, func(x, y int) spaceCell {
		return spaceCell{seed: Unbounded, forward: Unbounded, distance: 0}
	}, b.update, b.scan)
	if err != nil {
		return nil, err
	}
	b.cache = c
	return b, nil
}

func (b *BuildSpaceCache) update(step grid.Step, prev spaceCell, r grid.Reader[spaceCell]) (spaceCell, error) {
	next := prev
	switch step.Stage {
	case stageSeed:
		if b.buildable(step.X, step.Y) {
			next.seed = Unbounded
		} else {
			next.seed = 0
		}
	case stageForward:
		d := prev.seed
		if up, ok := r.Cell(step.X, step.Y-1); ok {
			d = min(d, inc(up.Value.forward))
		}
		if left, ok := r.Cell(step.X-1, step.Y); ok {
			d = min(d, inc(left.Value.forward))
		}
		next.forward = d
	case stageBackward:
		d := prev.forward
		if down, ok := r.Cell(step.X, step.Y+1); ok {
			d = min(d, inc(down.Value.distance))
		}
		if right, ok := r.Cell(step.X+1, step.Y); ok {
			d = min(d, inc(right.Value.distance))
		}
		next.distance = d
	}
	return next, nil
}

func inc(d int) int {
	if d == Unbounded {
		return d
	}
	return d + 1
}

// Update advances the transform by budget tiles.
func (b *BuildSpaceCache) Update(tick, budget int) error {
	return b.cache.UpdateCells(budget, tick)
}

// IsFinished reports whether all three stages have completed at least once.
func (b *BuildSpaceCache) IsFinished() bool { return b.scan.Cycles() > 0 }

// DistanceAt returns the distance to the nearest obstacle from the latest
// completed backward sweep.
func (b *BuildSpaceCache) DistanceAt(x, y int) (int, error) {
	if !b.IsFinished() {
		return 0, ErrBuildSpaceNotReady
	}
	c, ok := b.cache.Cell(x, y)
	if !ok {
		return 0, nil
	}
	return c.Value.distance, nil
}

// SpaceCandidate is a local maximum of the distance transform: the centre of
// an open buildable area.
type SpaceCandidate struct {
	Point    model.Point
	Distance int
}

// FindSpace returns local maxima, strongest first, dropping any candidate
// within minDistance of a stronger one already kept.
func (b *BuildSpaceCache) FindSpace(minDistance float64) ([]SpaceCandidate, error) {
	if !b.IsFinished() {
		return nil, ErrBuildSpaceNotReady
	}
	var peaks []SpaceCandidate
	b.cache.ForEach(func(x, y int, c grid.Cell[spaceCell]) {
		d := c.Value.distance
		if d <= 0 || d == Unbounded {
			return
		}
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				n, ok := b.cache.Cell(x+dx, y+dy)
				if ok && n.Value.distance > d {
					return
				}
			}
		}
		peaks = append(peaks, SpaceCandidate{Point: model.Point{X: x, Y: y}, Distance: d})
	})
	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].Distance > peaks[j].Distance })

	var kept []SpaceCandidate
	for _, p := range peaks {
		near := false
		for _, k := range kept {
			if k.Point.DistanceTo(p.Point) < minDistance {
				near = true
				break
			}
		}
		if !near {
			kept = append(kept, p)
		}
	}
	return kept, nil
}
