// Package grid provides a 2-D cache whose cells are recomputed a few at a
// time, so whole-map analyses can be amortised across many ticks.
package grid

import (
	"fmt"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

// NeverUpdated marks a cell the scan has not reached yet.
const NeverUpdated = -1

// Cell is one cached value and the tick it was last recomputed.
type Cell[T any] struct {
	LastUpdatedTick int
	Value           T
}

// Updated reports whether the scan has reached the cell at least once.
func (c Cell[T]) Updated() bool { return c.LastUpdatedTick != NeverUpdated }

// Reader gives update functions read access to neighbouring cells.
type Reader[T any] interface {
	Cell(x, y int) (Cell[T], bool)
}

// InitFunc produces a cell's value before its first scan.
type InitFunc[T any] func(x, y int) T

// Updater recomputes one cell. It must depend only on the step, the previous
// value and the values it reads through r.
type Updater[T any] func(step Step, prev T, r Reader[T]) (T, error)

// Cache is a width×height grid refreshed incrementally by a ScanStrategy.
type Cache[T any] struct {
	width, height int
	cells         []Cell[T]
	update        Updater[T]
	scan          ScanStrategy
}

// New allocates the grid and runs init for every cell. A nil scan strategy
// defaults to row-major sequential order.
func New[T any](width, height int, init InitFunc[T], update Updater[T], scan ScanStrategy) (*Cache[T], error) {
	if width <= 0 || height <= 0 {
		return nil, model.Misconfigured("grid", "invalid size %dx%d", width, height)
	}
	if update == nil {
		return nil, model.Misconfigured("grid", "nil update function")
	}
	if scan == nil {
		scan = NewSequentialScan()
	}
	c := &Cache[T]{
		width:  width,
		height: height,
		cells:  make([]Cell[T], width*height),
		update: update,
		scan:   scan,
	}
	for i := range c.cells {
		c.cells[i].LastUpdatedTick = NeverUpdated
		if init != nil {
			c.cells[i].Value = init(i%width, i/width)
		}
	}
	return c, nil
}

func (c *Cache[T]) Width() int  { return c.width }
func (c *Cache[T]) Height() int { return c.height }

// UpdateCells advances the scan up to n times, recomputing exactly the cell
// each step names. It stops at the first update error and leaves that cell
// unstamped; the cache contents after an error are not trustworthy.
func (c *Cache[T]) UpdateCells(n, tick int) error {
	for range n {
		step := c.scan.Next(c.width, c.height)
		i := step.Y*c.width + step.X
		v, err := c.update(step, c.cells[i].Value, c)
		if err != nil {
			return fmt.Errorf("update cell (%d, %d) stage %d: %w", step.X, step.Y, step.Stage, err)
		}
		c.cells[i] = Cell[T]{LastUpdatedTick: tick, Value: v}
	}
	return nil
}

// Cell returns the cell at (x, y); false when out of bounds.
func (c *Cache[T]) Cell(x, y int) (Cell[T], bool) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return Cell[T]{}, false
	}
	return c.cells[y*c.width+x], true
}

// ForEach visits every cell in row-major order without recomputing anything.
func (c *Cache[T]) ForEach(fn func(x, y int, cell Cell[T])) {
	for i, cell := range c.cells {
		fn(i%c.width, i/c.width, cell)
	}
}

// ForEachInRadius visits the cells whose centre lies within radius of (cx, cy).
func (c *Cache[T]) ForEachInRadius(cx, cy int, radius float64, fn func(x, y int, cell Cell[T])) {
	r := int(radius)
	r2 := radius * radius
	for y := max(0, cy-r); y <= min(c.height-1, cy+r); y++ {
		for x := max(0, cx-r); x <= min(c.width-1, cx+r); x++ {
			dx, dy := float64(x-cx), float64(y-cy)
			if dx*dx+dy*dy > r2 {
				continue
			}
			fn(x, y, c.cells[y*c.width+x])
		}
	}
}

// UpdatedSince returns the fraction of cells recomputed at or after tick.
func (c *Cache[T]) UpdatedSince(tick int) float64 {
	n := 0
	for _, cell := range c.cells {
		if cell.Updated() && cell.LastUpdatedTick >= tick {
			n++
		}
	}
	return float64(n) / float64(len(c.cells))
}
