package awareness

import "github.com/nstehr/vimy/vimy-tactics/model"

const (
	quadCapacity = 8
	quadMaxDepth = 8
)

// Rect is an axis-aligned tile rectangle, inclusive of Min and exclusive of Max.
type Rect struct {
	Min, Max model.Point
}

func (r Rect) contains(p model.Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

func (r Rect) intersects(o Rect) bool {
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X && r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y
}

// Hostile is one indexed enemy position and its estimated firepower.
type Hostile struct {
	ID     int
	Pos    model.Point
	Threat float64
}

// HostileIndex is a point quadtree over visible hostile actors. It is rebuilt
// from scratch every update rather than maintained incrementally.
type HostileIndex struct {
	root *quadNode
	size int
}

type quadNode struct {
	bounds   Rect
	depth    int
	items    []Hostile
	children *[4]quadNode
}

func NewHostileIndex(width, height int) *HostileIndex {
	return &HostileIndex{root: &quadNode{bounds: Rect{Max: model.Point{X: width, Y: height}}}}
}

// Rebuild replaces the index contents with the given actors.
func (h *HostileIndex) Rebuild(actors []model.Actor) {
	h.root = &quadNode{bounds: h.root.bounds}
	h.size = 0
	for _, a := range actors {
		if h.root.insert(Hostile{ID: a.ID, Pos: a.Pos, Threat: Firepower(a)}) {
			h.size++
		}
	}
}

func (h *HostileIndex) Len() int { return h.size }

// QueryRect returns hostiles inside r.
func (h *HostileIndex) QueryRect(r Rect) []Hostile {
	var out []Hostile
	h.root.query(r, func(x Hostile) { out = append(out, x) })
	return out
}

// QueryRadius returns hostiles within radius tiles of p.
func (h *HostileIndex) QueryRadius(p model.Point, radius float64) []Hostile {
	r := int(radius) + 1
	box := Rect{Min: model.Point{X: p.X - r, Y: p.Y - r}, Max: model.Point{X: p.X + r + 1, Y: p.Y + r + 1}}
	var out []Hostile
	h.root.query(box, func(x Hostile) {
		if x.Pos.DistanceTo(p) <= radius {
			out = append(out, x)
		}
	})
	return out
}

func (n *quadNode) insert(x Hostile) bool {
	if !n.bounds.contains(x.Pos) {
		return false
	}
	if n.children == nil {
		if len(n.items) < quadCapacity || n.depth >= quadMaxDepth || !n.splittable() {
			n.items = append(n.items, x)
			return true
		}
		n.split()
	}
	for i := range n.children {
		if n.children[i].insert(x) {
			return true
		}
	}
	return false
}

func (n *quadNode) splittable() bool {
	return n.bounds.Max.X-n.bounds.Min.X > 1 && n.bounds.Max.Y-n.bounds.Min.Y > 1
}

func (n *quadNode) split() {
	b := n.bounds
	mx := (b.Min.X + b.Max.X) / 2
	my := (b.Min.Y + b.Max.Y) / 2
	n.children = &[4]quadNode{
		{bounds: Rect{Min: b.Min, Max: model.Point{X: mx, Y: my}}, depth: n.depth + 1},
		{bounds: Rect{Min: model.Point{X: mx, Y: b.Min.Y}, Max: model.Point{X: b.Max.X, Y: my}}, depth: n.depth + 1},
		{bounds: Rect{Min: model.Point{X: b.Min.X, Y: my}, Max: model.Point{X: mx, Y: b.Max.Y}}, depth: n.depth + 1},
		{bounds: Rect{Min: model.Point{X: mx, Y: my}, Max: b.Max}, depth: n.depth + 1},
	}
	items := n.items
	n.items = nil
	for _, it := range items {
		for i := range n.children {
			if n.children[i].insert(it) {
				break
			}
		}
	}
}

func (n *quadNode) query(r Rect, fn func(Hostile)) {
	if !n.bounds.intersects(r) {
		return
	}
	for _, it := range n.items {
		if r.contains(it.Pos) {
			fn(it)
		}
	}
	if n.children != nil {
		for i := range n.children {
			n.children[i].query(r, fn)
		}
	}
}
