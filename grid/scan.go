package grid

// Step is one unit of scan work: the cell to recompute and the stage of a
// multi-pass strategy it belongs to.
type Step struct {
	X, Y  int
	Stage int
}

// ScanStrategy decides which cell the cache recomputes next.
type ScanStrategy interface {
	Next(width, height int) Step
}

// SequentialScan visits every cell in row-major order, then wraps around.
type SequentialScan struct {
	next int
}

func NewSequentialScan() *SequentialScan { return &SequentialScan{} }

func (s *SequentialScan) Next(width, height int) Step {
	i := s.next
	s.next = (s.next + 1) % (width * height)
	return Step{X: i % width, Y: i / width}
}

// Order is the raster direction of one stage.
type Order int

const (
	Forward Order = iota // top-left to bottom-right
	Reverse              // bottom-right to top-left
)

// StagedScan runs one full raster pass per stage, in order, then starts over
// at stage 0. Cycles counts how many times every stage has been completed.
type StagedScan struct {
	stages []Order
	stage  int
	pos    int
	cycles int
}

func NewStagedScan(stages ...Order) *StagedScan {
	if len(stages) == 0 {
		stages = []Order{Forward}
	}
	return &StagedScan{stages: stages}
}

func (s *StagedScan) Next(width, height int) Step {
	total := width * height
	i := s.pos
	if s.stages[s.stage] == Reverse {
		i = total - 1 - s.pos
	}
	step := Step{X: i % width, Y: i / width, Stage: s.stage}

	s.pos++
	if s.pos >= total {
		s.pos = 0
		s.stage++
		if s.stage >= len(s.stages) {
			s.stage = 0
			s.cycles++
		}
	}
	return step
}

// Cycles returns the number of completed passes over all stages.
func (s *StagedScan) Cycles() int { return s.cycles }

// Stage returns the stage the next step belongs to.
func (s *StagedScan) Stage() int { return s.stage }
