package ipc

import "github.com/nstehr/vimy/vimy-tactics/orders"

// OrderCommand is one grouped order for the host to execute. Point and
// target fields are only present when the order carries them.
type OrderCommand struct {
	ActorIDs []uint32 `json:"actor_ids"`
	Order    string   `json:"order"`
	X        *int     `json:"x,omitempty"`
	Y        *int     `json:"y,omitempty"`
	TargetID *uint32  `json:"target_id,omitempty"`
}

func NewOrderCommand(g orders.GroupedOrder) OrderCommand {
	cmd := OrderCommand{
		ActorIDs: make([]uint32, len(g.UnitIDs)),
		Order:    string(g.Order),
	}
	for i, id := range g.UnitIDs {
		cmd.ActorIDs[i] = uint32(id)
	}
	if g.HasPoint {
		x, y := g.Point.X, g.Point.Y
		cmd.X, cmd.Y = &x, &y
	}
	if g.HasTarget {
		t := uint32(g.TargetID)
		cmd.TargetID = &t
	}
	return cmd
}

// OrderSink sends grouped orders over a connection.
type OrderSink struct {
	Conn *Connection
}

func (s OrderSink) Issue(g orders.GroupedOrder) error {
	return s.Conn.Send(TypeOrder, NewOrderCommand(g))
}
