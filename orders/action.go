// Package orders collects per-unit orders during a tick and issues them to
// the host as grouped calls.
package orders

import (
	"fmt"

	"github.com/nstehr/vimy/vimy-tactics/model"
)

type OrderType string

// Order names are shared with the host's command executor.
const (
	OrderMove       OrderType = "move"
	OrderAttackMove OrderType = "attack_move"
	OrderAttack     OrderType = "attack"
	OrderCapture    OrderType = "capture"
	OrderDeploy     OrderType = "deploy"
	OrderStop       OrderType = "stop"
)

// BatchableAction is one order for one unit. It is a comparable value so
// callers can use == to suppress re-issuing an identical order.
type BatchableAction struct {
	UnitID    int
	Order     OrderType
	Point     model.Point
	HasPoint  bool
	TargetID  int
	HasTarget bool
}

func Move(unit int, p model.Point) BatchableAction {
	return BatchableAction{UnitID: unit, Order: OrderMove, Point: p, HasPoint: true}
}

func AttackMove(unit int, p model.Point) BatchableAction {
	return BatchableAction{UnitID: unit, Order: OrderAttackMove, Point: p, HasPoint: true}
}

func Attack(unit, target int) BatchableAction {
	return BatchableAction{UnitID: unit, Order: OrderAttack, TargetID: target, HasTarget: true}
}

func Capture(unit, target int) BatchableAction {
	return BatchableAction{UnitID: unit, Order: OrderCapture, TargetID: target, HasTarget: true}
}

func Deploy(unit int) BatchableAction { return BatchableAction{UnitID: unit, Order: OrderDeploy} }
func Stop(unit int) BatchableAction   { return BatchableAction{UnitID: unit, Order: OrderStop} }

func (a BatchableAction) String() string {
	switch {
	case a.HasTarget:
		return fmt.Sprintf("%s unit=%d target=%d", a.Order, a.UnitID, a.TargetID)
	case a.HasPoint:
		return fmt.Sprintf("%s unit=%d at=%d,%d", a.Order, a.UnitID, a.Point.X, a.Point.Y)
	default:
		return fmt.Sprintf("%s unit=%d", a.Order, a.UnitID)
	}
}
