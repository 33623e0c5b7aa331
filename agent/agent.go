package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nstehr/vimy/vimy-tactics/awareness"
	"github.com/nstehr/vimy/vimy-tactics/config"
	"github.com/nstehr/vimy/vimy-tactics/ipc"
	"github.com/nstehr/vimy/vimy-tactics/mission"
	"github.com/nstehr/vimy/vimy-tactics/model"
	"github.com/nstehr/vimy/vimy-tactics/orders"
)

var ErrNoMap = errors.New("game_state received before map_info")

// Agent owns the decision-making for a single player session. Handlers run
// on the connection's read loop, one message at a time.
type Agent struct {
	ID      uuid.UUID
	Conn    *ipc.Connection
	Player  string
	Faction string

	tun  config.Tuning
	sink orders.Sink

	m       *model.Map
	aw      *awareness.MatchAwareness
	ctl     *mission.Controller
	batch   *orders.Batcher
	started bool
	prev    *stateSnapshot
}

func New(conn *ipc.Connection, tun config.Tuning) *Agent {
	return &Agent{
		ID:    uuid.New(),
		Conn:  conn,
		tun:   tun,
		sink:  ipc.OrderSink{Conn: conn},
		batch: orders.NewBatcher(),
	}
}

func (a *Agent) ack(n int) (*ipc.Envelope, error) {
	env, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Session: a.ID.String(), Orders: n})
	if err != nil {
		return nil, err
	}
	return &env, nil
}

// HandleHello completes the handshake so the host knows the sidecar is ready.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}

	a.Player = hello.Player
	a.Faction = hello.Faction
	if a.Conn != nil {
		a.Conn.Player = hello.Player
	}
	slog.Info("player identified", "player", a.Player, "faction", a.Faction, "session", a.ID)
	return a.ack(0)
}

// HandleMapInfo builds the per-game session: static map, match awareness and
// the mission controller with its factories. A second map_info starts a new game.
func (a *Agent) HandleMapInfo(env ipc.Envelope) (*ipc.Envelope, error) {
	var info ipc.MapInfoMessage
	if err := json.Unmarshal(env.Data, &info); err != nil {
		return nil, fmt.Errorf("unmarshal map_info: %w", err)
	}

	m, err := model.NewMap(info)
	if err != nil {
		return nil, fmt.Errorf("map: %w", err)
	}
	aw, err := awareness.New(info.Width, info.Height, a.tun)
	if err != nil {
		return nil, fmt.Errorf("awareness: %w", err)
	}
	ctl := mission.NewController(a.tun)
	if err := ctl.UseFactories(mission.DefaultFactories(a.tun)...); err != nil {
		return nil, err
	}

	a.m, a.aw, a.ctl = m, aw, ctl
	a.started, a.prev = false, nil
	slog.Info("game session started",
		"player", a.Player,
		"session", a.ID,
		"width", info.Width,
		"height", info.Height,
		"starts", len(info.StartLocations),
		"rules", len(info.Rules),
	)
	return a.ack(0)
}

// HandleGameState runs one AI tick: awareness, missions, then the batched
// orders go out before the ack.
func (a *Agent) HandleGameState(env ipc.Envelope) (*ipc.Envelope, error) {
	var gs ipc.GameStateMessage
	if err := json.Unmarshal(env.Data, &gs); err != nil {
		return nil, fmt.Errorf("unmarshal GameState: %w", err)
	}
	if a.m == nil {
		return nil, ErrNoMap
	}

	w, err := model.NewSnapshot(a.m, gs)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if !a.started {
		if err := a.aw.OnGameStart(w); err != nil {
			return nil, fmt.Errorf("game start: %w", err)
		}
		a.started = true
	}

	cur := takeSnapshot(w)
	events := detectEvents(gs.Tick, a.prev, cur)
	a.prev = &cur
	for _, e := range events {
		slog.Info("game event", "player", a.Player, "kind", e.Kind, "tick", e.Tick, "detail", e.Detail)
	}
	if len(events) > 0 {
		a.aw.InvalidateThreat()
	}

	if err := a.aw.OnAiUpdate(w); err != nil {
		return nil, fmt.Errorf("awareness update: %w", err)
	}
	a.ctl.OnAiUpdate(w, a.aw, a.batch)

	n, err := a.batch.Flush(a.sink)
	if err != nil {
		return nil, fmt.Errorf("send orders: %w", err)
	}

	slog.Debug("game state processed",
		"player", gs.Player.Name,
		"tick", gs.Tick,
		"cash", gs.Player.Cash,
		"buildings", len(gs.Buildings),
		"units", len(gs.Units),
		"enemies", len(gs.Enemies),
		"missions", len(a.ctl.Missions()),
		"orders", n,
		"should_attack", a.aw.ShouldAttack(),
	)
	return a.ack(n)
}
