package ipc

import (
	"encoding/json"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nstehr/vimy/vimy-tactics/orders"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func send(t *testing.T, conn net.Conn, msgType string, data any) {
	t.Helper()
	env, err := NewEnvelope(msgType, data)
	require.NoError(t, err)
	require.NoError(t, WriteEnvelope(conn, env))
}

func TestReadLoopDispatchesAndReplies(t *testing.T) {
	server, client := net.Pipe()
	c := NewConnection(server, nil)

	var hellos []HelloMessage
	c.RegisterHandler(TypeHello, func(env Envelope) (*Envelope, error) {
		var h HelloMessage
		if err := json.Unmarshal(env.Data, &h); err != nil {
			return nil, err
		}
		hellos = append(hellos, h)
		ack, err := NewEnvelope(TypeAck, AckMessage{Status: "ok", Session: "s1"})
		return &ack, err
	})
	c.RegisterHandler("fail", func(Envelope) (*Envelope, error) {
		return nil, errors.New("handler failed")
	})
	c.RegisterHandler("quiet", func(Envelope) (*Envelope, error) { return nil, nil })

	done := make(chan struct{})
	go func() {
		c.ReadLoop()
		close(done)
	}()

	send(t, client, "unknown", struct{}{})
	send(t, client, "fail", struct{}{})
	send(t, client, "quiet", struct{}{})
	send(t, client, TypeHello, HelloMessage{Player: "Multi0", Faction: "allies"})

	resp, err := ReadEnvelope(client)
	require.NoError(t, err)
	assert.Equal(t, TypeAck, resp.Type)
	var ack AckMessage
	require.NoError(t, json.Unmarshal(resp.Data, &ack))
	assert.Equal(t, AckMessage{Status: "ok", Session: "s1"}, ack)

	require.NoError(t, client.Close())
	<-done
	assert.Equal(t, []HelloMessage{{Player: "Multi0", Faction: "allies"}}, hellos)
}

func TestReadLoopStopsOnBadFrame(t *testing.T) {
	server, client := net.Pipe()
	c := NewConnection(server, nil)
	done := make(chan struct{})
	go func() {
		c.ReadLoop()
		close(done)
	}()

	_, err := client.Write([]byte{0, 0, 0, 0})
	require.NoError(t, err)
	<-done
	client.Close()
}

func TestOrderSinkSendsOrders(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	c := NewConnection(server, nil)
	defer c.Close()

	b := orders.NewBatcher()
	b.Push(orders.Attack(1, 50))
	b.Push(orders.Attack(2, 50))
	b.Push(orders.Deploy(3))

	errc := make(chan error, 1)
	go func() {
		_, err := b.Flush(OrderSink{Conn: c})
		errc <- err
	}()

	var got []OrderCommand
	for range 2 {
		env, err := ReadEnvelope(client)
		require.NoError(t, err)
		require.Equal(t, TypeOrder, env.Type)
		var cmd OrderCommand
		require.NoError(t, json.Unmarshal(env.Data, &cmd))
		got = append(got, cmd)
	}
	require.NoError(t, <-errc)

	require.Len(t, got, 2)
	assert.Equal(t, []uint32{1, 2}, got[0].ActorIDs)
	require.NotNil(t, got[0].TargetID)
	assert.Equal(t, uint32(50), *got[0].TargetID)
	assert.Equal(t, "deploy", got[1].Order)
	assert.Nil(t, got[1].X)
}
