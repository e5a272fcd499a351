package wsserver

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IceDynamix/reliquary-archiver-go/internal/bus"
	"github.com/IceDynamix/reliquary-archiver-go/internal/exporter"
)

func dial(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	addr := strings.Replace(s.Addr().String(), "0.0.0.0", "127.0.0.1", 1)
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws", addr), nil)
	require.NoError(t, err)
	return conn
}

func readWire(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	var w wireEvent
	require.NoError(t, conn.ReadJSON(&w))
	return w
}

func TestClientReceivesPublishedEvent(t *testing.T) {
	b := bus.New(nil)
	s := New(b)
	require.NoError(t, s.Reconfigure(0))
	defer s.Close()

	conn := dial(t, s)
	defer conn.Close()

	b.Publish(exporter.UpdateGachaFunds{Funds: exporter.GachaFunds{StellarJade: 42}})

	w := readWire(t, conn)
	assert.Equal(t, "UpdateGachaFunds", w.Event)

	data, err := json.Marshal(w.Data)
	require.NoError(t, err)
	var doc exporter.GachaFundsDoc
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, uint32(42), doc.StellarJade)
}

func TestClientReceivesSnapshotOnConnect(t *testing.T) {
	snap := exporter.InitialScan{}
	b := bus.New(func() (exporter.Event, bool) { return snap, true })
	s := New(b)
	require.NoError(t, s.Reconfigure(0))
	defer s.Close()

	conn := dial(t, s)
	defer conn.Close()

	w := readWire(t, conn)
	assert.Equal(t, "InitialScan", w.Event)
}

func TestInboundFramesAreDiscarded(t *testing.T) {
	b := bus.New(nil)
	s := New(b)
	require.NoError(t, s.Reconfigure(0))
	defer s.Close()

	conn := dial(t, s)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"ignored": "true"}))

	b.Publish(exporter.UpdateGachaFunds{Funds: exporter.GachaFunds{StellarJade: 7}})
	w := readWire(t, conn)
	assert.Equal(t, "UpdateGachaFunds", w.Event)
}

func TestReconfigureClosesExistingSessions(t *testing.T) {
	b := bus.New(nil)
	s := New(b)
	require.NoError(t, s.Reconfigure(0))

	conn := dial(t, s)
	defer conn.Close()
	time.Sleep(50 * time.Millisecond) // let the server finish registering the connection

	require.NoError(t, s.Reconfigure(0))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "connection should be closed after reconfiguring the port")

	defer s.Close()
}

func TestDeleteEventCarriesUIDsDirectly(t *testing.T) {
	b := bus.New(nil)
	s := New(b)
	require.NoError(t, s.Reconfigure(0))
	defer s.Close()

	conn := dial(t, s)
	defer conn.Close()

	b.Publish(exporter.DeleteRelics{UIDs: []uint32{1, 2, 3}})
	w := readWire(t, conn)
	assert.Equal(t, "DeleteRelics", w.Event)

	data, err := json.Marshal(w.Data)
	require.NoError(t, err)
	var uids []uint32
	require.NoError(t, json.Unmarshal(data, &uids))
	assert.Equal(t, []uint32{1, 2, 3}, uids)
}
