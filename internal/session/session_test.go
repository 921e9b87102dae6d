package session

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/abdoElHodaky/cda-exchange/internal/matching"
	"github.com/abdoElHodaky/cda-exchange/internal/protocol"
	"github.com/abdoElHodaky/cda-exchange/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startServer(t *testing.T) (*Server, context.CancelFunc) {
	t.Helper()
	sched := timer.New(context.Background())
	engine := matching.New("AAPL", sched, zap.NewNop())

	srv, err := New("127.0.0.1:0", engine, sched, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Run(ctx)
	t.Cleanup(func() {
		cancel()
		sched.Stop()
	})
	return srv, cancel
}

func dial(t *testing.T, srv *Server) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn net.Conn) protocol.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	header := make([]byte, 1)
	_, err := conn.Read(header)
	require.NoError(t, err)

	mt, err := protocol.LookupByHeader(header[0])
	require.NoError(t, err)
	size, err := mt.PayloadSize()
	require.NoError(t, err)

	payload := make([]byte, size)
	n := 0
	for n < size {
		m, err := conn.Read(payload[n:])
		require.NoError(t, err)
		n += m
	}

	msg, err := protocol.Decode(mt, payload)
	require.NoError(t, err)
	return msg
}

func TestEnterOrderRoundTripOverTCP(t *testing.T) {
	srv, _ := startServer(t)
	conn := dial(t, srv)

	enter := &protocol.EnterOrder{
		OrderToken:       protocol.NewToken("B1"),
		BuySellIndicator: protocol.SideBuy,
		Shares:           10,
		Stock:            protocol.NewStock("AAPL"),
		Price:            50,
		TimeInForce:      99999,
		Firm:             protocol.NewFirm("FRM1"),
		Display:          'Y',
	}
	_, err := conn.Write(protocol.Encode(enter))
	require.NoError(t, err)

	accepted, ok := readMessage(t, conn).(*protocol.Accepted)
	require.True(t, ok)
	assert.Equal(t, "B1", accepted.Enter.OrderToken.String())

	bbo, ok := readMessage(t, conn).(*protocol.BestBidAndOffer)
	require.True(t, ok)
	assert.Equal(t, uint32(50), bbo.BestBid)
}

func TestDisconnectDoesNotCrashServer(t *testing.T) {
	srv, _ := startServer(t)
	conn := dial(t, srv)
	conn.Close()

	time.Sleep(50 * time.Millisecond)

	conn2 := dial(t, srv)
	enter := &protocol.EnterOrder{
		OrderToken:       protocol.NewToken("B2"),
		BuySellIndicator: protocol.SideBuy,
		Shares:           5,
		Stock:            protocol.NewStock("AAPL"),
		Price:            40,
		TimeInForce:      99999,
	}
	_, err := conn2.Write(protocol.Encode(enter))
	require.NoError(t, err)

	accepted, ok := readMessage(t, conn2).(*protocol.Accepted)
	require.True(t, ok)
	assert.Equal(t, "B2", accepted.Enter.OrderToken.String())
}
