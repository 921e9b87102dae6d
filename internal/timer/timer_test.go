package timer

import (
	"context"
	"testing"
	"time"

	"github.com/abdoElHodaky/cda-exchange/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleDeliversAfterDelay(t *testing.T) {
	s := New(context.Background())
	defer s.Stop()

	tok := protocol.NewToken("T1")
	s.Schedule(tok, 0)

	select {
	case msg := <-s.Deliveries():
		assert.Equal(t, tok, msg.OrderToken)
		assert.Equal(t, uint32(0), msg.Shares)
	case <-time.After(time.Second):
		t.Fatal("expected a delivery")
	}
}

func TestCancelPreventsDelivery(t *testing.T) {
	s := New(context.Background())
	defer s.Stop()

	tok := protocol.NewToken("T1")
	s.Schedule(tok, 1)
	s.Cancel(tok)

	select {
	case msg := <-s.Deliveries():
		t.Fatalf("unexpected delivery: %+v", msg)
	case <-time.After(1500 * time.Millisecond):
	}
}

func TestRescheduleReplacesPriorTimer(t *testing.T) {
	s := New(context.Background())
	defer s.Stop()

	tok := protocol.NewToken("T1")
	s.Schedule(tok, 10)
	s.Schedule(tok, 0)

	select {
	case msg := <-s.Deliveries():
		require.Equal(t, tok, msg.OrderToken)
	case <-time.After(time.Second):
		t.Fatal("expected a delivery from the replacement timer")
	}

	select {
	case msg := <-s.Deliveries():
		t.Fatalf("unexpected second delivery: %+v", msg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestStopHaltsPendingTimers(t *testing.T) {
	s := New(context.Background())
	tok := protocol.NewToken("T1")
	s.Schedule(tok, 1)
	s.Stop()

	select {
	case msg := <-s.Deliveries():
		t.Fatalf("unexpected delivery after Stop: %+v", msg)
	case <-time.After(1500 * time.Millisecond):
	}
}
