package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/shipment-ledger/models"
	"go.uber.org/zap"
)

// collectingSink captures delivered notifications for assertions.
type collectingSink struct {
	mu            sync.Mutex
	notifications []*Notification
}

func (s *collectingSink) Deliver(n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *collectingSink) all() []*Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func newStartedService(t *testing.T, sink Sink, cfg Config) *Service {
	t.Helper()
	svc := NewService(sink, zap.NewNop(), cfg)
	require.NoError(t, svc.Start())
	return svc
}

func TestServiceDeliversNotifications(t *testing.T) {
	sink := &collectingSink{}
	svc := newStartedService(t, sink, Config{BufferSize: 16, WorkerCount: 2})

	svc.ShipmentRegistered("S1", "ownerA")
	svc.ShipmentStatusUpdated("S1", models.StatusInTransit)
	svc.ShippingEventRecorded("E1", "S1", models.StatusInTransit)

	require.NoError(t, svc.Stop(2*time.Second))

	delivered := sink.all()
	require.Len(t, delivered, 3)

	kinds := make(map[Kind]*Notification, len(delivered))
	for _, n := range delivered {
		kinds[n.Kind] = n
		assert.Equal(t, "S1", n.ShipmentID)
		assert.NotZero(t, n.ID)
		assert.False(t, n.EmittedAt.IsZero())
	}

	registered := kinds[KindShipmentRegistered]
	require.NotNil(t, registered)
	assert.Equal(t, "ownerA", registered.Owner)
	assert.Equal(t, models.StatusPending, registered.Status)

	updated := kinds[KindShipmentStatusUpdated]
	require.NotNil(t, updated)
	assert.Equal(t, models.StatusInTransit, updated.Status)

	recorded := kinds[KindShippingEventRecorded]
	require.NotNil(t, recorded)
	assert.Equal(t, "E1", recorded.EventID)
	assert.Equal(t, models.StatusInTransit, recorded.Status)
}

func TestServiceStartStop(t *testing.T) {
	sink := &collectingSink{}
	svc := newStartedService(t, sink, Config{})

	assert.Error(t, svc.Start(), "double start must fail")
	require.NoError(t, svc.Stop(2*time.Second))
	assert.Error(t, svc.Stop(2*time.Second), "double stop must fail")
}

func TestPublishBeforeStartDrops(t *testing.T) {
	sink := &collectingSink{}
	svc := NewService(sink, zap.NewNop(), Config{})

	// Must not panic or block; the notification is dropped.
	svc.ShipmentRegistered("S1", "ownerA")

	require.NoError(t, svc.Start())
	require.NoError(t, svc.Stop(2*time.Second))
	assert.Empty(t, sink.all())
}

// blockingSink holds deliveries until released, to fill the buffer.
type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Deliver(n *Notification) error {
	<-s.release
	return nil
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	svc := newStartedService(t, sink, Config{BufferSize: 1, WorkerCount: 1})

	// First fills the worker, second fills the buffer, the rest must drop
	// without blocking the publisher.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			svc.ShipmentRegistered("S1", "ownerA")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full buffer")
	}

	close(sink.release)
	require.NoError(t, svc.Stop(2*time.Second))
}

func TestConfigDefaults(t *testing.T) {
	svc := NewService(&collectingSink{}, zap.NewNop(), Config{BufferSize: -1, WorkerCount: 0})
	assert.Equal(t, DefaultConfig().BufferSize, svc.bufferSize)
	assert.Equal(t, DefaultConfig().WorkerCount, svc.workerCount)
}
