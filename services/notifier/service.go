// Package notifier delivers ledger notifications to external observers.
// Delivery is fire-and-forget and sits outside the transactional contract:
// a commit is final whether or not its notification is ever consumed.
package notifier

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/upb/shipment-ledger/models"
	"go.uber.org/zap"
)

// Kind identifies the kind of ledger notification
type Kind string

const (
	KindShipmentRegistered    Kind = "shipment_registered"
	KindShipmentStatusUpdated Kind = "shipment_status_updated"
	KindShippingEventRecorded Kind = "shipping_event_recorded"
)

// Notification is a single post-commit message for external observers.
type Notification struct {
	ID         uuid.UUID             `json:"id"`
	Kind       Kind                  `json:"kind"`
	ShipmentID string                `json:"shipment_id"`
	Owner      string                `json:"owner,omitempty"`
	EventID    string                `json:"event_id,omitempty"`
	Status     models.ShipmentStatus `json:"status,omitempty"`
	EmittedAt  time.Time             `json:"emitted_at"`
}

// Sink receives notifications. Implementations must not block for long;
// slow sinks delay only the worker that picked the notification up.
type Sink interface {
	Deliver(n *Notification) error
}

// Service fans notifications out to a sink through a buffered channel and a
// pool of workers.
type Service struct {
	sink        Sink
	logger      *zap.Logger
	notifyChan  chan *Notification
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	started     bool
	mu          sync.Mutex
}

// Config holds configuration for the notifier Service
type Config struct {
	BufferSize  int // Size of the notification buffer channel
	WorkerCount int // Number of concurrent delivery workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  4096,
		WorkerCount: 4,
	}
}

// NewService creates a new notifier Service
func NewService(sink Sink, logger *zap.Logger, config Config) *Service {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultConfig().WorkerCount
	}
	return &Service{
		sink:        sink,
		logger:      logger,
		notifyChan:  make(chan *Notification, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
	}
}

// Start starts the background delivery workers
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("notifier already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started notifier",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop drains pending notifications and stops the workers.
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("notifier not started")
	}
	s.started = false
	s.mu.Unlock()

	s.logger.Info("stopping notifier", zap.Int("pending", len(s.notifyChan)))
	close(s.notifyChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("notifier stopped")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("notifier stop timeout after %v", timeout)
	}
}

// Publish enqueues a notification without blocking. When the buffer is full
// the notification is dropped: delivery is fire-and-forget and never feeds
// back into the ledger's accept/reject decision.
func (s *Service) Publish(n *Notification) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		s.logger.Warn("notifier not started, dropping notification",
			zap.String("kind", string(n.Kind)),
			zap.String("shipment_id", n.ShipmentID))
		return
	}
	s.mu.Unlock()

	select {
	case s.notifyChan <- n:
	default:
		s.logger.Warn("notification buffer full, dropping notification",
			zap.String("kind", string(n.Kind)),
			zap.String("shipment_id", n.ShipmentID))
	}
}

// ShipmentRegistered publishes a registration notification.
func (s *Service) ShipmentRegistered(shipmentID, owner string) {
	s.Publish(&Notification{
		ID:         uuid.New(),
		Kind:       KindShipmentRegistered,
		ShipmentID: shipmentID,
		Owner:      owner,
		Status:     models.StatusPending,
		EmittedAt:  time.Now().UTC(),
	})
}

// ShipmentStatusUpdated publishes a status-change notification.
func (s *Service) ShipmentStatusUpdated(shipmentID string, status models.ShipmentStatus) {
	s.Publish(&Notification{
		ID:         uuid.New(),
		Kind:       KindShipmentStatusUpdated,
		ShipmentID: shipmentID,
		Status:     status,
		EmittedAt:  time.Now().UTC(),
	})
}

// ShippingEventRecorded publishes an event-recorded notification carrying
// the shipment's resulting status.
func (s *Service) ShippingEventRecorded(eventID, shipmentID string, status models.ShipmentStatus) {
	s.Publish(&Notification{
		ID:         uuid.New(),
		Kind:       KindShippingEventRecorded,
		ShipmentID: shipmentID,
		EventID:    eventID,
		Status:     status,
		EmittedAt:  time.Now().UTC(),
	})
}

// worker delivers notifications from the channel until it is closed.
func (s *Service) worker(id int) {
	defer s.wg.Done()

	for n := range s.notifyChan {
		if err := s.sink.Deliver(n); err != nil {
			s.logger.Error("failed to deliver notification",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("kind", string(n.Kind)),
				zap.String("shipment_id", n.ShipmentID))
		}
	}
}

// LogSink is a Sink that writes notifications to the structured log. Used
// when no external bus is configured.
type LogSink struct {
	Logger *zap.Logger
}

// Deliver implements Sink.
func (s *LogSink) Deliver(n *Notification) error {
	s.Logger.Info("ledger notification",
		zap.String("kind", string(n.Kind)),
		zap.String("shipment_id", n.ShipmentID),
		zap.String("event_id", n.EventID),
		zap.String("owner", n.Owner),
		zap.String("status", string(n.Status)))
	return nil
}
