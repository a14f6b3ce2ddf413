// Package worker provides an asynchronous worker pool that publishes answer
// events through a configured eventstream.Publisher.
//
// The pool decouples publishing from the request path so that a slow or
// unavailable event backend never delays an answer.
package worker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/pkg/eventstream"
)

var (
	defaultNumWorkers uint = 2
	defaultQueueSize  uint = 256
)

var (
	// ErrQueueFull is returned when an event is dropped because the queue is full.
	ErrQueueFull = errors.New("event queue full")

	// ErrPoolClosed is returned for events submitted after Close.
	ErrPoolClosed = errors.New("event pool closed")
)

// Config is the configuration options for the worker pool.
type Config struct {
	// Publisher delivers events to the backend.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered event channel (defaults to 256).
	QueueSize uint

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool publishes events asynchronously. It satisfies eventstream.Publisher.
type Pool struct {
	config *Config
	queue  chan *eventstream.AnswerEvent
	wg     sync.WaitGroup
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Publisher == nil {
		return nil, errors.New("publisher is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan *eventstream.AnswerEvent, c.QueueSize),
		logger: logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits an event for publishing.
// Returns true if enqueued, false if the queue is full or the pool is closed,
// resulting in the event being dropped.
func (p *Pool) Enqueue(event *eventstream.AnswerEvent) bool {
	return p.enqueue(event) == nil
}

// PublishAnswer enqueues event without waiting for delivery.
func (p *Pool) PublishAnswer(_ context.Context, event *eventstream.AnswerEvent) error {
	return p.enqueue(event)
}

func (p *Pool) enqueue(event *eventstream.AnswerEvent) error {
	if event == nil {
		return eventstream.ErrNilAnswerEvent
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.queue <- event:
		p.logger.Debug("event queued", zap.String("event_id", event.EventID))
		return nil
	default:
		p.logger.Error("event not queued, queue full, event dropped",
			zap.String("event_id", event.EventID),
		)
		return ErrQueueFull
	}
}

// Close stops accepting events, waits for queued events to drain and then
// closes the publisher.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	return p.config.Publisher.Close()
}

// worker is the inner worker thread that continuously pulls events off the queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("event worker started", zap.Uint("worker_id", id))

	for event := range p.queue {
		if err := p.config.Publisher.PublishAnswer(context.Background(), event); err != nil {
			p.logger.Warn("failed to publish answer event",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
		}
	}

	p.logger.Debug("event worker stopped", zap.Uint("worker_id", id))
}

var _ eventstream.Publisher = (*Pool)(nil)
