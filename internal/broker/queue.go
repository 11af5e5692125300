package broker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

type message struct {
	topic   string
	payload string
}

// QueuedPublisher decouples the transcription loop from transport slowness
// with a bounded queue and a single delivery worker. Overflow policy:
// partial results drop the oldest queued partial (freshness over
// completeness), final results wait briefly for room and are dropped with an
// error if the queue stays full (the drop is observable either way).
type QueuedPublisher struct {
	conn       Connection
	finalTopic string
	finalWait  time.Duration
	logger     *log.Logger

	ch        chan message
	wg        sync.WaitGroup
	closeOnce sync.Once

	droppedPartials atomic.Uint64
	droppedFinals   atomic.Uint64
	deliveryErrors  atomic.Uint64
}

func NewQueuedPublisher(conn Connection, queueSize int, finalTopic string, finalWait time.Duration) *QueuedPublisher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if finalWait <= 0 {
		finalWait = time.Second
	}

	q := &QueuedPublisher{
		conn:       conn,
		finalTopic: finalTopic,
		finalWait:  finalWait,
		logger:     log.WithPrefix("broker"),
		ch:         make(chan message, queueSize),
	}

	q.wg.Add(1)
	go q.deliverLoop()

	return q
}

// Publish enqueues one message for delivery. Only a dropped final result is
// reported as an error; dropped partials are counted silently.
func (q *QueuedPublisher) Publish(topic, payload string) error {
	m := message{topic: topic, payload: payload}

	if topic == q.finalTopic {
		select {
		case q.ch <- m:
			return nil
		case <-time.After(q.finalWait):
			q.droppedFinals.Add(1)
			return fmt.Errorf("publish queue full: dropped final result for %s", topic)
		}
	}

	select {
	case q.ch <- m:
		return nil
	default:
	}

	// full: evict the oldest queued message, the stale hypothesis loses.
	// A queued final is never traded for a fresh hypothesis: it goes back
	// and the incoming partial is dropped instead.
	select {
	case evicted := <-q.ch:
		if evicted.topic == q.finalTopic {
			select {
			case q.ch <- evicted:
				q.droppedPartials.Add(1)
				return nil
			default:
				q.droppedFinals.Add(1)
				q.logger.Warn("publish queue full, dropped final result", "topic", evicted.topic)
			}
		} else {
			q.droppedPartials.Add(1)
		}
	default:
	}
	select {
	case q.ch <- m:
	default:
		q.droppedPartials.Add(1)
	}
	return nil
}

// Close drains the queue and stops the delivery worker.
func (q *QueuedPublisher) Close() {
	q.closeOnce.Do(func() {
		close(q.ch)
	})
	q.wg.Wait()
}

func (q *QueuedPublisher) DroppedPartials() uint64 { return q.droppedPartials.Load() }
func (q *QueuedPublisher) DroppedFinals() uint64   { return q.droppedFinals.Load() }
func (q *QueuedPublisher) DeliveryErrors() uint64  { return q.deliveryErrors.Load() }

func (q *QueuedPublisher) deliverLoop() {
	defer q.wg.Done()

	for m := range q.ch {
		if err := q.conn.Publish(m.topic, m.payload); err != nil {
			q.deliveryErrors.Add(1)
			q.logger.Warn("delivery failed", "topic", m.topic, "err", err)
		}
	}
}
