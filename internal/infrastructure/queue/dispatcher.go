package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rinkside/pickup-api/internal/api/metrics"
	"github.com/rinkside/pickup-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Dispatcher delivers emails asynchronously through a fixed set of
// workers, sharded by recipient so retried sends for one address stay
// ordered. It satisfies ports.EmailSender: Send enqueues and returns
// immediately, decoupling request latency from SMTP latency.
type Dispatcher struct {
	workers []chan ports.EmailMessage
	sender  ports.EmailSender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers
// wrapping the given delivery sender. If numWorkers <= 0,
// defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.EmailSender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.EmailMessage, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.EmailMessage, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is
// cancelled; messages still queued at that point are dropped.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Send enqueues the message to the worker responsible for its
// recipient. Non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Send(_ context.Context, msg ports.EmailMessage) error {
	i := d.shardIndex(msg.To)
	d.workers[i] <- msg
	metrics.EmailQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
	return nil
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.EmailMessage) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.EmailQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			if err := d.sender.Send(ctx, msg); err != nil {
				metrics.EmailsFailedTotal.WithLabelValues(msg.Kind).Inc()
				d.log.Error().Err(err).
					Str("to", msg.To).
					Str("kind", msg.Kind).
					Int("worker_id", id).
					Msg("email delivery failed")
				continue
			}
			metrics.EmailsSentTotal.WithLabelValues(msg.Kind).Inc()
		}
	}
}
