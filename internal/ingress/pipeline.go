// Package ingress moves raw MIDI messages off the driver's delivery goroutine,
// decodes them on a dedicated goroutine and hands the resulting pad events to
// the apply loop in arrival order.
package ingress

import (
	"context"
	"log/slog"
	"sync"

	"gitlab.com/gomidi/midi/v2"

	lkmidi "github.com/PixPMusic/gopher-linkb/internal/midi"
)

// DefaultQueueSize bounds the pad event channel.
const DefaultQueueSize = 1024

// MaxPending bounds the undecoded messages Deliver may queue.
const MaxPending = 16 * DefaultQueueSize

// Decoder converts one raw message into at most one pad event.
type Decoder interface {
	Decode(msg midi.Message) (lkmidi.PadEvent, bool, error)
}

// Pipeline is the two stage handoff between the device callback and the
// apply loop. Deliver may be called from any goroutine; Run must be called
// exactly once.
type Pipeline struct {
	decoder Decoder
	log     *slog.Logger

	mu         sync.Mutex
	pending    []midi.Message
	maxPending int
	wake       chan struct{}

	events chan lkmidi.PadEvent
}

// New creates a pipeline whose event channel holds up to queueSize events.
func New(decoder Decoder, queueSize int, logger *slog.Logger) *Pipeline {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		decoder:    decoder,
		log:        logger,
		maxPending: MaxPending,
		wake:       make(chan struct{}, 1),
		events:     make(chan lkmidi.PadEvent, queueSize),
	}
}

// Deliver queues raw messages for decoding. It never blocks on the decoder;
// messages that do not fit in the queue are dropped.
func (p *Pipeline) Deliver(msgs ...midi.Message) {
	if len(msgs) == 0 {
		return
	}
	p.mu.Lock()
	room := p.maxPending - len(p.pending)
	dropped := 0
	if len(msgs) > room {
		dropped = len(msgs) - max(room, 0)
		msgs = msgs[:max(room, 0)]
	}
	p.pending = append(p.pending, msgs...)
	p.mu.Unlock()

	if dropped > 0 {
		p.log.Warn("midi input queue full, dropped messages", "dropped", dropped, "queue_size", p.maxPending)
	}
	if len(msgs) == 0 {
		return
	}

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Events is read by the apply loop. It is closed when Run returns.
func (p *Pipeline) Events() <-chan lkmidi.PadEvent {
	return p.events
}

// Run decodes delivered messages until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	defer close(p.events)

	var batch []midi.Message
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.wake:
		}

		p.mu.Lock()
		batch, p.pending = p.pending, batch[:0]
		p.mu.Unlock()

		for _, msg := range batch {
			ev, ok, err := p.decoder.Decode(msg)
			if err != nil {
				p.log.Warn("dropped midi message", "message", msg.String(), "reason", err)
				continue
			}
			if !ok {
				continue
			}
			select {
			case p.events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
