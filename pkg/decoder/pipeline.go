package decoder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dbehnke/dmr-lc/pkg/capture"
	"github.com/dbehnke/dmr-lc/pkg/lc"
	"github.com/dbehnke/dmr-lc/pkg/logger"
	"github.com/google/uuid"
)

// Timeslots is the number of TDMA slots on a DMR carrier
const Timeslots = 2

// Result is one decoded message with the context it was decoded in
type Result struct {
	ID            string
	SessionID     string
	Kind          capture.Kind
	Message       lc.Message
	CorrectedBits int
	// Alias is the talker alias assembled so far on the message's timeslot,
	// set only on talker alias messages.
	Alias string
	// Callsign is the directory entry for the message's source, if any.
	Callsign  string
	DecodedAt time.Time
}

// Directory resolves radio ids to callsigns
type Directory interface {
	Callsign(radioID uint32) string
}

// Sink receives decoded results. Handle is called from one goroutine per
// timeslot, so implementations must be safe for concurrent use.
type Sink interface {
	Name() string
	Handle(ctx context.Context, r Result) error
}

// Stats summarizes a pipeline run
type Stats struct {
	Decoded   int
	Valid     int
	Invalid   int
	Malformed int
	SinkErrs  int
}

// Pipeline decodes bursts with one worker per timeslot. Order is preserved
// within a timeslot; the two slots proceed independently.
type Pipeline struct {
	decoder   *Decoder
	log       *logger.Logger
	sessionID string
	queueSize int
	sinks     []Sink

	// Directory, if set, fills Result.Callsign.
	Directory Directory

	// OnMalformed, if set, is called for bursts whose payload cannot be
	// decoded into bits.
	OnMalformed func(capture.Burst, error)
}

// NewPipeline creates a pipeline with a fresh session id
func NewPipeline(decoder *Decoder, log *logger.Logger, queueSize int) *Pipeline {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Pipeline{
		decoder:   decoder,
		log:       log.WithComponent("decoder"),
		sessionID: uuid.NewString(),
		queueSize: queueSize,
	}
}

// AddSink registers a sink. Must be called before Run.
func (p *Pipeline) AddSink(s Sink) {
	p.sinks = append(p.sinks, s)
}

// SessionID identifies this pipeline's results
func (p *Pipeline) SessionID() string {
	return p.sessionID
}

// RunCapture decodes every burst of a capture
func (p *Pipeline) RunCapture(ctx context.Context, c *capture.Capture) Stats {
	in := make(chan capture.Burst)
	go func() {
		defer close(in)
		for _, b := range c.Bursts {
			select {
			case in <- b:
			case <-ctx.Done():
				return
			}
		}
	}()
	return p.Run(ctx, in)
}

// Run decodes bursts from in until it is closed or ctx is cancelled
func (p *Pipeline) Run(ctx context.Context, in <-chan capture.Burst) Stats {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total Stats
	)

	queues := make([]chan capture.Burst, Timeslots)
	for slot := range queues {
		queues[slot] = make(chan capture.Burst, p.queueSize)
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			s := p.worker(ctx, slot, queues[slot])
			mu.Lock()
			total.add(s)
			mu.Unlock()
		}(slot)
	}

	p.log.Info("Decode session started", logger.String("session", p.sessionID))

dispatch:
	for {
		select {
		case <-ctx.Done():
			break dispatch
		case b, ok := <-in:
			if !ok {
				break dispatch
			}
			if b.Timeslot < 0 || b.Timeslot >= Timeslots {
				p.malformed(b, errTimeslot(b.Timeslot))
				mu.Lock()
				total.Malformed++
				mu.Unlock()
				continue
			}
			select {
			case queues[b.Timeslot] <- b:
			case <-ctx.Done():
				break dispatch
			}
		}
	}

	for _, q := range queues {
		close(q)
	}
	wg.Wait()

	p.log.Info("Decode session finished",
		logger.String("session", p.sessionID),
		logger.Int("decoded", total.Decoded),
		logger.Int("valid", total.Valid),
		logger.Int("invalid", total.Invalid),
		logger.Int("malformed", total.Malformed))
	return total
}

func (p *Pipeline) worker(ctx context.Context, slot int, queue <-chan capture.Burst) Stats {
	var (
		stats Stats
		alias aliasTracker
	)

	for b := range queue {
		if ctx.Err() != nil {
			continue
		}

		msg, err := p.decoder.Decode(b)
		if err != nil {
			stats.Malformed++
			p.malformed(b, err)
			continue
		}

		stats.Decoded++
		if msg.IsValid() {
			stats.Valid++
		} else {
			stats.Invalid++
		}

		r := Result{
			ID:            uuid.NewString(),
			SessionID:     p.sessionID,
			Kind:          b.Kind,
			Message:       msg,
			CorrectedBits: msg.Bits().CorrectedBitCount(),
			Alias:         alias.observe(msg),
			DecodedAt:     time.Now(),
		}
		if p.Directory != nil {
			if m, ok := msg.(sourced); ok && m.SourceAddress() != 0 {
				r.Callsign = p.Directory.Callsign(m.SourceAddress())
			}
		}

		p.log.Debug("Decoded link control",
			logger.Int("timeslot", slot),
			logger.String("message", msg.String()))

		for _, s := range p.sinks {
			if err := s.Handle(ctx, r); err != nil {
				stats.SinkErrs++
				p.log.Warn("Sink failed",
					logger.String("sink", s.Name()),
					logger.Int("timeslot", slot),
					logger.Error(err))
			}
		}
	}
	return stats
}

func (p *Pipeline) malformed(b capture.Burst, err error) {
	p.log.Warn("Dropping malformed burst",
		logger.Int64("timestamp", b.Timestamp),
		logger.Int("timeslot", b.Timeslot),
		logger.String("kind", string(b.Kind)),
		logger.Error(err))
	if p.OnMalformed != nil {
		p.OnMalformed(b, err)
	}
}

func errTimeslot(slot int) error {
	return fmt.Errorf("timeslot %d out of range", slot)
}

func (s *Stats) add(o Stats) {
	s.Decoded += o.Decoded
	s.Valid += o.Valid
	s.Invalid += o.Invalid
	s.Malformed += o.Malformed
	s.SinkErrs += o.SinkErrs
}
