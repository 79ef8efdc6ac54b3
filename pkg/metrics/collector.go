package metrics

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dbehnke/dmr-lc/pkg/capture"
	"github.com/dbehnke/dmr-lc/pkg/decoder"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "dmr_lc"

// Collector counts decoded link control. It is a decoder.Sink and its
// Malformed method fits Pipeline.OnMalformed.
type Collector struct {
	registry *prometheus.Registry

	messages      *prometheus.CounterVec
	correctedBits *prometheus.CounterVec
	corrections   prometheus.Histogram
	malformed     *prometheus.CounterVec
	aliases       prometheus.Counter

	mu       sync.RWMutex
	snapshot Snapshot
}

// Snapshot is a point-in-time copy of the collector's tallies
type Snapshot struct {
	Decoded       uint64            `json:"decoded"`
	Valid         uint64            `json:"valid"`
	Invalid       uint64            `json:"invalid"`
	CorrectedBits uint64            `json:"corrected_bits"`
	Malformed     uint64            `json:"malformed"`
	ByOpcode      map[string]uint64 `json:"by_opcode"`
}

// NewCollector creates a collector with its own registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Decoded link control messages by opcode, timeslot and FEC result",
		}, []string{"opcode", "timeslot", "valid"}),
		correctedBits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corrected_bits_total",
			Help:      "Bits repaired by FEC or carrier lock correction",
		}, []string{"kind"}),
		corrections: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "corrected_bits_per_message",
			Help:      "Corrected bits per decoded message",
			Buckets:   []float64{0, 1, 2, 4, 8, 16},
		}),
		malformed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_bursts_total",
			Help:      "Bursts dropped before decoding",
		}, []string{"kind"}),
		aliases: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "talker_alias_updates_total",
			Help:      "Talker alias fragments that changed an assembled alias",
		}),
		snapshot: Snapshot{ByOpcode: make(map[string]uint64)},
	}
	c.registry.MustRegister(c.messages, c.correctedBits, c.corrections, c.malformed, c.aliases)
	return c
}

// Registry exposes the collector's metrics for serving
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Name implements decoder.Sink
func (c *Collector) Name() string { return "metrics" }

// Handle implements decoder.Sink
func (c *Collector) Handle(_ context.Context, r decoder.Result) error {
	msg := r.Message
	opcode := msg.Opcode().String()

	c.messages.WithLabelValues(opcode, strconv.Itoa(msg.Timeslot()+1), strconv.FormatBool(msg.IsValid())).Inc()
	c.correctedBits.WithLabelValues(string(r.Kind)).Add(float64(r.CorrectedBits))
	c.corrections.Observe(float64(r.CorrectedBits))
	if r.Alias != "" {
		c.aliases.Inc()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot.Decoded++
	if msg.IsValid() {
		c.snapshot.Valid++
	} else {
		c.snapshot.Invalid++
	}
	c.snapshot.CorrectedBits += uint64(r.CorrectedBits)
	c.snapshot.ByOpcode[opcode]++
	return nil
}

// Malformed records a burst that never reached the factory
func (c *Collector) Malformed(b capture.Burst, _ error) {
	c.malformed.WithLabelValues(string(b.Kind)).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot.Malformed++
}

// Snapshot returns a copy of the current tallies
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.snapshot
	s.ByOpcode = make(map[string]uint64, len(c.snapshot.ByOpcode))
	for k, v := range c.snapshot.ByOpcode {
		s.ByOpcode[k] = v
	}
	return s
}

// Flatten gathers every metric into name -> value, folding labels into the
// key as name{label=value,...}. Histograms report their sample sum.
func (c *Collector) Flatten() (map[string]float64, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if v, ok := metricValue(m); ok {
				out[metricKey(mf.GetName(), m.GetLabel())] = v
			}
		}
	}
	return out, nil
}

func metricValue(m *dto.Metric) (float64, bool) {
	switch {
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue(), true
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue(), true
	case m.GetHistogram() != nil:
		return m.GetHistogram().GetSampleSum(), true
	}
	return 0, false
}

func metricKey(name string, labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return name
	}
	pairs := make([]string, 0, len(labels))
	for _, l := range labels {
		pairs = append(pairs, l.GetName()+"="+l.GetValue())
	}
	sort.Strings(pairs)
	return name + "{" + strings.Join(pairs, ",") + "}"
}
