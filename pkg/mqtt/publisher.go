package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dbehnke/dmr-lc/pkg/decoder"
	"github.com/dbehnke/dmr-lc/pkg/logger"
	paho "github.com/eclipse/paho.mqtt.golang"
)

// Config holds MQTT publisher configuration
type Config struct {
	Enabled     bool
	Broker      string
	TopicPrefix string
	ClientID    string
	Username    string
	Password    string
	QoS         byte
	Retained    bool
}

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	metricsPeriod  = 30 * time.Second
)

// ErrNotConnected is returned when publishing before Start has connected
var ErrNotConnected = errors.New("mqtt: not connected")

// client is the part of the paho client the publisher uses
type client interface {
	Connect() paho.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// MetricsPayload is published periodically on <prefix>/metrics
type MetricsPayload struct {
	Timestamp int64              `json:"timestamp"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Publisher sends decoded link control to an MQTT broker. It is a
// decoder.Sink.
type Publisher struct {
	config Config
	log    *logger.Logger

	// Metrics, if set, is published every metricsPeriod while running.
	Metrics func() (map[string]float64, error)

	newClient func(*paho.ClientOptions) client

	mu     sync.RWMutex
	client client
}

// New creates a new MQTT publisher
func New(config Config, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}

	return &Publisher{
		config: config,
		log:    log.WithComponent("mqtt"),
		newClient: func(opts *paho.ClientOptions) client {
			return paho.NewClient(opts)
		},
	}
}

// Connect dials the broker and blocks until the session is up, the connect
// timeout passes or ctx is done. Results handed to Handle before Connect
// returns are rejected with ErrNotConnected.
func (p *Publisher) Connect(ctx context.Context) error {
	if !p.config.Enabled {
		return nil
	}
	if p.connected() {
		return nil
	}

	p.log.Info("Connecting to MQTT broker",
		logger.String("broker", p.config.Broker),
		logger.String("client_id", p.config.ClientID))

	c := p.newClient(p.options())
	token := c.Connect()
	timer := time.NewTimer(connectTimeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-timer.C:
		c.Disconnect(0)
		return fmt.Errorf("failed to connect to MQTT broker %s: timeout", p.config.Broker)
	case <-ctx.Done():
		c.Disconnect(0)
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker %s: %w", p.config.Broker, err)
	}

	p.mu.Lock()
	p.client = c
	p.mu.Unlock()
	return nil
}

func (p *Publisher) connected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client != nil
}

// Start connects if Connect has not been called yet, then publishes metrics
// every metricsPeriod until ctx is done.
func (p *Publisher) Start(ctx context.Context) error {
	if !p.config.Enabled {
		p.log.Info("MQTT publisher disabled")
		return nil
	}
	if err := p.Connect(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(metricsPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Stop()
			return nil
		case <-ticker.C:
			if err := p.PublishMetrics(); err != nil {
				p.log.Warn("Failed to publish metrics", logger.Error(err))
			}
		}
	}
}

func (p *Publisher) options() *paho.ClientOptions {
	opts := paho.NewClientOptions()
	opts.AddBroker(p.config.Broker)
	opts.SetClientID(p.config.ClientID)
	if p.config.Username != "" {
		opts.SetUsername(p.config.Username)
	}
	if p.config.Password != "" {
		opts.SetPassword(p.config.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(paho.Client) {
		p.log.Info("Connected to MQTT broker", logger.String("broker", p.config.Broker))
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.log.Warn("MQTT connection lost", logger.Error(err))
	})
	return opts
}

// Stop disconnects from the broker
func (p *Publisher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return
	}

	p.log.Info("Stopping MQTT publisher")
	p.client.Disconnect(250)
	p.client = nil
}

// Name implements decoder.Sink
func (p *Publisher) Name() string { return "mqtt" }

// Handle implements decoder.Sink by publishing r on
// <prefix>/lc/ts<slot>/<opcode>
func (p *Publisher) Handle(_ context.Context, r decoder.Result) error {
	if !p.config.Enabled {
		return nil
	}

	rec := decoder.NewRecord(r)
	topic := p.formatTopic(fmt.Sprintf("lc/ts%d/%s", rec.Timeslot+1, topicSegment(rec.Opcode)))
	return p.publish(topic, rec)
}

// PublishMetrics publishes the Metrics source once
func (p *Publisher) PublishMetrics() error {
	if !p.config.Enabled || p.Metrics == nil {
		return nil
	}

	values, err := p.Metrics()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	return p.publish(p.formatTopic("metrics"), MetricsPayload{
		Timestamp: time.Now().Unix(),
		Metrics:   values,
	})
}

func (p *Publisher) publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to serialize event",
			logger.String("topic", topic),
			logger.Error(err))
		return err
	}

	p.mu.RLock()
	c := p.client
	p.mu.RUnlock()
	if c == nil {
		return ErrNotConnected
	}

	token := c.Publish(topic, p.config.QoS, p.config.Retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s failed: %w", topic, err)
	}

	p.log.Debug("Published MQTT event",
		logger.String("topic", topic),
		logger.Int("payload_size", len(payload)))
	return nil
}

// formatTopic formats a topic with the configured prefix
func (p *Publisher) formatTopic(suffix string) string {
	prefix := strings.TrimSuffix(p.config.TopicPrefix, "/")
	if prefix == "" {
		return suffix
	}
	return fmt.Sprintf("%s/%s", prefix, suffix)
}

// topicSegment turns an opcode label into a wildcard-free topic level, e.g.
// "CAPACITY+ REST CHANNEL" -> "capacity_plus_rest_channel".
func topicSegment(label string) string {
	var sb strings.Builder
	sep := false
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if sep && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			sep = false
			sb.WriteRune(r)
		case r == '+':
			sb.WriteString("_plus")
		default:
			sep = true
		}
	}
	return sb.String()
}
