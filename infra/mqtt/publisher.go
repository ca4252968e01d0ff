package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/citypredict/core/events"
	coremqtt "github.com/kilianp07/citypredict/core/mqtt"
	"github.com/kilianp07/citypredict/core/store"
	"github.com/kilianp07/citypredict/infra/logger"
	"github.com/kilianp07/citypredict/internal/eventbus"
)

// Publisher sends every served prediction as JSON to <topic_prefix>/<domain>.
type Publisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

var _ coremqtt.RecordPublisher = (*Publisher)(nil)

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config, log logger.Logger) (*Publisher, error) {
	cfg.SetDefaults()
	if log == nil {
		log = logger.New("mqtt_publisher")
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) { log.Warnf("reconnecting to MQTT broker") }

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, token.Error())
	}
	return &Publisher{
		cli:        c,
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}, nil
}

// Topic returns the topic records of module are published to.
func (p *Publisher) Topic(module string) string {
	return p.prefix + "/" + module
}

// PublishRecord implements coremqtt.RecordPublisher. Failed publishes are
// retried with exponential backoff until ctx is done.
func (p *Publisher) PublishRecord(ctx context.Context, rec store.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	topic := p.Topic(string(rec.Module))
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.log.Debugf("published %s to %s", rec.ID, topic)
			return nil
		}
		p.log.Warnf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt == p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	if !p.cli.IsConnected() {
		return fmt.Errorf("%w: %v", coremqtt.ErrNotConnected, publishErr)
	}
	return publishErr
}

// Start forwards prediction events from the bus until ctx is done.
func (p *Publisher) Start(ctx context.Context, bus *eventbus.Bus[events.Event]) {
	go bus.Consume(ctx, func(ev events.Event) {
		pe, ok := ev.(events.PredictionEvent)
		if !ok {
			return
		}
		if err := p.PublishRecord(ctx, pe.Record); err != nil {
			p.log.Errorf("publish %s: %v", pe.Record.ID, err)
		}
	})
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
