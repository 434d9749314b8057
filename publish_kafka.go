package exchange

import (
	"context"
	"encoding/binary"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/VictorAugustoCorrea/TradingEcosystem/protocol"
)

// KafkaPublisher ships market updates and client responses to Kafka
// topics. Updates are keyed by ticker id and responses by client id so
// each stream stays ordered per partition.
//
// Publishing happens on the caller's goroutine (the feed or relay loop),
// so the reuse contract of the publisher interfaces holds without
// cloning.
type KafkaPublisher struct {
	updateWriter   *kafka.Writer
	responseWriter *kafka.Writer
	serializer     protocol.Serializer
	logger         *slog.Logger
}

// KafkaPublisherOptions configures a KafkaPublisher. An empty topic
// disables that stream.
type KafkaPublisherOptions struct {
	Brokers       []string
	UpdateTopic   string
	ResponseTopic string
	Serializer    protocol.Serializer
	Logger        *slog.Logger
}

// NewKafkaPublisher builds writers for the configured topics. At least
// one topic must be set.
func NewKafkaPublisher(opts KafkaPublisherOptions) (*KafkaPublisher, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("kafka publisher: no brokers")
	}
	if opts.UpdateTopic == "" && opts.ResponseTopic == "" {
		return nil, errors.New("kafka publisher: no topics")
	}
	if opts.Serializer == nil {
		opts.Serializer = &protocol.DefaultJSONSerializer{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	p := &KafkaPublisher{
		serializer: opts.Serializer,
		logger:     opts.Logger,
	}
	if opts.UpdateTopic != "" {
		p.updateWriter = &kafka.Writer{
			Addr:     kafka.TCP(opts.Brokers...),
			Topic:    opts.UpdateTopic,
			Balancer: &kafka.Hash{},
		}
	}
	if opts.ResponseTopic != "" {
		p.responseWriter = &kafka.Writer{
			Addr:     kafka.TCP(opts.Brokers...),
			Topic:    opts.ResponseTopic,
			Balancer: &kafka.Hash{},
		}
	}
	return p, nil
}

// PublishUpdates writes the updates to the update topic. Broker errors
// are logged and the batch is dropped; the feed must not stall on an
// unavailable broker.
func (p *KafkaPublisher) PublishUpdates(updates ...*protocol.MarketUpdate) {
	if p.updateWriter == nil || len(updates) == 0 {
		return
	}
	msgs := make([]kafka.Message, 0, len(updates))
	for _, update := range updates {
		value, err := p.serializer.Marshal(update)
		if err != nil {
			p.logger.Error("marshal market update failed", "error", err)
			continue
		}
		key := make([]byte, 4)
		binary.BigEndian.PutUint32(key, uint32(update.TickerID))
		msgs = append(msgs, kafka.Message{Key: key, Value: value})
	}
	if err := p.updateWriter.WriteMessages(context.Background(), msgs...); err != nil {
		p.logger.Error("publish market updates failed", "error", err, "count", len(msgs))
	}
}

// PublishResponses writes the responses to the response topic, keyed by
// client id.
func (p *KafkaPublisher) PublishResponses(responses ...*protocol.ClientResponse) {
	if p.responseWriter == nil || len(responses) == 0 {
		return
	}
	msgs := make([]kafka.Message, 0, len(responses))
	for _, res := range responses {
		value, err := p.serializer.Marshal(res)
		if err != nil {
			p.logger.Error("marshal client response failed", "error", err)
			continue
		}
		key := make([]byte, 4)
		binary.BigEndian.PutUint32(key, uint32(res.ClientID))
		msgs = append(msgs, kafka.Message{Key: key, Value: value})
	}
	if err := p.responseWriter.WriteMessages(context.Background(), msgs...); err != nil {
		p.logger.Error("publish client responses failed", "error", err, "count", len(msgs))
	}
}

// Close flushes and closes the underlying writers.
func (p *KafkaPublisher) Close() error {
	var err error
	if p.updateWriter != nil {
		err = errors.Join(err, p.updateWriter.Close())
	}
	if p.responseWriter != nil {
		err = errors.Join(err, p.responseWriter.Close())
	}
	return err
}
