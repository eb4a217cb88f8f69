package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"nft-ticketing/internal/config"
	"nft-ticketing/internal/logger"
	"nft-ticketing/internal/models"

	"github.com/segmentio/kafka-go"
)

// Producer streams ticket lifecycle events. Publishing is best-effort: a
// broker outage never blocks or fails a ticket operation.
type Producer struct {
	Writer   *kafka.Writer
	Topics   config.TopicConfig
	Logger   *logger.Logger
	MockMode bool
}

func NewProducer(cfg config.KafkaConfig, log *logger.Logger) *Producer {
	var writer *kafka.Writer
	if !cfg.MockMode {
		writer = &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Balancer: &kafka.LeastBytes{},
		}
	}
	return &Producer{
		Writer:   writer,
		Topics:   cfg.Topics,
		Logger:   log,
		MockMode: cfg.MockMode,
	}
}

func (p *Producer) publish(topic string, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if p.MockMode {
		p.Logger.LogKafka("MOCK", topic, string(value))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		p.Logger.Error("KAFKA", fmt.Sprintf("publish to %s failed: %v", topic, err))
		return err
	}
	p.Logger.LogKafka("PUBLISH", topic, key)
	return nil
}

func (p *Producer) PublishTicketMinted(ticket *models.Ticket) error {
	return p.publish(p.Topics.TicketMinted, strconv.FormatInt(ticket.TokenID, 10), ticket)
}

func (p *Producer) PublishTicketListed(ticket *models.Ticket) error {
	return p.publish(p.Topics.TicketListed, strconv.FormatInt(ticket.TokenID, 10), ticket)
}

func (p *Producer) PublishTicketSold(ticket *models.Ticket) error {
	return p.publish(p.Topics.TicketSold, strconv.FormatInt(ticket.TokenID, 10), ticket)
}

func (p *Producer) PublishTicketRedeemed(ticket *models.Ticket) error {
	return p.publish(p.Topics.TicketRedeemed, strconv.FormatInt(ticket.TokenID, 10), ticket)
}

func (p *Producer) Close() error {
	if p.Writer != nil {
		return p.Writer.Close()
	}
	return nil
}
