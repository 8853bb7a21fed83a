// Package events publishes domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace-hub/logger"
	"marketplace-hub/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	OrderPlacedType = "order.placed"
	publishTimeout  = 3 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderPlaced is the payload of an order.placed event.
type OrderPlaced struct {
	Type          string            `json:"type"`
	OrderID       string            `json:"orderId"`
	UserID        string            `json:"userId"`
	TotalAmount   float64           `json:"totalAmount"`
	PaymentMethod string            `json:"paymentMethod"`
	PaymentStatus string            `json:"paymentStatus"`
	Items         []OrderPlacedItem `json:"items"`
	OccurredAt    time.Time         `json:"occurredAt"`
}

type OrderPlacedItem struct {
	ProductID string  `json:"productId"`
	VendorID  string  `json:"vendorId"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
}

func NewOrderPlaced(o *models.Order) OrderPlaced {
	items := make([]OrderPlacedItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderPlacedItem{
			ProductID: it.ProductID.Hex(),
			VendorID:  it.VendorID.Hex(),
			Quantity:  it.Quantity,
			Total:     it.Total,
		})
	}
	return OrderPlaced{
		Type:          OrderPlacedType,
		OrderID:       o.ID.Hex(),
		UserID:        o.UserID.Hex(),
		TotalAmount:   o.TotalAmount,
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		Items:         items,
		OccurredAt:    o.CreatedAt,
	}
}

// KafkaPublisher writes order events keyed by order id so every event of one order lands on one partition.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: newWriter(brokers), topic: topic}
}

// newWriter flushes every message as soon as it is written. Orders are published
// one at a time on the request path, so waiting to fill a batch only adds latency.
func newWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		BatchSize:              1,
		BatchTimeout:           10 * time.Millisecond,
	}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, o *models.Order) error {
	data, err := json.Marshal(NewOrderPlaced(o))
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(o.ID.Hex()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(OrderPlacedType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write order event: %w", err)
	}
	logger.FromContext(ctx).Debug("order event published",
		zap.String("topic", p.topic),
		zap.String("order_id", o.ID.Hex()),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
