// Package messaging adapta segmentio/kafka-go a la cola de liquidación de pedidos.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jhoicas/estoques-api/pkg/config"
)

// CheckoutMessage payload de la cola: {"order_id": "..."}.
type CheckoutMessage struct {
	OrderID string `json:"order_id"`
}

// MessageWriter es la parte de *kafka.Writer que usa el publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageReader es la parte de *kafka.Reader que usa el consumidor.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter crea el writer del tópico de pedidos.
func NewWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrderTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// NewReader crea el reader del grupo de liquidación. Los offsets se confirman manualmente.
func NewReader(cfg config.KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.OrderTopic,
		GroupID:        cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		CommitInterval: 0,
	})
}

// CheckoutPublisher publica pedidos a liquidar. La clave es el order_id, así los mensajes
// de un mismo pedido caen en la misma partición.
type CheckoutPublisher struct {
	writer MessageWriter
}

// NewCheckoutPublisher construye el publisher.
func NewCheckoutPublisher(w MessageWriter) *CheckoutPublisher {
	return &CheckoutPublisher{writer: w}
}

// PublishCheckout encola el pedido e inyecta el contexto de traza en los headers.
func (p *CheckoutPublisher) PublishCheckout(ctx context.Context, orderID string) error {
	payload, err := json.Marshal(CheckoutMessage{OrderID: orderID})
	if err != nil {
		return fmt.Errorf("serializar checkout: %w", err)
	}
	msg := kafka.Message{
		Key:     []byte(orderID),
		Value:   payload,
		Headers: InjectTrace(ctx),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publicar checkout %s: %w", orderID, err)
	}
	return nil
}

// Close cierra el writer.
func (p *CheckoutPublisher) Close() error {
	return p.writer.Close()
}

// InjectTrace serializa el contexto de traza actual como headers Kafka.
func InjectTrace(ctx context.Context) []kafka.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := make([]kafka.Header, 0, len(carrier))
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}

// ExtractTrace recupera el contexto de traza de los headers del mensaje.
func ExtractTrace(ctx context.Context, headers []kafka.Header) context.Context {
	carrier := propagation.MapCarrier{}
	for _, h := range headers {
		carrier[h.Key] = string(h.Value)
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
