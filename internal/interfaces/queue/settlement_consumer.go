// Package queue contiene el consumidor de la cola de liquidación de pedidos.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/infrastructure/messaging"
	"github.com/jhoicas/estoques-api/internal/infrastructure/observability"
	"github.com/jhoicas/estoques-api/pkg/logger"
)

// Settler liquida un pedido (OrderUseCase.FinalizeOrder).
type Settler interface {
	FinalizeOrder(ctx context.Context, orderID, userID string) (*entity.Order, error)
}

// Guard recuerda los pedidos ya liquidados para saltar entregas repetidas (opcional).
// Solo se marca tras un commit exitoso: una marca nunca apunta a un pedido en borrador.
type Guard interface {
	Settled(ctx context.Context, orderID string) (bool, error)
	MarkSettled(ctx context.Context, orderID string) error
}

// Outcome resultado del procesamiento de un mensaje.
type Outcome int

const (
	OutcomeSettled   Outcome = iota // liquidado
	OutcomeDropped                  // payload inválido
	OutcomeRejected                 // error de negocio
	OutcomeDuplicate                // ya marcado como liquidado
	OutcomeAborted                  // apagado durante reintentos; no se confirma
)

// SettlementConsumer lee {order_id} de Kafka y liquida cada pedido en su propia transacción.
// El offset se confirma solo cuando el mensaje tiene un resultado final.
type SettlementConsumer struct {
	reader     messaging.MessageReader
	settler    Settler
	guard      Guard
	log        *logger.Logger
	backoff    time.Duration
	maxBackoff time.Duration
}

// NewSettlementConsumer construye el consumidor. guard puede ser nil.
func NewSettlementConsumer(reader messaging.MessageReader, settler Settler, guard Guard, log *logger.Logger) *SettlementConsumer {
	return &SettlementConsumer{
		reader:     reader,
		settler:    settler,
		guard:      guard,
		log:        log,
		backoff:    500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

// WithBackoff ajusta la espera inicial y máxima entre reintentos.
func (c *SettlementConsumer) WithBackoff(initial, max time.Duration) *SettlementConsumer {
	c.backoff = initial
	c.maxBackoff = max
	return c
}

// Run consume hasta que ctx se cancele. Nunca termina por un error de un mensaje.
func (c *SettlementConsumer) Run(ctx context.Context) error {
	c.log.Info().Msg("consumidor de liquidación iniciado")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info().Msg("consumidor de liquidación detenido")
				return nil
			}
			c.log.Warn().Err(err).Msg("error leyendo de kafka")
			if !sleep(ctx, c.backoff) {
				return nil
			}
			continue
		}
		if c.Handle(ctx, msg) == OutcomeAborted {
			return nil
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error().Err(err).Int64("offset", msg.Offset).Msg("no se pudo confirmar el offset")
		}
	}
}

// Handle procesa un mensaje. Los fallos de persistencia se reintentan en el lugar con backoff
// exponencial; el resto de errores son finales.
func (c *SettlementConsumer) Handle(ctx context.Context, msg kafka.Message) Outcome {
	var payload messaging.CheckoutMessage
	if err := json.Unmarshal(msg.Value, &payload); err != nil || strings.TrimSpace(payload.OrderID) == "" {
		c.log.Warn().
			Int("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Bytes("raw_value", msg.Value).
			Msg("mensaje de liquidación inválido, descartado")
		return OutcomeDropped
	}
	orderID := payload.OrderID

	ctx = messaging.ExtractTrace(ctx, msg.Headers)
	ctx, span := observability.Tracer().Start(ctx, "settle order",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("messaging.destination.name", msg.Topic),
		),
	)
	defer span.End()

	if c.guard != nil {
		settled, err := c.guard.Settled(ctx, orderID)
		if err != nil {
			c.log.Warn().Err(err).Str("order_id", orderID).Msg("guardia no disponible, se continúa sin ella")
		} else if settled {
			c.log.Info().Str("order_id", orderID).Msg("pedido ya liquidado, entrega duplicada")
			return OutcomeDuplicate
		}
	}

	wait := c.backoff
	for attempt := 1; ; attempt++ {
		draft, err := c.settler.FinalizeOrder(ctx, orderID, "")
		if err == nil {
			c.log.Info().Str("order_id", orderID).Str("new_draft_id", draft.ID).Msg("pedido liquidado")
			c.mark(orderID)
			return OutcomeSettled
		}
		span.RecordError(err)
		if !errors.Is(err, domain.ErrPersistence) {
			span.SetStatus(codes.Error, err.Error())
			c.log.Error().Err(err).Str("order_id", orderID).Msg("liquidación rechazada")
			if errors.Is(err, domain.ErrOrderNotDraft) {
				c.mark(orderID)
			}
			return OutcomeRejected
		}
		c.log.Warn().Err(err).Str("order_id", orderID).Int("attempt", attempt).Dur("retry_in", wait).Msg("fallo de persistencia, reintentando")
		if !sleep(ctx, wait) {
			return OutcomeAborted
		}
		wait = min(wait*2, c.maxBackoff)
	}
}

// mark registra el pedido como liquidado. Si falla, la próxima entrega lo resuelve
// el re-chequeo de estado bajo bloqueo (ErrOrderNotDraft).
func (c *SettlementConsumer) mark(orderID string) {
	if c.guard == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.guard.MarkSettled(ctx, orderID); err != nil {
		c.log.Warn().Err(err).Str("order_id", orderID).Msg("no se pudo marcar el pedido como liquidado")
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
