// Package cache contiene la guardia de liquidación sobre Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jhoicas/estoques-api/pkg/config"
)

const guardPrefix = "settlement:settled:"

// SettlementGuard marca los pedidos liquidados para que las entregas repetidas se salten.
// La marca se escribe después del commit. La garantía real es el re-chequeo de estado bajo
// bloqueo en la BD.
type SettlementGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient crea el cliente Redis.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewSettlementGuard construye la guardia. ttl <= 0 usa 24h.
func NewSettlementGuard(rdb *redis.Client, ttl time.Duration) *SettlementGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SettlementGuard{rdb: rdb, ttl: ttl}
}

// Settled indica si el pedido ya fue marcado como liquidado.
func (g *SettlementGuard) Settled(ctx context.Context, orderID string) (bool, error) {
	n, err := g.rdb.Exists(ctx, guardPrefix+orderID).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// MarkSettled marca el pedido como liquidado durante el TTL.
func (g *SettlementGuard) MarkSettled(ctx context.Context, orderID string) error {
	if err := g.rdb.Set(ctx, guardPrefix+orderID, "settled", g.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping verifica la conexión.
func (g *SettlementGuard) Ping(ctx context.Context) error {
	return g.rdb.Ping(ctx).Err()
}
