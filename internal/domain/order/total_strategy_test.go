package order_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoques-api/internal/domain/entity"
	"github.com/jhoicas/estoques-api/internal/domain/order"
)

func item(subtotal string) *entity.OrderItem {
	return &entity.OrderItem{Subtotal: decimal.RequireFromString(subtotal)}
}

func TestRegularTotal(t *testing.T) {
	items := []*entity.OrderItem{item("20.00"), item("5.50")}
	got := order.RegularTotal{}.Calculate(items)
	assert.True(t, got.Equal(decimal.RequireFromString("25.50")), "got %s", got)
}

func TestRegularTotal_Empty(t *testing.T) {
	assert.True(t, order.RegularTotal{}.Calculate(nil).IsZero())
}

func TestDiscountedTotal_DefaultRate(t *testing.T) {
	s, err := order.NewTotalStrategy(order.StrategyDiscounted, "")
	require.NoError(t, err)
	got := s.Calculate([]*entity.OrderItem{item("20.00"), item("5.50")})
	assert.Equal(t, "22.95", got.StringFixed(2))
}

func TestDiscountedTotal_RoundsToCents(t *testing.T) {
	s := order.DiscountedTotal{Rate: decimal.RequireFromString("0.10")}
	got := s.Calculate([]*entity.OrderItem{item("0.05")})
	assert.Equal(t, "0.05", got.StringFixed(2))
}

func TestNewTotalStrategy(t *testing.T) {
	s, err := order.NewTotalStrategy("", "")
	require.NoError(t, err)
	assert.IsType(t, order.RegularTotal{}, s)

	_, err = order.NewTotalStrategy("premium", "")
	assert.Error(t, err)

	_, err = order.NewTotalStrategy(order.StrategyDiscounted, "abc")
	assert.Error(t, err)

	_, err = order.NewTotalStrategy(order.StrategyDiscounted, "1.5")
	assert.Error(t, err)
}

func TestStrategyFunc(t *testing.T) {
	flat := order.StrategyFunc(func(items []*entity.OrderItem) decimal.Decimal {
		return decimal.NewFromInt(int64(len(items)))
	})
	assert.True(t, flat.Calculate([]*entity.OrderItem{item("1"), item("2")}).Equal(decimal.NewFromInt(2)))
}
