// Package order contiene las reglas puras de cálculo del total de un pedido.
package order

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoques-api/internal/domain"
	"github.com/jhoicas/estoques-api/internal/domain/entity"
)

const (
	StrategyRegular    = "regular"
	StrategyDiscounted = "discounted"
)

// DefaultDiscountRate descuento aplicado por DiscountedTotal si no se configura otro.
var DefaultDiscountRate = decimal.NewFromFloat(0.10)

// TotalStrategy calcula el total de un pedido a partir de sus ítems. No tiene efectos secundarios.
type TotalStrategy interface {
	Calculate(items []*entity.OrderItem) decimal.Decimal
}

// StrategyFunc adapta una función a TotalStrategy.
type StrategyFunc func(items []*entity.OrderItem) decimal.Decimal

func (f StrategyFunc) Calculate(items []*entity.OrderItem) decimal.Decimal { return f(items) }

// RegularTotal suma los subtotales.
type RegularTotal struct{}

func (RegularTotal) Calculate(items []*entity.OrderItem) decimal.Decimal {
	return sumSubtotals(items)
}

// DiscountedTotal suma los subtotales y aplica Rate; el resultado se redondea a centavos.
type DiscountedTotal struct {
	Rate decimal.Decimal
}

func (d DiscountedTotal) Calculate(items []*entity.OrderItem) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(d.Rate)
	return sumSubtotals(items).Mul(factor).Round(domain.MoneyPlaces)
}

func sumSubtotals(items []*entity.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it == nil {
			continue
		}
		total = total.Add(it.Subtotal)
	}
	return total
}

// NewTotalStrategy construye la estrategia por nombre. rate vacío usa DefaultDiscountRate.
func NewTotalStrategy(name, rate string) (TotalStrategy, error) {
	switch name {
	case "", StrategyRegular:
		return RegularTotal{}, nil
	case StrategyDiscounted:
		r := DefaultDiscountRate
		if rate != "" {
			parsed, err := decimal.NewFromString(rate)
			if err != nil {
				return nil, fmt.Errorf("tasa de descuento inválida %q: %w", rate, err)
			}
			r = parsed
		}
		if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("tasa de descuento fuera de rango: %s", r)
		}
		return DiscountedTotal{Rate: r}, nil
	default:
		return nil, fmt.Errorf("estrategia de total desconocida: %q", name)
	}
}
