package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MoneyPlaces decimales de las columnas monetarias (NUMERIC(14,2)).
const MoneyPlaces = 2

// Now es el reloj de las entidades, con la precisión de TIMESTAMPTZ (microsegundos),
// así lo que se audita coincide con lo que se persiste.
func Now() time.Time {
	return time.Now().Truncate(time.Microsecond)
}

// Money valida un monto: no negativo y sin más de dos decimales significativos.
// Devuelve el valor normalizado a centavos ("7.250" -> 7.25).
func Money(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: monto negativo", ErrInvalidInput)
	}
	rounded := d.Round(MoneyPlaces)
	if !rounded.Equal(d) {
		return decimal.Zero, fmt.Errorf("%w: el monto %s tiene más de %d decimales", ErrInvalidInput, d, MoneyPlaces)
	}
	return rounded, nil
}
