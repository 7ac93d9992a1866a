package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency monedas soportadas.
const (
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
)

// LegalClause representa una cláusula contractual (tarjeta de tarifa).
// El precio unitario es por hora trabajada. Una cláusula referenciada por
// líneas de factura nunca cambia de precio: se desactiva y se crea una nueva
// versión con otro clause_id.
type LegalClause struct {
	ClauseID      string // código único, ^[A-Z_0-9]+$ (ej. FLASH_001)
	ClauseName    string
	Description   string
	UnitPrice     decimal.Decimal // por hora, 2 decimales, nunca negativo
	Currency      string
	EffectiveDate time.Time
	CreatedBy     string
	CreatedAt     time.Time
	IsActive      bool
}
