package billing

import (
	"fmt"
	"time"
)

// Period es el periodo de facturación: un mes calendario cerrado, con la
// clave canónica "YYYY-MM" que usan facturas y consultas. El rango cubre
// desde el primer instante del mes hasta el último (inclusive por ambos
// extremos); dos facturas del mismo proyecto y mismo mes siempre solapan.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod valida y parsea la clave "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("periodo %q inválido, formato esperado YYYY-MM: %w", s, err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// String devuelve la clave canónica "YYYY-MM".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start primer instante del mes (UTC).
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// next primer instante del mes siguiente.
func (p Period) next() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// End último instante representable del mes (rango cerrado).
func (p Period) End() time.Time {
	return p.next().Add(-time.Nanosecond)
}

// Contains indica si t cae dentro del periodo. Los timestamps se normalizan
// a UTC antes de comparar; los naive del tracker ya llegan en UTC.
func (p Period) Contains(t time.Time) bool {
	u := t.UTC()
	return !u.Before(p.Start()) && u.Before(p.next())
}

// IsZero indica un periodo sin inicializar.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}
