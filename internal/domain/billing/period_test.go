package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AymanElMikh/bmw/internal/domain/billing"
)

func TestParsePeriod_ClaveValida(t *testing.T) {
	p, err := billing.ParsePeriod("2026-07")
	require.NoError(t, err)
	assert.Equal(t, 2026, p.Year)
	assert.Equal(t, time.July, p.Month)
	assert.Equal(t, "2026-07", p.String(), "la clave canónica debe ser estable al round-trip")
}

func TestParsePeriod_ClavesInvalidas(t *testing.T) {
	for _, s := range []string{"", "2026", "2026-13", "07-2026", "2026/07", "2026-7-1"} {
		_, err := billing.ParsePeriod(s)
		assert.Error(t, err, "clave %q debe rechazarse", s)
	}
}

func TestPeriod_RangoCerradoDelMes(t *testing.T) {
	p, _ := billing.ParsePeriod("2026-07")

	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), p.Start())

	// Ambos extremos incluidos.
	assert.True(t, p.Contains(p.Start()), "el primer instante del mes pertenece al periodo")
	assert.True(t, p.Contains(p.End()), "el último instante del mes pertenece al periodo")

	// El primer instante del mes siguiente ya no.
	assert.False(t, p.Contains(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)))
	// Ni el último del mes anterior.
	assert.False(t, p.Contains(time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC)))
}

func TestPeriod_ContainsNormalizaZonaHoraria(t *testing.T) {
	p, _ := billing.ParsePeriod("2026-07")

	// 2026-08-01T01:30+02:00 == 2026-07-31T23:30Z: sigue siendo julio en UTC.
	cet := time.FixedZone("CET", 2*3600)
	assert.True(t, p.Contains(time.Date(2026, 8, 1, 1, 30, 0, 0, cet)))

	// 2026-07-31T23:30-02:00 == 2026-08-01T01:30Z: ya es agosto en UTC.
	assert.False(t, p.Contains(time.Date(2026, 7, 31, 23, 30, 0, 0, time.FixedZone("W", -2*3600))))
}

func TestPeriod_Diciembre(t *testing.T) {
	p, _ := billing.ParsePeriod("2026-12")
	assert.True(t, p.Contains(time.Date(2026, 12, 31, 23, 59, 59, 999999999, time.UTC)))
	assert.False(t, p.Contains(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)),
		"el cambio de año no debe romper el límite del periodo")
}
