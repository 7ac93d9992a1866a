package repository

import "github.com/AymanElMikh/bmw/internal/domain/entity"

// ClauseRepository define el puerto de persistencia para cláusulas legales.
// Las cláusulas nunca se borran: la desactivación preserva la historia
// referencial de las facturas emitidas.
type ClauseRepository interface {
	Create(clause *entity.LegalClause) error
	Update(clause *entity.LegalClause) error
	GetByID(id string) (*entity.LegalClause, error)
	ListActive() ([]*entity.LegalClause, error)
	ListAll() ([]*entity.LegalClause, error)
	SetActive(id string, active bool) error
	// IsReferenced indica si alguna línea de factura referencia la cláusula
	// (en ese caso su precio es inmutable).
	IsReferenced(id string) (bool, error)
}
