package billing

import (
	"sort"

	"github.com/AymanElMikh/bmw/internal/domain/entity"
)

// Catalog es un snapshot inmutable del catálogo de cláusulas, construido por
// invocación y pasado explícitamente al motor de mapeo y al ensamblador.
// No hay catálogo singleton: así la tarifa vigente al momento del ensamblado
// es reproducible y testeable.
type Catalog struct {
	clauses map[string]*entity.LegalClause
}

// NewCatalog construye el snapshot. Cláusulas duplicadas por id: gana la
// última (no debería ocurrir, clause_id es clave primaria).
func NewCatalog(clauses []*entity.LegalClause) Catalog {
	m := make(map[string]*entity.LegalClause, len(clauses))
	for _, c := range clauses {
		m[c.ClauseID] = c
	}
	return Catalog{clauses: m}
}

// Get devuelve la cláusula por id (activa o no) o nil.
func (c Catalog) Get(id string) *entity.LegalClause {
	return c.clauses[id]
}

// Active devuelve la cláusula solo si existe y está activa.
func (c Catalog) Active(id string) *entity.LegalClause {
	cl := c.clauses[id]
	if cl == nil || !cl.IsActive {
		return nil
	}
	return cl
}

// ActiveIDs devuelve los ids activos ordenados (para diagnósticos estables).
func (c Catalog) ActiveIDs() []string {
	ids := make([]string, 0, len(c.clauses))
	for id, cl := range c.clauses {
		if cl.IsActive {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Len cantidad total de cláusulas en el snapshot.
func (c Catalog) Len() int {
	return len(c.clauses)
}
