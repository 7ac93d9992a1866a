package billing

import (
	"context"
	"fmt"
	"regexp"
	"time"

	appdto "github.com/AymanElMikh/bmw/internal/application/dto"
	"github.com/AymanElMikh/bmw/internal/domain"
	domainbilling "github.com/AymanElMikh/bmw/internal/domain/billing"
	"github.com/AymanElMikh/bmw/internal/domain/entity"
	"github.com/AymanElMikh/bmw/internal/domain/repository"
	"github.com/AymanElMikh/bmw/pkg/logger"
)

var clauseIDPattern = regexp.MustCompile(`^[A-Z_0-9]+$`)

// ClauseUseCase administra el catálogo de cláusulas legales. El precio de
// una cláusula referenciada por facturas es inmutable: para cambiar tarifa
// se desactiva la cláusula y se crea una nueva versión con otro clause_id.
type ClauseUseCase struct {
	clauseRepo repository.ClauseRepository
	auditRepo  repository.AuditRepository
	log        *logger.Logger
}

// NewClauseUseCase construye el caso de uso.
func NewClauseUseCase(clauseRepo repository.ClauseRepository, auditRepo repository.AuditRepository, log *logger.Logger) *ClauseUseCase {
	return &ClauseUseCase{clauseRepo: clauseRepo, auditRepo: auditRepo, log: log}
}

// CreateClause da de alta una cláusula activa.
func (uc *ClauseUseCase) CreateClause(ctx context.Context, userID string, in appdto.CreateClauseRequest) (*appdto.ClauseResponse, error) {
	var reasons []string
	if !clauseIDPattern.MatchString(in.ClauseID) {
		reasons = append(reasons, fmt.Sprintf("clause_id %q inválido: solo mayúsculas, dígitos y guion bajo", in.ClauseID))
	}
	if in.ClauseName == "" {
		reasons = append(reasons, "clause_name es obligatorio")
	}
	if in.UnitPrice.IsNegative() {
		reasons = append(reasons, "unit_price no puede ser negativo")
	}
	if in.Currency != entity.CurrencyEUR && in.Currency != entity.CurrencyUSD {
		reasons = append(reasons, fmt.Sprintf("moneda %q no soportada", in.Currency))
	}
	if len(reasons) > 0 {
		return nil, &domainbilling.ValidationError{Reasons: reasons}
	}

	if existing, err := uc.clauseRepo.GetByID(in.ClauseID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("cláusula %s: %w", in.ClauseID, domain.ErrDuplicate)
	}

	clause := &entity.LegalClause{
		ClauseID:      in.ClauseID,
		ClauseName:    in.ClauseName,
		Description:   in.Description,
		UnitPrice:     in.UnitPrice.Round(2),
		Currency:      in.Currency,
		EffectiveDate: in.EffectiveDate,
		CreatedBy:     userID,
		CreatedAt:     time.Now().UTC(),
		IsActive:      true,
	}
	if err := uc.clauseRepo.Create(clause); err != nil {
		return nil, err
	}

	uc.audit(userID, entity.AuditActionClauseCreated, fmt.Sprintf(
		"cláusula %s: %s %s/h", clause.ClauseID, clause.UnitPrice.StringFixed(2), clause.Currency))
	return toClauseResponse(clause), nil
}

// UpdateClause modifica nombre, descripción o precio. El cambio de precio se
// rechaza si alguna línea de factura ya referencia la cláusula.
func (uc *ClauseUseCase) UpdateClause(ctx context.Context, userID, clauseID string, in appdto.UpdateClauseRequest) (*appdto.ClauseResponse, error) {
	clause, err := uc.clauseRepo.GetByID(clauseID)
	if err != nil {
		return nil, err
	}
	if clause == nil {
		return nil, domain.ErrNotFound
	}

	if in.UnitPrice != nil && !in.UnitPrice.Equal(clause.UnitPrice) {
		if in.UnitPrice.IsNegative() {
			return nil, &domainbilling.ValidationError{Reasons: []string{"unit_price no puede ser negativo"}}
		}
		referenced, err := uc.clauseRepo.IsReferenced(clauseID)
		if err != nil {
			return nil, err
		}
		if referenced {
			return nil, fmt.Errorf("cláusula %s con facturas emitidas: %w", clauseID, domain.ErrClauseReferenced)
		}
		clause.UnitPrice = in.UnitPrice.Round(2)
	}
	if in.ClauseName != nil {
		if *in.ClauseName == "" {
			return nil, &domainbilling.ValidationError{Reasons: []string{"clause_name no puede quedar vacío"}}
		}
		clause.ClauseName = *in.ClauseName
	}
	if in.Description != nil {
		clause.Description = *in.Description
	}

	if err := uc.clauseRepo.Update(clause); err != nil {
		return nil, err
	}

	uc.audit(userID, entity.AuditActionClauseUpdated, fmt.Sprintf("cláusula %s actualizada", clause.ClauseID))
	return toClauseResponse(clause), nil
}

// SetClauseActive activa o desactiva una cláusula. Desactivar no toca las
// facturas existentes: solo excluye la cláusula de asignaciones futuras.
func (uc *ClauseUseCase) SetClauseActive(ctx context.Context, userID, clauseID string, active bool) (*appdto.ClauseResponse, error) {
	clause, err := uc.clauseRepo.GetByID(clauseID)
	if err != nil {
		return nil, err
	}
	if clause == nil {
		return nil, domain.ErrNotFound
	}
	if clause.IsActive != active {
		if err := uc.clauseRepo.SetActive(clauseID, active); err != nil {
			return nil, err
		}
		clause.IsActive = active
		if !active {
			uc.audit(userID, entity.AuditActionClauseDeactivated, fmt.Sprintf("cláusula %s desactivada", clauseID))
		} else {
			uc.audit(userID, entity.AuditActionClauseUpdated, fmt.Sprintf("cláusula %s reactivada", clauseID))
		}
	}
	return toClauseResponse(clause), nil
}

// GetClause obtiene una cláusula por código.
func (uc *ClauseUseCase) GetClause(ctx context.Context, clauseID string) (*appdto.ClauseResponse, error) {
	clause, err := uc.clauseRepo.GetByID(clauseID)
	if err != nil {
		return nil, err
	}
	if clause == nil {
		return nil, domain.ErrNotFound
	}
	return toClauseResponse(clause), nil
}

// ListClauses lista el catálogo; con onlyActive=true solo las asignables.
func (uc *ClauseUseCase) ListClauses(ctx context.Context, onlyActive bool) ([]appdto.ClauseResponse, error) {
	var (
		clauses []*entity.LegalClause
		err     error
	)
	if onlyActive {
		clauses, err = uc.clauseRepo.ListActive()
	} else {
		clauses, err = uc.clauseRepo.ListAll()
	}
	if err != nil {
		return nil, err
	}
	out := make([]appdto.ClauseResponse, 0, len(clauses))
	for _, c := range clauses {
		out = append(out, *toClauseResponse(c))
	}
	return out, nil
}

func (uc *ClauseUseCase) audit(userID, action, details string) {
	err := uc.auditRepo.Record(&entity.AuditLog{
		UserID:    userID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
	if err != nil && uc.log != nil {
		uc.log.Warn().Err(err).Str("action", action).Msg("no se pudo escribir el registro de auditoría")
	}
}

func toClauseResponse(c *entity.LegalClause) *appdto.ClauseResponse {
	return &appdto.ClauseResponse{
		ClauseID:      c.ClauseID,
		ClauseName:    c.ClauseName,
		Description:   c.Description,
		UnitPrice:     c.UnitPrice,
		Currency:      c.Currency,
		EffectiveDate: c.EffectiveDate,
		CreatedBy:     c.CreatedBy,
		CreatedAt:     c.CreatedAt,
		IsActive:      c.IsActive,
	}
}
