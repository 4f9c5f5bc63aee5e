package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

type ReconcileResult string

const (
	ReconcileCreated ReconcileResult = "created"
	ReconcileSkipped ReconcileResult = "skipped"
	ReconcileErrored ReconcileResult = "error"
)

type ReconcileOutcome struct {
	Result  ReconcileResult
	Message string
}

// Reconciler decide o destino de um candidato contra o estado persistido.
// O create (person + lead) é atômico no repositório; violação de chave única
// no email é um resultado esperado, não uma falha.
type Reconciler struct {
	store  ReconcilerStore
	logger *slog.Logger
}

func NewReconciler(store ReconcilerStore, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

func (r *Reconciler) Reconcile(ctx context.Context, c entity.Candidate) ReconcileOutcome {
	existing, err := r.store.FindByEmail(ctx, c.Email)
	if err != nil {
		return ReconcileOutcome{Result: ReconcileErrored, Message: err.Error()}
	}
	if existing != nil {
		r.logger.Debug("lead already exists, skipping", "email", c.Email)
		return ReconcileOutcome{Result: ReconcileSkipped}
	}

	person := entity.NewPerson(c.FirstName, c.LastName, c.Phone, c.Address)
	person.DateOfBirth = c.DateOfBirth
	person.Gender = c.Gender
	person.Nationality = c.Nationality
	person.PictureURL = c.PictureURL

	lead, err := entity.NewLead(person.ID, c.Email, c.ExternalID, entity.LeadSourceExternalAPI)
	if err != nil {
		return ReconcileOutcome{Result: ReconcileErrored, Message: err.Error()}
	}
	now := time.Now()
	lead.SyncedAt = &now
	lead.Metadata = map[string]any{
		"location":    c.Address.City + ", " + c.Address.Country,
		"nationality": c.Nationality,
	}

	if err := r.store.CreatePersonAndLead(ctx, person, lead); err != nil {
		// Corrida benigna: outra task inseriu o mesmo email entre o lookup
		// e o insert. O unique do banco é a fonte da verdade.
		if errors.Is(err, entity.ErrEmailAlreadyExists) {
			r.logger.Debug("duplicate email on insert, skipping", "email", c.Email)
			return ReconcileOutcome{Result: ReconcileSkipped}
		}
		return ReconcileOutcome{Result: ReconcileErrored, Message: err.Error()}
	}

	return ReconcileOutcome{Result: ReconcileCreated}
}
