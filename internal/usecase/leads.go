package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

// LeadUseCase cobre o CRUD manual de leads. A criação manual passa pelo mesmo
// insert atômico person+lead do sync, então a unicidade do email vale nos
// dois caminhos.
type LeadUseCase struct {
	leads  LeadRepositoryInterface
	cache  LeadCache
	logger *slog.Logger
}

func NewLeadUseCase(leads LeadRepositoryInterface, cache LeadCache, logger *slog.Logger) *LeadUseCase {
	return &LeadUseCase{leads: leads, cache: cache, logger: logger}
}

func (uc *LeadUseCase) Create(ctx context.Context, input CreateLeadInput) (*entity.Lead, error) {
	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		msg := "validation failed: "
		for _, e := range errs {
			msg += e.Field + " (" + e.Message + "), "
		}
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: msg}
	}

	existing, err := uc.leads.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup lead by email: %w", err)
	}
	if existing != nil {
		return nil, &DomainError{
			Code:    "EMAIL_CONFLICT",
			Message: "lead with email " + input.Email + " already exists",
		}
	}

	person := entity.NewPerson(input.FirstName, input.LastName, input.Phone, entity.Address{
		Street:   input.Street,
		City:     input.City,
		State:    input.State,
		Postcode: input.Postcode,
		Country:  input.Country,
	})

	lead, err := entity.NewLead(person.ID, input.Email, input.ExternalID, entity.LeadSourceManual)
	if err != nil {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: err.Error()}
	}
	lead.Metadata = input.Metadata

	if err := uc.leads.CreatePersonAndLead(ctx, person, lead); err != nil {
		return nil, err
	}

	uc.logger.Info("manual lead created", "lead_id", lead.ID, "email", lead.Email)
	return lead, nil
}

// GetByID lê via cache. Lead criado pelo sync não pré-popula o cache; a
// primeira leitura é quem aquece a entrada.
func (uc *LeadUseCase) GetByID(ctx context.Context, id string) (*entity.Lead, error) {
	return uc.cache.GetOrSet(ctx, leadCacheKey(id), func(ctx context.Context) (*entity.Lead, error) {
		return uc.leads.FindByID(ctx, id)
	})
}

func (uc *LeadUseCase) List(ctx context.Context, opts FindLeadsOptions) ([]entity.Lead, int, error) {
	if opts.Take <= 0 {
		opts.Take = 10
	}
	return uc.leads.FindMany(ctx, opts)
}

func (uc *LeadUseCase) Update(ctx context.Context, id string, input UpdateLeadInput) (*entity.Lead, error) {
	lead, err := uc.leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		lead.Status = *input.Status
	}
	if input.Email != nil {
		lead.Email = *input.Email
	}
	if input.ExternalID != nil {
		lead.ExternalID = *input.ExternalID
	}
	if input.Metadata != nil {
		lead.Metadata = input.Metadata
	}
	lead.UpdatedAt = time.Now()

	if err := uc.leads.Update(ctx, lead); err != nil {
		return nil, err
	}

	uc.cache.Del(leadCacheKey(id))
	return lead, nil
}

func (uc *LeadUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.leads.Delete(ctx, id); err != nil {
		return err
	}
	uc.cache.Del(leadCacheKey(id))
	return nil
}

func (uc *LeadUseCase) Stats(ctx context.Context) (*LeadStats, error) {
	counts, err := uc.leads.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &LeadStats{
		New:       counts[entity.LeadStatusNew],
		Contacted: counts[entity.LeadStatusContacted],
		Converted: counts[entity.LeadStatusConverted],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func leadCacheKey(id string) string {
	return "lead:" + id
}
