package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

// GenerateSummaryUseCase pede ao modelo um resumo + próxima ação para o lead
// e persiste no próprio registro. A entrada de cache do lead é invalidada.
type GenerateSummaryUseCase struct {
	leads      LeadRepositoryInterface
	summarizer Summarizer
	cache      LeadCache
	logger     *slog.Logger
}

func NewGenerateSummaryUseCase(
	leads LeadRepositoryInterface,
	summarizer Summarizer,
	cache LeadCache,
	logger *slog.Logger,
) *GenerateSummaryUseCase {
	return &GenerateSummaryUseCase{
		leads:      leads,
		summarizer: summarizer,
		cache:      cache,
		logger:     logger,
	}
}

func (uc *GenerateSummaryUseCase) Execute(ctx context.Context, leadID string) (*entity.Lead, error) {
	lead, err := uc.leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Person == nil {
		return nil, fmt.Errorf("lead %s has no person loaded", leadID)
	}

	input := SummaryInput{
		FirstName: lead.Person.FirstName,
		LastName:  lead.Person.LastName,
		Email:     lead.Email,
		Phone:     lead.Person.Phone,
		Source:    sourceLabel(lead.Source),
	}
	if lead.Person.Address.City != "" {
		input.Location = lead.Person.Address.City + ", " + lead.Person.Address.Country
	}
	if p, ok := lead.Metadata["profession"].(string); ok {
		input.Profession = p
	}

	summary, err := uc.summarizer.GenerateLeadSummary(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	now := time.Now()
	lead.Summary = summary.Summary
	lead.NextAction = summary.NextAction
	lead.SummaryGeneratedAt = &now
	lead.UpdatedAt = now

	if err := uc.leads.Update(ctx, lead); err != nil {
		return nil, err
	}

	uc.cache.Del(leadCacheKey(leadID))
	uc.logger.Info("lead summary generated", "lead_id", leadID)

	return lead, nil
}

// O prompt muda de tom conforme a origem do lead, não a reconciliação.
func sourceLabel(source string) string {
	if source == entity.LeadSourceManual {
		return "manual"
	}
	return "randomuser"
}
