package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

type fakeSummarizer struct {
	lastInput SummaryInput
	summary   *LeadSummary
	err       error
}

func (f *fakeSummarizer) GenerateLeadSummary(_ context.Context, input SummaryInput) (*LeadSummary, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func TestGenerateSummaryPersistsResult(t *testing.T) {
	store := newFakeLeadStore()
	cache := &fakeCache{}
	summarizer := &fakeSummarizer{summary: &LeadSummary{
		Summary:    "Lead from Springfield, likely interested in outreach.",
		NextAction: "Send intro email within 2 days.",
	}}
	leadUC := NewLeadUseCase(store, cache, testLogger())
	uc := NewGenerateSummaryUseCase(store, summarizer, cache, testLogger())
	ctx := context.Background()

	lead, err := leadUC.Create(ctx, manualInput("ana@example.com"))
	require.NoError(t, err)

	updated, err := uc.Execute(ctx, lead.ID)
	require.NoError(t, err)

	assert.Equal(t, "Lead from Springfield, likely interested in outreach.", updated.Summary)
	assert.Equal(t, "Send intro email within 2 days.", updated.NextAction)
	assert.NotNil(t, updated.SummaryGeneratedAt)
	assert.Contains(t, cache.deleted, leadCacheKey(lead.ID))

	assert.Equal(t, "Ana", summarizer.lastInput.FirstName)
	assert.Equal(t, "manual", summarizer.lastInput.Source)
	assert.Equal(t, "Springfield, United States", summarizer.lastInput.Location)

	saved, err := store.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Summary, saved.Summary)
}

func TestGenerateSummaryPropagatesModelFailure(t *testing.T) {
	store := newFakeLeadStore()
	cache := &fakeCache{}
	summarizer := &fakeSummarizer{err: errors.New("openai: status 429")}
	leadUC := NewLeadUseCase(store, cache, testLogger())
	uc := NewGenerateSummaryUseCase(store, summarizer, cache, testLogger())
	ctx := context.Background()

	lead, err := leadUC.Create(ctx, manualInput("ana@example.com"))
	require.NoError(t, err)

	_, err = uc.Execute(ctx, lead.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate summary")

	saved, err := store.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Empty(t, saved.Summary)
	assert.Nil(t, saved.SummaryGeneratedAt)
}

func TestGenerateSummaryMissingLead(t *testing.T) {
	store := newFakeLeadStore()
	uc := NewGenerateSummaryUseCase(store, &fakeSummarizer{}, &fakeCache{}, testLogger())

	_, err := uc.Execute(context.Background(), "nope")
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

func TestSourceLabel(t *testing.T) {
	assert.Equal(t, "manual", sourceLabel(entity.LeadSourceManual))
	assert.Equal(t, "randomuser", sourceLabel(entity.LeadSourceExternalAPI))
}
