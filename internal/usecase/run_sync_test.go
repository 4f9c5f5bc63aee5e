package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

func newRunSyncFixture(t *testing.T, adapter SourceAdapter) (*RunSyncUseCase, *fakeJobRepo, *fakeLeadStore) {
	t.Helper()
	jobs := newFakeJobRepo()
	store := newFakeLeadStore()
	recon := NewReconciler(store, testLogger())
	adapters := map[string]SourceAdapter{}
	if adapter != nil {
		adapters["randomuser-api"] = adapter
	}
	uc := NewRunSyncUseCase(jobs, adapters, recon, testLogger())
	return uc, jobs, store
}

func pendingJob(t *testing.T, jobs *fakeJobRepo, batchSize int) *entity.SyncJob {
	t.Helper()
	job := entity.NewSyncJob("randomuser-api", batchSize)
	require.NoError(t, jobs.Create(context.Background(), job))
	return job
}

func TestRunSyncCompletesWithMixedBatch(t *testing.T) {
	ctx := context.Background()
	adapter := &fakeAdapter{batch: []entity.Candidate{
		candidate("a@example.com", "Ana", "Souza"),
		candidate("b@example.com", "Bruno", "Lima"),
		candidate("a@example.com", "Ana", "Souza"), // duplicado dentro do lote
	}}
	uc, jobs, store := newRunSyncFixture(t, adapter)
	job := pendingJob(t, jobs, 10)

	stats, err := uc.Execute(ctx, job.ID, job.Source, job.BatchSize)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 2, stats.Created)
	assert.Equal(t, 1, stats.Skipped)
	assert.Empty(t, stats.Errors)
	assert.Equal(t, 2, store.size())

	saved, err := jobs.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SyncStatusCompleted, saved.Status)
	assert.Equal(t, 3, saved.RecordsProcessed)
	assert.Equal(t, 2, saved.RecordsCreated)
	assert.Equal(t, 1, saved.RecordsSkipped)
	assert.NotNil(t, saved.StartedAt)
	assert.NotNil(t, saved.CompletedAt)
}

func TestRunSyncFetchFailureMarksJobFailed(t *testing.T) {
	ctx := context.Background()
	adapter := &fakeAdapter{err: errors.New("randomuser: status 503")}
	uc, jobs, _ := newRunSyncFixture(t, adapter)
	job := pendingJob(t, jobs, 10)

	stats, err := uc.Execute(ctx, job.ID, job.Source, job.BatchSize)
	require.Error(t, err)
	assert.Nil(t, stats)

	saved, ferr := jobs.FindByID(ctx, job.ID)
	require.NoError(t, ferr)
	assert.Equal(t, entity.SyncStatusFailed, saved.Status)
	assert.Equal(t, 0, saved.RecordsProcessed)
	assert.NotNil(t, saved.CompletedAt)
}

func TestRunSyncRecordErrorDoesNotAbortBatch(t *testing.T) {
	ctx := context.Background()
	adapter := &fakeAdapter{batch: []entity.Candidate{
		candidate("a@example.com", "Ana", "Souza"),
		candidate("b@example.com", "Bruno", "Lima"),
		candidate("c@example.com", "Clara", "Dias"),
		candidate("d@example.com", "Davi", "Alves"),
		candidate("e@example.com", "Elisa", "Rocha"),
	}}
	uc, jobs, store := newRunSyncFixture(t, adapter)
	store.failEmails["c@example.com"] = errors.New("insert failed")
	job := pendingJob(t, jobs, 10)

	stats, err := uc.Execute(ctx, job.ID, job.Source, job.BatchSize)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Processed)
	assert.Equal(t, 4, stats.Created)
	assert.Equal(t, 0, stats.Skipped)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, "c@example.com", stats.Errors[0].RecordKey)
	assert.Contains(t, stats.Errors[0].Message, "insert failed")

	saved, _ := jobs.FindByID(ctx, job.ID)
	assert.Equal(t, entity.SyncStatusCompleted, saved.Status)
	require.Len(t, saved.Errors, 1)
}

// Rodar o mesmo lote duas vezes não pode duplicar nada: a segunda rodada
// vira 100% skipped.
func TestRunSyncIsIdempotentAcrossRuns(t *testing.T) {
	ctx := context.Background()
	adapter := &fakeAdapter{batch: []entity.Candidate{
		candidate("a@example.com", "Ana", "Souza"),
		candidate("b@example.com", "Bruno", "Lima"),
	}}
	uc, jobs, store := newRunSyncFixture(t, adapter)

	first := pendingJob(t, jobs, 10)
	stats1, err := uc.Execute(ctx, first.ID, first.Source, first.BatchSize)
	require.NoError(t, err)
	assert.Equal(t, 2, stats1.Created)
	assert.Equal(t, 0, stats1.Skipped)

	second := pendingJob(t, jobs, 10)
	stats2, err := uc.Execute(ctx, second.ID, second.Source, second.BatchSize)
	require.NoError(t, err)
	assert.Equal(t, 0, stats2.Created)
	assert.Equal(t, 2, stats2.Skipped)
	assert.Equal(t, 2, store.size())
}

func TestRunSyncCountsAlwaysReconcile(t *testing.T) {
	ctx := context.Background()
	adapter := &fakeAdapter{batch: []entity.Candidate{
		candidate("a@example.com", "Ana", "Souza"),
		candidate("b@example.com", "Bruno", "Lima"),
		candidate("b@example.com", "Bruno", "Lima"),
	}}
	uc, jobs, store := newRunSyncFixture(t, adapter)
	store.failEmails["a@example.com"] = errors.New("boom")
	job := pendingJob(t, jobs, 10)

	stats, err := uc.Execute(ctx, job.ID, job.Source, job.BatchSize)
	require.NoError(t, err)

	assert.Equal(t, stats.Processed, stats.Created+stats.Skipped+len(stats.Errors))
}

func TestRunSyncUnknownSourceCompletesEmpty(t *testing.T) {
	ctx := context.Background()
	uc, jobs, _ := newRunSyncFixture(t, nil)
	job := entity.NewSyncJob("crunchbase", 10)
	require.NoError(t, jobs.Create(ctx, job))

	stats, err := uc.Execute(ctx, job.ID, job.Source, job.BatchSize)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Processed)

	saved, _ := jobs.FindByID(ctx, job.ID)
	assert.Equal(t, entity.SyncStatusCompleted, saved.Status)
}

func TestRunSyncMissingJobIsFatal(t *testing.T) {
	uc, _, _ := newRunSyncFixture(t, &fakeAdapter{})

	_, err := uc.Execute(context.Background(), "does-not-exist", "randomuser-api", 10)
	require.Error(t, err)
	assert.True(t, IsJobNotFound(err))
}

// Reentrega da fila: um job FAILED volta pra IN_PROGRESS e a nova tentativa
// começa com contadores zerados.
func TestRunSyncRetryAfterFailureResetsCounters(t *testing.T) {
	ctx := context.Background()
	adapter := &fakeAdapter{err: errors.New("timeout")}
	uc, jobs, _ := newRunSyncFixture(t, adapter)
	job := pendingJob(t, jobs, 10)

	_, err := uc.Execute(ctx, job.ID, job.Source, job.BatchSize)
	require.Error(t, err)

	adapter.err = nil
	adapter.batch = []entity.Candidate{candidate("a@example.com", "Ana", "Souza")}

	stats, err := uc.Execute(ctx, job.ID, job.Source, job.BatchSize)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Created)

	saved, _ := jobs.FindByID(ctx, job.ID)
	assert.Equal(t, entity.SyncStatusCompleted, saved.Status)
	assert.Equal(t, 1, saved.RecordsProcessed)
	assert.Empty(t, saved.Errors)
}

// COMPLETED é final: uma reentrega atrasada não pode reabrir o job.
func TestRunSyncCompletedJobRejectsReplay(t *testing.T) {
	ctx := context.Background()
	adapter := &fakeAdapter{batch: []entity.Candidate{candidate("a@example.com", "Ana", "Souza")}}
	uc, jobs, _ := newRunSyncFixture(t, adapter)
	job := pendingJob(t, jobs, 10)

	_, err := uc.Execute(ctx, job.ID, job.Source, job.BatchSize)
	require.NoError(t, err)

	_, err = uc.Execute(ctx, job.ID, job.Source, job.BatchSize)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	saved, _ := jobs.FindByID(ctx, job.ID)
	assert.Equal(t, entity.SyncStatusCompleted, saved.Status)
	assert.Equal(t, 1, saved.RecordsProcessed)
}
