package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

func TestTriggerSyncCreatesPendingJobAndPublishes(t *testing.T) {
	ctx := context.Background()
	jobs := newFakeJobRepo()
	producer := &fakeProducer{}
	uc := NewTriggerSyncUseCase(jobs, producer, testLogger())

	job, err := uc.Execute(ctx, "randomuser-api", 25)
	require.NoError(t, err)

	assert.Equal(t, entity.SyncStatusPending, job.Status)
	assert.Equal(t, "randomuser-api", job.Source)
	assert.Equal(t, 25, job.BatchSize)

	saved, err := jobs.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SyncStatusPending, saved.Status)

	require.Len(t, producer.published, 1)
	assert.Equal(t, job.ID, producer.published[0].JobID)
	assert.Equal(t, "randomuser-api", producer.published[0].Source)
	assert.Equal(t, 25, producer.published[0].BatchSize)
}

func TestTriggerSyncAppliesDefaults(t *testing.T) {
	jobs := newFakeJobRepo()
	producer := &fakeProducer{}
	uc := NewTriggerSyncUseCase(jobs, producer, testLogger())

	job, err := uc.Execute(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, "randomuser-api", job.Source)
	assert.Equal(t, DefaultBatchSize, job.BatchSize)
}

func TestTriggerSyncClampsBatchSize(t *testing.T) {
	jobs := newFakeJobRepo()
	producer := &fakeProducer{}
	uc := NewTriggerSyncUseCase(jobs, producer, testLogger())

	job, err := uc.Execute(context.Background(), "randomuser-api", 500)
	require.NoError(t, err)
	assert.Equal(t, MaxBatchSize, job.BatchSize)
	assert.Equal(t, MaxBatchSize, producer.published[0].BatchSize)
}

func TestTriggerSyncPropagatesPublishFailure(t *testing.T) {
	jobs := newFakeJobRepo()
	producer := &fakeProducer{err: errors.New("channel closed")}
	uc := NewTriggerSyncUseCase(jobs, producer, testLogger())

	_, err := uc.Execute(context.Background(), "randomuser-api", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enqueue sync task")
}

func TestGetSyncJobNotFound(t *testing.T) {
	uc := NewTriggerSyncUseCase(newFakeJobRepo(), &fakeProducer{}, testLogger())

	_, err := uc.GetSyncJob(context.Background(), "nope")
	assert.ErrorIs(t, err, entity.ErrJobNotFound)
}
