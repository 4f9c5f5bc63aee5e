package usecase

import (
	"context"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

// LeadRepositoryInterface é a visão completa do repositório de leads.
// O Reconciler usa só o subconjunto ReconcilerStore.
type LeadRepositoryInterface interface {
	FindByEmail(ctx context.Context, email string) (*entity.Lead, error)
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	FindMany(ctx context.Context, opts FindLeadsOptions) ([]entity.Lead, int, error)
	CreatePersonAndLead(ctx context.Context, person *entity.Person, lead *entity.Lead) error
	Update(ctx context.Context, lead *entity.Lead) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// ReconcilerStore é o contrato mínimo que a reconciliação precisa.
type ReconcilerStore interface {
	FindByEmail(ctx context.Context, email string) (*entity.Lead, error)
	CreatePersonAndLead(ctx context.Context, person *entity.Person, lead *entity.Lead) error
}

type SyncJobRepositoryInterface interface {
	Create(ctx context.Context, job *entity.SyncJob) error
	FindByID(ctx context.Context, id string) (*entity.SyncJob, error)
	FindRecent(ctx context.Context, limit int) ([]entity.SyncJob, error)
	MarkInProgress(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, stats entity.SyncRunStats) error
	MarkFailed(ctx context.Context, id string) error
}

// SourceAdapter busca um lote de candidatos da fonte externa.
// Deve falhar (não devolver lote parcial em silêncio) em non-2xx ou timeout.
type SourceAdapter interface {
	FetchBatch(ctx context.Context, count int) ([]entity.Candidate, error)
}

type QueueProducerInterface interface {
	PublishSyncTask(ctx context.Context, payload SyncTaskPayload) error
}

// Summarizer gera o resumo + próxima ação de um lead.
type Summarizer interface {
	GenerateLeadSummary(ctx context.Context, input SummaryInput) (*LeadSummary, error)
}

// LeadCache guarda leads por id. Erros de cache degradam (log) e nunca
// mascaram o erro do loader.
type LeadCache interface {
	GetOrSet(ctx context.Context, key string, loader func(context.Context) (*entity.Lead, error)) (*entity.Lead, error)
	Del(key string)
}
