package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/xavierca1/contactship-crm/internal/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeLeadStore é um store em memória com o mesmo contrato do repositório
// Postgres, incluindo o unique de email.
type fakeLeadStore struct {
	mu         sync.Mutex
	byEmail    map[string]*entity.Lead
	byID       map[string]*entity.Lead
	persons    map[string]*entity.Person
	failEmails map[string]error
}

func newFakeLeadStore() *fakeLeadStore {
	return &fakeLeadStore{
		byEmail:    make(map[string]*entity.Lead),
		byID:       make(map[string]*entity.Lead),
		persons:    make(map[string]*entity.Person),
		failEmails: make(map[string]error),
	}
}

func (s *fakeLeadStore) FindByEmail(_ context.Context, email string) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lead, ok := s.byEmail[email]; ok {
		return lead, nil
	}
	return nil, nil
}

func (s *fakeLeadStore) CreatePersonAndLead(_ context.Context, person *entity.Person, lead *entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.failEmails[lead.Email]; ok {
		return err
	}
	if _, ok := s.byEmail[lead.Email]; ok {
		return entity.ErrEmailAlreadyExists
	}

	s.persons[person.ID] = person
	lead.Person = person
	s.byEmail[lead.Email] = lead
	s.byID[lead.ID] = lead
	return nil
}

func (s *fakeLeadStore) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lead, ok := s.byID[id]; ok {
		return lead, nil
	}
	return nil, entity.ErrLeadNotFound
}

func (s *fakeLeadStore) FindMany(_ context.Context, _ FindLeadsOptions) ([]entity.Lead, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Lead
	for _, l := range s.byID {
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (s *fakeLeadStore) Update(_ context.Context, lead *entity.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[lead.ID]; !ok {
		return entity.ErrLeadNotFound
	}
	s.byID[lead.ID] = lead
	s.byEmail[lead.Email] = lead
	return nil
}

func (s *fakeLeadStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.byID[id]
	if !ok {
		return entity.ErrLeadNotFound
	}
	delete(s.byID, id)
	delete(s.byEmail, lead.Email)
	return nil
}

func (s *fakeLeadStore) CountByStatus(_ context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, l := range s.byID {
		counts[l.Status]++
	}
	return counts, nil
}

func (s *fakeLeadStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// fakeJobRepo é o ledger em memória; as transições seguem a mesma máquina
// de estados do repositório real.
type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*entity.SyncJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*entity.SyncJob)}
}

func (r *fakeJobRepo) Create(_ context.Context, job *entity.SyncJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepo) FindByID(_ context.Context, id string) (*entity.SyncJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, entity.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (r *fakeJobRepo) FindRecent(_ context.Context, limit int) ([]entity.SyncJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.SyncJob
	for _, j := range r.jobs {
		out = append(out, *j)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeJobRepo) MarkInProgress(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return entity.ErrJobNotFound
	}
	if !entity.CanTransition(job.Status, entity.SyncStatusInProgress) {
		return entity.ErrInvalidTransition
	}
	now := time.Now()
	job.Status = entity.SyncStatusInProgress
	job.StartedAt = &now
	job.CompletedAt = nil
	job.RecordsProcessed = 0
	job.RecordsCreated = 0
	job.RecordsSkipped = 0
	job.Errors = []entity.SyncError{}
	return nil
}

func (r *fakeJobRepo) MarkCompleted(_ context.Context, id string, stats entity.SyncRunStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return entity.ErrJobNotFound
	}
	if !entity.CanTransition(job.Status, entity.SyncStatusCompleted) {
		return entity.ErrInvalidTransition
	}
	now := time.Now()
	job.Status = entity.SyncStatusCompleted
	job.CompletedAt = &now
	job.RecordsProcessed = stats.Processed
	job.RecordsCreated = stats.Created
	job.RecordsSkipped = stats.Skipped
	job.Errors = stats.Errors
	if job.Errors == nil {
		job.Errors = []entity.SyncError{}
	}
	return nil
}

func (r *fakeJobRepo) MarkFailed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return entity.ErrJobNotFound
	}
	if !entity.CanTransition(job.Status, entity.SyncStatusFailed) {
		return entity.ErrInvalidTransition
	}
	now := time.Now()
	job.Status = entity.SyncStatusFailed
	job.CompletedAt = &now
	return nil
}

// fakeAdapter devolve um lote fixo ou um erro.
type fakeAdapter struct {
	batch []entity.Candidate
	err   error
	calls int
}

func (a *fakeAdapter) FetchBatch(_ context.Context, count int) ([]entity.Candidate, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	if count < len(a.batch) {
		return a.batch[:count], nil
	}
	return a.batch, nil
}

// fakeProducer grava os payloads publicados.
type fakeProducer struct {
	mu        sync.Mutex
	published []SyncTaskPayload
	err       error
}

func (p *fakeProducer) PublishSyncTask(_ context.Context, payload SyncTaskPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, payload)
	return nil
}

// fakeCache delega direto pro loader e registra invalidações.
type fakeCache struct {
	mu      sync.Mutex
	deleted []string
}

func (c *fakeCache) GetOrSet(ctx context.Context, _ string, loader func(context.Context) (*entity.Lead, error)) (*entity.Lead, error) {
	return loader(ctx)
}

func (c *fakeCache) Del(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, key)
}

func candidate(email, first, last string) entity.Candidate {
	return entity.Candidate{
		Email:      email,
		FirstName:  first,
		LastName:   last,
		Phone:      "(555) 010-0199",
		ExternalID: "ext-" + email,
		Address: entity.Address{
			Street:   "1 Main St",
			City:     "Springfield",
			State:    "IL",
			Postcode: "62701",
			Country:  "United States",
		},
		Gender:      "female",
		Nationality: "US",
	}
}
