package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/xavierca1/contactship-crm/internal/entity"
	"github.com/xavierca1/contactship-crm/internal/usecase"
)

const uniqueViolation = "23505"

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// FindByEmail devolve (nil, nil) quando não existe lead com esse email.
func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	query := `
		SELECT id, person_id, external_id, email, source, status, created_at, updated_at
		FROM leads
		WHERE email = $1
		LIMIT 1
	`

	lead := &entity.Lead{}
	var externalID sql.NullString

	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&lead.ID,
		&lead.PersonID,
		&externalID,
		&lead.Email,
		&lead.Source,
		&lead.Status,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find lead by email: %w", err)
	}

	lead.ExternalID = externalID.String
	return lead, nil
}

// CreatePersonAndLead insere o par em uma transação: ou os dois entram, ou
// nenhum. Violação do unique de email vira entity.ErrEmailAlreadyExists.
func (r *LeadRepository) CreatePersonAndLead(ctx context.Context, person *entity.Person, lead *entity.Lead) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	addressJSON, err := json.Marshal(person.Address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}

	personQuery := `
		INSERT INTO persons (id, first_name, last_name, full_name, phone, address,
			date_of_birth, nationality, gender, picture_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = tx.ExecContext(ctx, personQuery,
		person.ID,
		person.FirstName,
		person.LastName,
		person.FullName,
		nullString(person.Phone),
		addressJSON,
		person.DateOfBirth,
		nullString(person.Nationality),
		nullString(person.Gender),
		nullString(person.PictureURL),
		person.CreatedAt,
		person.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err)
	}

	metadataJSON, err := json.Marshal(lead.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	leadQuery := `
		INSERT INTO leads (id, person_id, external_id, email, source, status,
			metadata, synced_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.ExecContext(ctx, leadQuery,
		lead.ID,
		lead.PersonID,
		nullString(lead.ExternalID),
		lead.Email,
		lead.Source,
		lead.Status,
		metadataJSON,
		lead.SyncedAt,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err)
	}

	return tx.Commit()
}

// FindByID traz o lead com a person (join).
func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `
		SELECT l.id, l.person_id, l.external_id, l.email, l.source, l.status,
			l.metadata, l.synced_at, l.summary, l.next_action, l.summary_generated_at,
			l.created_at, l.updated_at,
			p.id, p.first_name, p.last_name, p.full_name, p.phone, p.address,
			p.date_of_birth, p.nationality, p.gender, p.picture_url, p.created_at, p.updated_at
		FROM leads l
		INNER JOIN persons p ON p.id = l.person_id
		WHERE l.id = $1
		LIMIT 1
	`

	row := r.DB.QueryRowContext(ctx, query, id)
	lead, err := scanLeadWithPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find lead by id: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) FindMany(ctx context.Context, opts usecase.FindLeadsOptions) ([]entity.Lead, int, error) {
	where := "WHERE 1=1"
	args := []any{}

	if opts.Status != "" {
		args = append(args, opts.Status)
		where += fmt.Sprintf(" AND l.status = $%d", len(args))
	}
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (p.full_name ILIKE $%d OR l.email ILIKE $%d)", n, n)
	}

	countQuery := `
		SELECT COUNT(*)
		FROM leads l
		INNER JOIN persons p ON p.id = l.person_id
	` + where

	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	args = append(args, opts.Take, opts.Skip)
	listQuery := fmt.Sprintf(`
		SELECT l.id, l.person_id, l.external_id, l.email, l.source, l.status,
			l.metadata, l.synced_at, l.summary, l.next_action, l.summary_generated_at,
			l.created_at, l.updated_at,
			p.id, p.first_name, p.last_name, p.full_name, p.phone, p.address,
			p.date_of_birth, p.nationality, p.gender, p.picture_url, p.created_at, p.updated_at
		FROM leads l
		INNER JOIN persons p ON p.id = l.person_id
		%s
		ORDER BY l.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []entity.Lead
	for rows.Next() {
		lead, err := scanLeadWithPerson(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	metadataJSON, err := json.Marshal(lead.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query := `
		UPDATE leads
		SET email = $2, external_id = $3, status = $4, metadata = $5,
			summary = $6, next_action = $7, summary_generated_at = $8, updated_at = $9
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Email,
		nullString(lead.ExternalID),
		lead.Status,
		metadataJSON,
		nullString(lead.Summary),
		nullString(lead.NextAction),
		lead.SummaryGeneratedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

// Delete remove o lead; a person cai junto pelo ON DELETE CASCADE.
func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count leads by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLeadWithPerson(row rowScanner) (*entity.Lead, error) {
	lead := &entity.Lead{Person: &entity.Person{}}
	var (
		externalID, summary, nextAction sql.NullString
		nationality, gender, pictureURL sql.NullString
		personPhone                     sql.NullString
		syncedAt, summaryAt, dob        sql.NullTime
		metadataJSON, addressJSON       []byte
	)

	err := row.Scan(
		&lead.ID,
		&lead.PersonID,
		&externalID,
		&lead.Email,
		&lead.Source,
		&lead.Status,
		&metadataJSON,
		&syncedAt,
		&summary,
		&nextAction,
		&summaryAt,
		&lead.CreatedAt,
		&lead.UpdatedAt,
		&lead.Person.ID,
		&lead.Person.FirstName,
		&lead.Person.LastName,
		&lead.Person.FullName,
		&personPhone,
		&addressJSON,
		&dob,
		&nationality,
		&gender,
		&pictureURL,
		&lead.Person.CreatedAt,
		&lead.Person.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.ExternalID = externalID.String
	lead.Summary = summary.String
	lead.NextAction = nextAction.String
	lead.Person.Phone = personPhone.String
	lead.Person.Nationality = nationality.String
	lead.Person.Gender = gender.String
	lead.Person.PictureURL = pictureURL.String

	if syncedAt.Valid {
		lead.SyncedAt = &syncedAt.Time
	}
	if summaryAt.Valid {
		lead.SummaryGeneratedAt = &summaryAt.Time
	}
	if dob.Valid {
		lead.Person.DateOfBirth = &dob.Time
	}
	if len(metadataJSON) > 0 {
		_ = json.Unmarshal(metadataJSON, &lead.Metadata)
	}
	if len(addressJSON) > 0 {
		_ = json.Unmarshal(addressJSON, &lead.Person.Address)
	}

	return lead, nil
}

// mapPgError traduz violação de unique em erro de domínio.
func mapPgError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return entity.ErrEmailAlreadyExists
	}
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
