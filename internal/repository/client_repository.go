package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sai-prashanth/scheduler-api/internal/models"
)

// ClientRepository manages persistence for scheduling clients.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository constructs a ClientRepository.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = "id, name, email, location, session_duration, weekly_sessions, monthly_sessions, preferred_days, preferred_times, unavailable_dates, created_at, updated_at"

// List returns all clients ordered by insertion time. The stable order
// is what keeps equal-priority allocation outcomes reproducible across
// runs, so it must not change.
func (r *ClientRepository) List(ctx context.Context) ([]models.Client, error) {
	query := fmt.Sprintf("SELECT %s FROM clients ORDER BY created_at ASC, id ASC", clientColumns)
	var clients []models.Client
	if err := r.db.SelectContext(ctx, &clients, query); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// Search returns clients matching the filter with a total count.
func (r *ClientRepository) Search(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error) {
	base := "FROM clients WHERE 1=1"
	var args []interface{}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		base += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, search)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at ASC, id ASC LIMIT %d OFFSET %d", clientColumns, base, size, offset)
	var clients []models.Client
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("search clients: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	return clients, total, nil
}

// FindByEmail fetches a client by email.
func (r *ClientRepository) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	query := fmt.Sprintf("SELECT %s FROM clients WHERE LOWER(email) = LOWER($1)", clientColumns)
	var client models.Client
	if err := r.db.GetContext(ctx, &client, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find client by email: %w", err)
	}
	return &client, nil
}

// Upsert inserts a client or, when the email already exists, refreshes
// its preference fields. Re-importing an existing client keeps the
// original created_at so the ranking tie-break order is preserved.
func (r *ClientRepository) Upsert(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = now

	const query = `INSERT INTO clients (id, name, email, location, session_duration, weekly_sessions, monthly_sessions, preferred_days, preferred_times, unavailable_dates, created_at, updated_at)
		VALUES (:id, :name, :email, :location, :session_duration, :weekly_sessions, :monthly_sessions, :preferred_days, :preferred_times, :unavailable_dates, :created_at, :updated_at)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			location = EXCLUDED.location,
			session_duration = EXCLUDED.session_duration,
			weekly_sessions = EXCLUDED.weekly_sessions,
			monthly_sessions = EXCLUDED.monthly_sessions,
			preferred_days = EXCLUDED.preferred_days,
			preferred_times = EXCLUDED.preferred_times,
			unavailable_dates = EXCLUDED.unavailable_dates,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, client); err != nil {
		return fmt.Errorf("upsert client: %w", err)
	}
	return nil
}

// Count returns the number of stored clients.
func (r *ClientRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM clients"); err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return total, nil
}

// Delete removes a client by ID.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM clients WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}
