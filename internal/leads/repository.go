// Package leads provides the lead bounded context: the people behind inbound
// conversations, created via the API or discovered from inbound email.
package leads

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrLeadNotFound = errors.New("lead not found")

// Lead is a prospective customer attached to a campaign.
type Lead struct {
	ID         uuid.UUID
	CampaignID uuid.UUID
	Name       string
	Email      string
	Phone      string
	Source     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository provides data access for leads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new leads repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, campaign_id, name, email, phone, source, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.CampaignID, &l.Name, &l.Email, &l.Phone, &l.Source, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// Create inserts a new lead.
func (r *Repository) Create(ctx context.Context, l Lead) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (campaign_id, name, email, phone, source)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+leadColumns+`
	`, l.CampaignID, l.Name, strings.ToLower(l.Email), l.Phone, l.Source)
	return scanLead(row)
}

// GetByID retrieves a lead by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrLeadNotFound
	}
	return l, err
}

// GetByEmail retrieves the lead with the given email within a campaign.
func (r *Repository) GetByEmail(ctx context.Context, campaignID uuid.UUID, email string) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE campaign_id = $1 AND email = $2
	`, campaignID, strings.ToLower(email))
	l, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrLeadNotFound
	}
	return l, err
}

// ListByCampaign returns a campaign's leads, newest first.
func (r *Repository) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE campaign_id = $1
		ORDER BY created_at DESC
	`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateName sets a lead's name when it was learned later (e.g. from a
// self-introduction in conversation). Empty names are never written over a
// known one.
func (r *Repository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET name = $2, updated_at = now()
		WHERE id = $1 AND (name = '' OR name IS NULL)
	`, id, name)
	return err
}
