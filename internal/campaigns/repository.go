// Package campaigns provides the campaign bounded context: outreach campaign
// records plus their handover trigger configuration and recipient routing.
package campaigns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mailmind_backend/internal/handover/domain"
)

var ErrCampaignNotFound = errors.New("campaign not found")

// Campaign is an outreach campaign. Triggers and recipient routing are read by
// the handover pipeline on every inbound message.
type Campaign struct {
	ID               uuid.UUID
	Name             string
	Source           string
	Triggers         domain.Triggers
	Recipient        string
	RecipientName    string
	AutoReplyEnabled bool
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Repository provides data access for campaigns.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new campaigns repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const campaignColumns = `id, name, source, triggers, recipient, recipient_name, auto_reply_enabled, is_active, created_at, updated_at`

func scanCampaign(row pgx.Row) (Campaign, error) {
	var c Campaign
	var triggersJSON []byte
	err := row.Scan(
		&c.ID, &c.Name, &c.Source, &triggersJSON, &c.Recipient, &c.RecipientName,
		&c.AutoReplyEnabled, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return Campaign{}, err
	}
	if len(triggersJSON) > 0 {
		if err := json.Unmarshal(triggersJSON, &c.Triggers); err != nil {
			return Campaign{}, fmt.Errorf("decode campaign triggers: %w", err)
		}
	}
	return c, nil
}

// Create inserts a new campaign.
func (r *Repository) Create(ctx context.Context, c Campaign) (Campaign, error) {
	triggersJSON, err := json.Marshal(c.Triggers)
	if err != nil {
		return Campaign{}, fmt.Errorf("encode campaign triggers: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO campaigns (name, source, triggers, recipient, recipient_name, auto_reply_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+campaignColumns+`
	`, c.Name, c.Source, triggersJSON, c.Recipient, c.RecipientName, c.AutoReplyEnabled)
	return scanCampaign(row)
}

// GetByID retrieves a campaign by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Campaign, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE id = $1
	`, id)
	c, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Campaign{}, ErrCampaignNotFound
	}
	return c, err
}

// GetBySource retrieves an active campaign by its source tag. Inbound email
// routing uses the recipient address local part as the source.
func (r *Repository) GetBySource(ctx context.Context, source string) (Campaign, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE source = $1 AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1
	`, source)
	c, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Campaign{}, ErrCampaignNotFound
	}
	return c, err
}

// List returns all campaigns, newest first.
func (r *Repository) List(ctx context.Context) ([]Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update replaces the mutable fields of a campaign.
func (r *Repository) Update(ctx context.Context, c Campaign) (Campaign, error) {
	triggersJSON, err := json.Marshal(c.Triggers)
	if err != nil {
		return Campaign{}, fmt.Errorf("encode campaign triggers: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE campaigns
		SET name = $2, source = $3, triggers = $4, recipient = $5,
		    recipient_name = $6, auto_reply_enabled = $7, is_active = $8,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+campaignColumns+`
	`, c.ID, c.Name, c.Source, triggersJSON, c.Recipient, c.RecipientName, c.AutoReplyEnabled, c.IsActive)
	updated, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Campaign{}, ErrCampaignNotFound
	}
	return updated, err
}

// Delete removes a campaign.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCampaignNotFound
	}
	return nil
}
