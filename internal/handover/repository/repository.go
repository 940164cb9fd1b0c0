// Package repository persists handover briefs for audit and rep display.
package repository

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

var ErrBriefNotFound = errors.New("handover brief not found")

// StoredBrief is a persisted handover event: the deterministic brief, the
// generated sales brief, and the notification outcome.
type StoredBrief struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	LeadID         uuid.UUID
	CampaignID     uuid.UUID
	Brief          domain.Brief
	SalesBrief     domain.SalesBrief
	TriggeredBy    domain.TriggeredBy
	Reason         string
	Degraded       bool
	DeliveryStatus domain.DeliveryStatus
	Recipient      string
	CreatedAt      time.Time
}

// Repository provides data access for handover briefs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new handover brief repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const briefColumns = `id, conversation_id, lead_id, campaign_id, brief, sales_brief, triggered_by, reason, degraded, delivery_status, recipient, created_at`

func scanBrief(row pgx.Row) (StoredBrief, error) {
	var sb StoredBrief
	var briefJSON, salesJSON []byte
	err := row.Scan(
		&sb.ID, &sb.ConversationID, &sb.LeadID, &sb.CampaignID,
		&briefJSON, &salesJSON, &sb.TriggeredBy, &sb.Reason,
		&sb.Degraded, &sb.DeliveryStatus, &sb.Recipient, &sb.CreatedAt,
	)
	if err != nil {
		return StoredBrief{}, err
	}
	if err := json.Unmarshal(briefJSON, &sb.Brief); err != nil {
		return StoredBrief{}, fmt.Errorf("decode brief: %w", err)
	}
	if err := json.Unmarshal(salesJSON, &sb.SalesBrief); err != nil {
		return StoredBrief{}, fmt.Errorf("decode sales brief: %w", err)
	}
	return sb, nil
}

// Create stores a new handover brief with delivery still pending.
func (r *Repository) Create(ctx context.Context, sb StoredBrief) (StoredBrief, error) {
	briefJSON, err := json.Marshal(sb.Brief)
	if err != nil {
		return StoredBrief{}, fmt.Errorf("encode brief: %w", err)
	}
	salesJSON, err := json.Marshal(sb.SalesBrief)
	if err != nil {
		return StoredBrief{}, fmt.Errorf("encode sales brief: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO handover_briefs (conversation_id, lead_id, campaign_id, brief, sales_brief, triggered_by, reason, degraded, delivery_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+briefColumns+`
	`, sb.ConversationID, sb.LeadID, sb.CampaignID, briefJSON, salesJSON,
		string(sb.TriggeredBy), sb.Reason, sb.Degraded, string(domain.DeliveryPending))
	return scanBrief(row)
}

// SetDeliveryOutcome records the notification result on a stored brief.
func (r *Repository) SetDeliveryOutcome(ctx context.Context, id uuid.UUID, status domain.DeliveryStatus, recipient string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE handover_briefs
		SET delivery_status = $2, recipient = $3
		WHERE id = $1
	`, id, string(status), recipient)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBriefNotFound
	}
	return nil
}

// GetByID retrieves one stored brief.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (StoredBrief, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+briefColumns+` FROM handover_briefs WHERE id = $1`, id)
	sb, err := scanBrief(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredBrief{}, ErrBriefNotFound
	}
	return sb, err
}

// LatestByConversation returns the newest brief for a conversation; a new
// handover event supersedes older ones.
func (r *Repository) LatestByConversation(ctx context.Context, conversationID uuid.UUID) (StoredBrief, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+briefColumns+`
		FROM handover_briefs
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, conversationID)
	sb, err := scanBrief(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return StoredBrief{}, ErrBriefNotFound
	}
	return sb, err
}

// ListByCampaign returns a campaign's handover briefs, newest first.
func (r *Repository) ListByCampaign(ctx context.Context, campaignID uuid.UUID, limit int) ([]StoredBrief, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+briefColumns+`
		FROM handover_briefs
		WHERE campaign_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, campaignID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredBrief
	for rows.Next() {
		sb, err := scanBrief(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sb)
	}
	return out, rows.Err()
}
