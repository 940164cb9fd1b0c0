// Package conversations provides the conversation bounded context: message
// threads between leads and the system, and their handover state.
package conversations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrDuplicateMessage     = errors.New("message already recorded")
)

// Conversation status values.
const (
	StatusActive     = "active"
	StatusHandedOver = "handed_over"
	StatusClosed     = "closed"
)

// Message direction values.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Conversation is one message thread between a lead and the system.
type Conversation struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	CampaignID   uuid.UUID
	Status       string
	HandedOverAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Message is one message within a conversation.
type Message struct {
	ID                uuid.UUID
	ConversationID    uuid.UUID
	Direction         string
	Sender            string
	Body              string
	ProviderMessageID string
	CreatedAt         time.Time
}

// Repository provides data access for conversations and messages.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new conversations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const conversationColumns = `id, lead_id, campaign_id, status, handed_over_at, created_at, updated_at`

func scanConversation(row pgx.Row) (Conversation, error) {
	var c Conversation
	err := row.Scan(&c.ID, &c.LeadID, &c.CampaignID, &c.Status, &c.HandedOverAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetByID retrieves a conversation by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Conversation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id)
	c, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, ErrConversationNotFound
	}
	return c, err
}

// GetOrCreateActive returns the lead's active conversation, creating one when
// none exists. Handed-over conversations stay open for message recording but
// are not reused for new threads.
func (r *Repository) GetOrCreateActive(ctx context.Context, leadID, campaignID uuid.UUID) (Conversation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE lead_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`, leadID, StatusActive, StatusHandedOver)
	c, err := scanConversation(row)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, err
	}

	row = r.pool.QueryRow(ctx, `
		INSERT INTO conversations (lead_id, campaign_id, status)
		VALUES ($1, $2, $3)
		RETURNING `+conversationColumns+`
	`, leadID, campaignID, StatusActive)
	return scanConversation(row)
}

// ListByLead returns a lead's conversations, newest first.
func (r *Repository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]Conversation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE lead_id = $1
		ORDER BY created_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MarkHandedOver flips a conversation to handed_over and stamps the time.
func (r *Repository) MarkHandedOver(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE conversations
		SET status = $2, handed_over_at = $3, updated_at = now()
		WHERE id = $1
	`, id, StatusHandedOver, at.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

const messageColumns = `id, conversation_id, direction, sender, body, provider_message_id, created_at`

func scanMessage(row pgx.Row) (Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.Direction, &m.Sender, &m.Body, &m.ProviderMessageID, &m.CreatedAt)
	return m, err
}

// AppendMessage records a message. A message with an already-seen provider
// message id is rejected with ErrDuplicateMessage so webhook redeliveries
// don't double-process.
func (r *Repository) AppendMessage(ctx context.Context, m Message) (Message, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO conversation_messages (conversation_id, direction, sender, body, provider_message_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider_message_id) WHERE provider_message_id <> '' DO NOTHING
		RETURNING `+messageColumns+`
	`, m.ConversationID, m.Direction, m.Sender, m.Body, m.ProviderMessageID)
	stored, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Message{}, ErrDuplicateMessage
	}
	return stored, err
}

// ListMessages returns a conversation's messages in chronological order.
func (r *Repository) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM conversation_messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// InboundBodies returns the bodies of a conversation's inbound messages in
// chronological order; the analyzer operates on these.
func (r *Repository) InboundBodies(ctx context.Context, conversationID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT body
		FROM conversation_messages
		WHERE conversation_id = $1 AND direction = $2
		ORDER BY created_at ASC
	`, conversationID, DirectionInbound)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		out = append(out, body)
	}
	return out, rows.Err()
}
