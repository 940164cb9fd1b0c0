// Package agent hosts the conversational AI roles: the handover recommender
// consulted by the decision engine, and the responder that drafts auto-replies
// to leads. Both run on the OpenRouter-backed ADK model.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	adkagent "google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"mailmind_backend/internal/handover/domain"
	"mailmind_backend/platform/ai/openrouter"
	"mailmind_backend/platform/config"
	"mailmind_backend/platform/logger"
)

const recommenderAppName = "handover-recommender"

var recommenderTemperature = float32(0.1)

// Recommender asks the model whether a human should take over a conversation.
// Its answer only matters when keyword triggers are absent or inconclusive.
type Recommender struct {
	runner         *runner.Runner
	sessionService session.Service
	log            *logger.Logger
	timeout        time.Duration
	runMu          sync.Mutex
}

// NewRecommender creates the handover recommendation agent.
func NewRecommender(cfg config.AIConfig, log *logger.Logger) (*Recommender, error) {
	model := openrouter.NewModel(openrouter.Config{
		APIKey:      cfg.GetOpenRouterAPIKey(),
		BaseURL:     cfg.GetOpenRouterBaseURL(),
		Model:       cfg.GetOpenRouterModel(),
		Temperature: &recommenderTemperature,
		JSONMode:    true,
	})

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "HandoverRecommender",
		Model:       model,
		Description: "Judges whether a lead conversation needs a human sales rep.",
		Instruction: recommenderSystemPrompt(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create recommender agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        recommenderAppName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create recommender runner: %w", err)
	}

	return &Recommender{
		runner:         r,
		sessionService: sessionService,
		log:            log,
		timeout:        cfg.GetGenerationTimeout(),
	}, nil
}

// Recommend returns the model's handover opinion, or nil when the model is
// unavailable or returns garbage. Callers treat nil as "no recommendation";
// the decision engine then defaults to no handover.
func (r *Recommender) Recommend(ctx context.Context, conversationID uuid.UUID, history []string, lastMessage string) *domain.ModelRecommendation {
	raw, err := r.run(ctx, conversationID, buildRecommenderPrompt(history, lastMessage))
	if err != nil {
		r.log.Warn("handover recommendation failed",
			"conversation_id", conversationID.String(),
			"error", err.Error())
		return nil
	}

	rec, err := parseRecommendation(raw)
	if err != nil {
		r.log.Warn("handover recommendation unparseable",
			"conversation_id", conversationID.String(),
			"error", err.Error())
		return nil
	}
	return rec
}

func (r *Recommender) run(ctx context.Context, conversationID uuid.UUID, promptText string) (string, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sessionID := uuid.New().String()
	userID := "recommender-" + conversationID.String()

	_, err := r.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   recommenderAppName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("recommender: create session: %w", err)
	}
	defer func() {
		_ = r.sessionService.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
			AppName:   recommenderAppName,
			UserID:    userID,
			SessionID: sessionID,
		})
	}()

	userMessage := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: promptText}},
	}

	runConfig := adkagent.RunConfig{StreamingMode: adkagent.StreamingModeNone}

	var out strings.Builder
	for event, err := range r.runner.Run(ctx, userID, sessionID, userMessage, runConfig) {
		if err != nil {
			return "", fmt.Errorf("recommender: run failed: %w", err)
		}
		if event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			out.WriteString(part.Text)
		}
	}

	return strings.TrimSpace(out.String()), nil
}

type rawRecommendation struct {
	ShouldHandover bool   `json:"should_handover"`
	Reason         string `json:"reason"`
}

func parseRecommendation(raw string) (*domain.ModelRecommendation, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in recommendation output")
	}

	var rec rawRecommendation
	if err := json.Unmarshal([]byte(raw[start:end+1]), &rec); err != nil {
		return nil, fmt.Errorf("decode recommendation: %w", err)
	}

	return &domain.ModelRecommendation{
		ShouldHandover: rec.ShouldHandover,
		Reason:         strings.TrimSpace(rec.Reason),
	}, nil
}

func recommenderSystemPrompt() string {
	return "You judge automotive dealership lead conversations. Decide whether the latest message needs a human " +
		"sales rep (complex requests, strong buying signals, frustration, anything the automated assistant cannot " +
		`resolve). Respond with a single JSON object: {"should_handover": true|false, "reason": "one short sentence"}.`
}

func buildRecommenderPrompt(history []string, lastMessage string) string {
	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	if len(history) == 0 {
		b.WriteString("(none)\n")
	}
	for _, msg := range history {
		b.WriteString("- " + strings.Join(strings.Fields(msg), " ") + "\n")
	}
	b.WriteString("\nLatest message:\n" + lastMessage + "\n")
	b.WriteString("\nShould a human sales rep take over now?")
	return b.String()
}
