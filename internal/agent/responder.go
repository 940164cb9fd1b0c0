package agent

import (
	"context"
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

	"mailmind_backend/platform/ai/openrouter"
	"mailmind_backend/platform/config"
	"mailmind_backend/platform/logger"
)

const responderAppName = "lead-responder"

var responderTemperature = float32(0.7)

// Responder drafts the automated reply sent to a lead when the conversation
// stays with the AI.
type Responder struct {
	runner         *runner.Runner
	sessionService session.Service
	log            *logger.Logger
	timeout        time.Duration
	runMu          sync.Mutex
}

// NewResponder creates the auto-reply agent.
func NewResponder(cfg config.AIConfig, log *logger.Logger) (*Responder, error) {
	model := openrouter.NewModel(openrouter.Config{
		APIKey:      cfg.GetOpenRouterAPIKey(),
		BaseURL:     cfg.GetOpenRouterBaseURL(),
		Model:       cfg.GetOpenRouterModel(),
		Temperature: &responderTemperature,
	})

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "LeadResponder",
		Model:       model,
		Description: "Writes helpful, short email replies to automotive sales leads.",
		Instruction: responderSystemPrompt(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create responder agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        responderAppName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create responder runner: %w", err)
	}

	return &Responder{
		runner:         r,
		sessionService: sessionService,
		log:            log,
		timeout:        cfg.GetGenerationTimeout(),
	}, nil
}

// Reply drafts an answer to the lead's latest message. Returns an error when
// the model is unavailable; the caller decides whether to stay silent or send
// a canned acknowledgement.
func (r *Responder) Reply(ctx context.Context, conversationID uuid.UUID, leadName string, history []string, lastMessage string) (string, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sessionID := uuid.New().String()
	userID := "responder-" + conversationID.String()

	_, err := r.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   responderAppName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("responder: create session: %w", err)
	}
	defer func() {
		_ = r.sessionService.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
			AppName:   responderAppName,
			UserID:    userID,
			SessionID: sessionID,
		})
	}()

	userMessage := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: buildResponderPrompt(leadName, history, lastMessage)}},
	}

	runConfig := adkagent.RunConfig{StreamingMode: adkagent.StreamingModeNone}

	var out strings.Builder
	for event, err := range r.runner.Run(ctx, userID, sessionID, userMessage, runConfig) {
		if err != nil {
			return "", fmt.Errorf("responder: run failed: %w", err)
		}
		if event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			out.WriteString(part.Text)
		}
	}

	reply := strings.TrimSpace(out.String())
	if reply == "" {
		return "", fmt.Errorf("responder: empty reply")
	}
	return reply, nil
}

func responderSystemPrompt() string {
	return "You are a friendly assistant for an automotive dealership, replying to leads by email. " +
		"Keep replies short (2-4 sentences), answer only what was asked, and never invent pricing, " +
		"inventory, or appointment commitments. Plain text only, no markdown, no signature."
}

func buildResponderPrompt(leadName string, history []string, lastMessage string) string {
	var b strings.Builder
	if leadName != "" {
		fmt.Fprintf(&b, "The lead's name is %s.\n\n", leadName)
	}
	b.WriteString("Conversation so far:\n")
	if len(history) == 0 {
		b.WriteString("(none)\n")
	}
	for _, msg := range history {
		b.WriteString("- " + strings.Join(strings.Fields(msg), " ") + "\n")
	}
	b.WriteString("\nLatest message from the lead:\n" + lastMessage + "\n")
	b.WriteString("\nWrite the reply email body.")
	return b.String()
}
