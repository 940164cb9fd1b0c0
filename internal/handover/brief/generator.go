package brief

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"mailmind_backend/internal/handover/domain"
	"mailmind_backend/platform/ai/openrouter"
	"mailmind_backend/platform/config"
	"mailmind_backend/platform/logger"
)

const generatorAppName = "sales-brief-generator"

// generationTemperature is kept low to minimize JSON format drift.
var generationTemperature = float32(0.2)

// Generator produces schema-valid SalesBriefs from conversation context. It
// never returns an error to the caller: malformed model output is retried once
// with a stricter instruction, then repaired field by field, and total model
// failure falls back to a templated brief.
type Generator struct {
	agent          agent.Agent
	runner         *runner.Runner
	sessionService session.Service
	log            *logger.Logger
	timeout        time.Duration
	runMu          sync.Mutex
}

// NewGenerator creates a sales-brief generator agent without tools.
func NewGenerator(cfg config.AIConfig, log *logger.Logger) (*Generator, error) {
	model := openrouter.NewModel(openrouter.Config{
		APIKey:      cfg.GetOpenRouterAPIKey(),
		BaseURL:     cfg.GetOpenRouterBaseURL(),
		Model:       cfg.GetOpenRouterModel(),
		Temperature: &generationTemperature,
		JSONMode:    true,
	})

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "SalesBriefGenerator",
		Model:       model,
		Description: "Generates structured sales handover briefs from lead conversations.",
		Instruction: salesBriefSystemPrompt(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sales brief agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        generatorAppName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sales brief runner: %w", err)
	}

	return &Generator{
		agent:          adkAgent,
		runner:         r,
		sessionService: sessionService,
		log:            log,
		timeout:        cfg.GetGenerationTimeout(),
	}, nil
}

// Generate builds a SalesBrief for one handover event. The returned brief
// always satisfies ValidateSalesBrief; degraded reports whether the repair or
// fallback path had to produce it.
func (g *Generator) Generate(ctx context.Context, gctx domain.GenerationContext) (sb domain.SalesBrief, degraded bool) {
	prompt := buildSalesBriefPrompt(gctx)

	raw, err := g.run(ctx, gctx.ConversationID, prompt)
	if err == nil {
		if parsed, perr := g.parseAndValidate(raw); perr == nil {
			return parsed, false
		} else {
			g.log.Warn("sales brief output failed validation, retrying with strict instruction",
				"conversation_id", gctx.ConversationID.String(),
				"error", perr.Error())
		}
	} else {
		g.log.Warn("sales brief generation failed, retrying",
			"conversation_id", gctx.ConversationID.String(),
			"error", err.Error())
	}

	raw, err = g.run(ctx, gctx.ConversationID, prompt+strictJSONInstruction)
	if err != nil {
		g.log.Error("sales brief generation failed twice, using templated fallback",
			"conversation_id", gctx.ConversationID.String(),
			"error", err.Error())
		return FallbackSalesBrief(gctx), true
	}

	parsed, perr := ParseSalesBrief(raw)
	if perr != nil {
		g.log.Error("sales brief retry produced unparseable output, using templated fallback",
			"conversation_id", gctx.ConversationID.String(),
			"error", perr.Error())
		return FallbackSalesBrief(gctx), true
	}

	if verr := ValidateSalesBrief(parsed); verr != nil {
		g.log.Warn("sales brief retry failed validation, repairing",
			"conversation_id", gctx.ConversationID.String(),
			"error", verr.Error())
		RepairSalesBrief(&parsed, gctx)
		return parsed, true
	}

	return parsed, false
}

func (g *Generator) parseAndValidate(raw string) (domain.SalesBrief, error) {
	parsed, err := ParseSalesBrief(raw)
	if err != nil {
		return domain.SalesBrief{}, err
	}
	if err := ValidateSalesBrief(parsed); err != nil {
		return domain.SalesBrief{}, err
	}
	return parsed, nil
}

func (g *Generator) run(ctx context.Context, conversationID uuid.UUID, promptText string) (string, error) {
	g.runMu.Lock()
	defer g.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	sessionID := uuid.New().String()
	userID := "sales-brief-" + conversationID.String()

	_, err := g.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   generatorAppName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("sales brief: create session: %w", err)
	}
	defer func() {
		_ = g.sessionService.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
			AppName:   generatorAppName,
			UserID:    userID,
			SessionID: sessionID,
		})
	}()

	userMessage := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{{
			Text: promptText,
		}},
	}

	runConfig := agent.RunConfig{StreamingMode: agent.StreamingModeNone}

	var outputText strings.Builder
	for event, err := range g.runner.Run(ctx, userID, sessionID, userMessage, runConfig) {
		if err != nil {
			return "", fmt.Errorf("sales brief: run failed: %w", err)
		}
		if event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			outputText.WriteString(part.Text)
		}
	}

	return strings.TrimSpace(outputText.String()), nil
}

// FallbackSalesBrief builds the templated brief used when the model is
// unavailable. Keyword-triggered handovers still reach reps with this.
func FallbackSalesBrief(gctx domain.GenerationContext) domain.SalesBrief {
	sb := domain.SalesBrief{
		Name:            gctx.LeadName,
		UserQuery:       gctx.LastMessage,
		QuickInsights:   defaultInsights(gctx),
		Actions:         fallbackActions(gctx),
		SalesReadiness:  readinessFromUrgency(gctx.Analysis.UrgencyLevel),
		ResearchQueries: fallbackResearchQueries(gctx),
		ReplyRequired:   true,
	}
	RepairSalesBrief(&sb, gctx)
	return sb
}

func fallbackActions(gctx domain.GenerationContext) []string {
	actions := []string{"Review the conversation history before replying"}
	if gctx.Analysis.VehicleInfo != "" {
		actions = append(actions, "Confirm availability of the "+gctx.Analysis.VehicleInfo)
	}
	if gctx.Analysis.UrgencyLevel == domain.UrgencyHigh {
		actions = append(actions, "Reach out today; the lead signaled high urgency")
	} else {
		actions = append(actions, "Follow up within one business day")
	}
	return actions
}

func fallbackResearchQueries(gctx domain.GenerationContext) []string {
	if gctx.Analysis.VehicleInfo == "" {
		return []string{}
	}
	return []string{gctx.Analysis.VehicleInfo + " current inventory"}
}

func readinessFromUrgency(urgency string) string {
	switch urgency {
	case domain.UrgencyHigh:
		return domain.ReadinessHigh
	case domain.UrgencyMedium:
		return domain.ReadinessMedium
	default:
		return domain.ReadinessLow
	}
}
