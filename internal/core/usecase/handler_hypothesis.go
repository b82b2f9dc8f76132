package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kseverin/lore-assistant/internal/core/domain"
	"github.com/kseverin/lore-assistant/internal/core/ports"
)

const hypothesisAgentName = "hypothesis_agent"

// HypothesisHandler evaluates reader theories against corpus evidence. The
// evidence pass is a sub-call into the retrieval pipeline, so the router's
// state machine stays linear.
type HypothesisHandler struct {
	search     ports.PassageSearchService
	completion ports.CompletionClient
	limits     RetrievalLimits
}

func NewHypothesisHandler(
	search ports.PassageSearchService,
	completion ports.CompletionClient,
	limits RetrievalLimits,
) *HypothesisHandler {
	if limits.TopK <= 0 {
		limits.TopK = 12
	}
	if limits.MinScore <= 0 {
		limits.MinScore = 0.55
	}
	return &HypothesisHandler{
		search:     search,
		completion: completion,
		limits:     limits,
	}
}

func (h *HypothesisHandler) Name() string {
	return hypothesisAgentName
}

func (h *HypothesisHandler) Invoke(ctx context.Context, req domain.AgentRequest) (domain.HandlerResult, error) {
	minScore := h.limits.MinScore
	resp, err := h.search.Search(ctx, domain.SearchRequest{
		Query:    req.Query,
		TopK:     h.limits.TopK,
		MinScore: &minScore,
	})
	if err != nil {
		return domain.HandlerResult{}, fmt.Errorf("hypothesis evidence search: %w", err)
	}

	agents := []string{hypothesisAgentName, retrievalAgentName}

	if resp.Evidence.Empty() {
		return domain.HandlerResult{
			Content: "The corpus holds no passages that bear on this theory, so I cannot evaluate it. " +
				"It stays unconfirmed either way.",
			AgentsInvoked: agents,
			ToolsUsed:     []string{toolPassageSearch},
		}, nil
	}

	verdict, err := h.completion.Complete(ctx, buildHypothesisPrompt(req, resp.Evidence))
	if err != nil {
		return domain.HandlerResult{}, fmt.Errorf("hypothesis completion: %w", err)
	}

	return domain.HandlerResult{
		Content:       verdict,
		Citations:     resp.Evidence.Citations(),
		AgentsInvoked: agents,
		ToolsUsed:     []string{toolPassageSearch, toolCompletion},
	}, nil
}

func buildHypothesisPrompt(req domain.AgentRequest, evidence domain.Evidence) string {
	var b strings.Builder
	b.WriteString("A reader proposes a theory about a serialized narrative. Evaluate it strictly against the cited passages.\n")
	b.WriteString("Sort the evidence into supporting and contradicting, cite passages as [unit/sub-unit/sequence], and finish with a one-line verdict: supported, contradicted, or inconclusive.\n")
	b.WriteString("Passages from different units are separate narrative fragments; weigh them separately.\n")

	for _, group := range evidence.Groups {
		fmt.Fprintf(&b, "\n=== Unit %s (%s)\n", group.UnitID, group.UnitName)
		for _, c := range group.Citations {
			fmt.Fprintf(&b, "[%s] ", c.Ref())
			if c.Speaker != "" {
				fmt.Fprintf(&b, "%s: ", c.Speaker)
			}
			b.WriteString(c.TextPrimary)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nTheory: ")
	b.WriteString(req.Query)
	b.WriteString("\n")
	return b.String()
}
