package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kseverin/lore-assistant/internal/core/domain"
	"github.com/kseverin/lore-assistant/internal/core/ports"
)

const (
	retrievalAgentName = "retrieval_agent"

	toolPassageSearch = "passage_search"
	toolCompletion    = "completion"
	toolNuanceCompare = "nuance_compare"
)

const noEvidenceMessage = "I found no passages in the corpus that address this question. " +
	"Try widening the unit scope or rephrasing with names from the story."

// RetrievalLimits bound one retrieval invocation. Zero values fall back to
// corpus-tuned defaults in NewRetrievalHandler.
type RetrievalLimits struct {
	TopK     int
	MinScore float64
}

// RetrievalHandler answers direct lore questions: similarity search first,
// then a grounded completion over the surviving citations. It is also the
// router's universal fallback.
type RetrievalHandler struct {
	search     ports.PassageSearchService
	completion ports.CompletionClient
	nuance     *NuanceAnalyzer
	limits     RetrievalLimits
}

func NewRetrievalHandler(
	search ports.PassageSearchService,
	completion ports.CompletionClient,
	nuance *NuanceAnalyzer,
	limits RetrievalLimits,
) *RetrievalHandler {
	if limits.TopK <= 0 {
		limits.TopK = 8
	}
	if limits.MinScore <= 0 {
		limits.MinScore = 0.6
	}
	return &RetrievalHandler{
		search:     search,
		completion: completion,
		nuance:     nuance,
		limits:     limits,
	}
}

func (h *RetrievalHandler) Name() string {
	return retrievalAgentName
}

func (h *RetrievalHandler) Invoke(ctx context.Context, req domain.AgentRequest) (domain.HandlerResult, error) {
	minScore := h.limits.MinScore
	resp, err := h.search.Search(ctx, domain.SearchRequest{
		Query:    req.Query,
		TopK:     h.limits.TopK,
		MinScore: &minScore,
	})
	if err != nil {
		return domain.HandlerResult{}, fmt.Errorf("retrieval search: %w", err)
	}

	if resp.Evidence.Empty() {
		return domain.HandlerResult{
			Content:       noEvidenceMessage,
			AgentsInvoked: []string{retrievalAgentName},
			ToolsUsed:     []string{toolPassageSearch},
		}, nil
	}

	answer, err := h.completion.Complete(ctx, buildAnswerPrompt(req, resp.Evidence))
	if err != nil {
		return domain.HandlerResult{}, fmt.Errorf("retrieval completion: %w", err)
	}

	tools := []string{toolPassageSearch, toolCompletion}
	content := answer

	if notes := h.analyzeNuance(ctx, resp.Results); len(notes) > 0 {
		content = content + "\n\n" + renderNuanceNotes(notes)
		tools = append(tools, toolNuanceCompare)
	}

	return domain.HandlerResult{
		Content:       content,
		Citations:     resp.Evidence.Citations(),
		AgentsInvoked: []string{retrievalAgentName},
		ToolsUsed:     tools,
	}, nil
}

func (h *RetrievalHandler) analyzeNuance(ctx context.Context, results []domain.ScoredResult) []domain.NuanceNote {
	if h.nuance == nil {
		return nil
	}
	passages := make([]domain.PassageRecord, 0, len(results))
	for _, r := range results {
		passages = append(passages, r.Record)
	}
	return h.nuance.Analyze(ctx, passages)
}

// buildAnswerPrompt keeps passages from different narrative units in
// separate labeled blocks so the model cannot present cross-unit material
// as one continuous scene.
func buildAnswerPrompt(req domain.AgentRequest, evidence domain.Evidence) string {
	var b strings.Builder
	b.WriteString("You answer questions about a serialized narrative corpus for the reader ")
	b.WriteString(req.Identity.DisplayName)
	b.WriteString(".\nUse only the cited passages below. Passages from different units are separate narrative fragments; never blend them into one scene.\nCite passages as [unit/sub-unit/sequence].\n")

	if strings.TrimSpace(req.MemoryContext) != "" {
		b.WriteString("\nConversation context:\n")
		b.WriteString(req.MemoryContext)
		b.WriteString("\n")
	}

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

	b.WriteString("\nQuestion: ")
	b.WriteString(req.Query)
	b.WriteString("\n")
	return b.String()
}

func renderNuanceNotes(notes []domain.NuanceNote) string {
	var b strings.Builder
	b.WriteString("Translation nuances:\n")
	for _, note := range notes {
		fmt.Fprintf(&b, "- [%s/%s/%s] %s\n", note.UnitID, note.SubUnitID, note.SequenceID, note.Note)
	}
	return strings.TrimRight(b.String(), "\n")
}
