package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

type searchServiceFake struct {
	req  domain.SearchRequest
	resp *domain.SearchResponse
	err  error
}

func (f *searchServiceFake) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type completionFake struct {
	prompts []string
	answer  string
	err     error
}

func (f *completionFake) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func evidenceResponse() *domain.SearchResponse {
	citation := domain.Citation{
		UnitID:      "arc-01",
		UnitName:    "The Founding",
		SubUnitID:   "ch-02",
		SequenceID:  "0004",
		Speaker:     "Maren",
		TextPrimary: "the gate held",
	}
	return &domain.SearchResponse{
		Results:     []domain.ScoredResult{scoredResult("a", "arc-01", "Maren", "the gate held", 0.9)},
		ResultCount: 1,
		Evidence: domain.Evidence{
			Groups: []domain.CitationGroup{{
				UnitID:    "arc-01",
				UnitName:  "The Founding",
				Citations: []domain.Citation{citation},
			}},
		},
	}
}

func TestRetrievalHandlerAnswersWithCitations(t *testing.T) {
	search := &searchServiceFake{resp: evidenceResponse()}
	completion := &completionFake{answer: "the gate held through the siege [arc-01/ch-02/0004]"}
	handler := NewRetrievalHandler(search, completion, nil, RetrievalLimits{})

	result, err := handler.Invoke(context.Background(), agentReq("who is Maren?"))
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if search.req.TopK != 8 || search.req.MinScore == nil || *search.req.MinScore != 0.6 {
		t.Fatalf("default limits = %d/%v, want 8/0.6", search.req.TopK, search.req.MinScore)
	}
	if len(result.Citations) != 1 {
		t.Fatalf("citations = %d, want 1", len(result.Citations))
	}
	if result.AgentsInvoked[0] != retrievalAgentName {
		t.Fatalf("agents = %v", result.AgentsInvoked)
	}
	wantTools := []string{toolPassageSearch, toolCompletion}
	for i, tool := range wantTools {
		if result.ToolsUsed[i] != tool {
			t.Fatalf("tools = %v, want %v", result.ToolsUsed, wantTools)
		}
	}
}

func TestRetrievalHandlerNoEvidence(t *testing.T) {
	search := &searchServiceFake{resp: &domain.SearchResponse{Evidence: domain.Evidence{NoEvidence: true}}}
	completion := &completionFake{answer: "should never be asked"}
	handler := NewRetrievalHandler(search, completion, nil, RetrievalLimits{})

	result, err := handler.Invoke(context.Background(), agentReq("who is nobody?"))
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if result.Content != noEvidenceMessage {
		t.Fatalf("content = %q, want the no-evidence message", result.Content)
	}
	if len(result.Citations) != 0 {
		t.Fatalf("no-evidence result carries citations")
	}
	if len(completion.prompts) != 0 {
		t.Fatalf("completion invoked without evidence")
	}
	if len(result.ToolsUsed) != 1 || result.ToolsUsed[0] != toolPassageSearch {
		t.Fatalf("tools = %v, want only passage_search", result.ToolsUsed)
	}
}

func TestRetrievalHandlerPromptSeparatesUnits(t *testing.T) {
	resp := evidenceResponse()
	resp.Evidence.Groups = append(resp.Evidence.Groups, domain.CitationGroup{
		UnitID:   "arc-02",
		UnitName: "The Long Winter",
		Citations: []domain.Citation{{
			UnitID: "arc-02", SubUnitID: "ch-01", SequenceID: "0001", TextPrimary: "snow closed the pass",
		}},
	})
	search := &searchServiceFake{resp: resp}
	completion := &completionFake{answer: "answer"}
	handler := NewRetrievalHandler(search, completion, nil, RetrievalLimits{})

	if _, err := handler.Invoke(context.Background(), agentReq("what happened at the gate?")); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	prompt := completion.prompts[0]
	if !strings.Contains(prompt, "=== Unit arc-01 (The Founding)") || !strings.Contains(prompt, "=== Unit arc-02 (The Long Winter)") {
		t.Fatalf("prompt missing unit separation:\n%s", prompt)
	}
	if !strings.Contains(prompt, "[arc-01/ch-02/0004] Maren: the gate held") {
		t.Fatalf("prompt missing cited passage line:\n%s", prompt)
	}
}

func TestRetrievalHandlerSearchFailurePropagates(t *testing.T) {
	search := &searchServiceFake{err: errors.New("store down")}
	handler := NewRetrievalHandler(search, &completionFake{}, nil, RetrievalLimits{})

	if _, err := handler.Invoke(context.Background(), agentReq("who is Maren?")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRetrievalHandlerAppendsNuanceNotes(t *testing.T) {
	resp := evidenceResponse()
	resp.Results[0].Record.TextSecondary = "the gate endured"
	search := &searchServiceFake{resp: resp}
	completion := &completionFake{answer: "the secondary rendering softens the outcome"}
	handler := NewRetrievalHandler(search, completion, NewNuanceAnalyzer(completion), RetrievalLimits{})

	result, err := handler.Invoke(context.Background(), agentReq("who is Maren?"))
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !strings.Contains(result.Content, "Translation nuances:") {
		t.Fatalf("nuance notes not appended: %q", result.Content)
	}
	found := false
	for _, tool := range result.ToolsUsed {
		if tool == toolNuanceCompare {
			found = true
		}
	}
	if !found {
		t.Fatalf("nuance tool not reported: %v", result.ToolsUsed)
	}
}
