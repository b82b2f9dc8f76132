package usecase

import (
	"strings"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

// ClassifierRules holds the three disjoint keyword sets. Evaluation order is
// fixed: knowledge-management first, then hypothesis, then retrieval, so
// management phrasing like "show me my profile" is never misread as the
// retrieval phrasing it also resembles.
type ClassifierRules struct {
	KnowledgeManagement []string `yaml:"knowledge_management"`
	Hypothesis          []string `yaml:"hypothesis"`
	Retrieval           []string `yaml:"retrieval"`
}

func DefaultClassifierRules() ClassifierRules {
	return ClassifierRules{
		KnowledgeManagement: []string{
			"show me", "list", "my profile", "update profile", "remember", "my notes",
		},
		Hypothesis: []string{
			"theory", "hypothesis", "evidence for", "evidence against", "validate", "is it true",
		},
		Retrieval: []string{
			"who is", "what is", "tell me about", "explain", "describe", "what happened",
		},
	}
}

// Classifier assigns an intent with case-insensitive substring matching.
// No model inference: classification stays auditable and reproducible.
type Classifier struct {
	rules ClassifierRules
}

func NewClassifier(rules ClassifierRules) *Classifier {
	defaults := DefaultClassifierRules()
	if len(rules.KnowledgeManagement) == 0 {
		rules.KnowledgeManagement = defaults.KnowledgeManagement
	}
	if len(rules.Hypothesis) == 0 {
		rules.Hypothesis = defaults.Hypothesis
	}
	if len(rules.Retrieval) == 0 {
		rules.Retrieval = defaults.Retrieval
	}
	return &Classifier{rules: rules}
}

func (c *Classifier) Classify(query string) domain.Intent {
	q := strings.ToLower(query)
	switch {
	case matchesAny(q, c.rules.KnowledgeManagement):
		return domain.IntentKnowledgeManagement
	case matchesAny(q, c.rules.Hypothesis):
		return domain.IntentHypothesis
	case matchesAny(q, c.rules.Retrieval):
		return domain.IntentRetrieval
	default:
		return domain.IntentUnknown
	}
}

// MatchesRetrieval reports whether the query also carries retrieval
// phrasing, regardless of its assigned intent. The router uses this to
// detect composite management+lore questions.
func (c *Classifier) MatchesRetrieval(query string) bool {
	return matchesAny(strings.ToLower(query), c.rules.Retrieval)
}

func matchesAny(query string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(query, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
