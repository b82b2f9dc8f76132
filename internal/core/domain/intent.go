package domain

// Intent is the closed set of query intents the classifier can assign.
// Intents are derived per request and never persisted.
type Intent string

const (
	IntentRetrieval           Intent = "RETRIEVAL"
	IntentHypothesis          Intent = "HYPOTHESIS"
	IntentKnowledgeManagement Intent = "KNOWLEDGE_MANAGEMENT"
	IntentUnknown             Intent = "UNKNOWN"
)

func (i Intent) String() string {
	return string(i)
}
