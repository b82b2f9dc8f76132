package domain

import (
	"fmt"
	"strings"
)

type Identity struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// AgentRequest is one routed question. MemoryContext is opaque conversation
// state owned by an external memory store; the engine passes it through.
type AgentRequest struct {
	Query         string   `json:"query"`
	Identity      Identity `json:"identity"`
	MemoryContext string   `json:"memory_context"`
}

func (r AgentRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return WrapError(ErrInvalidInput, "validate agent request", fmt.Errorf("query must not be empty"))
	}
	if strings.TrimSpace(r.Identity.UserID) == "" {
		return WrapError(ErrInvalidInput, "validate agent request", fmt.Errorf("identity.user_id must not be empty"))
	}
	if strings.TrimSpace(r.Identity.DisplayName) == "" {
		return WrapError(ErrInvalidInput, "validate agent request", fmt.Errorf("identity.display_name must not be empty"))
	}
	return nil
}

type InvocationMetadata struct {
	AgentsInvoked    []string `json:"agents_invoked"`
	ToolsUsed        []string `json:"tools_used"`
	ProcessingTimeMs int64    `json:"processing_time_ms"`
	Intent           Intent   `json:"intent"`
	FallbackUsed     bool     `json:"fallback_used"`

	// ErrorDetail keeps the raw failure text out of response prose.
	ErrorDetail string `json:"error_detail,omitempty"`
}

// AgentInvocationResult is created once per request and returned to the
// caller; the engine does not persist it.
type AgentInvocationResult struct {
	Content   string             `json:"content"`
	Citations []Citation         `json:"citations,omitempty"`
	Metadata  InvocationMetadata `json:"metadata"`
}

// HandlerResult is what one specialized handler reports back to the router.
// AgentsInvoked starts with the handler's own name, followed by any
// sub-handlers it invoked.
type HandlerResult struct {
	Content       string
	Citations     []Citation
	AgentsInvoked []string
	ToolsUsed     []string
}
