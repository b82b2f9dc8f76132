package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kseverin/lore-assistant/internal/core/domain"
	"github.com/kseverin/lore-assistant/internal/core/ports"
)

const (
	knowledgeAgentName = "knowledge_agent"
	toolProfileStore   = "profile_store"
)

// KnowledgeHandler manages reader-owned profile records (characters,
// locations, theories). Parsing is deterministic keyword dispatch, same
// discipline as the classifier: no model inference decides what gets
// written to the store.
type KnowledgeHandler struct {
	profiles ports.ProfileStore
}

func NewKnowledgeHandler(profiles ports.ProfileStore) *KnowledgeHandler {
	return &KnowledgeHandler{profiles: profiles}
}

func (h *KnowledgeHandler) Name() string {
	return knowledgeAgentName
}

func (h *KnowledgeHandler) Invoke(ctx context.Context, req domain.AgentRequest) (domain.HandlerResult, error) {
	if key, value, ok := parseProfileUpdate(req.Query); ok {
		entry := domain.ProfileEntry{
			UserID:    req.Identity.UserID,
			Key:       key,
			Value:     value,
			UpdatedAt: time.Now().UTC(),
		}
		if err := h.profiles.PutProfile(ctx, entry); err != nil {
			return domain.HandlerResult{}, fmt.Errorf("put profile entry: %w", err)
		}
		return domain.HandlerResult{
			Content:       fmt.Sprintf("Noted. Your profile entry %q is updated.", key),
			AgentsInvoked: []string{knowledgeAgentName},
			ToolsUsed:     []string{toolProfileStore},
		}, nil
	}

	entries, err := h.profiles.ListProfile(ctx, req.Identity.UserID)
	if err != nil {
		return domain.HandlerResult{}, fmt.Errorf("list profile entries: %w", err)
	}

	return domain.HandlerResult{
		Content:       renderProfile(req.Identity.DisplayName, entries),
		AgentsInvoked: []string{knowledgeAgentName},
		ToolsUsed:     []string{toolProfileStore},
	}, nil
}

// parseProfileUpdate recognizes "update profile <key>: <value>" and
// "remember <key>: <value>" phrasings.
func parseProfileUpdate(query string) (key, value string, ok bool) {
	lower := strings.ToLower(query)

	var rest string
	switch {
	case strings.Contains(lower, "update profile"):
		rest = query[strings.Index(lower, "update profile")+len("update profile"):]
	case strings.Contains(lower, "remember"):
		rest = query[strings.Index(lower, "remember")+len("remember"):]
	default:
		return "", "", false
	}

	rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "that "))
	key, value, found := strings.Cut(rest, ":")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if !found || key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}

func renderProfile(displayName string, entries []domain.ProfileEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("%s, your profile is empty. Say \"remember <topic>: <note>\" to add an entry.", displayName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Profile for %s:\n", displayName)
	for _, entry := range entries {
		fmt.Fprintf(&b, "- %s: %s\n", entry.Key, entry.Value)
	}
	return strings.TrimRight(b.String(), "\n")
}
