package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

type profileStoreFake struct {
	entries []domain.ProfileEntry
	put     *domain.ProfileEntry
	putErr  error
	listErr error
}

func (f *profileStoreFake) GetProfile(_ context.Context, userID, key string) (domain.ProfileEntry, error) {
	for _, entry := range f.entries {
		if entry.UserID == userID && entry.Key == key {
			return entry, nil
		}
	}
	return domain.ProfileEntry{}, domain.WrapError(domain.ErrNotFound, "get profile", errors.New(key))
}

func (f *profileStoreFake) PutProfile(_ context.Context, entry domain.ProfileEntry) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.put = &entry
	return nil
}

func (f *profileStoreFake) ListProfile(context.Context, string) ([]domain.ProfileEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

func TestKnowledgeHandlerUpdateProfilePhrase(t *testing.T) {
	store := &profileStoreFake{}
	handler := NewKnowledgeHandler(store)

	result, err := handler.Invoke(context.Background(), agentReq("update profile favorite_unit: arc-03"))
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if store.put == nil {
		t.Fatalf("nothing written to the profile store")
	}
	if store.put.Key != "favorite_unit" || store.put.Value != "arc-03" {
		t.Fatalf("stored entry = %+v", store.put)
	}
	if store.put.UserID != "user-1" {
		t.Fatalf("entry not attributed to the requesting user: %q", store.put.UserID)
	}
	if !strings.Contains(result.Content, "favorite_unit") {
		t.Fatalf("content = %q", result.Content)
	}
}

func TestKnowledgeHandlerRememberThatPhrase(t *testing.T) {
	store := &profileStoreFake{}
	handler := NewKnowledgeHandler(store)

	if _, err := handler.Invoke(context.Background(), agentReq("remember that the captain: lied about the siege")); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if store.put == nil || store.put.Key != "the captain" || store.put.Value != "lied about the siege" {
		t.Fatalf("stored entry = %+v", store.put)
	}
}

func TestKnowledgeHandlerListsProfileWhenNotAnUpdate(t *testing.T) {
	store := &profileStoreFake{entries: []domain.ProfileEntry{
		{UserID: "user-1", Key: "alias", Value: "the archivist"},
	}}
	handler := NewKnowledgeHandler(store)

	result, err := handler.Invoke(context.Background(), agentReq("show me my profile"))
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !strings.Contains(result.Content, "alias: the archivist") {
		t.Fatalf("content = %q", result.Content)
	}
	if len(result.ToolsUsed) != 1 || result.ToolsUsed[0] != toolProfileStore {
		t.Fatalf("tools = %v", result.ToolsUsed)
	}
}

func TestKnowledgeHandlerEmptyProfileHint(t *testing.T) {
	handler := NewKnowledgeHandler(&profileStoreFake{})

	result, err := handler.Invoke(context.Background(), agentReq("show me my notes"))
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !strings.Contains(result.Content, "profile is empty") {
		t.Fatalf("content = %q", result.Content)
	}
}

func TestKnowledgeHandlerStoreFailurePropagates(t *testing.T) {
	handler := NewKnowledgeHandler(&profileStoreFake{putErr: errors.New("db down")})

	if _, err := handler.Invoke(context.Background(), agentReq("remember key: value")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseProfileUpdateRejectsIncompletePhrases(t *testing.T) {
	for _, query := range []string{
		"remember the siege",
		"update profile : no key",
		"remember key:",
		"list my notes",
	} {
		if _, _, ok := parseProfileUpdate(query); ok {
			t.Errorf("parseProfileUpdate(%q) accepted an incomplete phrase", query)
		}
	}
}
