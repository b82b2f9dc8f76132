package ports

import (
	"context"
	"io"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

// PassageSearchService is the inbound contract for raw similarity search.
type PassageSearchService interface {
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)
}

// AgentService is the inbound contract for routed question answering.
type AgentService interface {
	Invoke(ctx context.Context, req domain.AgentRequest) (*domain.AgentInvocationResult, error)
}

// SourceIngestor is the inbound contract for source upload orchestration.
type SourceIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.SourceDocument, error)
}

// SourceProcessor is the inbound contract for asynchronous ingestion.
type SourceProcessor interface {
	ProcessByID(ctx context.Context, sourceID string) error
}

// SourceReader is the inbound read model for ingestion state.
type SourceReader interface {
	GetByID(ctx context.Context, id string) (*domain.SourceDocument, error)
}
