package ports

import (
	"context"
	"io"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

// ObjectStorage stores source files and embedding shards (list+get+put
// semantics over a blob backend).
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// PassageSource streams passage-embedding records out of the store.
// Scan reads at most maxCandidates records (the bound caps I/O, not the
// result count), applies the optional unit scope, and calls yield for each
// surviving record; yield returning false stops the scan early.
type PassageSource interface {
	Scan(ctx context.Context, maxCandidates int, unitScope []string, yield func(domain.PassageRecord) bool) error
}

// CorpusIndexer persists a batch of passage records for one source.
type CorpusIndexer interface {
	WriteShard(ctx context.Context, sourceID string, records []domain.PassageRecord) error
}

// Embedder builds vectors for passages and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// CompletionClient is the opaque text-completion service: prompt in,
// text out, may error.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ProfileStore persists reader-owned knowledge records by user and key.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID, key string) (domain.ProfileEntry, error)
	PutProfile(ctx context.Context, entry domain.ProfileEntry) error
	ListProfile(ctx context.Context, userID string) ([]domain.ProfileEntry, error)
}

// SourceRepository persists ingestion state for narrative source files.
type SourceRepository interface {
	Create(ctx context.Context, src *domain.SourceDocument) error
	GetByID(ctx context.Context, id string) (*domain.SourceDocument, error)
	UpdateStatus(ctx context.Context, id string, status domain.SourceStatus, passageCount int, errMessage string) error
}

// MessageQueue publishes/consumes source-stored events.
type MessageQueue interface {
	PublishSourceStored(ctx context.Context, sourceID string) error
	SubscribeSourceStored(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored source file.
type TextExtractor interface {
	Extract(ctx context.Context, src *domain.SourceDocument) (string, error)
}

// PassageSegmenter splits extracted corpus text into addressed passages
// (without vectors).
type PassageSegmenter interface {
	Segment(sourceID, text string) []domain.PassageRecord
}

// UnitRegistry resolves unit identifiers to display names for citations.
type UnitRegistry interface {
	UnitName(unitID string) string
}
