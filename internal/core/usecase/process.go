package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/kseverin/lore-assistant/internal/core/domain"
	"github.com/kseverin/lore-assistant/internal/core/ports"
)

// ProcessSourceUseCase turns one uploaded narrative source into addressed
// passage-embedding records: extract text, segment into passages, embed,
// write the shard to the passage store.
type ProcessSourceUseCase struct {
	repo      ports.SourceRepository
	extractor ports.TextExtractor
	segmenter ports.PassageSegmenter
	embedder  ports.Embedder
	indexer   ports.CorpusIndexer
}

func NewProcessSourceUseCase(
	repo ports.SourceRepository,
	extractor ports.TextExtractor,
	segmenter ports.PassageSegmenter,
	embedder ports.Embedder,
	indexer ports.CorpusIndexer,
) *ProcessSourceUseCase {
	return &ProcessSourceUseCase{
		repo:      repo,
		extractor: extractor,
		segmenter: segmenter,
		embedder:  embedder,
		indexer:   indexer,
	}
}

func (uc *ProcessSourceUseCase) ProcessByID(ctx context.Context, sourceID string) error {
	if err := uc.repo.UpdateStatus(ctx, sourceID, domain.SourceProcessing, 0, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	count, err := uc.processPipeline(ctx, sourceID)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, sourceID, domain.SourceFailed, 0, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.UpdateStatus(ctx, sourceID, domain.SourceReady, count, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessSourceUseCase) processPipeline(ctx context.Context, sourceID string) (int, error) {
	src, err := uc.repo.GetByID(ctx, sourceID)
	if err != nil {
		return 0, fmt.Errorf("fetch source by id: %w", err)
	}

	text, err := uc.extractor.Extract(ctx, src)
	if err != nil {
		return 0, fmt.Errorf("extract source text: %w", err)
	}
	if text == "" {
		return 0, domain.WrapError(domain.ErrInvalidInput, "extract source text", errors.New("empty extracted text"))
	}

	passages := uc.segmenter.Segment(src.ID, text)
	if len(passages) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "segment source", errors.New("segmentation produced zero passages"))
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.TextPrimary
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed passages: %w", err)
	}
	if len(vectors) != len(passages) {
		return 0, domain.WrapError(
			domain.ErrInvalidInput,
			"embed passages",
			fmt.Errorf("vectors/passages mismatch: %d/%d", len(vectors), len(passages)),
		)
	}
	for i := range passages {
		passages[i].Vector = vectors[i]
	}

	if err := uc.indexer.WriteShard(ctx, src.ID, passages); err != nil {
		return 0, fmt.Errorf("write embedding shard: %w", err)
	}
	return len(passages), nil
}
