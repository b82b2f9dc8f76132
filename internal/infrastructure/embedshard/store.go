package embedshard

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kseverin/lore-assistant/internal/core/domain"
	"github.com/kseverin/lore-assistant/internal/core/ports"
)

// Store reads and writes passage-embedding shards as JSON-lines objects in
// blob storage, one record per line, one shard object per ingested source.
// Shards are listed in lexical key order so scans are deterministic.
type Store struct {
	storage ports.ObjectStorage
	prefix  string
}

func New(storage ports.ObjectStorage, prefix string) *Store {
	if prefix == "" {
		prefix = "shards/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Store{storage: storage, prefix: prefix}
}

// Scan streams records to yield until maxCandidates records have been read
// or yield returns false. The bound counts every record read, including
// records the unit scope then drops: it caps I/O, not result count.
// Listing or read failures surface as ErrStoreUnavailable.
func (s *Store) Scan(ctx context.Context, maxCandidates int, unitScope []string, yield func(domain.PassageRecord) bool) error {
	if maxCandidates <= 0 {
		maxCandidates = domain.DefaultMaxCandidates
	}

	keys, err := s.storage.List(ctx, s.prefix)
	if err != nil {
		return domain.WrapError(domain.ErrStoreUnavailable, "list embedding shards", err)
	}
	sort.Strings(keys)

	scope := make(map[string]struct{}, len(unitScope))
	for _, unitID := range unitScope {
		scope[unitID] = struct{}{}
	}

	scanned := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}

		done, err := s.scanShard(ctx, key, maxCandidates, &scanned, scope, yield)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return nil
}

func (s *Store) scanShard(
	ctx context.Context,
	key string,
	maxCandidates int,
	scanned *int,
	scope map[string]struct{},
	yield func(domain.PassageRecord) bool,
) (bool, error) {
	reader, err := s.storage.Open(ctx, key)
	if err != nil {
		return false, domain.WrapError(domain.ErrStoreUnavailable, "open embedding shard", err)
	}
	defer reader.Close()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record domain.PassageRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return false, domain.WrapError(domain.ErrStoreUnavailable, "decode shard record",
				fmt.Errorf("shard %s: %w", key, err))
		}

		*scanned++
		if len(scope) > 0 {
			if _, ok := scope[record.UnitID]; !ok {
				if *scanned >= maxCandidates {
					return true, nil
				}
				continue
			}
		}
		if !yield(record) {
			return true, nil
		}
		if *scanned >= maxCandidates {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, domain.WrapError(domain.ErrStoreUnavailable, "read embedding shard",
			fmt.Errorf("shard %s: %w", key, err))
	}
	return false, nil
}

// WriteShard serializes the records for one source into a single JSONL
// object. Records must already carry vectors.
func (s *Store) WriteShard(ctx context.Context, sourceID string, records []domain.PassageRecord) error {
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("encode shard record: %w", err)
		}
	}

	key := s.prefix + sourceID + ".jsonl"
	if err := s.storage.Save(ctx, key, &buf); err != nil {
		return domain.WrapError(domain.ErrStoreUnavailable, "save embedding shard", err)
	}
	return nil
}
