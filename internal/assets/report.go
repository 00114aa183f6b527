package assets

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/dcrodman/hodpool/internal/core/data"
	"github.com/dcrodman/hodpool/internal/pool"
)

// Digest returns the xxhash of b as 16 hex digits.
func Digest(b []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

// Records builds one catalog record per segment of every pool.
func Records(pools []*Pool) []data.DecodeRecord {
	var records []data.DecodeRecord
	for _, p := range pools {
		for _, s := range p.Bundle.Segments() {
			records = append(records, data.DecodeRecord{
				Source:         p.Source,
				Chunk:          p.Chunk.ID,
				Name:           p.Chunk.Name,
				ChunkOffset:    p.Chunk.Offset,
				PoolType:       p.Bundle.Type,
				Segment:        s.Kind.String(),
				CompressedSize: s.Compressed,
				DeclaredSize:   s.Declared,
				DecodedSize:    uint32(len(s.Data)),
				Digest:         Digest(s.Data),
				Halt:           s.Result.Halt.String(),
				Truncated:      s.Truncated(),
			})
		}
	}
	return records
}

// WriteBundle writes the three buffers of b to dir as <prefix>.<kind>.bin and
// returns the paths written.
func WriteBundle(dir, prefix string, b *pool.Bundle) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	var paths []string
	for _, kind := range pool.Kinds {
		path := filepath.Join(dir, fmt.Sprintf("%s.%s.bin", prefix, kind))
		if err := os.WriteFile(path, b.Data(kind), 0644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
