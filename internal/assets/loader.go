// Package assets loads pool chunks from container files, caching decoded pools
// and recording a report for every segment in the decode catalog.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/dcrodman/hodpool/internal/core"
	"github.com/dcrodman/hodpool/internal/core/cache"
	"github.com/dcrodman/hodpool/internal/core/data"
	"github.com/dcrodman/hodpool/internal/iff"
	"github.com/dcrodman/hodpool/internal/pool"
)

// Pool is one pool chunk read from a container.
type Pool struct {
	Source string
	// Index is the position of the chunk among the pools of its source.
	Index  int
	Chunk  iff.ChunkAttributes
	Bundle *pool.Bundle
	// Cached is set when the bundle came from the cache instead of being decoded.
	Cached bool
}

// FileResult holds the pools read from one file.
type FileResult struct {
	Path  string
	Pools []*Pool
}

// Loader reads container files. DB and Cache are optional; without them nothing
// is recorded or cached.
type Loader struct {
	Config *core.Config
	Logger logrus.FieldLogger
	DB     *gorm.DB
	Cache  *cache.Cache
}

func (l *Loader) logger() logrus.FieldLogger {
	if l.Logger == nil {
		return core.DiscardLogger()
	}
	return l.Logger
}

// Options returns the pool options derived from the loader's configuration.
func (l *Loader) Options() []pool.Option {
	return []pool.Option{
		pool.WithLogger(l.logger()),
		pool.WithConcurrency(l.Config.Decode.Concurrent),
		pool.WithMaxSegmentSize(l.Config.Decode.MaxSegmentSize),
	}
}

// LoadFiles loads every path, at most Decode.Workers at a time. Results are in
// the same order as paths. The first failure cancels files not yet started.
func (l *Loader) LoadFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if l.Config.Decode.Workers > 0 {
		g.SetLimit(l.Config.Decode.Workers)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			pools, err := l.LoadFile(ctx, path)
			if err != nil {
				return err
			}
			results[i] = FileResult{Path: path, Pools: pools}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// LoadFile reads every pool chunk in the container at path.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]*Pool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return l.Load(path, f)
}

// Load reads every pool chunk in the container r and, when a database is set,
// replaces the catalog records of source with the reports of this load.
func (l *Loader) Load(source string, r io.Reader) ([]*Pool, error) {
	logger := l.logger().WithField("source", source)

	var pools []*Pool
	err := iff.Walk(r, func(attrs iff.ChunkAttributes, cr *iff.Reader) error {
		if attrs.ID != l.Config.Decode.PoolChunkID {
			logger.Debugf("skipping chunk %s", attrs)
			return nil
		}
		p, err := l.readPool(cr, attrs, logger)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", source, attrs, err)
		}
		p.Source = source
		p.Index = len(pools)
		pools = append(pools, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("loaded %d pools", len(pools))

	if l.DB != nil {
		if err := data.ReplaceDecodeRecords(l.DB, source, Records(pools)); err != nil {
			return nil, fmt.Errorf("recording decode reports for %s: %w", source, err)
		}
	}
	return pools, nil
}

func (l *Loader) readPool(r *iff.Reader, attrs iff.ChunkAttributes, logger logrus.FieldLogger) (*Pool, error) {
	if l.Cache == nil {
		b, err := pool.Read(r, attrs, l.Options()...)
		if err != nil {
			return nil, err
		}
		return &Pool{Chunk: attrs, Bundle: b}, nil
	}

	// The whole payload is buffered for its cache key, so bound it before reading.
	if limit := pool.MaxChunkSize(l.Config.Decode.MaxSegmentSize); limit > 0 && uint64(attrs.PayloadSize) > limit {
		return nil, fmt.Errorf("pool payload of %d bytes: %w", attrs.PayloadSize, pool.ErrSegmentTooLarge)
	}
	raw, err := r.ReadBytes(int(attrs.PayloadSize))
	if err != nil {
		return nil, fmt.Errorf("reading pool payload: %w", err)
	}
	key := cache.Key(raw)
	if b, ok := l.Cache.Get(key); ok {
		logger.WithField("key", key).Debug("pool served from cache")
		return &Pool{Chunk: attrs, Bundle: b, Cached: true}, nil
	}

	b, err := pool.Read(iff.NewReader(bytes.NewReader(raw)), attrs, l.Options()...)
	if err != nil {
		return nil, err
	}
	l.Cache.Put(key, b)
	return &Pool{Chunk: attrs, Bundle: b}, nil
}

// ReadSegments decodes a bare three-segment stream with the loader's options.
func (l *Loader) ReadSegments(r io.Reader) (*pool.Bundle, error) {
	return pool.ReadSegments(r, l.Options()...)
}
