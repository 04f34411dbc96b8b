// Package source loads calculation snapshots from local files, S3 or Cloud
// Storage.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	constructioncarbon "github.com/superdango/construction-carbon"
	"github.com/superdango/construction-carbon/internal/cache"
	"github.com/superdango/construction-carbon/internal/must"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultAttempts is the number of reads tried per location.
	DefaultAttempts = 3
	retryStep       = 200 * time.Millisecond
	retryMax        = 2 * time.Second
)

type SourceOptions func(s *Source)

// WithReader replaces the reader of a scheme.
func WithReader(scheme string, reader Reader) SourceOptions {
	return func(s *Source) {
		s.readers[scheme] = reader
	}
}

// WithS3Config configures the S3 reader built on first use.
func WithS3Config(cfg S3Config) SourceOptions {
	return func(s *Source) {
		s.s3Config = cfg
	}
}

// WithGCSEndpoint points the Cloud Storage reader to an emulator.
func WithGCSEndpoint(endpoint string) SourceOptions {
	return func(s *Source) {
		s.gcsEndpoint = endpoint
	}
}

// WithAttempts sets the number of reads tried per location.
func WithAttempts(attempts int) SourceOptions {
	return func(s *Source) {
		s.attempts = max(attempts, 1)
	}
}

// WithCache keeps the decoded snapshots of each location for ttl. Expired
// locations are read again.
func WithCache(memory *cache.Memory, ttl time.Duration) SourceOptions {
	return func(s *Source) {
		s.cache = memory
		s.ttl = ttl
	}
}

// Source reads snapshot documents from a set of locations. It implements
// constructioncarbon.SnapshotSource.
type Source struct {
	locations   []Location
	readers     map[string]Reader
	mu          sync.Mutex
	s3Config    S3Config
	gcsEndpoint string
	attempts    int
	cache       *cache.Memory
	ttl         time.Duration
}

// New parses every location. Readers for remote schemes are created on first
// use.
func New(locations []string, opts ...SourceOptions) (*Source, error) {
	source := &Source{
		locations: make([]Location, 0, len(locations)),
		readers: map[string]Reader{
			SchemeFile: FileReader{},
		},
		attempts: DefaultAttempts,
	}

	for _, raw := range locations {
		location, err := ParseLocation(raw)
		if err != nil {
			return nil, err
		}
		source.locations = append(source.locations, location)
	}

	for _, opt := range opts {
		opt(source)
	}

	return source, nil
}

// Snapshots reads and decodes every location concurrently. Snapshots keep the
// order of locations.
func (s *Source) Snapshots(ctx context.Context) ([]constructioncarbon.Snapshot, error) {
	loaded := make([][]constructioncarbon.Snapshot, len(s.locations))

	errg, errgctx := errgroup.WithContext(ctx)
	errg.SetLimit(5)
	for i, location := range s.locations {
		i, location := i, location
		errg.Go(func() error {
			snapshots, err := s.load(errgctx, location)
			if err != nil {
				return err
			}
			loaded[i] = snapshots
			return nil
		})
	}

	if err := errg.Wait(); err != nil {
		return nil, err
	}

	snapshots := make([]constructioncarbon.Snapshot, 0)
	for _, l := range loaded {
		snapshots = append(snapshots, l...)
	}

	return snapshots, nil
}

func (s *Source) load(ctx context.Context, location Location) ([]constructioncarbon.Snapshot, error) {
	if s.cache == nil {
		return s.fetch(ctx, location)
	}

	v, err := s.cache.GetOrSet(ctx, "source:"+location.String(), func(ctx context.Context) (any, error) {
		return s.fetch(ctx, location)
	}, s.ttl)
	if err != nil {
		return nil, err
	}

	snapshots, ok := v.([]constructioncarbon.Snapshot)
	must.Assert(ok, "cached value is not a snapshot list")

	return snapshots, nil
}

func (s *Source) fetch(ctx context.Context, location Location) ([]constructioncarbon.Snapshot, error) {
	reader, err := s.reader(ctx, location.Scheme)
	if err != nil {
		return nil, err
	}

	wait := must.NewWait(retryMax)
	var data []byte
	for attempt := 1; ; attempt++ {
		data, err = reader.Read(ctx, location)
		if err == nil {
			break
		}
		if attempt >= s.attempts {
			return nil, fmt.Errorf("failed to read snapshot document after %d attempts: %w", attempt, err)
		}

		slog.Warn("snapshot document read failed, retrying", "location", location.String(), "attempt", attempt, "err", err.Error())
		if err := wait.Linearly(ctx, retryStep); err != nil {
			return nil, err
		}
	}

	snapshots, err := Decode(location, data)
	if err != nil {
		return nil, err
	}

	slog.Debug("snapshot document loaded", "location", location.String(), "snapshots", len(snapshots))
	return snapshots, nil
}

func (s *Source) reader(ctx context.Context, scheme string) (Reader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reader, found := s.readers[scheme]; found {
		return reader, nil
	}

	var (
		reader Reader
		err    error
	)
	// clients outlive the read that created them
	clientCtx := context.WithoutCancel(ctx)
	switch scheme {
	case SchemeS3:
		reader, err = NewS3ReaderFromConfig(clientCtx, s.s3Config)
	case SchemeGCS:
		reader, err = NewGCSReader(clientCtx, s.gcsEndpoint)
	default:
		err = fmt.Errorf("no reader for scheme %q", scheme)
	}
	if err != nil {
		return nil, err
	}

	s.readers[scheme] = reader
	return reader, nil
}

// Close releases the clients of remote readers.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, reader := range s.readers {
		if closer, ok := reader.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}
