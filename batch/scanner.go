// Package batch runs the detection engine over many texts with a fixed
// worker pool, preserving input order and honoring cancellation.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zafrem/data-detector/detect"
)

var tracer = otel.Tracer("github.com/zafrem/data-detector/batch")

// Scanner fans batch items out to a pool of workers sharing one engine.
type Scanner struct {
	engine   *detect.Engine
	workers  int
	strategy detect.Strategy
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers sets the pool size. Default is runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(s *Scanner) { s.workers = n }
}

// WithRedaction makes Stream emit redaction results using the given strategy
// instead of find results. ScanAll is unaffected; RedactAll takes its
// strategy per call.
func WithRedaction(strategy detect.Strategy) Option {
	return func(s *Scanner) { s.strategy = strategy }
}

// New builds a Scanner over an engine.
func New(engine *detect.Engine, opts ...Option) (*Scanner, error) {
	if engine == nil {
		return nil, fmt.Errorf("batch: engine is required")
	}
	s := &Scanner{engine: engine, workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		return nil, fmt.Errorf("batch: workers must be positive, got %d", s.workers)
	}
	if s.strategy != "" && !s.strategy.Valid() {
		return nil, fmt.Errorf("batch: unknown strategy %q", s.strategy)
	}
	return s, nil
}

// ScanAll scans every text and returns results in input order. The first
// error cancels the rest of the batch.
func (s *Scanner) ScanAll(ctx context.Context, texts []string, opts ...detect.FindOption) ([]*detect.FindResult, error) {
	ctx, span := tracer.Start(ctx, "batch.ScanAll")
	defer span.End()

	jobID := uuid.NewString()
	span.SetAttributes(
		attribute.String("batch.job.id", jobID),
		attribute.Int("batch.size", len(texts)),
	)
	log.Info().Str("job", jobID).Int("items", len(texts)).Msg("batch scan started")

	results := make([]*detect.FindResult, len(texts))
	err := s.run(ctx, len(texts), func(ctx context.Context, i int) error {
		res, err := s.engine.Find(ctx, texts[i], opts...)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		results[i] = res
		return nil
	})
	if err != nil {
		log.Warn().Str("job", jobID).Err(err).Msg("batch scan aborted")
		return nil, err
	}

	total := 0
	for _, res := range results {
		total += len(res.Matches)
	}
	log.Info().Str("job", jobID).Int("items", len(texts)).Int("matches", total).Msg("batch scan complete")
	return results, nil
}

// RedactAll redacts every text with the given strategy and returns results in
// input order. The first error cancels the rest of the batch.
func (s *Scanner) RedactAll(ctx context.Context, texts []string, strategy detect.Strategy, opts ...detect.FindOption) ([]*detect.RedactionResult, error) {
	ctx, span := tracer.Start(ctx, "batch.RedactAll")
	defer span.End()

	jobID := uuid.NewString()
	span.SetAttributes(
		attribute.String("batch.job.id", jobID),
		attribute.Int("batch.size", len(texts)),
	)
	log.Info().Str("job", jobID).Int("items", len(texts)).Str("strategy", string(strategy)).Msg("batch redaction started")

	results := make([]*detect.RedactionResult, len(texts))
	err := s.run(ctx, len(texts), func(ctx context.Context, i int) error {
		res, err := s.engine.Redact(ctx, texts[i], strategy, opts...)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		results[i] = res
		return nil
	})
	if err != nil {
		log.Warn().Str("job", jobID).Err(err).Msg("batch redaction aborted")
		return nil, err
	}

	total := 0
	for _, res := range results {
		total += res.Count
	}
	log.Info().Str("job", jobID).Int("items", len(texts)).Int("replaced", total).Msg("batch redaction complete")
	return results, nil
}

// run feeds item indexes to a fixed pool. Any worker error or a canceled
// context stops feeding; run returns the first error observed.
func (s *Scanner) run(ctx context.Context, n int, work func(ctx context.Context, i int) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	workers := s.workers
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := work(ctx, i); err != nil {
					fail(err)
					return
				}
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
