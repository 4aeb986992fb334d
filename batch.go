package wp2mdx

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-wp2mdx/internal/logging"
)

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithWorkers sets the number of concurrent workers. Zero or less sizes the
// pool from GOMAXPROCS (see ResolvePoolSize).
func WithWorkers(n int) BatchOption {
	return func(b *Batch) {
		b.workers = n
	}
}

// WithBatchLogger sets the batch logger. The default discards everything.
func WithBatchLogger(l Logger) BatchOption {
	return func(b *Batch) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithValidation re-reads every converted document with a Validator and
// records its findings.
func WithValidation(on bool) BatchOption {
	return func(b *Batch) {
		b.validate = on
	}
}

// Batch converts many records concurrently.
type Batch struct {
	conv     *Converter
	workers  int
	logger   Logger
	validate bool
}

// NewBatch creates a Batch running conv.
func NewBatch(conv *Converter, opts ...BatchOption) *Batch {
	b := &Batch{
		conv:   conv,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ItemResult is the outcome of one record.
type ItemResult struct {
	Index    int // position in the input
	ID       int
	Type     string
	Path     string
	Skipped  bool
	Err      error
	Duration time.Duration
}

// BatchResult holds the per-item outcomes in input order and the merged
// report of the run.
type BatchResult struct {
	Items  []ItemResult
	Report *Report
}

// Run converts records and hands each document to w. A nil writer converts
// without writing. Excluded types are skipped and counted. Item failures are
// returned in the item results and counted in the report; Run itself only
// fails when ctx is cancelled, in which case the items not yet started are
// marked with the context error and documents already written stay.
//
// Destination paths are assigned before any work starts, in input order: a
// path already taken (compared case-insensitively) gets a -<id> suffix and
// an issue is recorded.
func (b *Batch) Run(ctx context.Context, records []Record, w DocumentWriter) (*BatchResult, error) {
	report := NewReport(b.conv.Now())
	results := make([]ItemResult, len(records))
	partials := make([]*Report, len(records))
	paths := b.planPaths(records, report)

	var pending []int
	for i, rec := range records {
		results[i] = ItemResult{Index: i, ID: rec.ID, Type: itemType(rec), Path: paths[i]}
		if b.conv.Excluded(itemType(rec)) {
			results[i].Skipped = true
			report.Stats.Skipped++
			continue
		}
		pending = append(pending, i)
	}

	concurrency := ResolvePoolSize(b.workers)
	if concurrency > len(pending) {
		concurrency = len(pending)
	}
	logger := logging.WithContext(b.logger, ctx)
	logger.Info("batch started",
		"runId", report.RunID, "items", len(records), "pending", len(pending), "workers", concurrency)

	var wg sync.WaitGroup
	jobs := make(chan int, len(pending))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var validator *Validator
			if b.validate {
				validator = NewValidator()
			}

			for idx := range jobs {
				partial := &Report{}
				partials[idx] = partial
				if ctx.Err() != nil {
					results[idx].Err = ctx.Err()
					continue
				}
				b.runItem(ctx, logger, records[idx], &results[idx], partial, validator, w)
			}
		}()
	}

	for _, i := range pending {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	for i := range results {
		report.Merge(partials[i])
		switch {
		case results[i].Skipped:
		case results[i].Err != nil:
			report.Stats.Failed++
		default:
			report.Stats.Converted++
		}
	}

	logger.Info("batch finished", "runId", report.RunID,
		"converted", report.Stats.Converted,
		"skipped", report.Stats.Skipped,
		"failed", report.Stats.Failed)

	result := &BatchResult{Items: results, Report: report}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// runItem converts, optionally validates, and writes one record.
func (b *Batch) runItem(ctx context.Context, logger Logger, rec Record, res *ItemResult, report *Report, v *Validator, w DocumentWriter) {
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	doc, err := b.conv.Convert(ctx, rec, report)
	if err != nil {
		res.Err = err
		logger.Warn("record failed", "type", res.Type, "id", rec.ID, "error", err)
		return
	}
	doc.Path = res.Path

	if v != nil {
		// Findings are in the report; a bad header still gets written for review.
		_ = v.Validate(doc, report)
	}

	if w == nil {
		return
	}
	if err := w.WriteDocument(ctx, doc); err != nil {
		res.Err = err
		logger.Warn("write failed", "path", res.Path, "error", err)
		return
	}
	logger.Debug("document written", "path", res.Path)
}

// planPaths assigns every record a distinct destination path.
func (b *Batch) planPaths(records []Record, report *Report) []string {
	paths := make([]string, len(records))
	taken := make(map[string]bool, len(records))

	for i, rec := range records {
		if b.conv.Excluded(itemType(rec)) {
			continue
		}
		p := b.conv.OutputPath(rec)
		if taken[strings.ToLower(p)] {
			alt := withSuffix(p, fmt.Sprintf("-%d", rec.ID))
			for n := 2; taken[strings.ToLower(alt)]; n++ {
				alt = withSuffix(p, fmt.Sprintf("-%d-%d", rec.ID, n))
			}
			report.Issuef("%s %d: output path %s already used, writing %s", itemType(rec), rec.ID, p, alt)
			p = alt
		}
		taken[strings.ToLower(p)] = true
		paths[i] = p
	}
	return paths
}

// withSuffix inserts suffix before the extension of p.
func withSuffix(p, suffix string) string {
	ext := path.Ext(p)
	return strings.TrimSuffix(p, ext) + suffix + ext
}
