package normalize

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/nao1215/sslreport/internal/model"
	"github.com/nao1215/sslreport/internal/sslscan"
	"golang.org/x/sync/errgroup"
)

// Assembler turns a decoded document into a normalized report.
type Assembler struct {
	// concurrency is the maximum number of entries processed at once.
	concurrency int

	// logger receives one Warn record per recoverable entry problem.
	logger *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithConcurrency sets how many entries are processed in parallel.
// Values below 1 are ignored. The default is runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithLogger sets the logger used for entry warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// NewAssembler creates an Assembler.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// entryResult is the outcome for one document entry.
// record is nil when the entry was malformed.
type entryResult struct {
	record   *model.ScanRecord
	warnings []*EntryError
}

// Assemble normalizes every entry of doc.
//
// Records come back in document order regardless of concurrency. Entries
// that could not be read are skipped and listed in Report.Warnings.
// The returned report has no Source or Digest; the caller knows those.
// ErrEmptyDocument is returned when doc has no scan entries.
func (a *Assembler) Assemble(ctx context.Context, doc *sslscan.Document) (*model.Report, error) {
	if len(doc.Entries) == 0 {
		return nil, ErrEmptyDocument
	}

	results := make([]entryResult, len(doc.Entries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i := range doc.Entries {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = assembleEntry(i, &doc.Entries[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := model.NewReport("")
	report.ScannerVersion = doc.Version
	report.DocumentErrors = doc.Errors

	for _, res := range results {
		if res.record != nil {
			report.Records = append(report.Records, *res.record)
		}
		for _, w := range res.warnings {
			a.logWarning(ctx, w)
			report.Warnings = append(report.Warnings, model.Warning{
				Index:   w.Index,
				Host:    w.Host,
				Kind:    w.Kind(),
				Message: w.Err.Error(),
			})
		}
	}

	a.logger.Debug("document normalized",
		"entries", len(doc.Entries),
		"records", len(report.Records),
		"warnings", len(report.Warnings),
	)
	return report, nil
}

// Assemble normalizes doc with a default Assembler.
func Assemble(ctx context.Context, doc *sslscan.Document) (*model.Report, error) {
	return NewAssembler().Assemble(ctx, doc)
}

func assembleEntry(index int, entry *sslscan.Entry) entryResult {
	walked, err := WalkEntry(index, entry)
	if err != nil {
		return entryResult{warnings: []*EntryError{err}}
	}

	rec := walked.Record
	if v, ok := MinimumProtocol(walked.Protocols); ok {
		rec.MinimumTLSVersion = model.ProtocolPtr(v)
	}
	if c, ok := MinimumCipher(walked.Ciphers); ok {
		summary := c.Summary()
		rec.MinimumCipherStrength = &summary
	}
	return entryResult{record: &rec, warnings: walked.Warnings}
}

func (a *Assembler) logWarning(ctx context.Context, w *EntryError) {
	a.logger.WarnContext(ctx, "skipped or incomplete scan entry data",
		"index", w.Index,
		"host", w.Host,
		"kind", w.Kind(),
		"error", w.Err,
	)
}
