package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nao1215/sslreport/internal/database"
	"github.com/nao1215/sslreport/internal/model"
	"github.com/nao1215/sslreport/internal/normalize"
	"github.com/nao1215/sslreport/internal/sslscan"
)

// ErrEmptyInput is returned when an input holds no bytes at all.
var ErrEmptyInput = errors.New("input is empty")

// ReadStep reads the raw document from a file or standard input.
type ReadStep struct {
	// stdin is read when the job input is "-".
	stdin io.Reader
}

// NewReadStep creates a ReadStep. If stdin is nil, os.Stdin is used.
func NewReadStep(stdin io.Reader) *ReadStep {
	if stdin == nil {
		stdin = os.Stdin
	}
	return &ReadStep{stdin: stdin}
}

// Name returns the step name.
func (s *ReadStep) Name() string {
	return "read"
}

// Do reads the job input into job.Raw.
func (s *ReadStep) Do(_ context.Context, job *Job) error {
	var (
		data []byte
		err  error
	)
	if job.Input == StdinInput {
		data, err = io.ReadAll(s.stdin)
	} else {
		data, err = os.ReadFile(job.Input)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", job.Source(), err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%s: %w", job.Source(), ErrEmptyInput)
	}

	job.Raw = data
	return nil
}

// DecodeStep decodes the raw XML and computes its digest.
type DecodeStep struct{}

// NewDecodeStep creates a DecodeStep.
func NewDecodeStep() *DecodeStep {
	return &DecodeStep{}
}

// Name returns the step name.
func (s *DecodeStep) Name() string {
	return "decode"
}

// Do fills job.Document and job.Digest.
func (s *DecodeStep) Do(_ context.Context, job *Job) error {
	doc, err := sslscan.ParseBytes(job.Raw)
	if err != nil {
		return fmt.Errorf("%s: %w", job.Source(), err)
	}
	job.Document = doc
	job.Digest = sslscan.Digest(job.Raw)
	return nil
}

// NormalizeStep turns the decoded document into a report.
type NormalizeStep struct {
	assembler *normalize.Assembler
}

// NewNormalizeStep creates a NormalizeStep. If assembler is nil, a default
// Assembler is used.
func NewNormalizeStep(assembler *normalize.Assembler) *NormalizeStep {
	if assembler == nil {
		assembler = normalize.NewAssembler()
	}
	return &NormalizeStep{assembler: assembler}
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Do fills job.Report.
func (s *NormalizeStep) Do(ctx context.Context, job *Job) error {
	report, err := s.assembler.Assemble(ctx, job.Document)
	if err != nil {
		return fmt.Errorf("%s: %w", job.Source(), err)
	}
	report.Source = job.Source()
	report.Digest = job.Digest
	report.RunID = job.RunID
	job.Report = report
	return nil
}

// FilterStep drops records of ignored hosts.
type FilterStep struct {
	ignored func(host string) bool
	logger  *slog.Logger
}

// NewFilterStep creates a FilterStep. Records whose host makes ignored
// return true are removed from the report.
func NewFilterStep(ignored func(host string) bool, logger *slog.Logger) *FilterStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilterStep{ignored: ignored, logger: logger}
}

// Name returns the step name.
func (s *FilterStep) Name() string {
	return "filter"
}

// Do removes ignored records in place, keeping the order of the rest.
func (s *FilterStep) Do(_ context.Context, job *Job) error {
	if s.ignored == nil || job.Report == nil {
		return nil
	}

	kept := job.Report.Records[:0]
	for _, rec := range job.Report.Records {
		if s.ignored(rec.Host) {
			job.Ignored++
			continue
		}
		kept = append(kept, rec)
	}
	job.Report.Records = kept

	if job.Ignored > 0 {
		s.logger.Info("ignored hosts removed",
			"input", job.Source(),
			"records", job.Ignored,
		)
	}
	return nil
}

// HistoryStore is the part of database.HistoryDB used by HistoryStep.
type HistoryStore interface {
	FindByDigest(ctx context.Context, digest string) (*database.ImportMetadata, error)
	SaveReport(ctx context.Context, report *model.Report, summary *model.Summary) (int64, error)
}

// HistoryStep saves the report in the history database.
type HistoryStep struct {
	store  HistoryStore
	policy model.PolicyLookup
	logger *slog.Logger
}

// NewHistoryStep creates a HistoryStep. The policy is used for the stored
// risk summary; nil means model.DefaultPolicy.
func NewHistoryStep(store HistoryStore, policy model.PolicyLookup, logger *slog.Logger) *HistoryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStep{store: store, policy: policy, logger: logger}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "history"
}

// Do stores job.Report and sets job.ImportID.
// Re-imports of a known document are stored again and logged.
func (s *HistoryStep) Do(ctx context.Context, job *Job) error {
	if job.Report == nil {
		return nil
	}
	if job.Report.Digest == "" {
		job.Report.Digest = job.Digest
	}

	previous, err := s.store.FindByDigest(ctx, job.Report.Digest)
	if err != nil {
		return err
	}
	if previous != nil {
		job.PreviousImportID = previous.ID
		s.logger.Info("document was imported before",
			"input", job.Source(),
			"import_id", previous.ID,
			"imported_at", previous.Timestamp,
		)
	}

	id, err := s.store.SaveReport(ctx, job.Report, model.NewSummary(job.Report, s.policy))
	if err != nil {
		return err
	}
	job.ImportID = id

	s.logger.Debug("report saved",
		"input", job.Source(),
		"import_id", id,
	)
	return nil
}

// ConvertOptions holds the collaborators of the default conversion pipeline.
type ConvertOptions struct {
	// Stdin is read for the "-" input. Defaults to os.Stdin.
	Stdin io.Reader

	// Assembler normalizes documents. Defaults to normalize.NewAssembler().
	Assembler *normalize.Assembler

	// Ignored reports hosts to drop. Nil keeps every record.
	Ignored func(host string) bool

	// History stores reports. Nil skips the history step.
	History HistoryStore

	// Policy is used for the stored risk summary.
	Policy model.PolicyLookup

	// Logger is used by the filter and history steps.
	Logger *slog.Logger
}

// DefaultPipeline creates a pipeline with the standard conversion steps.
//
// The steps are:
// 1. read - Read the file or standard input
// 2. decode - Decode the sslscan XML and compute its digest
// 3. normalize - Build the report
// 4. filter - Drop ignored hosts
// 5. history - Save the report (only when a store is given)
func DefaultPipeline(copts ConvertOptions, opts ...Option) *Pipeline {
	p := New(opts...)

	p.AddSteps(
		NewReadStep(copts.Stdin),
		NewDecodeStep(),
		NewNormalizeStep(copts.Assembler),
		NewFilterStep(copts.Ignored, copts.Logger),
	)
	if copts.History != nil {
		p.AddStep(NewHistoryStep(copts.History, copts.Policy, copts.Logger))
	}

	return p
}
