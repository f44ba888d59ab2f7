package pipeline

import (
	"github.com/nao1215/sslreport/internal/model"
	"github.com/nao1215/sslreport/internal/sslscan"
)

// StdinInput is the input name that reads from standard input.
const StdinInput = "-"

// StdinSource is the report source recorded for standard input.
const StdinSource = "stdin"

// Job carries one input through the pipeline.
// Steps fill in fields as they run; a failed Job keeps whatever earlier
// steps produced.
type Job struct {
	// Input is the path given on the command line, or "-" for stdin.
	Input string

	// RunID is shared by every job of one batch.
	RunID string

	// Raw is the document as read from the input.
	Raw []byte

	// Digest is the SHA3-256 hex digest of Raw.
	Digest string

	// Document is the decoded sslscan document.
	Document *sslscan.Document

	// Report is the normalized report.
	Report *model.Report

	// Ignored is the number of records dropped by host filtering.
	Ignored int

	// ImportID is the history database ID, or zero if the report was not saved.
	ImportID int64

	// PreviousImportID is set when a document with the same digest was
	// imported before.
	PreviousImportID int64

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string

	// Err is the error of the step that stopped the job.
	Err error
}

// NewJob creates a Job for the given input.
func NewJob(input string) *Job {
	return &Job{Input: input}
}

// Source returns the name recorded as the report source.
func (j *Job) Source() string {
	if j.Input == StdinInput {
		return StdinSource
	}
	return j.Input
}

// Failed reports whether a step failed.
func (j *Job) Failed() bool {
	return j.Err != nil
}
