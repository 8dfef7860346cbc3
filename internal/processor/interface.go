package processor

import (
	"context"

	"github.com/nguyentantai21042004/minutes/internal/doctor"
	"github.com/nguyentantai21042004/minutes/internal/store"
	"github.com/nguyentantai21042004/minutes/internal/summarizer"
)

// Processor is the service surface consumed by the CLI and the inbox watcher.
type Processor interface {
	// Transcribe runs the full pipeline for one file and persists the meeting.
	// A second call while one is in flight fails with a BUSY error.
	Transcribe(ctx context.Context, inputPath string, opts TranscribeOptions) (Outcome, error)
	// Process transcribes a file with the configured defaults. It is the
	// watcher's handler.
	Process(ctx context.Context, inputPath string) error

	Summarize(ctx context.Context, target string, opts SummarizeOptions) (SummaryOutcome, error)
	Search(ctx context.Context, query string, opts SearchOptions) ([]store.SearchHit, error)
	Export(ctx context.Context, meetingID int64, format string) (string, error)
	ExportAll(ctx context.Context, meetingID int64) (map[string]string, error)
	Meetings(ctx context.Context, limit int) ([]store.Meeting, error)
	DeleteMeeting(ctx context.Context, meetingID int64) error
	Doctor(ctx context.Context) []doctor.Check
}

// TranscribeOptions selects the model, language and chunking for one run.
// Empty Model and Language fall back to the configuration.
type TranscribeOptions struct {
	Model    string
	Language string
	UseVAD   bool
}

// Outcome describes a completed transcription run.
type Outcome struct {
	Meeting      store.Meeting
	Language     string
	SegmentCount int
	ExportPaths  map[string]string
	// Engine is the candidate that served the run, e.g. "cpu/int8".
	Engine string
}

type SummarizeOptions struct {
	Template string
}

// SummaryOutcome carries the summary and, for meeting targets, the meeting id.
type SummaryOutcome struct {
	Summary   summarizer.Result
	MeetingID int64
}

type SearchOptions struct {
	MeetingID *int64
	Limit     int
}
