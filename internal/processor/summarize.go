package processor

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/minutes/internal/apperr"
	"github.com/nguyentantai21042004/minutes/internal/summarizer"
)

// Summarize summarizes a stored meeting (target is its id) or a transcript
// file. Only meeting summaries are persisted.
func (p *implProcessor) Summarize(ctx context.Context, target string, opts SummarizeOptions) (SummaryOutcome, error) {
	target = strings.TrimSpace(target)

	if id, ok := parseMeetingID(target); ok {
		meeting, err := p.store.Meeting(ctx, id)
		if err != nil {
			return SummaryOutcome{}, err
		}
		if meeting != nil {
			return p.summarizeMeeting(ctx, id, opts.Template)
		}
	}

	if _, err := os.Stat(target); err != nil {
		return SummaryOutcome{}, apperr.Precondition("target is neither a known meeting id nor a transcript path: %s", target)
	}
	text, err := summarizer.LoadTranscript(target)
	if err != nil {
		return SummaryOutcome{}, err
	}
	res, err := p.summarizer.Summarize(ctx, text, opts.Template)
	if err != nil {
		return SummaryOutcome{}, err
	}
	return SummaryOutcome{Summary: res}, nil
}

func (p *implProcessor) summarizeMeeting(ctx context.Context, meetingID int64, template string) (SummaryOutcome, error) {
	segments, err := p.store.Segments(ctx, meetingID)
	if err != nil {
		return SummaryOutcome{}, err
	}

	res, err := p.summarizer.Summarize(ctx, summarizer.SegmentsText(segments), template)
	if err != nil {
		return SummaryOutcome{}, err
	}

	if _, err := p.store.AddSummary(ctx, meetingID, res.TemplateName, res.Method, res.LLMModel, res.Text); err != nil {
		return SummaryOutcome{}, fmt.Errorf("save summary: %w", err)
	}
	p.logger.Info(ctx, "Saved %s summary (%s) for meeting %d", res.TemplateName, res.Method, meetingID)
	return SummaryOutcome{Summary: res, MeetingID: meetingID}, nil
}

func parseMeetingID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil
}
