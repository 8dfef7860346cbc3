package processor

import (
	"context"
	"strings"

	"github.com/nguyentantai21042004/minutes/internal/apperr"
	"github.com/nguyentantai21042004/minutes/internal/doctor"
	"github.com/nguyentantai21042004/minutes/internal/store"
)

// Search runs a full-text query over stored segments.
func (p *implProcessor) Search(ctx context.Context, query string, opts SearchOptions) ([]store.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Invalid("search query must not be empty")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = store.DefaultSearchLimit
	}
	return p.store.Search(ctx, query, opts.MeetingID, limit)
}

func (p *implProcessor) Meetings(ctx context.Context, limit int) ([]store.Meeting, error) {
	return p.store.Meetings(ctx, limit)
}

// DeleteMeeting removes a meeting and everything it owns. Export files on
// disk are left in place.
func (p *implProcessor) DeleteMeeting(ctx context.Context, meetingID int64) error {
	if err := p.store.DeleteMeeting(ctx, meetingID); err != nil {
		return err
	}
	p.logger.Info(ctx, "Deleted meeting %d", meetingID)
	return nil
}

func (p *implProcessor) Doctor(ctx context.Context) []doctor.Check {
	return doctor.Run(ctx, p.cfg, doctor.Deps{
		Converter: p.converter,
		Executor:  p.executor,
	})
}
