package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nguyentantai21042004/minutes/internal/apperr"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "minutes.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createMeeting(t *testing.T, s *Store, texts ...string) Meeting {
	t.Helper()
	segs := make([]NewSegment, len(texts))
	for i, text := range texts {
		segs[i] = NewSegment{Start: float64(i), End: float64(i) + 0.9, Text: text}
	}
	m, err := s.CreateMeeting(context.Background(), NewMeeting{
		SourcePath:      "/tmp/meeting.m4a",
		Language:        "en",
		ModelName:       "faster-whisper:small",
		DurationSeconds: float64(len(texts)),
	}, segs)
	if err != nil {
		t.Fatalf("CreateMeeting() error = %v", err)
	}
	return m
}

func TestCreateMeetingIndexesEverySegment(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	m := createMeeting(t, s, "alpha", "bravo", "charlie", "delta")

	segs, err := s.SegmentCount(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	idx, err := s.IndexRowCount(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if segs != 4 || idx != 4 {
		t.Errorf("segments = %d, index rows = %d, want 4 and 4", segs, idx)
	}

	got, err := s.Meeting(ctx, m.ID)
	if err != nil || got == nil {
		t.Fatalf("Meeting() = %v, %v", got, err)
	}
	if got.ModelName != "faster-whisper:small" || got.DurationSeconds != 4 {
		t.Errorf("Meeting() = %+v", got)
	}
}

func TestSearchUniqueHit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createMeeting(t, s, "we talked about the roadmap", "lunch plans")
	target := createMeeting(t, s, "quarterly budget review", "hiring update")

	hits, err := s.Search(ctx, "budget", nil, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Search() returned %d hits, want 1", len(hits))
	}

	segs, err := s.Segments(ctx, target.ID)
	if err != nil {
		t.Fatal(err)
	}
	hit := hits[0]
	if hit.MeetingID != target.ID || hit.SegmentID != segs[0].ID {
		t.Errorf("hit = %+v, want meeting %d segment %d", hit, target.ID, segs[0].ID)
	}
	if hit.Snippet != "quarterly [budget] review" {
		t.Errorf("Snippet = %q", hit.Snippet)
	}
}

func TestSearchMeetingFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createMeeting(t, s, "deploy the service")
	second := createMeeting(t, s, "deploy again tomorrow")

	hits, err := s.Search(ctx, "deploy", nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("unfiltered hits = %d, want 2", len(hits))
	}

	hits, err = s.Search(ctx, "deploy", &second.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].MeetingID != second.ID {
		t.Errorf("filtered hits = %+v, want only meeting %d", hits, second.ID)
	}
}

func TestDeleteMeetingLeavesNoOrphans(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	m := createMeeting(t, s, "one", "two", "three")
	if _, err := s.AddSummary(ctx, m.ID, "general", "extractive", "", "summary"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddExport(ctx, m.ID, "md", "/tmp/x.md"); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteMeeting(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMeeting() error = %v", err)
	}

	if n, _ := s.SegmentCount(ctx, m.ID); n != 0 {
		t.Errorf("segments left = %d", n)
	}
	if n, _ := s.IndexRowCount(ctx, m.ID); n != 0 {
		t.Errorf("index rows left = %d", n)
	}
	if sums, _ := s.Summaries(ctx, m.ID); len(sums) != 0 {
		t.Errorf("summaries left = %d", len(sums))
	}
	if exps, _ := s.Exports(ctx, m.ID); len(exps) != 0 {
		t.Errorf("exports left = %d", len(exps))
	}
	if got, _ := s.Meeting(ctx, m.ID); got != nil {
		t.Errorf("Meeting() = %+v after delete", got)
	}

	if err := s.DeleteMeeting(ctx, m.ID); !apperr.IsKind(err, apperr.KindPrecondition) {
		t.Errorf("second DeleteMeeting() error = %v, want precondition", err)
	}
}

func TestLatestSummary(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	m := createMeeting(t, s, "text")

	if got, err := s.LatestSummary(ctx, m.ID); err != nil || got != nil {
		t.Fatalf("LatestSummary() = %v, %v, want nil", got, err)
	}

	if _, err := s.AddSummary(ctx, m.ID, "general", "extractive", "", "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddSummary(ctx, m.ID, "sales", "gemini", "gemini-2.5-flash", "second"); err != nil {
		t.Fatal(err)
	}

	got, err := s.LatestSummary(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "second" || got.LLMModel != "gemini-2.5-flash" {
		t.Errorf("LatestSummary() = %+v", got)
	}
}

func TestSegmentsOrderedAndTranscriptText(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	m, err := s.CreateMeeting(ctx, NewMeeting{SourcePath: "a.wav", Language: "en", ModelName: "x"}, []NewSegment{
		{Start: 5, End: 6, Text: "later"},
		{Start: 1, End: 2, Text: "earlier"},
	})
	if err != nil {
		t.Fatal(err)
	}

	text, err := s.TranscriptText(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if text != "earlier\nlater" {
		t.Errorf("TranscriptText() = %q", text)
	}
}

func TestMeetingsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	a := createMeeting(t, s, "a")
	b := createMeeting(t, s, "b")

	got, err := s.Meetings(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != b.ID || got[1].ID != a.ID {
		t.Errorf("Meetings() = %+v", got)
	}

	got, err = s.Meetings(ctx, 1)
	if err != nil || len(got) != 1 {
		t.Errorf("Meetings(1) = %+v, %v", got, err)
	}
}

func TestMeetingNotFound(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Meeting(context.Background(), 42)
	if err != nil || got != nil {
		t.Errorf("Meeting() = %v, %v, want nil, nil", got, err)
	}
}
