package store

// Meeting is one completed transcription run.
type Meeting struct {
	ID              int64   `json:"id"`
	CreatedAt       string  `json:"created_at"`
	SourcePath      string  `json:"source_path"`
	Language        string  `json:"language"`
	ModelName       string  `json:"model_name"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Segment is a persisted transcript line owned by a meeting.
type Segment struct {
	ID        int64   `json:"id"`
	MeetingID int64   `json:"meeting_id"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Text      string  `json:"text"`
}

// Summary is a generated summary. LLMModel is empty for the extractive method.
type Summary struct {
	ID           int64  `json:"id"`
	MeetingID    int64  `json:"meeting_id"`
	CreatedAt    string `json:"created_at"`
	TemplateName string `json:"template_name"`
	Method       string `json:"method"`
	LLMModel     string `json:"llm_model,omitempty"`
	Text         string `json:"text"`
}

// Export logs one produced artifact.
type Export struct {
	ID        int64  `json:"id"`
	MeetingID int64  `json:"meeting_id"`
	CreatedAt string `json:"created_at"`
	Format    string `json:"format"`
	Path      string `json:"path"`
}

// SearchHit is one ranked full-text match.
type SearchHit struct {
	SegmentID int64   `json:"segment_id"`
	MeetingID int64   `json:"meeting_id"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Text      string  `json:"text"`
	Snippet   string  `json:"snippet"`
}

// NewMeeting holds the fields of a meeting about to be created.
type NewMeeting struct {
	SourcePath      string
	Language        string
	ModelName       string
	DurationSeconds float64
}

// NewSegment is a segment about to be inserted with its meeting.
type NewSegment struct {
	Start float64
	End   float64
	Text  string
}
