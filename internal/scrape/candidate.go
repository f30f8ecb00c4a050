package scrape

import "time"

// Candidate is a raw parsed listing before normalization. It only lives
// inside a pipeline run.
type Candidate struct {
	Title            string
	Description      string
	ShortDescription string

	DateText    string
	TimeText    string
	EndDateText string
	EndTimeText string

	Location string
	Venue    string
	Address  string

	Latitude  *float64
	Longitude *float64

	CategoryHint    string
	Tags            []string
	PriceInfo       string
	AgeRestrictions string
	ExternalURL     string
	ImageURL        string
	ExternalID      string
}

// Record is a normalized, Event-shaped row ready for dedup and persistence.
type Record struct {
	Title            string
	Description      string
	ShortDescription string

	Date    time.Time // midnight in Asia/Singapore
	Time    string    // "15:04:05"
	EndDate *time.Time
	EndTime string

	Location string
	Venue    string
	Address  string

	Latitude  *float64
	Longitude *float64

	CategorySlug    string
	Tags            []string
	PriceInfo       string
	AgeRestrictions string
	ExternalURL     string
	ImageURL        string

	Source     string // the scraped_from value
	ExternalID string
}

// RunResult reports one source's pipeline run for admin stats.
type RunResult struct {
	Source     string    `json:"source"`
	Success    bool      `json:"success"`
	Found      int       `json:"events_found"`
	Saved      int       `json:"events_saved"`
	Updated    int       `json:"events_updated"`
	Duplicates int       `json:"duplicates"`
	Invalid    int       `json:"invalid"`
	Errors     []string  `json:"errors,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (r RunResult) DurationSeconds() float64 {
	return r.FinishedAt.Sub(r.StartedAt).Seconds()
}

// Report aggregates a whole run across sources.
type Report struct {
	Status     string               `json:"status"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	TotalFound int                  `json:"total_events_found"`
	TotalSaved int                  `json:"total_events_saved"`
	Sources    map[string]RunResult `json:"sources"`
}
