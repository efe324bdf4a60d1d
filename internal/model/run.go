package model

import "time"

// RunStatus represents the final state of a recorded run.
type RunStatus string

const (
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunParams captures the knobs a run was executed with, for the run history.
type RunParams struct {
	Query         string  `json:"query"`
	BottomK       int     `json:"bottom_k"`
	Concurrency   int     `json:"concurrency"`
	DelaySecs     float64 `json:"delay_secs"`
	OnlyPositive  bool    `json:"only_positive"`
	IncludeErrors bool    `json:"include_errors"`
	PTKStrict     bool    `json:"ptk_strict"`
	RecentDays    int     `json:"recent_days"`
}

// RunStats summarizes what a run saw at each stage.
type RunStats struct {
	CardsFetched int `json:"cards_fetched"`
	PoolSize     int `json:"pool_size"`
	Survivors    int `json:"survivors"`
	Fetched      int `json:"fetched"`
	FetchErrors  int `json:"fetch_errors"`
}

// Run is one recorded execution of the pipeline.
type Run struct {
	ID        string        `json:"id"`
	Status    RunStatus     `json:"status"`
	Params    RunParams     `json:"params"`
	Stats     RunStats      `json:"stats"`
	Results   []FetchResult `json:"results,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
