package models

import "time"

// Snapshot is the last successfully fetched content of a remote document
type Snapshot struct {
	Key       string    `json:"key"`       // Document location, unique per document
	Index     int       `json:"index"`     // Position in the hub's document list
	Version   string    `json:"version"`   // "openapi" or "swagger" version of the raw content
	Content   []byte    `json:"content"`   // Raw document as fetched (YAML or JSON)
	RequestID string    `json:"requestId"` // Request id of the fetch that produced it
	FetchedAt time.Time `json:"fetchedAt"`
}

// DocumentStat holds fetch statistics for one document
type DocumentStat struct {
	Index         int       `json:"index"`
	Location      string    `json:"location"`
	TotalFetches  int64     `json:"totalFetches"`
	TotalErrors   int64     `json:"totalErrors"`
	StaleServed   int64     `json:"staleServed"`
	AvgFetchMs    float64   `json:"avgFetchMs"`
	MaxFetchMs    float64   `json:"maxFetchMs"`
	LastFetchedAt time.Time `json:"lastFetchedAt,omitempty"`
	LastError     string    `json:"lastError,omitempty"`
}

// HubStats aggregates the statistics of every document
type HubStats struct {
	StartTime    time.Time      `json:"startTime"`
	Uptime       string         `json:"uptime"`
	TotalFetches int64          `json:"totalFetches"`
	TotalErrors  int64          `json:"totalErrors"`
	Documents    []DocumentStat `json:"documents"`
}
