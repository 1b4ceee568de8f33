// Package domain defines the ingestion batch result types.
package domain

// RowError reports every rule violated by a single input row. Rows fail
// independently; one bad row never affects its neighbors.
type RowError struct {
	Row    int                 `json:"row"`
	Record map[string]string   `json:"record,omitempty"`
	Errors map[string][]string `json:"errors"`
}

// Result summarizes one ingestion batch.
type Result struct {
	PersistedCount int        `json:"persisted_count"`
	Errors         []RowError `json:"errors"`
}
