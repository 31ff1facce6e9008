package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SearchResponse is the subset of an Elasticsearch search response that
// place-schema reads.
type SearchResponse struct {
	Took     int  `json:"took"`
	TimedOut bool `json:"timed_out"`
	Hits     Hits `json:"hits"`
}

// Hits is the hits envelope.
type Hits struct {
	Total    TotalHits `json:"total"`
	MaxScore *float64  `json:"max_score"`
	Hits     []Hit     `json:"hits"`
}

// Hit is a single ranked document.
type Hit struct {
	Index  string          `json:"_index"`
	ID     string          `json:"_id"`
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source,omitempty"`
}

// TotalHits is the hit count. Older clusters report a bare number, newer ones
// {"value": n, "relation": "eq"|"gte"}; both decode here.
type TotalHits struct {
	Value    int64  `json:"value"`
	Relation string `json:"relation,omitempty"`
}

// UnmarshalJSON accepts a number, an object or null.
func (t *TotalHits) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = TotalHits{}
		return nil
	}

	if data[0] == '{' {
		type plain TotalHits
		var obj plain
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("decode total hits: %w", err)
		}
		*t = TotalHits(obj)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode total hits: %w", err)
	}
	*t = TotalHits{Value: n, Relation: "eq"}
	return nil
}

// Exact reports whether Value is an exact count rather than a lower bound.
func (t TotalHits) Exact() bool {
	return t.Relation == "" || t.Relation == "eq"
}

// GetTotalHits returns the total hit count however the cluster reported it.
func GetTotalHits(h Hits) int64 {
	return h.Total.Value
}

// Scores returns hit scores in rank order.
func (h Hits) Scores() []float64 {
	scores := make([]float64, len(h.Hits))
	for i, hit := range h.Hits {
		scores[i] = hit.Score
	}
	return scores
}

// IDs returns hit ids in rank order.
func (h Hits) IDs() []string {
	ids := make([]string, len(h.Hits))
	for i, hit := range h.Hits {
		ids[i] = hit.ID
	}
	return ids
}
