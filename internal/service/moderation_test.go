package service

import (
	"encoding/json"
	"testing"

	"github.com/buddyboard/buddyboard/internal/models"
)

func TestBuildModerationQuery(t *testing.T) {
	q := BuildModerationQuery(models.ModerationSearchRequest{Size: 10})
	if _, ok := q["query"].(map[string]interface{})["match_all"]; !ok {
		t.Errorf("empty filters should produce match_all, got %v", q["query"])
	}

	q = BuildModerationQuery(models.ModerationSearchRequest{Field: "comment", Rule: "social", Size: 10})
	b, ok := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected bool query, got %v", q["query"])
	}
	if filters := b["filter"].([]interface{}); len(filters) != 2 {
		t.Errorf("expected 2 term filters, got %d", len(filters))
	}
	if q["size"] != 10 {
		t.Errorf("size = %v, want 10", q["size"])
	}
}

func TestModerationSearchDefaults(t *testing.T) {
	req := models.ModerationSearchRequest{Size: 10_000}
	req.SetDefaults()
	if req.Size != 500 {
		t.Errorf("size should be capped at 500, got %d", req.Size)
	}
	req = models.ModerationSearchRequest{}
	req.SetDefaults()
	if req.Size != 50 {
		t.Errorf("default size = %d, want 50", req.Size)
	}
}

func TestParseModerationResponse(t *testing.T) {
	body := `{
  "took": 4,
  "hits": {
    "total": {"value": 2},
    "hits": [
      {"_source": {"timestamp": "2026-10-17T09:30:00Z", "request_id": "r1", "field": "description", "ruleset": "narrow", "rule": "social"}},
      {"_source": {"timestamp": "2026-10-17T09:00:00Z", "request_id": "r2", "field": "content", "ruleset": "broad", "rule": "url"}}
    ]
  },
  "aggregations": {
    "by_rule": {"buckets": [{"key": "social", "doc_count": 1}, {"key": "url", "doc_count": 1}]}
  }
}`
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatal(err)
	}

	resp := parseModerationResponse(raw)
	if resp.Took != 4 || resp.TotalHits != 2 {
		t.Errorf("unexpected totals: took=%d hits=%d", resp.Took, resp.TotalHits)
	}
	if len(resp.Events) != 2 || resp.Events[0].RequestID != "r1" || resp.Events[1].Rule != "url" {
		t.Errorf("unexpected events %+v", resp.Events)
	}
	if resp.ByRule["social"] != 1 || resp.ByRule["url"] != 1 {
		t.Errorf("unexpected by_rule %v", resp.ByRule)
	}
}
