package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/buddyboard/buddyboard/internal/events"
	"github.com/buddyboard/buddyboard/internal/models"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const moderationMapping = `{
  "mappings": {
    "properties": {
      "timestamp":  {"type": "date"},
      "request_id": {"type": "keyword"},
      "user_hash":  {"type": "keyword"},
      "resource":   {"type": "keyword"},
      "field":      {"type": "keyword"},
      "ruleset":    {"type": "keyword"},
      "rule":       {"type": "keyword"},
      "text_hash":  {"type": "keyword"}
    }
  }
}`

// ModerationIndex stores rejected submissions in Elasticsearch for admin review
type ModerationIndex struct {
	client *elasticsearch.Client
	index  string
}

// ESConfig holds connection settings for the moderation cluster
type ESConfig struct {
	Scheme      string
	Host        string
	Port        int
	User        string
	Password    string
	VerifyCerts bool
	MaxRetries  int
	Index       string
}

// NewModerationIndex creates an ES client using go-elasticsearch/v8
func NewModerationIndex(cfg ESConfig) (*ModerationIndex, error) {
	addr := fmt.Sprintf("%s://%s:%d", cfg.Scheme, cfg.Host, cfg.Port)

	esCfg := elasticsearch.Config{
		Addresses:  []string{addr},
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.User != "" {
		esCfg.Username = cfg.User
		esCfg.Password = cfg.Password
	}
	if !cfg.VerifyCerts {
		esCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402 - user explicitly disabled cert verification
			},
		}
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch.NewClient: %w", err)
	}
	return &ModerationIndex{client: client, index: cfg.Index}, nil
}

func (s *ModerationIndex) Index() string { return s.index }

// TestConnection pings the cluster
func (s *ModerationIndex) TestConnection(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping error: %s", res.Status())
	}
	return nil
}

// EnsureIndex creates the moderation index with keyword mappings if missing
func (s *ModerationIndex) EnsureIndex(ctx context.Context) error {
	res, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(strings.NewReader(moderationMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	_, err = decodeBody(res.Body, res.Status())
	return err
}

// IndexRejection stores one rejection event
func (s *ModerationIndex) IndexRejection(ctx context.Context, event events.RejectionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, err = decodeBody(res.Body, res.Status())
	return err
}

// Search returns the newest rejection events matching req, with a per-rule breakdown
func (s *ModerationIndex) Search(ctx context.Context, req models.ModerationSearchRequest) (*models.ModerationSearchResponse, error) {
	req.SetDefaults()

	bodyBytes, err := json.Marshal(BuildModerationQuery(req))
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	opts := []func(*esapi.SearchRequest){
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	}
	res, err := s.client.Search(opts...)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := decodeBody(res.Body, res.Status())
	if err != nil {
		return nil, err
	}
	return parseModerationResponse(raw), nil
}

// BuildModerationQuery builds the ES search body for a moderation search
func BuildModerationQuery(req models.ModerationSearchRequest) map[string]interface{} {
	var filters []interface{}
	for field, value := range map[string]string{
		"field":   req.Field,
		"rule":    req.Rule,
		"ruleset": req.Ruleset,
	} {
		if value != "" {
			filters = append(filters, map[string]interface{}{
				"term": map[string]interface{}{field: value},
			})
		}
	}

	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(filters) > 0 {
		query = map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		}
	}

	return map[string]interface{}{
		"size":  req.Size,
		"query": query,
		"sort": []interface{}{
			map[string]interface{}{"timestamp": map[string]interface{}{"order": "desc"}},
		},
		"aggs": map[string]interface{}{
			"by_rule": map[string]interface{}{
				"terms": map[string]interface{}{"field": "rule"},
			},
		},
	}
}

func decodeBody(r io.Reader, status string) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if strings.HasPrefix(status, "4") || strings.HasPrefix(status, "5") {
		if errObj, ok := result["error"]; ok {
			return nil, fmt.Errorf("elasticsearch error [%s]: %v", status, errObj)
		}
		return nil, fmt.Errorf("elasticsearch error: %s", status)
	}
	return result, nil
}

func parseModerationResponse(raw map[string]interface{}) *models.ModerationSearchResponse {
	resp := &models.ModerationSearchResponse{
		Status: "success",
		Events: []models.ModerationEvent{},
	}

	if took, ok := raw["took"].(float64); ok {
		resp.Took = int(took)
	}

	if hitsObj, ok := raw["hits"].(map[string]interface{}); ok {
		if totalObj, ok := hitsObj["total"].(map[string]interface{}); ok {
			if val, ok := totalObj["value"].(float64); ok {
				resp.TotalHits = int64(val)
			}
		}
		if hits, ok := hitsObj["hits"].([]interface{}); ok {
			for _, h := range hits {
				hm, ok := h.(map[string]interface{})
				if !ok {
					continue
				}
				src, ok := hm["_source"].(map[string]interface{})
				if !ok {
					continue
				}
				resp.Events = append(resp.Events, models.ModerationEvent{
					Timestamp: str(src["timestamp"]),
					RequestID: str(src["request_id"]),
					UserHash:  str(src["user_hash"]),
					Resource:  str(src["resource"]),
					Field:     str(src["field"]),
					Ruleset:   str(src["ruleset"]),
					Rule:      str(src["rule"]),
					TextHash:  str(src["text_hash"]),
				})
			}
		}
	}

	if aggs, ok := raw["aggregations"].(map[string]interface{}); ok {
		if byRule, ok := aggs["by_rule"].(map[string]interface{}); ok {
			if buckets, ok := byRule["buckets"].([]interface{}); ok {
				resp.ByRule = make(map[string]int64, len(buckets))
				for _, b := range buckets {
					bm, ok := b.(map[string]interface{})
					if !ok {
						continue
					}
					if n, ok := bm["doc_count"].(float64); ok {
						resp.ByRule[str(bm["key"])] = int64(n)
					}
				}
			}
		}
	}

	return resp
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}
