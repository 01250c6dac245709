package resolvers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"

	gqlmodels "gaugetrack.GO/graphql/models"
	entity "gaugetrack.GO/model/entity"
)

var (
	searchServiceInstance *SearchService
	searchServiceOnce     sync.Once
)

// GetSearchService returns singleton SearchService.
func GetSearchService() *SearchService {
	searchServiceOnce.Do(func() {
		searchServiceInstance = NewSearchService()
	})
	return searchServiceInstance
}

type SearchService struct {
	client *elasticsearch.Client
	prefix string
}

func NewSearchService() *SearchService {
	host := os.Getenv("ELASTICSEARCH_HOST")
	if host == "" {
		host = "http://localhost:9200"
	}
	prefix := os.Getenv("ELASTICSEARCH_INDEX_PREFIX")
	if prefix == "" {
		prefix = "gaugetrack"
	}

	cfg := elasticsearch.Config{
		Addresses: []string{host},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return &SearchService{prefix: prefix}
	}

	return &SearchService{
		client: client,
		prefix: prefix,
	}
}

// SearchGauges (resolver) tries Elasticsearch, falls back to SQL LIKE
// when the cluster is unreachable or unconfigured.
func (r *queryResolver) SearchGauges(ctx context.Context, query string, pageSize, currentPage int) (*gqlmodels.GaugeSearchResult, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if currentPage <= 0 {
		currentPage = 1
	}

	ids, total, err := r.SearchService.Search(ctx, query, pageSize, currentPage)
	if err == nil {
		return r.resultByIDs(ids, total, pageSize, currentPage)
	}
	return r.sqlSearch(query, pageSize, currentPage)
}

func (r *queryResolver) resultByIDs(ids []uint, total int, pageSize, currentPage int) (*gqlmodels.GaugeSearchResult, error) {
	items := make([]*gqlmodels.Gauge, 0, len(ids))
	for _, id := range ids {
		g, err := r.GaugeRepo.ByID(nil, id)
		if err != nil {
			continue
		}
		items = append(items, toGauge(g))
	}
	return &gqlmodels.GaugeSearchResult{
		Items:       items,
		TotalCount:  int32(total),
		PageSize:    int32(pageSize),
		CurrentPage: int32(currentPage),
	}, nil
}

// sqlSearch matches serial number, external id and set id with LIKE.
func (r *queryResolver) sqlSearch(query string, pageSize, currentPage int) (*gqlmodels.GaugeSearchResult, error) {
	like := "%" + query + "%"
	q := r.db.Model(&entity.Gauge{}).
		Where("deleted_at IS NULL").
		Where("serial_number LIKE ? OR external_id LIKE ? OR set_id LIKE ?", like, like, like)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []*entity.Gauge
	err := q.Order("gauge_id ASC").
		Limit(pageSize).
		Offset((currentPage - 1) * pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]*gqlmodels.Gauge, 0, len(rows))
	for _, g := range rows {
		items = append(items, toGauge(g))
	}
	return &gqlmodels.GaugeSearchResult{
		Items:       items,
		TotalCount:  int32(total),
		PageSize:    int32(pageSize),
		CurrentPage: int32(currentPage),
	}, nil
}

// Search queries the gauge index: {prefix}_gauge. Returns matched gauge
// ids and the total hit count.
func (s *SearchService) Search(ctx context.Context, query string, pageSize, currentPage int) ([]uint, int, error) {
	if s.client == nil {
		return nil, 0, fmt.Errorf("elasticsearch not configured")
	}

	from := (currentPage - 1) * pageSize

	body := map[string]interface{}{
		"from": from,
		"size": pageSize,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"serial_number^3", "external_id^2", "set_id^2", "spec_size", "location_code"},
			},
		},
	}
	bodyBytes, _ := json.Marshal(body)

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.prefix+"_gauge"),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var esResp struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, 0, err
	}

	var ids []uint
	for _, hit := range esResp.Hits.Hits {
		if gaugeID, ok := hit.Source["gauge_id"].(float64); ok {
			ids = append(ids, uint(gaugeID))
		}
	}
	return ids, esResp.Hits.Total.Value, nil
}
