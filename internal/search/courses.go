package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/courseforge/backend/internal/domain"
)

// CourseDoc is the indexed projection of a course
type CourseDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	TutorID     string `json:"tutor_id"`
	IsPublished bool   `json:"is_published"`
}

// CourseIndex indexes and searches courses in Elasticsearch.
// Writes are synchronous within the request that mutated the course.
type CourseIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewCourseIndex creates a course index over an Elasticsearch client
func NewCourseIndex(client *elasticsearch.Client, index string) *CourseIndex {
	return &CourseIndex{client: client, index: index}
}

// NewElasticClient connects to Elasticsearch and verifies the cluster responds
func NewElasticClient(addresses []string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to reach elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info failed: %s", res.Status())
	}

	return client, nil
}

// Index upserts a course document
func (s *CourseIndex) Index(ctx context.Context, course *domain.Course) error {
	doc := CourseDoc{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Category:    course.Category,
		TutorID:     course.TutorID,
		IsPublished: course.IsPublished,
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal course doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: course.ID,
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("failed to index course: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index of course %s failed: %s", course.ID, res.Status())
	}

	return nil
}

// Delete removes a course document; a missing document is not an error
func (s *CourseIndex) Delete(ctx context.Context, courseID string) error {
	req := esapi.DeleteRequest{Index: s.index, DocumentID: courseID}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("failed to delete course doc: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete of course doc %s failed: %s", courseID, res.Status())
	}

	return nil
}

// Search runs a fuzzy multi_match over published courses
func (s *CourseIndex) Search(ctx context.Context, query string, from, size int) (int64, []CourseDoc, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, nil
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     query,
						"fields":    []string{"title^2", "description", "category"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"is_published": true},
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("failed to encode search body: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search failed: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source CourseDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	docs := make([]CourseDoc, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}

	return r.Hits.Total.Value, docs, nil
}
