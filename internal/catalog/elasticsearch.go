// internal/catalog/elasticsearch.go
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"admissions-workers/internal/common/database"
	"admissions-workers/internal/common/errors"
	"admissions-workers/internal/common/logger"
	"admissions-workers/internal/models"
)

// SearchProvider reads program records from the Elasticsearch catalog
// index. It serves the same interface as the relational provider and is
// preferred for filtered fetches over large catalogs.
type SearchProvider struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

// NewSearchProvider creates a catalog provider backed by Elasticsearch.
func NewSearchProvider(es *database.ElasticsearchClient, index string, log logger.Logger) *SearchProvider {
	return &SearchProvider{es: es, index: index, logger: log}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string               `json:"_id"`
			Source models.ProgramRecord `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// FetchPrograms runs a bool query assembled from the filters.
func (p *SearchProvider) FetchPrograms(ctx context.Context, filters Filters) ([]models.ProgramRecord, error) {
	size := filters.Limit
	if size <= 0 {
		size = defaultFetchLimit
	}

	query := buildSearchQuery(filters, size)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, errors.NewSearchQueryFailedError(err)
	}

	res, err := p.es.Client.Search(
		p.es.Client.Search.WithContext(ctx),
		p.es.Client.Search.WithIndex(p.index),
		p.es.Client.Search.WithBody(&buf),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewCatalogQueryTimeoutError()
		}
		return nil, errors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryFailedError(err)
	}

	programs := make([]models.ProgramRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		program := hit.Source
		if program.ID == "" {
			program.ID = hit.ID
		}
		programs = append(programs, program)
	}

	p.logger.Debug("Fetched catalog slice from search index", map[string]interface{}{
		"index": p.index,
		"count": len(programs),
	})
	return programs, nil
}

// FetchProgram reads a single document by id.
func (p *SearchProvider) FetchProgram(ctx context.Context, programID string) (*models.ProgramRecord, error) {
	res, err := p.es.Client.Get(p.index, programID, p.es.Client.Get.WithContext(ctx))
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, errors.NewProgramNotFoundError(programID)
	}
	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(fmt.Errorf("get returned %s", res.Status()))
	}

	var doc struct {
		Source models.ProgramRecord `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, errors.NewSearchQueryFailedError(err)
	}

	program := doc.Source
	if program.ID == "" {
		program.ID = programID
	}
	return &program, nil
}

func buildSearchQuery(filters Filters, size int) map[string]interface{} {
	var must []map[string]interface{}

	if len(filters.Countries) > 0 {
		must = append(must, map[string]interface{}{
			"terms": map[string]interface{}{"location": filters.Countries},
		})
	}
	if filters.MaxPrice > 0 {
		must = append(must, map[string]interface{}{
			"range": map[string]interface{}{
				"discountedPrice": map[string]interface{}{"lte": filters.MaxPrice},
			},
		})
	}
	if filters.IntakeTerm != "" {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"intakeTerms": filters.IntakeTerm},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(must) > 0 {
		boolQuery["must"] = must
	} else {
		boolQuery["must"] = []map[string]interface{}{{"match_all": map[string]interface{}{}}}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"size":  size,
		"sort":  []map[string]interface{}{{"id": map[string]interface{}{"order": "asc"}}},
	}
}
