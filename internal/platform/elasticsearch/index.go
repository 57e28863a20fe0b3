package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const JobsIndexName = "jobs"

// defineJobsMapping returns the JSON string for the jobs index mapping.
func defineJobsMapping() (string, error) {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":         map[string]interface{}{"type": "text", "fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}},
				"slug":          map[string]interface{}{"type": "keyword"},
				"description":   map[string]interface{}{"type": "text"},
				"requirements":  map[string]interface{}{"type": "keyword"},
				"status":        map[string]interface{}{"type": "keyword"},
				"creator_id":    map[string]interface{}{"type": "keyword"},
				"creator_name":  map[string]interface{}{"type": "text", "fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}},
				"min_pay":       map[string]interface{}{"type": "double"},
				"max_pay":       map[string]interface{}{"type": "double"},
				"applicants":    map[string]interface{}{"type": "integer"},
				"posted_at":     map[string]interface{}{"type": "date"},
				"created_at":    map[string]interface{}{"type": "date"},
				"updated_at":    map[string]interface{}{"type": "date"},
			},
		},
	}
	mappingBytes, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling jobs mapping to JSON: %w", err)
	}
	return string(mappingBytes), nil
}

// CreateJobsIndexIfNotExists creates the jobs index with the defined mapping
// if it does not already exist.
func CreateJobsIndexIfNotExists(client *ESClientWrapper, logger *zap.Logger) error {
	ctx := context.Background()
	log := logger.Named("elasticsearch_index_setup")

	req := esapi.IndicesExistsRequest{
		Index: []string{JobsIndexName},
	}
	res, err := req.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error checking if jobs index exists", zap.Error(err))
		return fmt.Errorf("error checking if jobs index exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Info("Jobs index already exists", zap.String("index_name", JobsIndexName))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Error("Error checking if jobs index exists, unexpected status",
			zap.String("status", res.Status()),
			zap.String("index_name", JobsIndexName),
		)
		return fmt.Errorf("error checking if jobs index exists: status %s", res.Status())
	}

	mappingJSON, err := defineJobsMapping()
	if err != nil {
		log.Error("Failed to define jobs mapping", zap.Error(err))
		return err
	}
	log.Debug("Jobs index mapping defined", zap.String("mapping", mappingJSON))

	createReq := esapi.IndicesCreateRequest{
		Index: JobsIndexName,
		Body:  strings.NewReader(mappingJSON),
	}
	createRes, err := createReq.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error creating jobs index", zap.Error(err), zap.String("index_name", JobsIndexName))
		return fmt.Errorf("error creating jobs index %s: %w", JobsIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		var errorBody map[string]interface{}
		if err := json.NewDecoder(createRes.Body).Decode(&errorBody); err != nil {
			log.Error("Failed to parse jobs index creation error response body", zap.Error(err), zap.String("status", createRes.Status()))
		} else {
			log.Error("Failed to create jobs index",
				zap.String("status", createRes.Status()),
				zap.Any("error_details", errorBody),
				zap.String("index_name", JobsIndexName),
			)
		}
		return fmt.Errorf("failed to create jobs index %s: status %s", JobsIndexName, createRes.Status())
	}

	log.Info("Jobs index created successfully", zap.String("index_name", JobsIndexName))
	return nil
}
