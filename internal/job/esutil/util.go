package esutil

import (
	"errors"

	"hireboard_backend/internal/job"
)

// JobToElasticsearchDoc converts a job.Job to its Elasticsearch document
// representation.
func JobToElasticsearchDoc(j *job.Job) (string, error) {
	if j == nil {
		return "", errors.New("job cannot be nil")
	}
	return j.SearchDoc()
}
