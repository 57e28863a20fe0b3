package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"hireboard_backend/internal/config"
	"hireboard_backend/internal/job"
	"hireboard_backend/internal/job/esutil"
	"hireboard_backend/internal/platform/database"
	platformElasticsearch "hireboard_backend/internal/platform/elasticsearch"
	"hireboard_backend/internal/platform/logger"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

func main() {
	syncJobsCmd := flag.NewFlagSet("sync-jobs", flag.ExitOnError)
	batchSize := syncJobsCmd.Int("batch-size", 100, "Batch size for syncing jobs")
	esRefresh := syncJobsCmd.String("es-refresh", "false", "Elasticsearch refresh policy (true, false, wait_for)")

	if len(os.Args) > 1 && os.Args[1] == "sync-jobs" {
		syncJobsCmd.Parse(os.Args[2:])

		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("FATAL: Failed to load configuration for sync: %v", err)
		}
		appLogger, err := logger.New(cfg)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize logger for sync: %v", err)
		}
		db, err := database.NewGORM(cfg)
		if err != nil {
			appLogger.Fatal("FATAL: Failed to initialize database for sync", zap.Error(err))
		}
		defer database.CloseGORMDB(db)

		esClient, err := platformElasticsearch.NewClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("FATAL: Failed to initialize Elasticsearch client for sync", zap.Error(err))
		}
		if esClient == nil {
			appLogger.Fatal("FATAL: ELASTICSEARCH_URL must be set to run sync-jobs.")
		}

		if err := platformElasticsearch.CreateJobsIndexIfNotExists(esClient, appLogger); err != nil {
			appLogger.Fatal("FATAL: Failed to create/verify Elasticsearch index before sync", zap.Error(err))
		}

		jobRepo := job.NewGORMRepository(db)
		if err := runJobSync(jobRepo, esClient, appLogger, *batchSize, *esRefresh); err != nil {
			appLogger.Fatal("FATAL: Job synchronization failed", zap.Error(err))
		}
		appLogger.Info("Job synchronization completed successfully.")
		return
	}

	startServer()
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	if server.ESClient != nil {
		if err := platformElasticsearch.CreateJobsIndexIfNotExists(server.ESClient, server.AppLogger); err != nil {
			server.AppLogger.Error("Failed to create Elasticsearch jobs index, search will fall back to the database.", zap.Error(err))
		}
	} else {
		server.AppLogger.Info("Elasticsearch client not initialized, skipping index creation.")
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
}

// runJobSync bulk-reindexes every job into Elasticsearch, batch by batch.
func runJobSync(
	jobRepo job.Repository,
	esClient *platformElasticsearch.ESClientWrapper,
	logger *zap.Logger,
	batchSize int,
	esRefresh string,
) error {
	logger.Info("Starting job synchronization to Elasticsearch...",
		zap.Int("batchSize", batchSize),
		zap.String("esRefreshPolicy", esRefresh),
	)

	offset := 0
	totalSynced := 0
	totalFailed := 0

	for {
		jobs, err := jobRepo.FindAllForSync(context.Background(), offset, batchSize)
		if err != nil {
			return fmt.Errorf("failed to fetch batch at offset %d: %w", offset, err)
		}
		if len(jobs) == 0 {
			break
		}

		var bulkBody strings.Builder
		for i := range jobs {
			j := &jobs[i]
			docJSON, errDoc := esutil.JobToElasticsearchDoc(j)
			if errDoc != nil {
				logger.Error("Failed to convert job to Elasticsearch document",
					zap.String("jobID", j.ID.String()),
					zap.Error(errDoc),
				)
				totalFailed++
				continue
			}
			fmt.Fprintf(&bulkBody, "{ \"index\" : { \"_index\" : %q, \"_id\" : %q } }\n", platformElasticsearch.JobsIndexName, j.ID.String())
			bulkBody.WriteString(docJSON)
			bulkBody.WriteString("\n")
		}

		if bulkBody.Len() > 0 {
			synced, failed, err := sendBulk(esClient, logger, bulkBody.String(), esRefresh)
			if err != nil {
				return err
			}
			totalSynced += synced
			totalFailed += failed
		}

		offset += len(jobs)
	}

	logger.Info("Job synchronization finished.",
		zap.Int("totalSynced", totalSynced),
		zap.Int("totalFailed", totalFailed),
	)
	if totalFailed > 0 {
		return fmt.Errorf("%d jobs failed to sync", totalFailed)
	}
	return nil
}

func sendBulk(esClient *platformElasticsearch.ESClientWrapper, logger *zap.Logger, body, esRefresh string) (synced, failed int, err error) {
	req := esapi.BulkRequest{
		Body:    strings.NewReader(body),
		Refresh: esRefresh,
	}
	res, err := req.Do(context.Background(), esClient.Client)
	if err != nil {
		return 0, 0, fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, 0, fmt.Errorf("bulk request returned status %s", res.Status())
	}

	var bulkResponse struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string                 `json:"_id"`
				Status int                    `json:"status"`
				Error  map[string]interface{} `json:"error,omitempty"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		return 0, 0, fmt.Errorf("failed to parse bulk response: %w", err)
	}

	for _, item := range bulkResponse.Items {
		if item.Index.Error != nil {
			logger.Error("Failed to index job document",
				zap.String("jobID", item.Index.ID),
				zap.Int("status", item.Index.Status),
				zap.Any("error", item.Index.Error),
			)
			failed++
		} else {
			synced++
		}
	}
	return synced, failed, nil
}
