package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/animedex/backend/internal/database"
	"github.com/animedex/backend/internal/logger"
	"github.com/animedex/backend/internal/repository"
	"github.com/animedex/backend/internal/search"
)

var (
	deleteFirst bool
	batchSize   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "animedex-indexer",
		Short: "Manage the AnimeDex search indices",
	}

	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild both search indices from the catalog database",
		RunE:  runReindex,
	}
	reindexCmd.Flags().BoolVar(&deleteFirst, "delete", false, "drop existing indices before reindexing")
	reindexCmd.Flags().IntVar(&batchSize, "batch-size", 0, "documents per bulk request (overrides ES_BATCH_SIZE)")

	deleteCmd := &cobra.Command{
		Use:   "delete-indices",
		Short: "Drop both search indices",
		RunE:  runDelete,
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show document counts and storage size per index",
		RunE:  runStats,
	}

	rootCmd.AddCommand(reindexCmd, deleteCmd, statsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires env, logging, database and the engine client for a
// one-shot command
func bootstrap(needDB bool) (*search.Client, repository.CatalogRepository, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	var catalog repository.CatalogRepository
	if needDB {
		if err := database.Initialize(); err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		catalog = repository.NewCatalogRepository(database.DB)
	}

	client, err := search.NewClient()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}

	return client, catalog, nil
}

func runReindex(cmd *cobra.Command, args []string) error {
	if batchSize > 0 {
		os.Setenv("ES_BATCH_SIZE", strconv.Itoa(batchSize))
	}

	client, catalog, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer logger.Close()
	defer database.Close()

	ctx := context.Background()

	if deleteFirst {
		logger.Info("Dropping existing indices before reindex")
		if err := client.DeleteIndices(ctx); err != nil {
			return err
		}
	}

	indexer := search.NewIndexer(client, catalog)
	summary, err := indexer.ReindexAll(ctx)
	if err != nil {
		return err
	}

	logger.Info("Reindex finished",
		zap.Int("anime_indexed", summary.AnimeIndexed),
		zap.Int("suggestions_indexed", summary.SuggestionsIndexed),
		zap.Float64("duration_seconds", summary.DurationSeconds),
	)
	return printJSON(summary)
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, _, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer logger.Close()

	return client.DeleteIndices(context.Background())
}

func runStats(cmd *cobra.Command, args []string) error {
	client, _, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer logger.Close()

	stats, err := client.Stats(context.Background())
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
