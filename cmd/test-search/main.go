package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/deepsocial/backend/internal/archive"
	"github.com/deepsocial/backend/internal/config"
	"github.com/deepsocial/backend/internal/models"
	"github.com/deepsocial/backend/internal/provider"
	"github.com/deepsocial/backend/internal/search"
	"github.com/deepsocial/backend/internal/store"
	"github.com/joho/godotenv"
)

// consoleHook prints the completion summary instead of sending it
type consoleHook struct{}

func (h *consoleHook) SearchCompleted(ctx context.Context, sr *models.Search, results map[string][]models.PlatformItem) {
	fmt.Println("\n🎉 SEARCH COMPLETED!")
	fmt.Printf("📊 Keyword: %q\n", sr.Keyword)
	fmt.Println("📍 Results:")
	for _, platform := range models.Platforms {
		fmt.Printf("   • %s: %d items\n", platform, len(results[platform]))
	}
}

func main() {
	fmt.Println("🔍 DeepSocial - End-to-End Search Test")
	fmt.Println("======================================")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.ApifyToken == "" {
		log.Fatal("APIFY_API_TOKEN is not set")
	}

	st, err := store.New("test_search.db")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	client := provider.NewClient(cfg.ApifyToken, cfg.ApifyBaseURL, cfg.SyncTimeout)

	hooks := []search.CompletionHook{&consoleHook{}}
	var archiver *archive.AzureArchiver
	if cfg.StorageAccount != "" {
		archiver, err = archive.NewAzureArchiver(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			log.Fatalf("Failed to create archiver: %v", err)
		}
		hooks = append(hooks, archiver)
	}

	svc := search.NewService(cfg, st, client, hooks...)

	keyword := "kubernetes"
	ctx := context.Background()

	fmt.Printf("\n🚀 Starting search for %q...\n", keyword)
	result, err := svc.Start(ctx, "local-test", keyword, config.DefaultMaxItems)
	if err != nil {
		log.Fatalf("Failed to start search: %v", err)
	}

	fmt.Printf("   Search ID: %s\n", result.Search.ID)
	for platform, items := range result.SyncData {
		fmt.Printf("   ⚡ %s answered synchronously with %d items\n", platform, len(items))
	}

	fmt.Println("\n⏳ Polling status...")
	finalStatus := search.AggregateRunning
	for attempt := 0; attempt < 100; attempt++ {
		report, err := svc.Status(ctx, result.Search.ID)
		if err != nil {
			log.Fatalf("Status check failed: %v", err)
		}

		fmt.Printf("   [%3d%%] %s\n", report.Progress.Percentage, report.Status)
		finalStatus = report.Status
		if report.Status != search.AggregateRunning {
			break
		}
		time.Sleep(3 * time.Second)
	}

	set, err := svc.Results(ctx, result.Search.ID)
	if err != nil {
		log.Fatalf("Failed to fetch results: %v", err)
	}

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("📊 FINAL RESULTS")
	fmt.Println(strings.Repeat("=", 50))
	for _, platform := range models.Platforms {
		fmt.Printf("   • %s: %d items\n", platform, len(set.Results[platform]))
	}

	if archiver != nil && finalStatus == search.AggregateCompleted {
		fmt.Println("\n📦 Verifying archive...")
		data, err := archiver.Retrieve(ctx, result.Search.ID)
		if err != nil {
			log.Fatalf("Failed to read back archived snapshot: %v", err)
		}
		fmt.Printf("   • %s: %d bytes\n", archive.BlobName(result.Search.ID), len(data))

		names, err := archiver.List(ctx)
		if err != nil {
			log.Fatalf("Failed to list archived searches: %v", err)
		}
		fmt.Printf("   • container holds %d archived searches\n", len(names))
	}
}
