package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/deepsocial/backend/internal/config"
	"github.com/deepsocial/backend/internal/platforms"
	"github.com/deepsocial/backend/internal/provider"
	"github.com/joho/godotenv"
)

func main() {
	fmt.Println("🔍 DeepSocial - Provider Connectivity Test")
	fmt.Println("==========================================")

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.ApifyToken == "" {
		log.Fatal("APIFY_API_TOKEN is not set")
	}

	client := provider.NewClient(cfg.ApifyToken, cfg.ApifyBaseURL, cfg.SyncTimeout)
	keyword := "kubernetes"
	ctx, cancel := context.WithTimeout(context.Background(), cfg.SyncTimeout)
	defer cancel()

	fmt.Printf("\n📡 Testing actors with keyword %q...\n", keyword)
	fmt.Println(strings.Repeat("-", 40))

	// Test each single-platform actor
	testActor(ctx, client, "Twitter", platforms.NewTwitterAdapter(), keyword)
	testActor(ctx, client, "Reddit", platforms.NewRedditAdapter(), keyword)
	testActor(ctx, client, "Instagram", platforms.NewInstagramAdapter(), keyword)
	testActor(ctx, client, "Truth Social", platforms.NewTruthSocialAdapter(), keyword)

	// The shared hashtag-research actor covers TikTok, Facebook and
	// YouTube in one run
	testHashtagActor(ctx, client, keyword)

	fmt.Println("\n✅ Provider connectivity test completed!")
	fmt.Println("\n💡 Next steps:")
	fmt.Println("   • Run the server with: make run")
	fmt.Println("   • Submit a search: POST /search {\"keyword\": \"...\"}")
}

func testActor(ctx context.Context, client *provider.Client, name string, adapter platforms.Adapter, keyword string) {
	fmt.Printf("🔸 Testing %s (%s)... ", name, adapter.Actor())
	start := time.Now()

	items, err := client.RunSync(ctx, adapter.Actor(), adapter.BuildInput(keyword, config.DefaultMaxItems))
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}

	normalized := 0
	for _, raw := range items {
		item, err := adapter.Normalize("connectivity-test", raw)
		if err == nil && item != nil {
			normalized++
		}
	}

	fmt.Printf("✅ SUCCESS (%d items, %d normalized, %s)\n", len(items), normalized, time.Since(start).Round(time.Second))
}

func testHashtagActor(ctx context.Context, client *provider.Client, keyword string) {
	fmt.Printf("🔸 Testing TikTok/Facebook/YouTube (%s)... ", platforms.HashtagActor)
	start := time.Now()

	items, err := client.RunSync(ctx, platforms.HashtagActor, platforms.HashtagInput(keyword))
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}

	buckets := platforms.SplitBySocial(items)
	fmt.Printf("✅ SUCCESS (%d items, %s)\n", len(items), time.Since(start).Round(time.Second))
	for platform, slice := range buckets {
		fmt.Printf("   📝 %s: %d items\n", platform, len(slice))
	}
}
