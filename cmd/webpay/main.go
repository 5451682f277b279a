package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/bivex/webpay-client/internal/application/command"
	"github.com/bivex/webpay-client/internal/infrastructure/config"
	"github.com/bivex/webpay-client/internal/infrastructure/external/payapi"
	"github.com/bivex/webpay-client/internal/infrastructure/logging"
	"github.com/bivex/webpay-client/internal/infrastructure/storage"
	"github.com/bivex/webpay-client/internal/platform"
	"github.com/bivex/webpay-client/internal/poll"
	"github.com/bivex/webpay-client/internal/receipt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logging.Init(cfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Sync()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: webpay <product-id>")
		os.Exit(2)
	}
	productID := os.Args[1]

	logger := logging.WithComponent("webpay")
	logger.Info("Starting purchase",
		zap.String("product_id", productID),
		zap.Bool("fake_products", cfg.FakeProducts),
	)

	ctx := context.Background()

	// Token source, catalog and payment provider
	var tokens command.TokenSource
	var catalog command.ProductCatalog
	var fetcher poll.StatusFetcher
	var provider platform.Provider

	if cfg.FakeProducts {
		fake := payapi.NewFakeClient(logger)
		tokens, catalog, fetcher = fake, fake, fake
		provider = platform.NewFakeProvider(logger)
	} else {
		client := payapi.NewClient(payapi.Config{
			BaseURL:       cfg.APIURLBase,
			VersionPrefix: cfg.APIVersionPrefix,
			Origin:        cfg.AppOrigin,
			Timeout:       cfg.HTTPTimeout,
		}, logger)
		tokens, catalog, fetcher = client, client, client
		provider = platform.NewWebDialog(cfg.APIURLBase+"/dialog/pay", "", logger)
	}

	// Fallback receipt store; no device-native store exists in this environment
	var local storage.KeyValueStore
	if cfg.LocalStorageEnabled {
		if cfg.RedisURL != "" {
			opts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				logger.Fatal("Failed to parse Redis URL", zap.Error(err))
			}
			redisClient := redis.NewClient(opts)
			defer redisClient.Close()

			if err := redisClient.Ping(ctx).Err(); err != nil {
				logger.Fatal("Failed to ping Redis", zap.Error(err))
			}
			local = storage.NewRedisStore(redisClient)
		} else {
			local = storage.NewFileStore(afero.NewOsFs(), cfg.ReceiptStorePath)
		}
	}

	receipts := receipt.NewStore(nil, local, logger)
	invoker := platform.NewInvoker(provider, logger)
	poller := poll.NewPoller(fetcher, logger)

	purchaseCmd := command.NewPurchaseCommand(cfg, tokens, invoker, poller, receipts, catalog, logger)

	info, err := purchaseCmd.Execute(ctx, productID, nil)
	if err != nil {
		logging.CaptureError(err)
		logger.Fatal("Purchase failed", zap.Error(err))
	}

	out, _ := json.MarshalIndent(info, "", "  ")
	fmt.Println(string(out))
}
