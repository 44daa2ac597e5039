package utils

import (
	"context"
	"fmt"
	"time"

	"storefront/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// retryDelay is the pause between connection attempts.
var retryDelay = 3 * time.Second

// ConnectDB connects to MongoDB, retrying up to cfg.ConnectRetries times.
func ConnectDB(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*mongo.Client, error) {
	attempts := cfg.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		var client *mongo.Client
		client, err = connect(ctx, cfg.URI)
		if err == nil {
			logger.Info("connected to MongoDB", zap.String("database", cfg.Database))
			return client, nil
		}

		logger.Warn("MongoDB connection attempt failed",
			zap.Int("attempt", i),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)
		if i < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return nil, fmt.Errorf("connect to MongoDB: %w", err)
}

func connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
