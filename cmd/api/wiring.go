package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-notify-nosql/internal/config"
	"github.com/go-notify-nosql/internal/infrastructure/dynamo"
	"github.com/go-notify-nosql/internal/infrastructure/fcm"
	"github.com/go-notify-nosql/internal/infrastructure/mongodb"
	s3infra "github.com/go-notify-nosql/internal/infrastructure/s3"
	"github.com/go-notify-nosql/internal/infrastructure/sns"
	transporthttp "github.com/go-notify-nosql/internal/transport/http"
)

type stores struct {
	users         transporthttp.UserRepository
	notifications transporthttp.NotificationRepository
	close         func()
}

// openStores connects the configured document store. DynamoDB tables are
// created on first start; MongoDB gets its indexes.
func openStores(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (*stores, error) {
	switch cfg.StoreBackend {
	case config.BackendDynamo:
		client := dynamo.NewClient(awsCfg, cfg)
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return &stores{
			users:         dynamo.NewUserRepo(client, cfg.DynamoTables.Users),
			notifications: dynamo.NewNotificationRepo(client, cfg.DynamoTables.Notifications),
			close:         func() {},
		}, nil
	case config.BackendMongo:
		client, err := mongodb.NewClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		mongodb.EnsureIndexes(ctx, db)
		return &stores{
			users:         mongodb.NewUserRepo(db),
			notifications: mongodb.NewNotificationRepo(db),
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					slog.Warn("mongo disconnect", "err", err)
				}
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

func newGateway(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (transporthttp.PushGateway, error) {
	switch cfg.PushProvider {
	case config.ProviderFCM:
		gw, err := fcm.NewGateway(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		return gw, nil
	case config.ProviderSNS:
		return sns.NewGateway(awsCfg, cfg.SNSRegion), nil
	default:
		return nil, fmt.Errorf("unknown PUSH_PROVIDER %q", cfg.PushProvider)
	}
}

// newImageResolver presigns profile keys when a bucket is configured and
// passes references through otherwise.
func newImageResolver(cfg *config.Config, awsCfg aws.Config) *s3infra.ImageResolver {
	ttl := time.Duration(cfg.ProfileURLTTLMinutes) * time.Minute
	if cfg.S3BucketName == "" {
		return s3infra.NewImageResolver(nil, "", ttl)
	}
	return s3infra.NewImageResolver(s3infra.NewClient(awsCfg, cfg), cfg.S3BucketName, ttl)
}
