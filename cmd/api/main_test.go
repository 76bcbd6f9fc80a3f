package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-notify-nosql/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, parseLevel("chatty"))
}

func TestOpenStores_UnknownBackend(t *testing.T) {
	_, err := openStores(context.Background(), &config.Config{StoreBackend: "cassandra"}, aws.Config{})
	assert.ErrorContains(t, err, "unknown STORE_BACKEND")
}

func TestNewGateway_UnknownProvider(t *testing.T) {
	_, err := newGateway(context.Background(), &config.Config{PushProvider: "pigeon"}, aws.Config{})
	assert.ErrorContains(t, err, "unknown PUSH_PROVIDER")
}

func TestNewGateway_SNS(t *testing.T) {
	gw, err := newGateway(context.Background(), &config.Config{PushProvider: config.ProviderSNS, SNSRegion: "eu-west-1"}, aws.Config{Region: "us-east-1"})
	assert.NoError(t, err)
	assert.NotNil(t, gw)
}

func TestInitSentry_NoDSN(t *testing.T) {
	assert.NoError(t, initSentry(&config.Config{}))
}
