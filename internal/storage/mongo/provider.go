// Package mongo implements storage.DocumentStore on MongoDB.
package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookstand/internal/storage/config"
)

// Provider owns a MongoDB connection.
type Provider struct {
	client *mongo.Client
	dbName string
}

// NewProvider establishes and ping-verifies a MongoDB connection.
func NewProvider(ctx context.Context, cfg config.Config) (*Provider, error) {
	clientOpts := options.Client().ApplyURI(cfg.URI)
	if clientOpts.ConnectTimeout == nil {
		clientOpts.SetConnectTimeout(cfg.ConnectTimeout.Std())
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &Provider{client: client, dbName: cfg.Database}, nil
}

// Client returns the underlying MongoDB client.
func (p *Provider) Client() *mongo.Client {
	return p.client
}

// Database returns the configured database handle.
func (p *Provider) Database() *mongo.Database {
	return p.client.Database(p.dbName)
}

// Close closes the MongoDB connection.
func (p *Provider) Close(ctx context.Context) error {
	return p.client.Disconnect(ctx)
}
