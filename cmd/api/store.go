package main

import (
	"context"
	"fmt"
	"log/slog"

	"linkedapi/internal/config"
	"linkedapi/internal/database"
	"linkedapi/internal/database/migration"
	handlers "linkedapi/internal/http/handler"
	"linkedapi/internal/repository"
	"linkedapi/internal/repository/mongodb"
	"linkedapi/internal/repository/postgres"
)

// store is the datastore selected by DB_DRIVER.
type store struct {
	users  repository.UserRepository
	posts  repository.PostRepository
	pinger handlers.Pinger
	close  func()
}

func openStore(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (*store, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		client, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		db := client.Database(cfg.Mongo.Database)
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to ensure mongo indexes: %w", err)
		}
		return &store{
			users:  mongodb.NewUserMongo(db.Collection(database.UsersCollection)),
			posts:  mongodb.NewPostMongo(db.Collection(database.PostsCollection)),
			pinger: database.MongoPinger{Client: client},
			close:  func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.DriverPostgres:
		// PostgreSQL connection with pooling via database/sql
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			db.Close()
			return nil, err
		}
		return &store{
			users:  postgres.NewUserPostgres(db),
			posts:  postgres.NewPostPostgres(db),
			pinger: db,
			close:  func() { db.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
