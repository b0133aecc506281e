// Package database handles the MongoDB connection, index creation and
// cross-document transactions.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/HannaFrangi/Lynx/internal/config"
	"github.com/HannaFrangi/Lynx/internal/middleware"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names used across the repositories.
const (
	UsersCollection   = "users"
	PostsCollection   = "posts"
	RepliesCollection = "replies"
)

// Mongo bundles the client and the application database handle.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect opens a MongoDB connection using the provided configuration,
// pings the server and ensures the indexes the repositories rely on.
func Connect(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(25).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	m := &Mongo{Client: client, DB: client.Database(cfg.MongoDBName)}
	if err := m.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	middleware.Logger.Info("MongoDB connected successfully")
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	userIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := m.DB.Collection(UsersCollection).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return err
	}

	postIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
	}
	if _, err := m.DB.Collection(PostsCollection).Indexes().CreateMany(ctx, postIndexes); err != nil {
		return err
	}

	replyIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "replyToPost", Value: 1}}},
	}
	_, err := m.DB.Collection(RepliesCollection).Indexes().CreateMany(ctx, replyIndexes)
	return err
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// TxnRunner runs a function such that either all writes inside it are
// observed or none are. Services use it for every mutation that touches
// two related documents (follow graph, like mirroring, reply lists).
type TxnRunner interface {
	Atomically(ctx context.Context, fn func(ctx context.Context) error) error
}

// Atomically runs fn inside a MongoDB multi-document transaction. The
// session is carried through the context, so repository calls made with
// the callback's context participate in the transaction automatically.
//
// Standalone mongod deployments do not support transactions; in that case
// the writes are applied sequentially, which preserves the original
// (non-transactional) behavior instead of failing the request.
func (m *Mongo) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.Client.StartSession()
	if err != nil {
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && transactionsUnsupported(err) {
		return fn(ctx)
	}
	return err
}

func transactionsUnsupported(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Transaction numbers are only allowed") ||
		strings.Contains(msg, "IllegalOperation")
}
