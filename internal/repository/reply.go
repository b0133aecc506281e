package repository

import (
	"context"
	"errors"
	"time"

	"github.com/HannaFrangi/Lynx/internal/database"
	"github.com/HannaFrangi/Lynx/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReplyRepository defines persistence operations for replies.
type ReplyRepository interface {
	Create(ctx context.Context, reply *models.Reply) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reply, error)
	UpdateCaption(ctx context.Context, id primitive.ObjectID, caption string) (*models.Reply, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type replyRepository struct {
	db *mongo.Database
}

// NewReplyRepository returns a new ReplyRepository implementation.
func NewReplyRepository(db *mongo.Database) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) col() *mongo.Collection {
	return r.db.Collection(database.RepliesCollection)
}

func (r *replyRepository) Create(ctx context.Context, reply *models.Reply) error {
	now := time.Now().UTC()
	reply.CreatedAt = now
	reply.UpdatedAt = now
	if reply.Likes == nil {
		reply.Likes = []primitive.ObjectID{}
	}

	res, err := r.col().InsertOne(ctx, reply)
	if err != nil {
		return models.NewInternalError(err)
	}
	reply.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *replyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reply, error) {
	var reply models.Reply
	if err := r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&reply); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Reply")
		}
		return nil, models.NewInternalError(err)
	}
	return &reply, nil
}

func (r *replyRepository) UpdateCaption(ctx context.Context, id primitive.ObjectID, caption string) (*models.Reply, error) {
	var reply models.Reply
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"caption": caption, "updatedAt": time.Now().UTC()},
	}, opts).Decode(&reply)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Reply")
		}
		return nil, models.NewInternalError(err)
	}
	return &reply, nil
}

func (r *replyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Reply")
	}
	return nil
}
