// Package repository implements the data access layer over the document store.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/HannaFrangi/Lynx/internal/cache"
	"github.com/HannaFrangi/Lynx/internal/database"
	"github.com/HannaFrangi/Lynx/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RelationKind selects which side of the follow graph to list.
type RelationKind string

const (
	RelationFollowers RelationKind = "followers"
	RelationFollowing RelationKind = "following"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error)
	AddFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	RemoveFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error
	Relations(ctx context.Context, id primitive.ObjectID, kind RelationKind) ([]models.UserSummary, error)
	AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error
	RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error
	AddPost(ctx context.Context, userID, postID primitive.ObjectID) error
	RemovePost(ctx context.Context, userID, postID primitive.ObjectID) error
	SummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error)
}

type userRepository struct {
	db *mongo.Database
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) col() *mongo.Collection {
	return r.db.Collection(database.UsersCollection)
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id.Hex())

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return models.NewNotFoundError("User")
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// findOne returns (nil, nil) when no document matches.
func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.col().FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.LikedPosts == nil {
		user.LikedPosts = []primitive.ObjectID{}
	}
	if user.Posts == nil {
		user.Posts = []primitive.ObjectID{}
	}

	res, err := r.col().InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("username or email is already in use")
		}
		return models.NewInternalError(err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	fields["updatedAt"] = time.Now().UTC()

	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("User")
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.NewConflictError("username or email is already in use")
		}
		return nil, models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, id.Hex())
	return &user, nil
}

// AddFollow adds targetID to the follower's following list and followerID to
// the target's followers list. Callers wrap it in a transaction.
func (r *userRepository) AddFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	if err := r.updateRelation(ctx, followerID, "$addToSet", "following", targetID); err != nil {
		return err
	}
	return r.updateRelation(ctx, targetID, "$addToSet", "followers", followerID)
}

// RemoveFollow is the inverse of AddFollow.
func (r *userRepository) RemoveFollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	if err := r.updateRelation(ctx, followerID, "$pull", "following", targetID); err != nil {
		return err
	}
	return r.updateRelation(ctx, targetID, "$pull", "followers", followerID)
}

func (r *userRepository) updateRelation(ctx context.Context, id primitive.ObjectID, op, field string, value primitive.ObjectID) error {
	res, err := r.col().UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		op:     bson.M{field: value},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("User")
	}
	cache.InvalidateUser(ctx, id.Hex())
	return nil
}

func (r *userRepository) Relations(ctx context.Context, id primitive.ObjectID, kind RelationKind) ([]models.UserSummary, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := user.Followers
	if kind == RelationFollowing {
		ids = user.Following
	}
	if len(ids) == 0 {
		return []models.UserSummary{}, nil
	}

	byID, err := r.SummariesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Preserve the stored list order.
	summaries := make([]models.UserSummary, 0, len(ids))
	for _, rid := range ids {
		if s, ok := byID[rid]; ok {
			summaries = append(summaries, s)
		}
	}
	return summaries, nil
}

func (r *userRepository) AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.updateRelation(ctx, userID, "$addToSet", "likedPosts", postID)
}

func (r *userRepository) RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.updateRelation(ctx, userID, "$pull", "likedPosts", postID)
}

func (r *userRepository) AddPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.updateRelation(ctx, userID, "$addToSet", "posts", postID)
}

func (r *userRepository) RemovePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.updateRelation(ctx, userID, "$pull", "posts", postID)
}

func (r *userRepository) SummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]models.UserSummary{}, nil
	}

	opts := options.Find().SetProjection(bson.M{
		"name": 1, "username": 1, "profilePicURL": 1,
	})
	cur, err := r.col().Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer cur.Close(ctx)

	byID := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	for cur.Next(ctx) {
		var s models.UserSummary
		if err := cur.Decode(&s); err != nil {
			return nil, models.NewInternalError(err)
		}
		byID[s.ID] = s
	}
	if err := cur.Err(); err != nil {
		return nil, models.NewInternalError(err)
	}
	return byID, nil
}
