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

// PostRepository defines persistence operations for posts, including the
// feed queries and the engagement set mutations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error
	MarkViewed(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, bool, error)
	PushReply(ctx context.Context, postID, replyID primitive.ObjectID) error
	PullReply(ctx context.Context, postID, replyID primitive.ObjectID) error
	FindVisible(ctx context.Context, viewerID primitive.ObjectID, following []primitive.ObjectID, skip, limit int) ([]*models.Post, error)
	FindAll(ctx context.Context, skip, limit int) ([]*models.Post, error)
	CountAll(ctx context.Context) (int64, error)
}

type postRepository struct {
	db *mongo.Database
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *mongo.Database) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) col() *mongo.Collection {
	return r.db.Collection(database.PostsCollection)
}

// feedSort orders newest first with _id as a deterministic tiebreak.
var feedSort = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Replies == nil {
		post.Replies = []primitive.ObjectID{}
	}
	if post.ViewedBy == nil {
		post.ViewedBy = []primitive.ObjectID{}
	}
	if post.Visibility == "" {
		post.Visibility = models.VisibilityPublic
	}

	res, err := r.col().InsertOne(ctx, post)
	if err != nil {
		return models.NewInternalError(err)
	}
	post.ID = res.InsertedID.(primitive.ObjectID)
	cache.InvalidateGlobalFeed(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id.Hex())

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		if err := r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return models.NewNotFoundError("Post")
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Post, error) {
	fields["updatedAt"] = time.Now().UTC()

	var post models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}

	r.invalidate(ctx, id)
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Post")
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *postRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return r.updateSet(ctx, postID, "$addToSet", "likes", userID)
}

func (r *postRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	return r.updateSet(ctx, postID, "$pull", "likes", userID)
}

// MarkViewed records a view exactly once per user. The filter excludes posts
// the user already viewed, so the $inc can never double-count; the returned
// bool is true when the view was counted by this call.
func (r *postRepository) MarkViewed(ctx context.Context, postID, userID primitive.ObjectID) (*models.Post, bool, error) {
	var post models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col().FindOneAndUpdate(ctx,
		bson.M{"_id": postID, "viewedBy": bson.M{"$ne": userID}},
		bson.M{
			"$addToSet": bson.M{"viewedBy": userID},
			"$inc":      bson.M{"views": 1},
		},
		opts,
	).Decode(&post)

	if err == nil {
		r.invalidate(ctx, postID)
		return &post, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, models.NewInternalError(err)
	}

	// Either the post does not exist or the user already viewed it.
	existing, getErr := r.GetByID(ctx, postID)
	if getErr != nil {
		return nil, false, getErr
	}
	return existing, false, nil
}

func (r *postRepository) PushReply(ctx context.Context, postID, replyID primitive.ObjectID) error {
	// $push keeps insertion order for the replies list.
	res, err := r.col().UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
		"$push": bson.M{"replies": replyID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Post")
	}
	r.invalidate(ctx, postID)
	return nil
}

func (r *postRepository) PullReply(ctx context.Context, postID, replyID primitive.ObjectID) error {
	return r.updateSet(ctx, postID, "$pull", "replies", replyID)
}

func (r *postRepository) updateSet(ctx context.Context, postID primitive.ObjectID, op, field string, value primitive.ObjectID) error {
	res, err := r.col().UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
		op:     bson.M{field: value},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Post")
	}
	r.invalidate(ctx, postID)
	return nil
}

// FindVisible implements the viewer-scoped feed query: the viewer's own
// posts plus public/followers-visible posts from followed authors. Private
// posts from followed authors never match.
func (r *postRepository) FindVisible(ctx context.Context, viewerID primitive.ObjectID, following []primitive.ObjectID, skip, limit int) ([]*models.Post, error) {
	return r.find(ctx, visibleFilter(viewerID, following), skip, limit)
}

// visibleFilter matches the viewer's own posts with no visibility
// condition, and followed authors' posts only when public or
// followers-only. Followed authors' private posts never match.
func visibleFilter(viewerID primitive.ObjectID, following []primitive.ObjectID) bson.M {
	if following == nil {
		following = []primitive.ObjectID{}
	}
	return bson.M{
		"$or": bson.A{
			bson.M{"author": viewerID},
			bson.M{
				"author":     bson.M{"$in": following},
				"visibility": bson.M{"$in": bson.A{models.VisibilityPublic, models.VisibilityFollowers}},
			},
		},
	}
}

func (r *postRepository) FindAll(ctx context.Context, skip, limit int) ([]*models.Post, error) {
	return r.find(ctx, bson.M{}, skip, limit)
}

func (r *postRepository) find(ctx context.Context, filter bson.M, skip, limit int) ([]*models.Post, error) {
	opts := options.Find().
		SetSort(feedSort).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cur, err := r.col().Find(ctx, filter, opts)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer cur.Close(ctx)

	posts := []*models.Post{}
	for cur.Next(ctx) {
		var p models.Post
		if err := cur.Decode(&p); err != nil {
			return nil, models.NewInternalError(err)
		}
		posts = append(posts, &p)
	}
	if err := cur.Err(); err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountAll(ctx context.Context) (int64, error) {
	total, err := r.col().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

func (r *postRepository) invalidate(ctx context.Context, id primitive.ObjectID) {
	cache.InvalidatePost(ctx, id.Hex())
	cache.InvalidateGlobalFeed(ctx)
}
