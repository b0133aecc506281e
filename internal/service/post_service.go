package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/HannaFrangi/Lynx/internal/database"
	"github.com/HannaFrangi/Lynx/internal/middleware"
	"github.com/HannaFrangi/Lynx/internal/models"
	"github.com/HannaFrangi/Lynx/internal/repository"
	"github.com/HannaFrangi/Lynx/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostService provides post lifecycle and engagement business logic.
type PostService struct {
	posts repository.PostRepository
	users repository.UserRepository
	txn   database.TxnRunner
	store storage.ObjectStore
}

// NewPostService returns a new PostService.
func NewPostService(posts repository.PostRepository, users repository.UserRepository, txn database.TxnRunner, store storage.ObjectStore) *PostService {
	return &PostService{posts: posts, users: users, txn: txn, store: store}
}

// CreatePostInput carries the post creation form fields.
type CreatePostInput struct {
	Title      string
	Caption    string
	Visibility string
	Hashtags   []string
	Location   string
	File       *Upload
}

// CreatePost validates the input, uploads the optional media file, and
// creates the post together with the author's posts-list entry.
func (s *PostService) CreatePost(ctx context.Context, authorID primitive.ObjectID, in CreatePostInput) (*models.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Caption = strings.TrimSpace(in.Caption)
	if in.Title == "" {
		return nil, models.NewValidationError("title is required")
	}
	if in.Caption == "" {
		return nil, models.NewValidationError("caption is required")
	}
	if utf8.RuneCountInString(in.Caption) > models.MaxCaptionLen {
		return nil, models.NewValidationError(fmt.Sprintf("caption can't exceed %d characters", models.MaxCaptionLen))
	}
	if in.Visibility == "" {
		in.Visibility = models.VisibilityPublic
	}
	if !models.ValidVisibility(in.Visibility) {
		return nil, models.NewValidationError("visibility must be public, private or followers")
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	var fileURL string
	if in.File != nil {
		ext, err := in.File.ext()
		if err != nil {
			return nil, err
		}
		path := fmt.Sprintf("posts/%s_%d%s", authorID.Hex(), time.Now().Unix(), ext)
		fileURL, err = s.store.Put(ctx, path, in.File.Data, in.File.ContentType)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	post := &models.Post{
		Author:     authorID,
		Title:      in.Title,
		Caption:    in.Caption,
		FileURL:    fileURL,
		Visibility: in.Visibility,
		Hashtags:   in.Hashtags,
		Location:   strings.TrimSpace(in.Location),
	}

	err = s.txn.Atomically(ctx, func(ctx context.Context) error {
		if err := s.posts.Create(ctx, post); err != nil {
			return err
		}
		return s.users.AddPost(ctx, authorID, post.ID)
	})
	if err != nil {
		if fileURL != "" {
			_ = s.store.Delete(ctx, fileURL)
		}
		return nil, err
	}

	summary := author.Summary()
	post.AuthorSummary = &summary
	return post, nil
}

// GetPost returns the post with its author summary resolved.
func (s *PostService) GetPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if author, err := s.users.GetByID(ctx, post.Author); err == nil {
		summary := author.Summary()
		post.AuthorSummary = &summary
	}
	return post, nil
}

// EditPostInput carries the optional post edit fields.
type EditPostInput struct {
	Caption    *string
	Visibility *string
	File       *Upload
}

// EditPost applies a partial edit. Only the author may edit; the edit is
// recorded in editedBy.
func (s *PostService) EditPost(ctx context.Context, editorID, postID primitive.ObjectID, in EditPostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Author != editorID {
		return nil, models.NewForbiddenError("you can only edit your own posts")
	}

	fields := bson.M{}
	if in.Caption != nil {
		caption := strings.TrimSpace(*in.Caption)
		if caption == "" {
			return nil, models.NewValidationError("caption is required")
		}
		if utf8.RuneCountInString(caption) > models.MaxCaptionLen {
			return nil, models.NewValidationError(fmt.Sprintf("caption can't exceed %d characters", models.MaxCaptionLen))
		}
		fields["caption"] = caption
	}
	if in.Visibility != nil {
		if !models.ValidVisibility(*in.Visibility) {
			return nil, models.NewValidationError("visibility must be public, private or followers")
		}
		fields["visibility"] = *in.Visibility
	}
	if in.File != nil {
		ext, err := in.File.ext()
		if err != nil {
			return nil, err
		}
		path := fmt.Sprintf("posts/%s_%d%s", editorID.Hex(), time.Now().Unix(), ext)
		url, err := s.store.Put(ctx, path, in.File.Data, in.File.ContentType)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if post.FileURL != "" && post.FileURL != url {
			_ = s.store.Delete(ctx, post.FileURL)
		}
		fields["fileURL"] = url
	}

	if len(fields) == 0 {
		return nil, models.NewValidationError("nothing to update")
	}
	fields["editedBy"] = editorID

	return s.posts.UpdateFields(ctx, postID, fields)
}

// DeletePost removes the post and its entry on the author's posts list.
// Media cleanup is best-effort after the records are gone.
func (s *PostService) DeletePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.Author != userID {
		return models.NewForbiddenError("you can only delete your own posts")
	}

	err = s.txn.Atomically(ctx, func(ctx context.Context) error {
		if err := s.posts.Delete(ctx, postID); err != nil {
			return err
		}
		return s.users.RemovePost(ctx, userID, postID)
	})
	if err != nil {
		return err
	}

	if post.FileURL != "" {
		_ = s.store.Delete(ctx, post.FileURL)
	}
	return nil
}

// LikeResult reports the outcome of a like toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

// ToggleLike flips the user's like on the post. The post's likes list and
// the user's likedPosts list move together in one transaction.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID primitive.ObjectID) (*LikeResult, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	liked := post.LikedBy(userID)
	err = s.txn.Atomically(ctx, func(ctx context.Context) error {
		if liked {
			if err := s.posts.RemoveLike(ctx, postID, userID); err != nil {
				return err
			}
			return s.users.RemoveLikedPost(ctx, userID, postID)
		}
		if err := s.posts.AddLike(ctx, postID, userID); err != nil {
			return err
		}
		return s.users.AddLikedPost(ctx, userID, postID)
	})
	if err != nil {
		middleware.EngagementOps.WithLabelValues("like", "error").Inc()
		return nil, err
	}

	// The writes invalidated the cache, so this read sees the real likes
	// list, including any concurrent toggles. Fall back to the inferred
	// count if the read fails; the toggle itself already committed.
	count := len(post.Likes)
	if liked {
		count--
	} else {
		count++
	}
	if fresh, err := s.posts.GetByID(ctx, postID); err == nil {
		count = len(fresh.Likes)
	}

	outcome := "liked"
	if liked {
		outcome = "unliked"
	}
	middleware.EngagementOps.WithLabelValues("like", outcome).Inc()

	return &LikeResult{Liked: !liked, LikesCount: count}, nil
}

// ViewResult reports the outcome of a view-tracking call.
type ViewResult struct {
	AlreadyViewed bool `json:"alreadyViewed"`
	Views         int  `json:"views"`
}

// TrackView records that the user has seen the post. Repeat calls are a
// normal outcome and never increment the counter again.
func (s *PostService) TrackView(ctx context.Context, userID, postID primitive.ObjectID) (*ViewResult, error) {
	post, counted, err := s.posts.MarkViewed(ctx, postID, userID)
	if err != nil {
		middleware.EngagementOps.WithLabelValues("view", "error").Inc()
		return nil, err
	}

	outcome := "counted"
	if !counted {
		outcome = "repeat"
	}
	middleware.EngagementOps.WithLabelValues("view", outcome).Inc()

	return &ViewResult{AlreadyViewed: !counted, Views: post.Views}, nil
}
