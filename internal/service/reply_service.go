package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/HannaFrangi/Lynx/internal/database"
	"github.com/HannaFrangi/Lynx/internal/models"
	"github.com/HannaFrangi/Lynx/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReplyService provides reply lifecycle business logic. Every mutation
// keeps the parent post's replies list in step with the reply records.
type ReplyService struct {
	replies repository.ReplyRepository
	posts   repository.PostRepository
	txn     database.TxnRunner
}

// NewReplyService returns a new ReplyService.
func NewReplyService(replies repository.ReplyRepository, posts repository.PostRepository, txn database.TxnRunner) *ReplyService {
	return &ReplyService{replies: replies, posts: posts, txn: txn}
}

func validateReplyCaption(caption string) (string, error) {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return "", models.NewValidationError("caption is required")
	}
	if utf8.RuneCountInString(caption) > models.MaxCaptionLen {
		return "", models.NewValidationError(fmt.Sprintf("caption can't exceed %d characters", models.MaxCaptionLen))
	}
	return caption, nil
}

// CreateReply creates a reply under the post and appends its id to the
// post's replies list in one transaction.
func (s *ReplyService) CreateReply(ctx context.Context, authorID, postID primitive.ObjectID, caption string) (*models.Reply, error) {
	caption, err := validateReplyCaption(caption)
	if err != nil {
		return nil, err
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	reply := &models.Reply{
		Author:      authorID,
		Caption:     caption,
		ReplyToPost: postID,
	}
	err = s.txn.Atomically(ctx, func(ctx context.Context) error {
		if err := s.replies.Create(ctx, reply); err != nil {
			return err
		}
		return s.posts.PushReply(ctx, postID, reply.ID)
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// EditReply updates the reply caption. Only the author may edit.
func (s *ReplyService) EditReply(ctx context.Context, userID, replyID primitive.ObjectID, caption string) (*models.Reply, error) {
	caption, err := validateReplyCaption(caption)
	if err != nil {
		return nil, err
	}

	reply, err := s.replies.GetByID(ctx, replyID)
	if err != nil {
		return nil, err
	}
	if reply.Author != userID {
		return nil, models.NewForbiddenError("you can only edit your own replies")
	}

	return s.replies.UpdateCaption(ctx, replyID, caption)
}

// DeleteReply removes the reply. The parent's list entry is pulled first
// so the id never dangles on the post.
func (s *ReplyService) DeleteReply(ctx context.Context, userID, replyID primitive.ObjectID) error {
	reply, err := s.replies.GetByID(ctx, replyID)
	if err != nil {
		return err
	}
	if reply.Author != userID {
		return models.NewForbiddenError("you can only delete your own replies")
	}

	return s.txn.Atomically(ctx, func(ctx context.Context) error {
		if err := s.posts.PullReply(ctx, reply.ReplyToPost, replyID); err != nil {
			// The parent may already be gone; the reply still must go.
			var appErr *models.AppError
			if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
				return err
			}
		}
		return s.replies.Delete(ctx, replyID)
	})
}
