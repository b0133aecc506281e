package service

import (
	"context"
	"time"

	"github.com/HannaFrangi/Lynx/internal/cache"
	"github.com/HannaFrangi/Lynx/internal/middleware"
	"github.com/HannaFrangi/Lynx/internal/models"
	"github.com/HannaFrangi/Lynx/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultFeedLimit is the page size applied when the client sends none.
const DefaultFeedLimit = 10

// FeedService assembles the per-viewer and global timelines.
type FeedService struct {
	posts repository.PostRepository
	users repository.UserRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(posts repository.PostRepository, users repository.UserRepository) *FeedService {
	return &FeedService{posts: posts, users: users}
}

// FeedPage is one page of a timeline.
//
// TotalPosts means different things per feed: the user feed reports the
// number of posts on this page, the global feed reports the collection
// count. Both clients depend on their reading.
type FeedPage struct {
	Posts      []*models.Post `json:"posts"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPosts int64          `json:"totalPosts"`
}

// UserFeed returns the viewer-scoped timeline: the viewer's own posts plus
// visible posts from followed authors, newest first.
func (s *FeedService) UserFeed(ctx context.Context, viewerID primitive.ObjectID, page, limit int) (*FeedPage, error) {
	start := time.Now()
	defer func() {
		middleware.FeedAssemblyLatency.WithLabelValues("user").Observe(time.Since(start).Seconds())
	}()

	viewer, err := s.users.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.FindVisible(ctx, viewerID, viewer.Following, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if err := s.attachAuthors(ctx, posts); err != nil {
		return nil, err
	}

	return &FeedPage{
		Posts:      posts,
		Page:       page,
		Limit:      limit,
		TotalPosts: int64(len(posts)),
	}, nil
}

// GlobalFeed returns the unfiltered timeline with the true collection
// count. The default first page is served cache-aside and invalidated on
// any post write.
func (s *FeedService) GlobalFeed(ctx context.Context, page, limit int) (*FeedPage, error) {
	start := time.Now()
	defer func() {
		middleware.FeedAssemblyLatency.WithLabelValues("global").Observe(time.Since(start).Seconds())
	}()

	var result FeedPage
	fetch := func() error {
		posts, err := s.posts.FindAll(ctx, (page-1)*limit, limit)
		if err != nil {
			return err
		}
		if err := s.attachAuthors(ctx, posts); err != nil {
			return err
		}
		total, err := s.posts.CountAll(ctx)
		if err != nil {
			return err
		}
		result = FeedPage{Posts: posts, Page: page, Limit: limit, TotalPosts: total}
		return nil
	}

	if page == 1 && limit == DefaultFeedLimit {
		if err := cache.Aside(ctx, cache.GlobalFeedKey(), &result, cache.GlobalFeedTTL, fetch); err != nil {
			return nil, err
		}
		return &result, nil
	}

	if err := fetch(); err != nil {
		return nil, err
	}
	return &result, nil
}

// attachAuthors resolves author summaries for a page of posts with one
// batched lookup.
func (s *FeedService) attachAuthors(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	seen := make(map[primitive.ObjectID]bool, len(posts))
	ids := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		if !seen[p.Author] {
			seen[p.Author] = true
			ids = append(ids, p.Author)
		}
	}

	byID, err := s.users.SummariesByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range posts {
		if summary, ok := byID[p.Author]; ok {
			sum := summary
			p.AuthorSummary = &sum
		}
	}
	return nil
}
