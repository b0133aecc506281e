package server

import (
	"github.com/HannaFrangi/Lynx/internal/models"
	"github.com/HannaFrangi/Lynx/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UserFeed handles GET /api/feed, the viewer-scoped timeline.
//
// totalPosts in the response counts the posts on this page, not the
// whole timeline; the mobile client uses it to decide whether to fetch
// the next page.
func (s *Server) UserFeed(c *fiber.Ctx) error {
	page := coercePositive(c, "page", 1)
	limit := coercePositive(c, "limit", service.DefaultFeedLimit)

	feed, err := s.feedService.UserFeed(c.Context(), currentUserID(c), page, limit)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"posts":      feed.Posts,
		"page":       feed.Page,
		"limit":      feed.Limit,
		"totalPosts": feed.TotalPosts,
	})
}

// GlobalFeed handles GET /api/feed/all. Unlike the user feed, totalPosts
// here is the full collection count.
func (s *Server) GlobalFeed(c *fiber.Ctx) error {
	page := coercePositive(c, "page", 1)
	limit := coercePositive(c, "limit", service.DefaultFeedLimit)

	feed, err := s.feedService.GlobalFeed(c.Context(), page, limit)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"posts":      feed.Posts,
		"page":       feed.Page,
		"limit":      feed.Limit,
		"totalPosts": feed.TotalPosts,
	})
}
