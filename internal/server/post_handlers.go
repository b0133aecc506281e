package server

import (
	"strings"

	"github.com/HannaFrangi/Lynx/internal/models"
	"github.com/HannaFrangi/Lynx/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/post. The body is multipart: title,
// caption, visibility, hashtags and location as fields, plus an optional
// media file.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	in := service.CreatePostInput{
		Title:      c.FormValue("title"),
		Caption:    c.FormValue("caption"),
		Visibility: c.FormValue("visibility"),
		Location:   c.FormValue("location"),
	}
	if tags := strings.TrimSpace(c.FormValue("hashtags")); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				in.Hashtags = append(in.Hashtags, tag)
			}
		}
	}

	file, err := formUpload(c, "file")
	if err != nil {
		return models.RespondError(c, err)
	}
	in.File = file

	post, err := s.postService.CreatePost(c.Context(), currentUserID(c), in)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

// GetPost handles GET /api/post/:id.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := objectIDParam(c, "id")
	if err != nil {
		return models.RespondError(c, err)
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

// UpdatePost handles PUT /api/post/:id.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := objectIDParam(c, "id")
	if err != nil {
		return models.RespondError(c, err)
	}

	in := service.EditPostInput{
		Caption:    formString(c, "caption"),
		Visibility: formString(c, "visibility"),
	}
	file, err := formUpload(c, "file")
	if err != nil {
		return models.RespondError(c, err)
	}
	in.File = file

	post, err := s.postService.EditPost(c.Context(), currentUserID(c), id, in)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

// DeletePost handles DELETE /api/post/:id.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := objectIDParam(c, "id")
	if err != nil {
		return models.RespondError(c, err)
	}

	if err := s.postService.DeletePost(c.Context(), currentUserID(c), id); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "post deleted",
	})
}

// LikePost handles POST /api/post/:id/like, toggling the caller's like.
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := objectIDParam(c, "id")
	if err != nil {
		return models.RespondError(c, err)
	}

	result, err := s.postService.ToggleLike(c.Context(), currentUserID(c), id)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"liked":      result.Liked,
		"likesCount": result.LikesCount,
	})
}

// ViewPost handles POST /api/post/:id/view. Repeat views are a normal
// 200 and never count twice.
func (s *Server) ViewPost(c *fiber.Ctx) error {
	id, err := objectIDParam(c, "id")
	if err != nil {
		return models.RespondError(c, err)
	}

	result, err := s.postService.TrackView(c.Context(), currentUserID(c), id)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"alreadyViewed": result.AlreadyViewed,
		"views":         result.Views,
	})
}

// CreateReply handles POST /api/post/:id/reply.
func (s *Server) CreateReply(c *fiber.Ctx) error {
	postID, err := objectIDParam(c, "id")
	if err != nil {
		return models.RespondError(c, err)
	}

	var req struct {
		Caption string `json:"caption"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondError(c, models.NewValidationError("Invalid request body"))
	}

	reply, err := s.replyService.CreateReply(c.Context(), currentUserID(c), postID, req.Caption)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"reply":   reply,
	})
}

// UpdateReply handles PUT /api/post/reply/:replyId.
func (s *Server) UpdateReply(c *fiber.Ctx) error {
	replyID, err := objectIDParam(c, "replyId")
	if err != nil {
		return models.RespondError(c, err)
	}

	var req struct {
		Caption string `json:"caption"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondError(c, models.NewValidationError("Invalid request body"))
	}

	reply, err := s.replyService.EditReply(c.Context(), currentUserID(c), replyID, req.Caption)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"reply":   reply,
	})
}

// DeleteReply handles DELETE /api/post/reply/:replyId.
func (s *Server) DeleteReply(c *fiber.Ctx) error {
	replyID, err := objectIDParam(c, "replyId")
	if err != nil {
		return models.RespondError(c, err)
	}

	if err := s.replyService.DeleteReply(c.Context(), currentUserID(c), replyID); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "reply deleted",
	})
}
