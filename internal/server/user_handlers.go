package server

import (
	"github.com/HannaFrangi/Lynx/internal/models"
	"github.com/HannaFrangi/Lynx/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfile handles PUT /api/user/profile. The body is multipart so
// a profile picture can ride along with the text fields; fields that are
// not sent stay untouched.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	update := service.ProfileUpdate{
		Name:     formString(c, "name"),
		Bio:      formString(c, "bio"),
		Location: formString(c, "location"),
		Website:  formString(c, "website"),
	}

	picture, err := formUpload(c, "profilePic")
	if err != nil {
		return models.RespondError(c, err)
	}
	update.Picture = picture

	user, err := s.userService.UpdateProfile(c.Context(), currentUserID(c), update)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// FollowUnfollow handles POST /api/user/follow/:id.
func (s *Server) FollowUnfollow(c *fiber.Ctx) error {
	targetID, err := objectIDParam(c, "id")
	if err != nil {
		return models.RespondError(c, err)
	}

	result, err := s.userService.FollowUnfollow(c.Context(), currentUserID(c), targetID)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":              true,
		"nowFollowing":         result.NowFollowing,
		"viewerFollowingCount": result.ViewerFollowingCount,
		"targetFollowersCount": result.TargetFollowersCount,
	})
}

// GetRelations handles GET /api/user/:id/:kind where kind is "followers"
// or "following".
func (s *Server) GetRelations(c *fiber.Ctx) error {
	userID, err := objectIDParam(c, "id")
	if err != nil {
		return models.RespondError(c, err)
	}

	users, err := s.userService.ListRelations(c.Context(), userID, c.Params("kind"))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"users":   users,
	})
}
