package server

import (
	"time"

	"github.com/HannaFrangi/Lynx/internal/models"
	"github.com/HannaFrangi/Lynx/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Register handles POST /api/auth/register.
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Register(c.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	if err := s.issueSession(c, user); err != nil {
		return models.RespondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// Login handles POST /api/auth/login. The identifier may be an email or a
// username.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondError(c, models.NewValidationError("Invalid request body"))
	}

	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}

	user, err := s.authService.Login(c.Context(), identifier, req.Password)
	if err != nil {
		return models.RespondError(c, err)
	}

	if err := s.issueSession(c, user); err != nil {
		return models.RespondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// Logout handles POST /api/auth/logout.
func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     authCookie,
		Value:    "",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Secure:   s.isProduction(),
	})
	return c.JSON(fiber.Map{
		"success": true,
		"message": "logged out",
	})
}

// GetUserByID handles GET /api/auth/user/:id, the public profile lookup.
func (s *Server) GetUserByID(c *fiber.Ctx) error {
	id, err := objectIDParam(c, "id")
	if err != nil {
		return models.RespondError(c, err)
	}

	user, err := s.authService.GetUser(c.Context(), id)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// issueSession signs a token for the user and sets it as the auth cookie.
func (s *Server) issueSession(c *fiber.Ctx, user *models.User) error {
	token, err := s.generateToken(user)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     authCookie,
		Value:    token,
		MaxAge:   int(tokenLifetime.Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Secure:   s.isProduction(),
	})
	return nil
}

// generateToken creates a signed JWT for the given user.
func (s *Server) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID.Hex(),
		"username": user.Username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(tokenLifetime).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *Server) isProduction() bool {
	return s.config.Env == "production" || s.config.Env == "prod"
}
