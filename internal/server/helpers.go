package server

import (
	"io"
	"mime/multipart"

	"github.com/HannaFrangi/Lynx/internal/models"
	"github.com/HannaFrangi/Lynx/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUserID returns the authenticated user's id set by AuthRequired.
func currentUserID(c *fiber.Ctx) primitive.ObjectID {
	id, _ := c.Locals("userID").(primitive.ObjectID)
	return id
}

// objectIDParam parses the named route parameter as an ObjectID.
func objectIDParam(c *fiber.Ctx, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params(name))
	if err != nil {
		return primitive.NilObjectID, models.NewValidationError("invalid id")
	}
	return id, nil
}

// formUpload reads an optional multipart file field into a service.Upload.
// Returns (nil, nil) when the field is absent.
func formUpload(c *fiber.Ctx, field string) (*service.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return readUpload(fh)
}

func readUpload(fh *multipart.FileHeader) (*service.Upload, error) {
	if fh.Size > service.MaxUploadSize {
		return nil, models.NewValidationError("uploaded file is too large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, service.MaxUploadSize+1))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(data) > service.MaxUploadSize {
		return nil, models.NewValidationError("uploaded file is too large")
	}

	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// formString returns a pointer to the trimmed-nothing raw form value, or
// nil when the field was not sent at all. Distinguishing absent from
// empty keeps partial updates partial.
func formString(c *fiber.Ctx, field string) *string {
	form, err := c.MultipartForm()
	if err == nil && form != nil {
		if vals, ok := form.Value[field]; ok && len(vals) > 0 {
			v := vals[0]
			return &v
		}
		return nil
	}
	// Non-multipart fallback for urlencoded bodies.
	if v := c.FormValue(field, "\x00"); v != "\x00" {
		return &v
	}
	return nil
}

// coercePositive parses a positive integer query value, falling back to
// def on anything non-numeric or non-positive.
func coercePositive(c *fiber.Ctx, name string, def int) int {
	v := c.QueryInt(name, def)
	if v <= 0 {
		return def
	}
	return v
}
