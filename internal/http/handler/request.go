package handler

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"linkedapi/internal/service"
)

var errInvalidID = errors.New("invalid id")

// paramID reads a uuid path parameter.
func paramID(c *fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", errInvalidID
	}
	return id, nil
}

func invalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
}

func invalidBody(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// formUpload opens the multipart file under field. It returns a nil upload
// when the request carries no such file. The caller closes the returned file.
func formUpload(c *fiber.Ctx, field string) (*service.Upload, multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &service.Upload{Reader: f, Filename: fh.Filename, Size: fh.Size}, f, nil
}

func fileRequired(c *fiber.Ctx, field string) error {
	return writeErrorDetails(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "validation failed",
		[]service.FieldError{{Field: field, Message: "is required"}})
}
