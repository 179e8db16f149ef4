package handler

import (
	"github.com/gofiber/fiber/v2"

	"linkedapi/internal/http/middleware"
	"linkedapi/internal/service"
)

// CreateComment godoc
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Param body body service.CommentInput true "comment"
// @Success 201 {object} service.PostView
// @Router /posts/{id}/comments [post]
func CreateComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		postID, err := paramID(c, "id")
		if err != nil {
			return invalidID(c)
		}
		var in service.CommentInput
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
		p, err := svc.Create(c.UserContext(), middleware.UserID(c), postID, in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// ListComments godoc
// @Summary List a post's comments
// @Tags comments
// @Produce json
// @Param id path string true "post id"
// @Success 200 {array} service.CommentView
// @Router /posts/{id}/comments [get]
func ListComments(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		postID, err := paramID(c, "id")
		if err != nil {
			return invalidID(c)
		}
		list, err := svc.List(c.UserContext(), postID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(list)
	}
}

// GetComment godoc
// @Summary Get one comment
// @Tags comments
// @Produce json
// @Param id path string true "post id"
// @Param commentId path string true "comment id"
// @Success 200 {object} service.CommentView
// @Failure 404 {object} errorPayload
// @Router /posts/{id}/comments/{commentId} [get]
func GetComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		postID, commentID, err := commentIDs(c)
		if err != nil {
			return invalidID(c)
		}
		cm, err := svc.Get(c.UserContext(), postID, commentID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(cm)
	}
}

// UpdateComment godoc
// @Summary Edit own comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Param commentId path string true "comment id"
// @Param body body service.CommentInput true "comment"
// @Success 200 {object} service.PostView
// @Failure 403 {object} errorPayload
// @Router /posts/{id}/comments/{commentId} [put]
func UpdateComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		postID, commentID, err := commentIDs(c)
		if err != nil {
			return invalidID(c)
		}
		var in service.CommentInput
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
		p, err := svc.Update(c.UserContext(), middleware.UserID(c), postID, commentID, in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}

// DeleteComment godoc
// @Summary Remove own comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Param commentId path string true "comment id"
// @Success 200 {object} service.PostView
// @Failure 403 {object} errorPayload
// @Router /posts/{id}/comments/{commentId} [delete]
func DeleteComment(svc service.CommentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		postID, commentID, err := commentIDs(c)
		if err != nil {
			return invalidID(c)
		}
		p, err := svc.Delete(c.UserContext(), middleware.UserID(c), postID, commentID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}

func commentIDs(c *fiber.Ctx) (string, string, error) {
	postID, err := paramID(c, "id")
	if err != nil {
		return "", "", err
	}
	commentID, err := paramID(c, "commentId")
	if err != nil {
		return "", "", err
	}
	return postID, commentID, nil
}
