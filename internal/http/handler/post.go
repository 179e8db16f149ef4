package handler

import (
	"github.com/gofiber/fiber/v2"

	"linkedapi/internal/http/middleware"
	"linkedapi/internal/service"
)

const postImageField = "postImage"

type postListResponse struct {
	Posts []service.PostView `json:"posts"`
	pageMeta
}

// CreatePost godoc
// @Summary Publish a post
// @Description Accepts JSON, or multipart with a text field and an optional postImage file.
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param body body service.PostInput false "post"
// @Param postImage formData file false "image file"
// @Success 201 {object} service.PostView
// @Failure 400 {object} errorPayload
// @Router /posts [post]
func CreatePost(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.PostInput
		var up *service.Upload
		if isMultipart(c) {
			in.Text = c.FormValue("text")
			u, f, err := formUpload(c, postImageField)
			if err != nil {
				return serviceError(c, err)
			}
			if f != nil {
				defer f.Close()
			}
			up = u
		} else if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}

		p, err := svc.Create(c.UserContext(), middleware.UserID(c), in, up)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// ListPosts godoc
// @Summary List posts
// @Tags posts
// @Produce json
// @Param limit query int false "page size (default 10, max 100)"
// @Param offset query int false "rows to skip"
// @Param sort query string false "e.g. -createdAt"
// @Param user query string false "author id filter"
// @Success 200 {object} postListResponse
// @Failure 400 {object} errorPayload
// @Router /posts [get]
func ListPosts(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseListQuery(c, postListFields)
		if err != nil {
			return serviceError(c, err)
		}
		res, err := svc.List(c.UserContext(), middleware.UserID(c), q)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(postListResponse{Posts: res.Items, pageMeta: newPageMeta(c, q, res.Total)})
	}
}

// GetPost godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "post id"
// @Success 200 {object} service.PostView
// @Failure 404 {object} errorPayload
// @Router /posts/{id} [get]
func GetPost(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return invalidID(c)
		}
		p, err := svc.Get(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}

// UpdatePost godoc
// @Summary Edit own post
// @Tags posts
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Param body body service.UpdatePostInput false "fields to change"
// @Param postImage formData file false "replacement image"
// @Success 200 {object} service.PostView
// @Failure 403 {object} errorPayload
// @Router /posts/{id} [put]
func UpdatePost(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return invalidID(c)
		}
		var in service.UpdatePostInput
		var up *service.Upload
		if isMultipart(c) {
			if text := c.FormValue("text"); text != "" {
				in.Text = &text
			}
			u, f, err := formUpload(c, postImageField)
			if err != nil {
				return serviceError(c, err)
			}
			if f != nil {
				defer f.Close()
			}
			up = u
		} else if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}

		p, err := svc.Update(c.UserContext(), middleware.UserID(c), id, in, up)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}

// DeletePost godoc
// @Summary Delete own post
// @Tags posts
// @Security BearerAuth
// @Param id path string true "post id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /posts/{id} [delete]
func DeletePost(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return invalidID(c)
		}
		if err := svc.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ToggleLike godoc
// @Summary Like or unlike a post
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param id path string true "post id"
// @Success 200 {object} service.PostView
// @Failure 404 {object} errorPayload
// @Router /posts/{id}/likes [put]
func ToggleLike(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return invalidID(c)
		}
		p, err := svc.ToggleLike(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(p)
	}
}
