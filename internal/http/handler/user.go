package handler

import (
	"github.com/gofiber/fiber/v2"

	"linkedapi/internal/http/middleware"
	"linkedapi/internal/service"
)

type userListResponse struct {
	Users []service.UserView `json:"users"`
	pageMeta
}

// Register godoc
// @Summary Register a new account
// @Tags users
// @Accept json
// @Produce json
// @Param body body service.RegisterInput true "account"
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /users/register [post]
func Register(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
		res, err := svc.Register(c.UserContext(), in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// Login godoc
// @Summary Exchange credentials for an access token
// @Tags users
// @Accept json
// @Produce json
// @Param body body service.LoginInput true "credentials"
// @Success 200 {object} service.AuthResult
// @Failure 401 {object} errorPayload
// @Router /users/login [post]
func Login(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.LoginInput
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
		res, err := svc.Login(c.UserContext(), in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.UserView
// @Failure 401 {object} errorPayload
// @Router /users/me [get]
func Me(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Get(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(u)
	}
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "page size (default 10, max 100)"
// @Param offset query int false "rows to skip"
// @Param sort query string false "e.g. lastName,-createdAt"
// @Success 200 {object} userListResponse
// @Failure 400 {object} errorPayload
// @Router /users [get]
func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseListQuery(c, userListFields)
		if err != nil {
			return serviceError(c, err)
		}
		res, err := svc.List(c.UserContext(), q)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(userListResponse{Users: res.Items, pageMeta: newPageMeta(c, q, res.Total)})
	}
}

// GetUser godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "user id"
// @Success 200 {object} service.UserView
// @Failure 404 {object} errorPayload
// @Router /users/{id} [get]
func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return invalidID(c)
		}
		u, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(u)
	}
}

// UpdateUser godoc
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id"
// @Param body body service.UpdateUserInput true "fields to change"
// @Success 200 {object} service.UserView
// @Failure 403 {object} errorPayload
// @Router /users/{id} [put]
func UpdateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return invalidID(c)
		}
		var in service.UpdateUserInput
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
		u, err := svc.Update(c.UserContext(), middleware.UserID(c), id, in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(u)
	}
}

// DeleteUser godoc
// @Summary Delete own account
// @Tags users
// @Security BearerAuth
// @Param id path string true "user id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /users/{id} [delete]
func DeleteUser(svc service.UserService) fiber.Handler {
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

// UploadUserImage godoc
// @Summary Upload avatar
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id"
// @Param image formData file true "image file"
// @Success 200 {object} service.UserView
// @Failure 503 {object} errorPayload
// @Router /users/{id}/image [post]
func UploadUserImage(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return invalidID(c)
		}
		up, f, err := formUpload(c, "image")
		if err != nil {
			return serviceError(c, err)
		}
		if up == nil {
			return fileRequired(c, "image")
		}
		defer f.Close()

		u, err := svc.UploadImage(c.UserContext(), middleware.UserID(c), id, up)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(u)
	}
}
