package handler

import (
	"github.com/gofiber/fiber/v2"

	"linkedapi/internal/http/middleware"
	"linkedapi/internal/service"
)

// RequestConnection godoc
// @Summary Ask to connect with a user
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path string true "target user id"
// @Success 201 {object} model.ConnectionRequest
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /users/{id}/connections [post]
func RequestConnection(svc service.ConnectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		targetID, err := paramID(c, "id")
		if err != nil {
			return invalidID(c)
		}
		req, err := svc.Request(c.UserContext(), middleware.UserID(c), targetID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(req)
	}
}

// AcceptConnection godoc
// @Summary Accept a pending connection request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param userId path string true "requester id"
// @Success 200 {object} service.UserView
// @Failure 404 {object} errorPayload
// @Router /users/me/connections/{userId}/accept [post]
func AcceptConnection(svc service.ConnectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fromID, err := paramID(c, "userId")
		if err != nil {
			return invalidID(c)
		}
		u, err := svc.Accept(c.UserContext(), middleware.UserID(c), fromID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(u)
	}
}

// RemoveConnection godoc
// @Summary Decline a request or drop a connection
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param userId path string true "other user id"
// @Success 200 {object} service.UserView
// @Failure 404 {object} errorPayload
// @Router /users/me/connections/{userId} [delete]
func RemoveConnection(svc service.ConnectionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		otherID, err := paramID(c, "userId")
		if err != nil {
			return invalidID(c)
		}
		u, err := svc.Remove(c.UserContext(), middleware.UserID(c), otherID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(u)
	}
}
