package handler

import (
	"github.com/gofiber/fiber/v2"

	"linkedapi/internal/http/middleware"
	"linkedapi/internal/service"
)

// CreateExperience godoc
// @Summary Add an experience
// @Tags experiences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id"
// @Param body body service.ExperienceInput true "experience"
// @Success 201 {object} service.UserView
// @Router /users/{id}/experiences [post]
func CreateExperience(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramID(c, "id")
		if err != nil {
			return invalidID(c)
		}
		var in service.ExperienceInput
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
		u, err := svc.Create(c.UserContext(), middleware.UserID(c), userID, in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// ListExperiences godoc
// @Summary List a user's experiences
// @Tags experiences
// @Produce json
// @Param id path string true "user id"
// @Success 200 {array} model.Experience
// @Router /users/{id}/experiences [get]
func ListExperiences(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := paramID(c, "id")
		if err != nil {
			return invalidID(c)
		}
		list, err := svc.List(c.UserContext(), userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(list)
	}
}

// GetExperience godoc
// @Summary Get one experience
// @Tags experiences
// @Produce json
// @Param id path string true "user id"
// @Param expId path string true "experience id"
// @Success 200 {object} model.Experience
// @Failure 404 {object} errorPayload
// @Router /users/{id}/experiences/{expId} [get]
func GetExperience(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, expID, err := experienceIDs(c)
		if err != nil {
			return invalidID(c)
		}
		e, err := svc.Get(c.UserContext(), userID, expID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(e)
	}
}

// UpdateExperience godoc
// @Summary Update an experience
// @Tags experiences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id"
// @Param expId path string true "experience id"
// @Param body body service.UpdateExperienceInput true "fields to change"
// @Success 200 {object} service.UserView
// @Router /users/{id}/experiences/{expId} [put]
func UpdateExperience(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, expID, err := experienceIDs(c)
		if err != nil {
			return invalidID(c)
		}
		var in service.UpdateExperienceInput
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
		u, err := svc.Update(c.UserContext(), middleware.UserID(c), userID, expID, in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(u)
	}
}

// DeleteExperience godoc
// @Summary Remove an experience
// @Tags experiences
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id"
// @Param expId path string true "experience id"
// @Success 200 {object} service.UserView
// @Router /users/{id}/experiences/{expId} [delete]
func DeleteExperience(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, expID, err := experienceIDs(c)
		if err != nil {
			return invalidID(c)
		}
		u, err := svc.Delete(c.UserContext(), middleware.UserID(c), userID, expID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(u)
	}
}

// UploadExperienceImage godoc
// @Summary Upload an experience logo
// @Tags experiences
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "user id"
// @Param expId path string true "experience id"
// @Param image formData file true "image file"
// @Success 200 {object} service.UserView
// @Router /users/{id}/experiences/{expId}/image [post]
func UploadExperienceImage(svc service.ExperienceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, expID, err := experienceIDs(c)
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

		u, err := svc.UploadImage(c.UserContext(), middleware.UserID(c), userID, expID, up)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(u)
	}
}

func experienceIDs(c *fiber.Ctx) (string, string, error) {
	userID, err := paramID(c, "id")
	if err != nil {
		return "", "", err
	}
	expID, err := paramID(c, "expId")
	if err != nil {
		return "", "", err
	}
	return userID, expID, nil
}
