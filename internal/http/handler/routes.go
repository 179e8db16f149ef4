package handler

import (
	"github.com/gofiber/fiber/v2"

	"linkedapi/internal/http/middleware"
	"linkedapi/internal/service"
)

// Deps bundles what the routes need.
type Deps struct {
	DB          Pinger
	Tokens      middleware.TokenVerifier
	Users       service.UserService
	Experiences service.ExperienceService
	Connections service.ConnectionService
	Posts       service.PostService
	Comments    service.CommentService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", Liveness())

	requireAuth := middleware.RequireAuth(d.Tokens)
	optionalAuth := middleware.OptionalAuth(d.Tokens)

	users := app.Group("/users")
	users.Post("/register", Register(d.Users))
	users.Post("/login", Login(d.Users))
	users.Get("/", ListUsers(d.Users))

	// "me" routes go first so they are not captured by :id.
	users.Get("/me", requireAuth, Me(d.Users))
	users.Post("/me/connections/:userId/accept", requireAuth, AcceptConnection(d.Connections))
	users.Delete("/me/connections/:userId", requireAuth, RemoveConnection(d.Connections))

	users.Get("/:id", GetUser(d.Users))
	users.Put("/:id", requireAuth, UpdateUser(d.Users))
	users.Delete("/:id", requireAuth, DeleteUser(d.Users))
	users.Post("/:id/image", requireAuth, UploadUserImage(d.Users))
	users.Post("/:id/connections", requireAuth, RequestConnection(d.Connections))

	users.Get("/:id/experiences", ListExperiences(d.Experiences))
	users.Post("/:id/experiences", requireAuth, CreateExperience(d.Experiences))
	users.Get("/:id/experiences/:expId", GetExperience(d.Experiences))
	users.Put("/:id/experiences/:expId", requireAuth, UpdateExperience(d.Experiences))
	users.Delete("/:id/experiences/:expId", requireAuth, DeleteExperience(d.Experiences))
	users.Post("/:id/experiences/:expId/image", requireAuth, UploadExperienceImage(d.Experiences))

	posts := app.Group("/posts")
	posts.Get("/", optionalAuth, ListPosts(d.Posts))
	posts.Post("/", requireAuth, CreatePost(d.Posts))
	posts.Get("/:id", optionalAuth, GetPost(d.Posts))
	posts.Put("/:id", requireAuth, UpdatePost(d.Posts))
	posts.Delete("/:id", requireAuth, DeletePost(d.Posts))
	posts.Put("/:id/likes", requireAuth, ToggleLike(d.Posts))

	posts.Get("/:id/comments", ListComments(d.Comments))
	posts.Post("/:id/comments", requireAuth, CreateComment(d.Comments))
	posts.Get("/:id/comments/:commentId", GetComment(d.Comments))
	posts.Put("/:id/comments/:commentId", requireAuth, UpdateComment(d.Comments))
	posts.Delete("/:id/comments/:commentId", requireAuth, DeleteComment(d.Comments))
}
