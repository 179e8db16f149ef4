package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"linkedapi/internal/auth"
	"linkedapi/internal/model"
	"linkedapi/internal/repository"
	"linkedapi/internal/service"
	serviceMocks "linkedapi/internal/service/mocks"
)

// stubVerifier accepts tokens of the form "tok-<userID>".
type stubVerifier struct{}

func (stubVerifier) Verify(token string) (*auth.Claims, error) {
	id, ok := strings.CutPrefix(token, "tok-")
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	c := &auth.Claims{Role: model.DefaultRole}
	c.Subject = id
	return c, nil
}

type testApp struct {
	app         *fiber.App
	users       *serviceMocks.MockUserService
	experiences *serviceMocks.MockExperienceService
	connections *serviceMocks.MockConnectionService
	posts       *serviceMocks.MockPostService
	comments    *serviceMocks.MockCommentService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, _, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ta := &testApp{
		app:         fiber.New(fiber.Config{ErrorHandler: ErrorHandler()}),
		users:       new(serviceMocks.MockUserService),
		experiences: new(serviceMocks.MockExperienceService),
		connections: new(serviceMocks.MockConnectionService),
		posts:       new(serviceMocks.MockPostService),
		comments:    new(serviceMocks.MockCommentService),
	}
	RegisterRoutes(ta.app, Deps{
		DB:          db,
		Tokens:      stubVerifier{},
		Users:       ta.users,
		Experiences: ta.experiences,
		Connections: ta.connections,
		Posts:       ta.posts,
		Comments:    ta.comments,
	})
	return ta
}

func (ta *testApp) do(t *testing.T, req *http.Request, userID string) *http.Response {
	t.Helper()
	if userID != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer tok-"+userID)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func jsonRequest(method, target string, body any) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func multipartRequest(t *testing.T, method, target, field, filename string, values map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range values {
		require.NoError(t, w.WriteField(k, v))
	}
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		part.Write([]byte("\x89PNG\r\n\x1a\n"))
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func userView(id string) *service.UserView {
	return &service.UserView{User: &model.User{ID: id, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Image: model.DefaultAvatar}}
}

func postView(id, author string) *service.PostView {
	return &service.PostView{ID: id, User: &model.UserSummary{ID: author}, Text: "hello", CreatedAt: time.Now()}
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLiveness(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", Liveness())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegister(t *testing.T) {
	ta := newTestApp(t)
	in := service.RegisterInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "password1"}

	t.Run("success", func(t *testing.T) {
		ta.users.On("Register", mock.Anything, in).Return(&service.AuthResult{AccessToken: "jwt"}, nil).Once()

		resp := ta.do(t, jsonRequest(http.MethodPost, "/users/register", in), "")

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var res map[string]string
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "jwt", res["accessToken"])
	})

	t.Run("email taken", func(t *testing.T) {
		ta.users.On("Register", mock.Anything, in).Return(nil, service.ErrEmailTaken).Once()

		resp := ta.do(t, jsonRequest(http.MethodPost, "/users/register", in), "")

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "EMAIL_TAKEN", decodeError(t, resp).Error.Code)
	})

	t.Run("validation failed", func(t *testing.T) {
		verr := &service.ValidationError{Fields: []service.FieldError{{Field: "email", Message: "must be a valid email"}}}
		ta.users.On("Register", mock.Anything, service.RegisterInput{Email: "nope"}).Return(nil, verr).Once()

		resp := ta.do(t, jsonRequest(http.MethodPost, "/users/register", map[string]string{"email": "nope"}), "")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_FAILED", res.Error.Code)
		require.Len(t, res.Error.Details, 1)
		assert.Equal(t, "email", res.Error.Details[0].Field)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users/register", strings.NewReader("{"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp := ta.do(t, req, "")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, resp).Error.Code)
	})
	ta.users.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	ta := newTestApp(t)
	in := service.LoginInput{Email: "ada@example.com", Password: "wrong"}
	ta.users.On("Login", mock.Anything, in).Return(nil, service.ErrInvalidCredentials).Once()

	resp := ta.do(t, jsonRequest(http.MethodPost, "/users/login", in), "")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, resp).Error.Code)
	ta.users.AssertExpectations(t)
}

func TestMe(t *testing.T) {
	ta := newTestApp(t)
	id := uuid.NewString()

	t.Run("requires auth", func(t *testing.T) {
		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/users/me", nil), "")

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")

		resp := ta.do(t, req, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("success", func(t *testing.T) {
		ta.users.On("Get", mock.Anything, id).Return(userView(id), nil).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/users/me", nil), id)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res map[string]any
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, id, res["_id"])
		assert.NotContains(t, res, "password")
	})
	ta.users.AssertExpectations(t)
}

func TestListUsers(t *testing.T) {
	ta := newTestApp(t)

	t.Run("paged with links", func(t *testing.T) {
		items := []service.UserView{*userView(uuid.NewString())}
		ta.users.On("List", mock.Anything, mock.MatchedBy(func(q repository.ListQuery) bool {
			return q.Limit == 1 && q.Offset == 1 && len(q.Filter) == 1 && q.Filter[0].Field == "title"
		})).Return(&service.UserListResult{Items: items, Total: 3}, nil).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/users?limit=1&offset=1&title=CEO", nil), "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res struct {
			Users      []map[string]any `json:"users"`
			Total      int              `json:"total"`
			TotalPages int              `json:"totalPages"`
			Links      pageLinks        `json:"links"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Len(t, res.Users, 1)
		assert.Equal(t, 3, res.Total)
		assert.Equal(t, 3, res.TotalPages)
		assert.Contains(t, res.Links.Next, "offset=2")
		assert.Contains(t, res.Links.Prev, "offset=0")
		assert.Contains(t, res.Links.Last, "title=CEO")
	})

	t.Run("unknown sort field", func(t *testing.T) {
		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/users?sort=password", nil), "")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_QUERY", decodeError(t, resp).Error.Code)
	})
	ta.users.AssertExpectations(t)
}

func TestGetUser(t *testing.T) {
	ta := newTestApp(t)

	t.Run("invalid id", func(t *testing.T) {
		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/users/not-a-uuid", nil), "")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		ta.users.On("Get", mock.Anything, id).Return(nil, fmt.Errorf("user %w", service.ErrNotFound)).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/users/"+id, nil), "")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		assert.Equal(t, "user not found", res.Error.Message)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.NewString()
		ta.users.On("Get", mock.Anything, id).Return(nil, errors.New("db down")).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/users/"+id, nil), "")

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", res.Error.Code)
		assert.NotContains(t, res.Error.Message, "db down")
	})
	ta.users.AssertExpectations(t)
}

func TestUpdateAndDeleteUser(t *testing.T) {
	ta := newTestApp(t)
	me, other := uuid.NewString(), uuid.NewString()
	title := "CTO"

	t.Run("update forbidden", func(t *testing.T) {
		ta.users.On("Update", mock.Anything, me, other, service.UpdateUserInput{Title: &title}).Return(nil, service.ErrForbidden).Once()

		resp := ta.do(t, jsonRequest(http.MethodPut, "/users/"+other, map[string]string{"title": title}), me)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Error.Code)
	})

	t.Run("update conflict", func(t *testing.T) {
		ta.users.On("Update", mock.Anything, me, me, service.UpdateUserInput{Title: &title}).Return(nil, service.ErrConflict).Once()

		resp := ta.do(t, jsonRequest(http.MethodPut, "/users/"+me, map[string]string{"title": title}), me)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "CONFLICT", decodeError(t, resp).Error.Code)
	})

	t.Run("delete requires auth", func(t *testing.T) {
		resp := ta.do(t, httptest.NewRequest(http.MethodDelete, "/users/"+me, nil), "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		ta.users.On("Delete", mock.Anything, me, me).Return(nil).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodDelete, "/users/"+me, nil), me)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
	ta.users.AssertExpectations(t)
}

func TestUploadUserImage(t *testing.T) {
	ta := newTestApp(t)
	me := uuid.NewString()

	t.Run("file required", func(t *testing.T) {
		resp := ta.do(t, multipartRequest(t, http.MethodPost, "/users/"+me+"/image", "", "", nil), me)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_FAILED", res.Error.Code)
		assert.Equal(t, "image", res.Error.Details[0].Field)
	})

	t.Run("media unavailable", func(t *testing.T) {
		ta.users.On("UploadImage", mock.Anything, me, me, mock.MatchedBy(func(up *service.Upload) bool {
			return up != nil && up.Filename == "me.png"
		})).Return(nil, service.ErrMediaUnavailable).Once()

		resp := ta.do(t, multipartRequest(t, http.MethodPost, "/users/"+me+"/image", "image", "me.png", nil), me)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "MEDIA_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})

	t.Run("not an image", func(t *testing.T) {
		ta.users.On("UploadImage", mock.Anything, me, me, mock.Anything).Return(nil, service.ErrNotImage).Once()

		resp := ta.do(t, multipartRequest(t, http.MethodPost, "/users/"+me+"/image", "image", "me.txt", nil), me)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", decodeError(t, resp).Error.Code)
	})
	ta.users.AssertExpectations(t)
}

func TestExperienceRoutes(t *testing.T) {
	ta := newTestApp(t)
	me, expID := uuid.NewString(), uuid.NewString()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("create", func(t *testing.T) {
		in := service.ExperienceInput{Role: "CTO", Company: "Acme", StartDate: start}
		ta.experiences.On("Create", mock.Anything, me, me, in).Return(userView(me), nil).Once()

		resp := ta.do(t, jsonRequest(http.MethodPost, "/users/"+me+"/experiences", in), me)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		list := []model.Experience{{ID: expID, Role: "CTO", Company: "Acme", StartDate: start}}
		ta.experiences.On("List", mock.Anything, me).Return(list, nil).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/users/"+me+"/experiences", nil), "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res []model.Experience
		json.NewDecoder(resp.Body).Decode(&res)
		require.Len(t, res, 1)
		assert.Equal(t, expID, res[0].ID)
	})

	t.Run("get missing", func(t *testing.T) {
		ta.experiences.On("Get", mock.Anything, me, expID).Return(nil, fmt.Errorf("experience %w", service.ErrNotFound)).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/users/"+me+"/experiences/"+expID, nil), "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("update with null end date", func(t *testing.T) {
		in := service.UpdateExperienceInput{EndDate: service.NullableTime{Set: true}}
		ta.experiences.On("Update", mock.Anything, me, me, expID, in).Return(userView(me), nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/users/"+me+"/experiences/"+expID, strings.NewReader(`{"endDate":null}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp := ta.do(t, req, me)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("invalid experience id", func(t *testing.T) {
		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/users/"+me+"/experiences/abc", nil), "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		ta.experiences.On("Delete", mock.Anything, me, me, expID).Return(userView(me), nil).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodDelete, "/users/"+me+"/experiences/"+expID, nil), me)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("upload image", func(t *testing.T) {
		ta.experiences.On("UploadImage", mock.Anything, me, me, expID, mock.Anything).Return(userView(me), nil).Once()

		resp := ta.do(t, multipartRequest(t, http.MethodPost, "/users/"+me+"/experiences/"+expID+"/image", "image", "logo.png", nil), me)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
	ta.experiences.AssertExpectations(t)
}

func TestConnectionRoutes(t *testing.T) {
	ta := newTestApp(t)
	me, other := uuid.NewString(), uuid.NewString()

	t.Run("request", func(t *testing.T) {
		req := &model.ConnectionRequest{ID: uuid.NewString(), User: me, CreatedAt: time.Now()}
		ta.connections.On("Request", mock.Anything, me, other).Return(req, nil).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodPost, "/users/"+other+"/connections", nil), me)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var res model.ConnectionRequest
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, me, res.User)
	})

	t.Run("self", func(t *testing.T) {
		ta.connections.On("Request", mock.Anything, me, me).Return(nil, service.ErrSelfConnection).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodPost, "/users/"+me+"/connections", nil), me)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("already connected", func(t *testing.T) {
		ta.connections.On("Request", mock.Anything, me, other).Return(nil, service.ErrAlreadyConnected).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodPost, "/users/"+other+"/connections", nil), me)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "ALREADY_CONNECTED", decodeError(t, resp).Error.Code)
	})

	t.Run("accept is not captured by the id route", func(t *testing.T) {
		ta.connections.On("Accept", mock.Anything, me, other).Return(userView(me), nil).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodPost, "/users/me/connections/"+other+"/accept", nil), me)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("remove", func(t *testing.T) {
		ta.connections.On("Remove", mock.Anything, me, other).Return(userView(me), nil).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodDelete, "/users/me/connections/"+other, nil), me)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
	ta.connections.AssertExpectations(t)
}

func TestCreatePost(t *testing.T) {
	ta := newTestApp(t)
	me, postID := uuid.NewString(), uuid.NewString()

	t.Run("json", func(t *testing.T) {
		ta.posts.On("Create", mock.Anything, me, service.PostInput{Text: "hello"}, (*service.Upload)(nil)).
			Return(postView(postID, me), nil).Once()

		resp := ta.do(t, jsonRequest(http.MethodPost, "/posts", map[string]string{"text": "hello"}), me)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var res map[string]any
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, postID, res["_id"])
	})

	t.Run("multipart with image", func(t *testing.T) {
		ta.posts.On("Create", mock.Anything, me, service.PostInput{Text: "pic"}, mock.MatchedBy(func(up *service.Upload) bool {
			return up != nil && up.Filename == "pic.png" && up.Size > 0
		})).Return(postView(postID, me), nil).Once()

		req := multipartRequest(t, http.MethodPost, "/posts", postImageField, "pic.png", map[string]string{"text": "pic"})
		resp := ta.do(t, req, me)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("multipart without image", func(t *testing.T) {
		ta.posts.On("Create", mock.Anything, me, service.PostInput{Text: "plain"}, (*service.Upload)(nil)).
			Return(postView(postID, me), nil).Once()

		req := multipartRequest(t, http.MethodPost, "/posts", "", "", map[string]string{"text": "plain"})
		resp := ta.do(t, req, me)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("anonymous", func(t *testing.T) {
		resp := ta.do(t, jsonRequest(http.MethodPost, "/posts", map[string]string{"text": "hello"}), "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
	ta.posts.AssertExpectations(t)
}

func TestListPosts(t *testing.T) {
	ta := newTestApp(t)
	me := uuid.NewString()
	page := &service.PostListResult{Items: []service.PostView{*postView(uuid.NewString(), me)}, Total: 1}

	t.Run("anonymous viewer", func(t *testing.T) {
		ta.posts.On("List", mock.Anything, "", mock.Anything).Return(page, nil).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/posts", nil), "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res struct {
			Posts []map[string]any `json:"posts"`
			Total int              `json:"total"`
			Links pageLinks        `json:"links"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Len(t, res.Posts, 1)
		assert.Equal(t, 1, res.Total)
		assert.Empty(t, res.Links.Next)
	})

	t.Run("authenticated viewer with filter", func(t *testing.T) {
		ta.posts.On("List", mock.Anything, me, mock.MatchedBy(func(q repository.ListQuery) bool {
			return len(q.Filter) == 1 && q.Filter[0].Field == "user" && q.Filter[0].Value == me
		})).Return(page, nil).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/posts?user="+me, nil), me)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bad regex", func(t *testing.T) {
		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/posts?text=/(unclosed/", nil), "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
	ta.posts.AssertExpectations(t)
}

func TestPostByID(t *testing.T) {
	ta := newTestApp(t)
	me, postID := uuid.NewString(), uuid.NewString()
	text := "edited"

	t.Run("get", func(t *testing.T) {
		ta.posts.On("Get", mock.Anything, "", postID).Return(postView(postID, me), nil).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/posts/"+postID, nil), "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("update", func(t *testing.T) {
		ta.posts.On("Update", mock.Anything, me, postID, service.UpdatePostInput{Text: &text}, (*service.Upload)(nil)).
			Return(postView(postID, me), nil).Once()

		resp := ta.do(t, jsonRequest(http.MethodPut, "/posts/"+postID, map[string]string{"text": text}), me)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("delete forbidden", func(t *testing.T) {
		ta.posts.On("Delete", mock.Anything, me, postID).Return(service.ErrForbidden).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodDelete, "/posts/"+postID, nil), me)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("toggle like", func(t *testing.T) {
		liked := postView(postID, me)
		liked.LikeCount, liked.LikedByMe = 1, true
		ta.posts.On("ToggleLike", mock.Anything, me, postID).Return(liked, nil).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodPut, "/posts/"+postID+"/likes", nil), me)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res service.PostView
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, 1, res.LikeCount)
		assert.True(t, res.LikedByMe)
	})
	ta.posts.AssertExpectations(t)
}

func TestCommentRoutes(t *testing.T) {
	ta := newTestApp(t)
	me, postID, commentID := uuid.NewString(), uuid.NewString(), uuid.NewString()

	t.Run("create", func(t *testing.T) {
		ta.comments.On("Create", mock.Anything, me, postID, service.CommentInput{Text: "nice"}).Return(postView(postID, me), nil).Once()

		resp := ta.do(t, jsonRequest(http.MethodPost, "/posts/"+postID+"/comments", map[string]string{"text": "nice"}), me)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		ta.comments.On("List", mock.Anything, postID).Return([]service.CommentView{{ID: commentID, Text: "nice"}}, nil).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/posts/"+postID+"/comments", nil), "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res []map[string]any
		json.NewDecoder(resp.Body).Decode(&res)
		require.Len(t, res, 1)
		assert.Nil(t, res[0]["user"])
	})

	t.Run("get missing", func(t *testing.T) {
		ta.comments.On("Get", mock.Anything, postID, commentID).Return(nil, fmt.Errorf("comment %w", service.ErrNotFound)).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/posts/"+postID+"/comments/"+commentID, nil), "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("update by non-author", func(t *testing.T) {
		ta.comments.On("Update", mock.Anything, me, postID, commentID, service.CommentInput{Text: "x"}).Return(nil, service.ErrForbidden).Once()

		resp := ta.do(t, jsonRequest(http.MethodPut, "/posts/"+postID+"/comments/"+commentID, map[string]string{"text": "x"}), me)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		ta.comments.On("Delete", mock.Anything, me, postID, commentID).Return(postView(postID, me), nil).Once()

		resp := ta.do(t, httptest.NewRequest(http.MethodDelete, "/posts/"+postID+"/comments/"+commentID, nil), me)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
	ta.comments.AssertExpectations(t)
}

func TestRouting(t *testing.T) {
	ta := newTestApp(t)

	t.Run("not found route", func(t *testing.T) {
		resp := ta.do(t, httptest.NewRequest(http.MethodGet, "/non-existent", nil), "")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		resp := ta.do(t, httptest.NewRequest(http.MethodPost, "/health", nil), "")

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})
}
