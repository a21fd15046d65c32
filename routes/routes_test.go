package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/phillip/evently-go/actions"
	"github.com/phillip/evently-go/auth"
	"github.com/phillip/evently-go/config"
	"github.com/phillip/evently-go/controllers"
	"github.com/phillip/evently-go/models"
	"github.com/phillip/evently-go/revalidate"
	"github.com/phillip/evently-go/store/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	t         *testing.T
	router    *gin.Engine
	store     *memory.Store
	rev       *revalidate.Registry
	sessions  *auth.SessionManager
	organizer models.User
	buyer     models.User
	music     models.Category
}

func newServer(t *testing.T) *server {
	t.Helper()
	cfg := &config.Config{
		CORSOrigins: []string{"http://localhost:3000"},
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			JWTIssuer:     "evently",
			JWTExpiry:     time.Hour,
			WebhookSecret: "hook-secret",
		},
	}
	st := memory.New()
	rev := revalidate.NewRegistry(zerolog.Nop())
	app := &controllers.App{
		Events:      actions.NewEventService(st, st, st, actions.WithRevalidator(rev)),
		Orders:      actions.NewOrderService(st, st, st),
		Users:       actions.NewUserService(st),
		Categories:  actions.NewCategoryService(st),
		Revalidator: rev,
		Ping:        func(context.Context) error { return nil },
		Logger:      zerolog.Nop(),
	}

	ctx := context.Background()
	organizer, err := st.InsertUser(ctx, models.User{ClerkID: "user_ada", Email: "ada@example.com", Username: "ada", FirstName: "Ada", LastName: "Lovelace", Photo: "p"})
	require.NoError(t, err)
	buyer, err := st.InsertUser(ctx, models.User{ClerkID: "user_grace", Email: "grace@example.com", Username: "grace", FirstName: "Grace", Photo: "p"})
	require.NoError(t, err)
	music, err := st.InsertCategory(ctx, models.Category{Name: "Music"})
	require.NoError(t, err)

	return &server{
		t:         t,
		router:    NewRouter(app, cfg),
		store:     st,
		rev:       rev,
		sessions:  auth.NewSessionManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer),
		organizer: organizer,
		buyer:     buyer,
		music:     music,
	}
}

func (s *server) token(u models.User) string {
	tok, err := s.sessions.Generate(u.ID.Hex(), u.ClerkID, "")
	require.NoError(s.t, err)
	return tok
}

func (s *server) do(method, path string, body interface{}, as *models.User, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(*as))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) eventBody(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":         title,
		"description":   "Live music all night",
		"location":      "Main Hall",
		"imageUrl":      "https://img.example.com/jazz.png",
		"startDateTime": "2026-11-01T19:00:00Z",
		"endDateTime":   "2026-11-01T22:00:00Z",
		"price":         "25",
		"isFree":        false,
		"url":           "https://example.com/jazz",
		"categoryId":    s.music.ID.Hex(),
	}
}

func (s *server) createEvent(title string) models.Event {
	w := s.do(http.MethodPost, "/api/events", s.eventBody(title), &s.organizer)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var event models.Event
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &event))
	return event
}

func TestEventLifecycle(t *testing.T) {
	s := newServer(t)
	event := s.createEvent("Jazz Night")
	path := "/api/events/" + event.ID.Hex()

	w := s.do(http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view models.EventView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Equal(t, "Jazz Night", view.Title)
	require.Equal(t, "Ada", view.Organizer.FirstName)
	require.Equal(t, "Music", view.Category.Name)

	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)
	require.Equal(t, http.StatusNotModified, s.do(http.MethodGet, path, nil, nil, "If-None-Match", etag).Code)

	update := s.eventBody("Jazz Night Extended")
	require.Equal(t, http.StatusForbidden, s.do(http.MethodPut, path, update, &s.buyer).Code)
	require.Equal(t, uint64(0), s.rev.Version("/events/"+event.ID.Hex()))

	w = s.do(http.MethodPut, path, update, &s.organizer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, uint64(1), s.rev.Version("/events/"+event.ID.Hex()))
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, path, nil, nil, "If-None-Match", etag).Code)

	w = s.do(http.MethodGet, "/api/revalidations?path=/events/"+event.ID.Hex(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"version":1`)

	require.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, path, nil, &s.buyer).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, path+"?path=/profile", nil, &s.organizer).Code)
	require.Equal(t, uint64(1), s.rev.Version("/profile"))
	require.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, nil, nil).Code)
	require.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, nil, &s.organizer).Code)
}

func TestMutationsRequireSession(t *testing.T) {
	s := newServer(t)

	require.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/events", s.eventBody("Jazz"), nil).Code)
	require.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/me/orders", nil, nil).Code)
	require.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/categories", map[string]string{"name": "Art"}, nil).Code)
}

func TestCreateEventValidationIsBadRequest(t *testing.T) {
	s := newServer(t)
	body := s.eventBody("Jo")

	w := s.do(http.MethodPost, "/api/events", body, &s.organizer)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "title")
}

func TestListingsAndPagination(t *testing.T) {
	s := newServer(t)
	for _, title := range []string{"One", "Two", "Three", "Four"} {
		s.createEvent(title + " night")
	}

	var env actions.Envelope[models.EventView]
	w := s.do(http.MethodGet, "/api/events", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 4)
	require.Equal(t, 1, env.TotalPages)

	w = s.do(http.MethodGet, "/api/users/"+s.organizer.ID.Hex()+"/events?page=2", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	require.Equal(t, 2, env.TotalPages)

	w = s.do(http.MethodGet, "/api/me/events?limit=4", nil, &s.organizer)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 4)

	related := env.Data[0].ID
	w = s.do(http.MethodGet, "/api/events/"+related.Hex()+"/related", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 3)
	for _, v := range env.Data {
		require.NotEqual(t, related, v.ID)
	}

	require.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/events?page=abc", nil, nil).Code)

	w = s.do(http.MethodGet, "/api/users/"+s.organizer.ID.Hex()+"/events?page=100000000000000000&limit=100", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Empty(t, env.Data)
	require.Equal(t, 1, env.TotalPages)
}

func multipartEvent(t *testing.T, s *server, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"title":         "Form Night",
		"description":   "Submitted as a form",
		"location":      "Main Hall",
		"startDateTime": "2026-11-01 19:00",
		"endDateTime":   "2026-11-01 22:00",
		"price":         "10",
		"url":           "https://example.com/form",
		"categoryId":    s.music.ID.Hex(),
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withImage {
		fw, err := mw.CreateFormFile("image", "poster.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCreateEventFromMultipartForm(t *testing.T) {
	s := newServer(t)

	body, contentType := multipartEvent(t, s, false)
	req := httptest.NewRequest(http.MethodPost, "/api/events", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.token(s.organizer))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var event models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))
	require.Equal(t, time.Date(2026, 11, 1, 19, 0, 0, 0, time.UTC), event.StartDateTime.UTC())

	body, contentType = multipartEvent(t, s, true)
	req = httptest.NewRequest(http.MethodPost, "/api/events", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.token(s.organizer))
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "image")
}

func TestOrders(t *testing.T) {
	s := newServer(t)
	event := s.createEvent("Jazz Night")

	w := s.do(http.MethodPost, "/api/orders", map[string]string{
		"eventId":     event.ID.Hex(),
		"totalAmount": "25",
		"stripeId":    "cs_test_1",
	}, &s.buyer)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/me/orders", nil, &s.buyer)
	require.Equal(t, http.StatusOK, w.Code)
	var env actions.Envelope[models.OrderView]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	require.Equal(t, "Jazz Night", env.Data[0].Event.Title)
	require.Equal(t, "Ada", env.Data[0].Event.Organizer.FirstName)
}

func TestCategoriesAndUsers(t *testing.T) {
	s := newServer(t)

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/categories", map[string]string{"name": "Art"}, &s.organizer).Code)
	require.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/categories", map[string]string{"name": "Music"}, &s.organizer).Code)

	w := s.do(http.MethodGet, "/api/categories", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var categories []models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	require.Len(t, categories, 2)
	require.Equal(t, "Art", categories[0].Name)

	w = s.do(http.MethodGet, "/api/users/"+s.organizer.ID.Hex(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "ada@example.com")
}

func TestUserWebhooks(t *testing.T) {
	s := newServer(t)
	user := map[string]string{
		"clerkId":  "user_linus",
		"email":    "linus@example.com",
		"username": "linus",
		"photo":    "https://img.example.com/linus.png",
	}

	require.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/webhooks/users", user, nil).Code)
	w := s.do(http.MethodPost, "/api/webhooks/users", user, nil, "X-Webhook-Secret", "hook-secret")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPatch, "/api/webhooks/users/user_linus", map[string]string{
		"firstName": "Linus",
		"username":  "torvalds",
		"photo":     "https://img.example.com/new.png",
	}, nil, "X-Webhook-Secret", "hook-secret")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), `"username":"torvalds"`)

	w = s.do(http.MethodPatch, "/api/webhooks/users/user_nobody", map[string]string{
		"username": "nobody",
		"photo":    "p",
	}, nil, "X-Webhook-Secret", "hook-secret")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = s.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "evently_http_requests_total"))
}

func TestCORSPreflight(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/events", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
