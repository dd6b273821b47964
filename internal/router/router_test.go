package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/eventmate-api/internal/gateway"
	"github.com/iliyamo/eventmate-api/internal/handler"
	"github.com/iliyamo/eventmate-api/internal/model"
	"github.com/iliyamo/eventmate-api/internal/queue"
	"github.com/iliyamo/eventmate-api/internal/service"
	"github.com/iliyamo/eventmate-api/internal/store/memstore"
	"github.com/iliyamo/eventmate-api/internal/utils"
)

const secret = "router-secret"

type noGateway struct{}

func (noGateway) CreateSession(context.Context, gateway.CheckoutRequest) (gateway.Session, error) {
	return gateway.Session{}, nil
}

func (noGateway) RetrieveSession(context.Context, string) (gateway.Session, error) {
	return gateway.Session{}, nil
}

func (noGateway) ParseWebhook([]byte, string) (gateway.Notification, error) {
	return gateway.Notification{}, gateway.ErrInvalidSignature
}

func newServer(t *testing.T) (*echo.Echo, *memstore.Store) {
	t.Helper()
	log := zap.NewNop()
	st := memstore.New()
	pub := queue.Nop{}
	auth := service.NewAuthService(st, service.AuthConfig{JWTSecret: secret, AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4}, log)
	payments := service.NewPaymentService(st, noGateway{}, pub, log, service.PaymentConfig{})
	h := Handlers{
		Auth:         handler.NewAuthHandler(auth, log),
		Users:        handler.NewUserHandler(service.NewUserService(st), log),
		EventTypes:   handler.NewEventTypeHandler(service.NewEventTypeService(st), log),
		Events:       handler.NewEventHandler(service.NewEventService(st), log),
		Participants: handler.NewParticipationHandler(service.NewParticipationService(st, pub, log), log),
		Payments:     handler.NewPaymentHandler(payments, noGateway{}, log),
		Reviews:      handler.NewReviewHandler(service.NewReviewService(st), log),
		Friends:      handler.NewFriendHandler(service.NewFriendService(st), log),
		Admin:        handler.NewAdminHandler(service.NewAdminService(st), service.NewHostApplicationService(st), log),
	}
	e := echo.New()
	RegisterRoutes(e, h, Options{JWTSecret: secret, Log: log})
	return e, st
}

func bearer(t *testing.T, st *memstore.Store, name string, role model.Role) string {
	t.Helper()
	u := model.User{Name: name, Email: name + "@example.com", Role: role, PasswordHash: "x"}
	require.NoError(t, st.Repos().Users.Create(context.Background(), &u))
	tok, err := utils.NewAccessToken(secret, u.ID, u.Email, string(u.Role), 5)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func serve(e *echo.Echo, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	e, _ := newServer(t)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/healthz", "", "").Code)

	rec := serve(e, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	e, _ := newServer(t)

	for _, path := range []string{"/api/events", "/api/event-types", "/api/reviews"} {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, path, "", "").Code, path)
	}
}

func TestRouteAccessByRole(t *testing.T) {
	e, st := newServer(t)
	user := bearer(t, st, "user", model.RoleUser)
	host := bearer(t, st, "host", model.RoleHost)
	admin := bearer(t, st, "admin", model.RoleAdmin)

	cases := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"me without token", http.MethodGet, "/api/auth/me", "", http.StatusUnauthorized},
		{"me with token", http.MethodGet, "/api/auth/me", user, http.StatusOK},
		{"joined events", http.MethodGet, "/api/events/joined", user, http.StatusOK},
		{"hosted as user", http.MethodGet, "/api/events/hosted", user, http.StatusForbidden},
		{"hosted as host", http.MethodGet, "/api/events/hosted", host, http.StatusOK},
		{"create event as user", http.MethodPost, "/api/events", user, http.StatusForbidden},
		{"dashboard as host", http.MethodGet, "/api/admin/dashboard", host, http.StatusForbidden},
		{"dashboard as admin", http.MethodGet, "/api/admin/dashboard", admin, http.StatusOK},
		{"user list as user", http.MethodGet, "/api/users", user, http.StatusForbidden},
		{"user list as admin", http.MethodGet, "/api/users", admin, http.StatusOK},
		{"event type create as host", http.MethodPost, "/api/event-types", host, http.StatusForbidden},
		{"friends overview", http.MethodGet, "/api/friends", user, http.StatusOK},
		{"my payments", http.MethodGet, "/api/payments/mine", user, http.StatusOK},
		{"bad token", http.MethodGet, "/api/auth/me", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, serve(e, tc.method, tc.path, tc.auth, "").Code)
		})
	}
}

func TestEventDetailReportsViewer(t *testing.T) {
	e, st := newServer(t)
	alice := bearer(t, st, "alice", model.RoleUser)
	ctx := context.Background()

	host := model.User{Name: "host", Email: "host@example.com", Role: model.RoleHost, PasswordHash: "x"}
	require.NoError(t, st.Repos().Users.Create(ctx, &host))
	typ := model.EventType{Name: "Meetup"}
	require.NoError(t, st.Repos().EventTypes.Create(ctx, &typ))
	ev := model.Event{
		Name: "Board games", TypeID: typ.ID, DateTime: time.Now().Add(48 * time.Hour), Location: "Cafe",
		MinParticipants: 1, JoiningFee: decimal.Zero, Status: model.EventOpen, CreatedBy: host.ID,
	}
	require.NoError(t, st.Repos().Events.Create(ctx, &ev))
	path := "/api/events/" + ev.ID

	require.Equal(t, http.StatusCreated, serve(e, http.MethodPost, path+"/join", alice, "").Code)

	var got struct {
		Data model.EventDetail `json:"data"`
	}
	rec := serve(e, http.MethodGet, path, alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.Data.Viewer)
	assert.True(t, got.Data.Viewer.Joined)
	assert.False(t, got.Data.Viewer.Saved)

	rec = serve(e, http.MethodGet, path, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"viewer"`)

	// a bad token still reads the event anonymously
	rec = serve(e, http.MethodGet, path, "Bearer nope", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"viewer"`)
}

func TestWebhookIsPublic(t *testing.T) {
	e, _ := newServer(t)

	rec := serve(e, http.MethodPost, "/api/payments/webhook", "", "{}")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid webhook signature")
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	e, _ := newServer(t)

	rec := serve(e, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Not Found"}`, rec.Body.String())
}
