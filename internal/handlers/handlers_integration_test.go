package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lostfound/internal/database"
	"lostfound/internal/handlers"
	"lostfound/internal/models"
	"lostfound/internal/repositories"
	"lostfound/internal/server"
	"lostfound/internal/services"
	"lostfound/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "integration_test_secret"

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

type testApp struct {
	app   *fiber.App
	store *repositories.GORMStore
	auth  *services.AuthService
}

// setupApp builds the full HTTP stack over a fresh in-memory database and
// seeds an admin account.
func setupApp(t *testing.T) *testApp {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	store := repositories.NewGORMStore(db)
	logg := logger.Nop()

	authService := services.NewAuthService(store.Users(), jwtSecret, time.Hour, logg)
	leaderboard := services.NewLeaderboardService(store.Users(), nil, 0, logg)
	items := services.NewItemService(store.Items(), store.Users(), nil, logg, nil)
	claims := services.NewClaimService(store.Claims(), store.Items(), store.Users(), nil, logg, nil)

	app := server.New(server.Deps{
		Logger:       logg,
		CORSOrigins:  "*",
		BodyLimit:    2 << 20,
		Auth:         authService,
		Items:        items,
		Claims:       claims,
		Verification: services.NewVerificationService(store, leaderboard, nil, logg, nil),
		Leaderboard:  leaderboard,
		Uploads:      services.NewUploadService(t.TempDir(), 1<<20, logg),
	})

	_, _, err = authService.EnsureAdmin(context.Background(), "Admin", "admin@college.edu", "admin1234")
	require.NoError(t, err)
	return &testApp{app: app, store: store, auth: authService}
}

func (ta *testApp) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type authData struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (ta *testApp) signup(t *testing.T, name string) authData {
	t.Helper()
	status, env := ta.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":       name,
		"email":      name + "@college.edu",
		"password":   "password123",
		"department": "CS",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	return decode[authData](t, env.Data)
}

func (ta *testApp) login(t *testing.T, email, password string) string {
	t.Helper()
	status, env := ta.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, status, env.Message)
	return decode[authData](t, env.Data).Token
}

func TestAuthSignupLoginAndProfile(t *testing.T) {
	ta := setupApp(t)

	ana := ta.signup(t, "ana")
	assert.NotEmpty(t, ana.Token)
	assert.Equal(t, "ana@college.edu", ana.User.Email)
	assert.Equal(t, models.RoleUser, ana.User.Role)

	status, env := ta.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Ana again", "email": "ANA@college.edu", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)

	status, env = ta.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Errors, "name")
	assert.Contains(t, env.Errors, "password")

	status, _ = ta.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ana@college.edu", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)

	token := ta.login(t, "ana@college.edu", "password123")
	claims, err := ta.auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, ana.User.ID, claims.UserID)

	status, env = ta.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	raw := string(env.Data)
	assert.NotContains(t, raw, "password")
	profile := decode[models.User](t, env.Data)
	assert.Equal(t, "ana", profile.Name)

	status, env = ta.do(t, http.MethodPut, "/api/auth/profile", token, map[string]string{"year": "3rd"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "3rd", decode[models.User](t, env.Data).Year)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ta := setupApp(t)
	user := ta.signup(t, "bo")

	status, env := ta.do(t, http.MethodGet, "/api/items", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = ta.do(t, http.MethodGet, "/api/items", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = ta.do(t, http.MethodGet, "/api/admin/claims/pending", user.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Admin access required", env.Message)

	status, env = ta.do(t, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Route not found", env.Message)

	status, _ = ta.do(t, http.MethodGet, "/api/leaderboard", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestClaimVerificationFlow(t *testing.T) {
	ta := setupApp(t)
	adminToken := ta.login(t, "admin@college.edu", "admin1234")
	finder := ta.signup(t, "alice")
	claimant := ta.signup(t, "bob")

	// finder reports a found wallet
	status, env := ta.do(t, http.MethodPost, "/api/items", finder.Token, map[string]any{
		"title":       "Black Wallet",
		"description": "Leather wallet found in the cafeteria",
		"category":    "Accessories",
		"metadata":    map[string]any{"cards": 3},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	item := decode[models.Item](t, env.Data)
	assert.Equal(t, models.ItemStatusSubmitted, item.Status)
	assert.False(t, item.Priority)

	// not public yet
	status, env = ta.do(t, http.MethodGet, "/api/items", claimant.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]services.ItemView](t, env.Data))

	status, env = ta.do(t, http.MethodGet, "/api/admin/found/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]services.ItemView](t, env.Data), 1)

	status, env = ta.do(t, http.MethodPut, "/api/admin/found/"+item.ID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, models.ItemStatusApproved, decode[models.Item](t, env.Data).Status)

	status, env = ta.do(t, http.MethodGet, "/api/items?category=Accessories", claimant.Token, nil)
	require.Equal(t, http.StatusOK, status)
	listed := decode[[]services.ItemView](t, env.Data)
	require.Len(t, listed, 1)
	assert.Empty(t, listed[0].Metadata)

	// claimant files a claim
	status, env = ta.do(t, http.MethodPost, "/api/claims", claimant.Token, map[string]string{
		"itemId":      item.ID,
		"identifiers": "has student ID card inside",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	claim := decode[models.ClaimDetail](t, env.Data)
	assert.Equal(t, models.ClaimStatusPending, claim.Status)

	status, _ = ta.do(t, http.MethodGet, "/api/claims/"+claim.ID, finder.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = ta.do(t, http.MethodGet, "/api/claims/my", claimant.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.ClaimDetail](t, env.Data), 1)

	status, env = ta.do(t, http.MethodPut, "/api/admin/claims/"+claim.ID+"/verify", adminToken, map[string]string{"action": "maybe"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Errors, "action")

	status, env = ta.do(t, http.MethodPut, "/api/admin/claims/"+claim.ID+"/verify", adminToken, map[string]string{"action": "approve"})
	require.Equal(t, http.StatusOK, status, env.Message)
	verified := decode[models.ClaimDetail](t, env.Data)
	assert.Equal(t, models.ClaimStatusApproved, verified.Status)
	require.NotNil(t, verified.Item)
	assert.Equal(t, models.ItemStatusReturned, verified.Item.Status)
	require.NotNil(t, verified.Claimant)
	assert.Equal(t, claimant.User.ID, verified.Claimant.ID)

	// decided claims stay decided
	status, _ = ta.do(t, http.MethodPut, "/api/admin/claims/"+claim.ID+"/verify", adminToken, map[string]string{"action": "reject"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = ta.do(t, http.MethodPut, "/api/admin/claims/missing/verify", adminToken, map[string]string{"action": "approve"})
	assert.Equal(t, http.StatusNotFound, status)

	status, env = ta.do(t, http.MethodGet, "/api/leaderboard?limit=1", "", nil)
	require.Equal(t, http.StatusOK, status)
	board := decode[[]services.LeaderboardEntry](t, env.Data)
	require.Len(t, board, 1)
	assert.Equal(t, finder.User.ID, board[0].ID)
	assert.Equal(t, 10, board[0].Points)
	assert.Equal(t, models.Badges{models.HelperBadge}, board[0].Badges)

	status, env = ta.do(t, http.MethodGet, "/api/admin/leaderboard", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]services.LeaderboardEntry](t, env.Data), 2)

	// returned items only take metadata edits
	status, _ = ta.do(t, http.MethodPut, "/api/items/"+item.ID, finder.Token, map[string]string{"title": "Changed"})
	assert.Equal(t, http.StatusConflict, status)
}

func TestItemOwnership(t *testing.T) {
	ta := setupApp(t)
	owner := ta.signup(t, "olga")
	other := ta.signup(t, "pete")

	status, env := ta.do(t, http.MethodPost, "/api/items", owner.Token, map[string]string{"title": "Scarf", "description": "Green scarf"})
	require.Equal(t, http.StatusCreated, status)
	item := decode[models.Item](t, env.Data)
	assert.Equal(t, models.CategoryOther, item.Category)

	status, _ = ta.do(t, http.MethodPut, "/api/items/"+item.ID, other.Token, map[string]string{"title": "Mine"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = ta.do(t, http.MethodDelete, "/api/items/"+item.ID, other.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = ta.do(t, http.MethodGet, "/api/items/mine", owner.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]services.ItemView](t, env.Data), 1)

	status, env = ta.do(t, http.MethodDelete, "/api/items/"+item.ID, owner.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, _ = ta.do(t, http.MethodGet, "/api/items/"+item.ID, owner.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUploadEndpoint(t *testing.T) {
	ta := setupApp(t)
	user := ta.signup(t, "uma")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "photo.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+user.Token)
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	stored := decode[services.StoredFile](t, env.Data)
	assert.Regexp(t, `^/uploads/[0-9a-f-]+\.png$`, stored.FileURL)

	// the stored file is served back
	resp, err = ta.app.Test(httptest.NewRequest(http.MethodGet, stored.FileURL, nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	status, env := ta.do(t, http.MethodPost, "/api/upload", user.Token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No file uploaded", env.Message)
}

func TestErrorHandlerHidesInternalDetail(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(logger.Nop())})
	app.Get("/boom", func(c *fiber.Ctx) error { return io.ErrUnexpectedEOF })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.False(t, env.Success)
	assert.Equal(t, "Internal server error", env.Message)
}
