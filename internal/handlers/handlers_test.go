package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"stellarstep/internal/ai"
	"stellarstep/internal/database"
	"stellarstep/internal/repository"
	"stellarstep/internal/security"
	"stellarstep/internal/service"
)

type apiEnv struct {
	mux         *http.ServeMux
	db          *database.DB
	tokenIssuer *security.ParentTokenIssuer
}

// newAPIEnv wires the full handler stack over a migrated sqlite database,
// with the AI gateway pointed at the given upstream URL
func newAPIEnv(t *testing.T, aiUpstream string) *apiEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	emailService, err := service.NewEmailService("us-east-1", "", "")
	if err != nil {
		t.Fatalf("Failed to create email service: %v", err)
	}

	userService := service.NewUserService(db, userRepo, progressRepo, activityRepo)
	progressService := service.NewProgressService(db, progressRepo, activityRepo, userRepo, emailService)
	taskService := service.NewTaskService(taskRepo, progressService)

	apiKey := "test-key"
	if aiUpstream == "" {
		aiUpstream = "http://127.0.0.1:0"
	}
	gateway := ai.NewGateway(ai.NewClient(apiKey, aiUpstream, "llama-3.1-8b-instant"))

	tokenIssuer := security.NewParentTokenIssuer("test-token-secret", 30*time.Minute)

	middleware := NewMiddleware(security.NewRateLimiter(100, time.Minute), tokenIssuer)
	userHandler := NewUserHandler(userService, tokenIssuer)
	taskHandler := NewTaskHandler(taskService)
	progressHandler := NewProgressHandler(progressService)
	aiHandler := NewAIHandler(gateway)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user/create", userHandler.Create)
	mux.HandleFunc("GET /api/user/{firebaseUid}", userHandler.Get)
	mux.HandleFunc("PUT /api/user/{firebaseUid}", userHandler.Update)
	mux.HandleFunc("POST /api/user/parent-password", middleware.RequireParent(userHandler.SetParentPassword))
	mux.HandleFunc("POST /api/user/verify-parent", userHandler.VerifyParent)
	mux.HandleFunc("GET /api/task/{userId}", taskHandler.List)
	mux.HandleFunc("GET /api/task/{userId}/today", taskHandler.ListToday)
	mux.HandleFunc("POST /api/task", taskHandler.Create)
	mux.HandleFunc("PUT /api/task/{taskId}", taskHandler.Update)
	mux.HandleFunc("DELETE /api/task/{taskId}", taskHandler.Delete)
	mux.HandleFunc("GET /api/progress/{userId}", progressHandler.Get)
	mux.HandleFunc("POST /api/progress/badge", progressHandler.AwardBadge)
	mux.HandleFunc("POST /api/progress/game-played", progressHandler.GamePlayed)
	mux.HandleFunc("GET /api/progress/logs/{userId}", middleware.RequireParent(progressHandler.Logs))
	mux.HandleFunc("POST /api/ai/reinforcement", middleware.RateLimit(aiHandler.Reinforcement))
	mux.HandleFunc("POST /api/ai/simplify", middleware.RateLimit(aiHandler.Simplify))
	mux.HandleFunc("GET /api/ai/space-fact", middleware.RateLimit(aiHandler.SpaceFact))

	return &apiEnv{mux: mux, db: db, tokenIssuer: tokenIssuer}
}

func (e *apiEnv) request(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)

	var parsed map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("Failed to parse response %q: %v", rec.Body.String(), err)
	}
	return rec, parsed
}

func (e *apiEnv) signup(t *testing.T, uid string) {
	t.Helper()
	rec, _ := e.request(t, http.MethodPost, "/api/user/create", map[string]any{
		"firebaseUid": uid,
		"email":       uid + "@example.com",
		"username":    "Nova",
		"avatarId":    1,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Signup returned status %d", rec.Code)
	}
}

func TestCreateUserEndpoint(t *testing.T) {
	env := newAPIEnv(t, "")

	rec, body := env.request(t, http.MethodPost, "/api/user/create", map[string]any{
		"firebaseUid": "uid-1",
		"email":       "nova@example.com",
		"username":    "Nova",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Errorf("Expected 201, got %d", rec.Code)
	}
	if body["success"] != true {
		t.Errorf("Expected success envelope, got %v", body)
	}
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("Expected user payload, got %v", body)
	}
	if user["avatarId"] != float64(1) {
		t.Errorf("Expected default avatarId 1, got %v", user["avatarId"])
	}

	// Second call is idempotent
	rec, body = env.request(t, http.MethodPost, "/api/user/create", map[string]any{
		"firebaseUid": "uid-1",
		"email":       "other@example.com",
		"username":    "Other",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for existing user, got %d", rec.Code)
	}
	if body["message"] != "User already exists" {
		t.Errorf("Expected already-exists message, got %v", body["message"])
	}
}

func TestCreateUserValidation(t *testing.T) {
	env := newAPIEnv(t, "")

	rec, body := env.request(t, http.MethodPost, "/api/user/create", map[string]any{
		"firebaseUid": "uid-2",
		"email":       "not-an-email",
		"username":    "Nova",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid email, got %d", rec.Code)
	}
	if body["success"] != false {
		t.Errorf("Expected failure envelope, got %v", body)
	}
}

func TestGetUserNotFound(t *testing.T) {
	env := newAPIEnv(t, "")

	rec, body := env.request(t, http.MethodGet, "/api/user/uid-missing", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
	if body["message"] != "User not found" {
		t.Errorf("Expected not-found message, got %v", body["message"])
	}
}

func TestVerifyParentFlow(t *testing.T) {
	env := newAPIEnv(t, "")
	env.signup(t, "uid-parent")

	// Not configured yet
	rec, _ := env.request(t, http.MethodPost, "/api/user/verify-parent", map[string]any{
		"firebaseUid": "uid-parent",
		"password":    "abc123",
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 before secret is set, got %d", rec.Code)
	}

	rec, _ = env.request(t, http.MethodPost, "/api/user/parent-password", map[string]any{
		"firebaseUid": "uid-parent",
		"password":    "abc123",
	}, map[string]string{"Authorization": "Bearer " + env.mustToken(t, "uid-parent")})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 setting password, got %d", rec.Code)
	}

	rec, body := env.request(t, http.MethodPost, "/api/user/verify-parent", map[string]any{
		"firebaseUid": "uid-parent",
		"password":    "abc123",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body["valid"] != true {
		t.Errorf("Expected valid true, got %v", body["valid"])
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Error("Expected a parent access token on successful verification")
	}

	rec, body = env.request(t, http.MethodPost, "/api/user/verify-parent", map[string]any{
		"firebaseUid": "uid-parent",
		"password":    "wrong",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body["valid"] != false {
		t.Errorf("Expected valid false for wrong password, got %v", body["valid"])
	}
	if _, hasToken := body["token"]; hasToken {
		t.Error("Expected no token for a failed verification")
	}
}

func (e *apiEnv) mustToken(t *testing.T, uid string) string {
	t.Helper()
	token, err := e.tokenIssuer.Issue(uid)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

func TestParentPasswordRequiresToken(t *testing.T) {
	env := newAPIEnv(t, "")
	env.signup(t, "uid-guard")

	rec, _ := env.request(t, http.MethodPost, "/api/user/parent-password", map[string]any{
		"firebaseUid": "uid-guard",
		"password":    "abc123",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", rec.Code)
	}

	rec, _ = env.request(t, http.MethodPost, "/api/user/parent-password", map[string]any{
		"firebaseUid": "uid-guard",
		"password":    "abc123",
	}, map[string]string{"Authorization": "Bearer garbage"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with garbage token, got %d", rec.Code)
	}
}

func TestTaskEndpoints(t *testing.T) {
	env := newAPIEnv(t, "")
	env.signup(t, "uid-tasks")

	rec, body := env.request(t, http.MethodPost, "/api/task", map[string]any{
		"userId":     "uid-tasks",
		"title":      "Brush teeth",
		"planetName": "Mars",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %v", rec.Code, body)
	}
	task := body["task"].(map[string]any)
	taskID := task["id"].(float64)
	if task["order"] != float64(0) {
		t.Errorf("Expected order 0, got %v", task["order"])
	}

	rec, body = env.request(t, http.MethodPut, "/api/task/999999", map[string]any{
		"completed": true,
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown task, got %d", rec.Code)
	}

	rec, body = env.request(t, http.MethodPut, "/api/task/not-a-number", map[string]any{
		"completed": true,
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad task id, got %d", rec.Code)
	}

	rec, body = env.request(t, http.MethodPut, "/api/task/"+itoa(taskID), map[string]any{
		"completed": true,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 completing task, got %d: %v", rec.Code, body)
	}
	if body["task"].(map[string]any)["completed"] != true {
		t.Errorf("Expected completed task in response, got %v", body["task"])
	}

	rec, body = env.request(t, http.MethodGet, "/api/progress/uid-tasks", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	progress := body["progress"].(map[string]any)
	if progress["totalTasksCompleted"] != float64(1) {
		t.Errorf("Expected counter 1, got %v", progress["totalTasksCompleted"])
	}

	rec, _ = env.request(t, http.MethodDelete, "/api/task/"+itoa(taskID), nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 deleting task, got %d", rec.Code)
	}
}

func TestBadgeEndpoint(t *testing.T) {
	env := newAPIEnv(t, "")
	env.signup(t, "uid-badges")

	rec, body := env.request(t, http.MethodPost, "/api/progress/badge", map[string]any{
		"userId":    "uid-badges",
		"badgeName": "Explorer",
		"badgeIcon": "🚀",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", rec.Code, body)
	}
	if body["message"] != "Badge awarded" {
		t.Errorf("Expected award message, got %v", body["message"])
	}

	rec, body = env.request(t, http.MethodPost, "/api/progress/badge", map[string]any{
		"userId":    "uid-badges",
		"badgeName": "Explorer",
		"badgeIcon": "🚀",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body["message"] != "Badge already awarded" {
		t.Errorf("Expected already-awarded message, got %v", body["message"])
	}

	rec, _ = env.request(t, http.MethodPost, "/api/progress/badge", map[string]any{
		"userId":    "uid-no-progress",
		"badgeName": "Explorer",
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without progress record, got %d", rec.Code)
	}
}

func TestAIEndpoints(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"You are a shining star!"}}]}`))
	}))
	defer upstream.Close()

	env := newAPIEnv(t, upstream.URL)

	rec, body := env.request(t, http.MethodPost, "/api/ai/reinforcement", map[string]any{
		"achievement": "finished all tasks",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", rec.Code, body)
	}
	if body["message"] != "You are a shining star!" {
		t.Errorf("Expected generated message, got %v", body["message"])
	}

	rec, body = env.request(t, http.MethodPost, "/api/ai/simplify", map[string]any{
		"topic": "black holes",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body["topic"] != "black holes" || body["explanation"] == "" {
		t.Errorf("Expected topic and explanation, got %v", body)
	}

	rec, body = env.request(t, http.MethodGet, "/api/ai/space-fact", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body["fact"] != "You are a shining star!" {
		t.Errorf("Expected fact payload, got %v", body)
	}

	rec, _ = env.request(t, http.MethodPost, "/api/ai/reinforcement", map[string]any{}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing achievement, got %d", rec.Code)
	}
}

func TestAIEndpointProviderFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"overloaded"}`))
	}))
	defer upstream.Close()

	env := newAPIEnv(t, upstream.URL)

	rec, body := env.request(t, http.MethodGet, "/api/ai/space-fact", nil, nil)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected 502 for provider failure, got %d", rec.Code)
	}
	if body["success"] != false {
		t.Errorf("Expected failure envelope, got %v", body)
	}
}

func TestGamePlayedEndpoint(t *testing.T) {
	env := newAPIEnv(t, "")
	env.signup(t, "uid-game")

	rec, body := env.request(t, http.MethodPost, "/api/progress/game-played", map[string]any{
		"userId":   "uid-game",
		"gameName": "planetMatcher",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", rec.Code, body)
	}

	rec, body = env.request(t, http.MethodGet, "/api/progress/uid-game", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	games := body["progress"].(map[string]any)["gamesPlayed"].(map[string]any)
	if games["planetMatcher"] != float64(1) {
		t.Errorf("Expected planetMatcher count 1, got %v", games["planetMatcher"])
	}
}

func TestActivityLogsEndpoint(t *testing.T) {
	env := newAPIEnv(t, "")
	env.signup(t, "uid-logs")

	// The activity feed is parent-dashboard data: no token, no access
	rec, body := env.request(t, http.MethodGet, "/api/progress/logs/uid-logs", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without parent token, got %d", rec.Code)
	}
	if body["success"] != false {
		t.Errorf("Expected failure envelope, got %v", body)
	}

	rec, body = env.request(t, http.MethodGet, "/api/progress/logs/uid-logs", nil,
		map[string]string{"Authorization": "Bearer " + env.mustToken(t, "uid-logs")})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 with parent token, got %d", rec.Code)
	}
	logs, ok := body["logs"].([]any)
	if !ok {
		t.Fatalf("Expected logs array, got %v", body)
	}
	// Signup appends a login event
	if len(logs) != 1 {
		t.Errorf("Expected 1 log entry after signup, got %d", len(logs))
	}
}

func itoa(f float64) string {
	return strconv.FormatInt(int64(f), 10)
}
