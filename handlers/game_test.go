package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"pong-leaderboard/config"
	"pong-leaderboard/models"
	"pong-leaderboard/services"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gameResponse mirrors the JSON shape clients see.
type gameResponse struct {
	ID          uint      `json:"id"`
	PlayerName  string    `json:"player_name"`
	PlayerScore int       `json:"player_score"`
	CPUScore    int       `json:"cpu_score"`
	Winner      string    `json:"winner"`
	TargetScore int       `json:"target_score"`
	CreatedAt   time.Time `json:"created_at"`
}

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.GameRecord{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	cfg := &config.Config{AllowedOrigins: config.DefaultAllowedOrigins}
	return NewApp(cfg, services.NewGameService(db, nil)), db
}

func postGame(t *testing.T, app *fiber.App, body string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/games", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return do(t, app, req)
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func TestCreateGame(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantName   string
		wantWinner string
	}{
		{
			name:       "padded name",
			body:       `{"player_name": "  Ann  ", "player_score": 11, "cpu_score": 9, "target_score": 11}`,
			wantName:   "Ann",
			wantWinner: "player",
		},
		{
			name:       "empty name",
			body:       `{"player_name": "", "player_score": 5, "cpu_score": 7, "target_score": 11}`,
			wantName:   "Player 1",
			wantWinner: "cpu",
		},
		{
			name:       "no name tie",
			body:       `{"player_score": 5, "cpu_score": 5, "target_score": 5}`,
			wantName:   "Player 1",
			wantWinner: "cpu",
		},
		{
			name:       "client winner ignored",
			body:       `{"player_name": "Bo", "player_score": 1, "cpu_score": 11, "target_score": 11, "winner": "player"}`,
			wantName:   "Bo",
			wantWinner: "cpu",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := setupTestApp(t)

			resp, raw := postGame(t, app, tt.body)
			if resp.StatusCode != fiber.StatusCreated {
				t.Fatalf("status = %d, want 201; body %s", resp.StatusCode, raw)
			}

			var got gameResponse
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.ID == 0 {
				t.Error("expected id")
			}
			if got.PlayerName != tt.wantName {
				t.Errorf("player_name = %q, want %q", got.PlayerName, tt.wantName)
			}
			if got.Winner != tt.wantWinner {
				t.Errorf("winner = %q, want %q", got.Winner, tt.wantWinner)
			}
			if got.CreatedAt.IsZero() {
				t.Error("expected created_at")
			}
		})
	}
}

func TestCreateGameResponseShape(t *testing.T) {
	app, _ := setupTestApp(t)

	_, raw := postGame(t, app, `{"player_name": "Ann", "player_score": 11, "cpu_score": 9, "target_score": 11}`)

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"id", "player_name", "player_score", "cpu_score", "winner", "target_score", "created_at"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}
	if len(fields) != 7 {
		t.Errorf("response has %d fields, want 7: %v", len(fields), fields)
	}
	if _, err := time.Parse(time.RFC3339, fields["created_at"].(string)); err != nil {
		t.Errorf("created_at is not ISO-8601: %v", err)
	}
}

func TestCreateGameInvalidBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"malformed json", `{"player_score": `, "invalid request body"},
		{"string score", `{"player_score": "ten", "cpu_score": 1, "target_score": 1}`, "invalid request body"},
		{"fractional score", `{"player_score": 1.5, "cpu_score": 1, "target_score": 1}`, "invalid request body"},
		{"fractional string score", `{"player_score": "1.5", "cpu_score": 1, "target_score": 1}`, "invalid request body"},
		{"bool score", `{"player_score": true, "cpu_score": 1, "target_score": 1}`, "invalid request body"},
		{"missing scores", `{"player_name": "Ann"}`, "player_score, cpu_score, target_score"},
		{"missing target", `{"player_score": 1, "cpu_score": 2}`, "target_score"},
		{"null score", `{"player_score": null, "cpu_score": 2, "target_score": 3}`, "player_score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, db := setupTestApp(t)

			resp, raw := postGame(t, app, tt.body)
			if resp.StatusCode != fiber.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422; body %s", resp.StatusCode, raw)
			}
			if !strings.Contains(string(raw), tt.wantErr) {
				t.Errorf("body %s does not mention %q", raw, tt.wantErr)
			}

			var count int64
			db.Model(&models.GameRecord{}).Count(&count)
			if count != 0 {
				t.Errorf("%d rows stored for rejected request", count)
			}
		})
	}
}

func TestCreateGameWholeNumberForms(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"numeric strings", `{"player_score": "11", "cpu_score": " 9 ", "target_score": "11"}`},
		{"integral floats", `{"player_score": 11.0, "cpu_score": 9.0, "target_score": 1.1e1}`},
		{"mixed", `{"player_score": 11, "cpu_score": "9", "target_score": 11.0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := setupTestApp(t)

			resp, raw := postGame(t, app, tt.body)
			if resp.StatusCode != fiber.StatusCreated {
				t.Fatalf("status = %d, want 201; body %s", resp.StatusCode, raw)
			}

			var got gameResponse
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.PlayerScore != 11 || got.CPUScore != 9 || got.TargetScore != 11 {
				t.Errorf("scores = %d/%d/%d, want 11/9/11", got.PlayerScore, got.CPUScore, got.TargetScore)
			}
			if got.Winner != "player" {
				t.Errorf("winner = %q, want player", got.Winner)
			}
		})
	}
}

func TestCreateGameStorageFailure(t *testing.T) {
	app, db := setupTestApp(t)
	sqlDB, _ := db.DB()
	sqlDB.Close()

	resp, raw := postGame(t, app, `{"player_score": 1, "cpu_score": 2, "target_score": 3}`)
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if !strings.Contains(string(raw), "Failed to create game") {
		t.Errorf("body = %s", raw)
	}
}

func TestLeaderboard(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, raw := do(t, app, httptest.NewRequest(http.MethodGet, "/api/games/leaderboard", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("empty leaderboard body = %s, want []", raw)
	}

	for i := 0; i < 25; i++ {
		body := `{"player_name": "p", "player_score": ` + strconv.Itoa(i%13) + `, "cpu_score": 6, "target_score": 11}`
		if resp, raw := postGame(t, app, body); resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("seed %d: status %d body %s", i, resp.StatusCode, raw)
		}
	}

	resp, raw = do(t, app, httptest.NewRequest(http.MethodGet, "/api/games/leaderboard", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var games []gameResponse
	if err := json.Unmarshal(raw, &games); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(games) != services.LeaderboardLimit {
		t.Fatalf("len = %d, want %d", len(games), services.LeaderboardLimit)
	}
	for i := 1; i < len(games); i++ {
		if games[i].PlayerScore > games[i-1].PlayerScore {
			t.Fatalf("not sorted at %d", i)
		}
	}
	if games[0].PlayerScore != 12 {
		t.Errorf("top score = %d, want 12", games[0].PlayerScore)
	}
}

func TestLeaderboardStorageFailure(t *testing.T) {
	app, db := setupTestApp(t)
	sqlDB, _ := db.DB()
	sqlDB.Close()

	resp, raw := do(t, app, httptest.NewRequest(http.MethodGet, "/api/games/leaderboard", nil))
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if !strings.Contains(string(raw), "Failed to fetch leaderboard") {
		t.Errorf("body = %s", raw)
	}
}

func TestHealthRoutes(t *testing.T) {
	app, _ := setupTestApp(t)

	tests := []struct {
		path string
		want string
	}{
		{"/", `"version":"1.0.0"`},
		{"/health", `"status":"healthy"`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, raw := do(t, app, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if !strings.Contains(string(raw), tt.want) {
				t.Errorf("body = %s, want %s", raw, tt.want)
			}
		})
	}
}
