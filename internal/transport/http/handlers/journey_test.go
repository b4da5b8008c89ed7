package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"depuente/internal/app/server"
	"depuente/internal/platform/config"
	"depuente/internal/platform/db"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		Addr:               ":0",
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		Environment:        "test",
		AppURL:             "http://localhost",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		SeedAdminName:      "Admin",
		EmailFrom:          "no-reply@test.local",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		DailySummaryHour:   8,
		DailySummaryEvery:  time.Minute,
	}
}

func startApp(t *testing.T) (*server.App, *httptest.Server) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("db connect failed: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool, "../../../../migrations"); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	if err := db.Seed(ctx, pool, cfg); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	app := server.New(cfg, pool)
	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts
}

func TestAbsenceJourney(t *testing.T) {
	_, ts := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, "admin@test.local", "ChangeMe123!")

	suffix := time.Now().UnixNano()
	teamX := createTeam(t, client, ts.URL, adminToken, fmt.Sprintf("Equipo X %d", suffix))
	teamY := createTeam(t, client, ts.URL, adminToken, fmt.Sprintf("Equipo Y %d", suffix))

	memberEmail := fmt.Sprintf("ana-%d@example.com", suffix)
	memberID := invitePerson(t, client, ts.URL, adminToken, memberEmail, "Ana García")
	addMember(t, client, ts.URL, adminToken, teamX, memberID)
	addMember(t, client, ts.URL, adminToken, teamY, memberID)

	memberToken := login(t, client, ts.URL, memberEmail, "TempPass123!")

	resp := postJSON(t, client, ts.URL+"/api/v1/absences", memberToken, map[string]any{
		"teamId":    teamX,
		"type":      "vacaciones",
		"startDate": "2025-06-02",
		"endDate":   "2025-06-06",
		"note":      "Semana de vacaciones",
	})
	var created map[string]any
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	absenceID, _ := created["id"].(string)
	if absenceID == "" {
		t.Fatal("expected absence id")
	}

	// Ana belongs to two teams, so the raw join yields two rows; the list
	// must collapse them to one.
	list := getJSON(t, client, ts.URL+"/api/v1/absences?from=2025-06-01&to=2025-06-30", memberToken)
	var listPayload struct {
		Absences []map[string]any `json:"absences"`
		Count    int              `json:"count"`
	}
	if err := json.Unmarshal(list.Data, &listPayload); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if listPayload.Count != 1 {
		t.Fatalf("expected 1 deduplicated absence, got %d", listPayload.Count)
	}
	if days, _ := listPayload.Absences[0]["businessDays"].(float64); days != 5 {
		t.Fatalf("expected 5 business days, got %v", listPayload.Absences[0]["businessDays"])
	}

	createHoliday(t, client, ts.URL, adminToken, "2025-06-24")

	calendar := getJSON(t, client, ts.URL+"/api/v1/calendar?from=2025-06-01&to=2025-06-30", memberToken)
	var calendarPayload struct {
		Events []struct {
			Start    string `json:"start"`
			End      string `json:"end"`
			Category string `json:"category"`
		} `json:"events"`
	}
	if err := json.Unmarshal(calendar.Data, &calendarPayload); err != nil {
		t.Fatalf("decode calendar response: %v", err)
	}
	var absenceEvents, holidayEvents int
	for _, event := range calendarPayload.Events {
		switch event.Category {
		case "absence":
			absenceEvents++
			if event.Start != "2025-06-02" || event.End != "2025-06-07" {
				t.Fatalf("expected exclusive end 2025-06-07, got %s..%s", event.Start, event.End)
			}
		case "holiday":
			holidayEvents++
		}
	}
	if absenceEvents != 1 || holidayEvents == 0 {
		t.Fatalf("expected 1 absence event and holidays, got %d/%d", absenceEvents, holidayEvents)
	}

	summary := getJSON(t, client, ts.URL+"/api/v1/summary?year=2025", memberToken)
	var summaryPayload struct {
		Stats struct {
			TotalAbsences     int            `json:"totalAbsences"`
			TotalBusinessDays int            `json:"totalBusinessDays"`
			ByMonth           map[string]int `json:"byMonth"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(summary.Data, &summaryPayload); err != nil {
		t.Fatalf("decode summary response: %v", err)
	}
	if summaryPayload.Stats.TotalAbsences != 1 || summaryPayload.Stats.TotalBusinessDays != 5 {
		t.Fatalf("unexpected summary: %+v", summaryPayload.Stats)
	}
	if summaryPayload.Stats.ByMonth["2025-06"] != 1 {
		t.Fatalf("expected byMonth keyed 2025-06: %v", summaryPayload.Stats.ByMonth)
	}

	adjust := postJSON(t, client, ts.URL+"/api/v1/absences/"+absenceID+"/adjust", memberToken, map[string]any{"days": 1})
	var adjustPayload struct {
		Absence struct {
			StartDate string `json:"startDate"`
			EndDate   string `json:"endDate"`
		} `json:"absence"`
	}
	if err := json.Unmarshal(adjust.Data, &adjustPayload); err != nil {
		t.Fatalf("decode adjust response: %v", err)
	}
	if adjustPayload.Absence.StartDate != "2025-06-03" || adjustPayload.Absence.EndDate != "2025-06-07" {
		t.Fatalf("adjust should shift both ends: %+v", adjustPayload.Absence)
	}

	exportResp := rawGet(t, client, ts.URL+"/api/v1/export/absences?from=2025-06-01&to=2025-06-30", memberToken)
	if exportResp.StatusCode != http.StatusOK {
		t.Fatalf("export status %d", exportResp.StatusCode)
	}
	if ct := exportResp.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected export content type: %s", ct)
	}
	_ = exportResp.Body.Close()

	deleteJSON(t, client, ts.URL+"/api/v1/absences/"+absenceID, memberToken, http.StatusOK)
}

func TestMemberCannotUseAdminRoutes(t *testing.T) {
	_, ts := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, "admin@test.local", "ChangeMe123!")

	suffix := time.Now().UnixNano()
	memberEmail := fmt.Sprintf("bruno-%d@example.com", suffix)
	invitePerson(t, client, ts.URL, adminToken, memberEmail, "Bruno")
	memberToken := login(t, client, ts.URL, memberEmail, "TempPass123!")

	resp := rawGet(t, client, ts.URL+"/api/v1/admin/people", memberToken)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for member on admin route, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = rawGet(t, client, ts.URL+"/api/v1/absences?from=2025-06-01&to=2025-06-30", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestAbsenceOwnershipEnforced(t *testing.T) {
	_, ts := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, "admin@test.local", "ChangeMe123!")

	suffix := time.Now().UnixNano()
	team := createTeam(t, client, ts.URL, adminToken, fmt.Sprintf("Equipo Z %d", suffix))

	ownerEmail := fmt.Sprintf("owner-%d@example.com", suffix)
	ownerID := invitePerson(t, client, ts.URL, adminToken, ownerEmail, "Owner")
	addMember(t, client, ts.URL, adminToken, team, ownerID)

	otherEmail := fmt.Sprintf("other-%d@example.com", suffix)
	otherID := invitePerson(t, client, ts.URL, adminToken, otherEmail, "Other")
	addMember(t, client, ts.URL, adminToken, team, otherID)

	ownerToken := login(t, client, ts.URL, ownerEmail, "TempPass123!")
	otherToken := login(t, client, ts.URL, otherEmail, "TempPass123!")

	resp := postJSON(t, client, ts.URL+"/api/v1/absences", ownerToken, map[string]any{
		"teamId":    team,
		"type":      "dia_libre",
		"startDate": "2025-07-01",
		"endDate":   "2025-07-01",
	})
	var created map[string]any
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	absenceID, _ := created["id"].(string)

	deleteJSON(t, client, ts.URL+"/api/v1/absences/"+absenceID, otherToken, http.StatusForbidden)
	deleteJSON(t, client, ts.URL+"/api/v1/absences/"+absenceID, adminToken, http.StatusOK)
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func createTeam(t *testing.T, client *http.Client, baseURL, token, name string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/admin/teams", token, map[string]any{"name": name})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("decode team response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected team id")
	}
	return id
}

func invitePerson(t *testing.T, client *http.Client, baseURL, token, email, name string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/admin/people/invite", token, map[string]any{
		"email":        email,
		"fullName":     name,
		"role":         "member",
		"tempPassword": "TempPass123!",
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("decode invite response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected profile id")
	}
	return id
}

func addMember(t *testing.T, client *http.Client, baseURL, token, teamID, profileID string) {
	t.Helper()
	postJSON(t, client, baseURL+"/api/v1/admin/teams/"+teamID+"/members", token, map[string]any{
		"profileId": profileID,
	})
}

func createHoliday(t *testing.T, client *http.Client, baseURL, token, date string) {
	t.Helper()
	postJSON(t, client, baseURL+"/api/v1/holidays", token, map[string]any{
		"title":     "Festivo de prueba",
		"startDate": date,
		"endDate":   date,
	})
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return env
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	resp := rawGet(t, client, url, token)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return env
}

func rawGet(t *testing.T, client *http.Client, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func deleteJSON(t *testing.T, client *http.Client, url, token string, wantStatus int) {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d: %s", wantStatus, resp.StatusCode, string(raw))
	}
}
