package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"chargedash/internal/clients"
	"chargedash/internal/http/handlers"
	"chargedash/internal/http/middleware"
	"chargedash/internal/invoice"
	"chargedash/internal/models"
	"chargedash/internal/session"
	"chargedash/internal/storage"
	"chargedash/internal/view"
)

func backendRecord(id int64) models.ChargingRecord {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour)
	return models.ChargingRecord{
		ID:               id,
		RecordNumber:     fmt.Sprintf("CD%03d", id),
		StartTime:        start,
		EndTime:          start.Add(90 * time.Minute),
		ChargingDuration: 1.5,
		ChargingAmount:   25.5,
		TimePeriod:       models.PeriodPeak,
		UnitPrice:        1.0,
		ElectricityFee:   25.5,
		ServiceFee:       20.4,
		TotalFee:         45.9,
	}
}

// newFakeBackend serves the charging backend contract used by the dashboard.
func newFakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer tok-1"
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/auth/login":
			_ = r.ParseForm()
			if r.PostFormValue("username") == "alice" && r.PostFormValue("password") == "secret" {
				fmt.Fprint(w, `{"access_token":"tok-1"}`)
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"detail":"Incorrect username or password"}`)
		case r.URL.Path == "/auth/me":
			if !authorized(r) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"detail":"Could not validate credentials"}`)
				return
			}
			fmt.Fprint(w, `{"id":1,"username":"alice","is_admin":false}`)
		case r.URL.Path == "/charging/records":
			if !authorized(r) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"detail":"Could not validate credentials"}`)
				return
			}
			_ = json.NewEncoder(w).Encode([]models.ChargingRecord{backendRecord(1), backendRecord(2)})
		case strings.HasPrefix(r.URL.Path, "/charging/records/"):
			if !authorized(r) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"detail":"Could not validate credentials"}`)
				return
			}
			id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/charging/records/"), 10, 64)
			if err != nil || id == 999 {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"detail":"record not found"}`)
				return
			}
			_ = json.NewEncoder(w).Encode(backendRecord(id))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newDashboard(t *testing.T) *httptest.Server {
	t.Helper()
	backend := newFakeBackend(t)
	logger := zap.NewNop()

	base := clients.NewBaseClient(backend.URL, backend.Client(), logger)
	sessions := session.NewStore(clients.NewAuthClient(base), storage.NewMemoryStore(), logger)
	recordsSvc := clients.NewSessionRecords(clients.NewChargingClient(base), sessions)
	ctrl := view.NewController(recordsSvc, invoice.NewFileSurface(t.TempDir()), logger)

	router := NewRouter(RouterDeps{
		Auth:    handlers.NewAuthHandlers(sessions, ctrl, logger),
		Records: handlers.NewRecordsHandlers(ctrl, invoice.NewPDFGenerator(t.TempDir()), logger),
		Health:  handlers.NewHealthHandler(),
	}, middleware.RequireSession(sessions), []string{"*"})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type viewPayload struct {
	State      string                  `json:"state"`
	Records    []models.ChargingRecord `json:"records"`
	Total      int                     `json:"total"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	Selected   *models.ChargingRecord  `json:"selected"`
	DetailOpen bool                    `json:"detail_open"`
	Notice     string                  `json:"notice"`
}

func login(t *testing.T, srv *httptest.Server) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json",
		bytes.NewReader([]byte(`{"username":"alice","password":"secret"}`)))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
}

func getView(t *testing.T, srv *httptest.Server, query string) viewPayload {
	t.Helper()
	resp, err := http.Get(srv.URL + "/api/records" + query)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("view status = %d", resp.StatusCode)
	}
	var payload viewPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	return payload
}

func TestHealthEndpoint(t *testing.T) {
	srv := newDashboard(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
}

func TestProtectedRouteRedirectsWithoutSession(t *testing.T) {
	srv := newDashboard(t)
	resp, err := http.Get(srv.URL + "/api/records")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	var payload struct {
		Redirect string `json:"redirect"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload.Redirect != "/login" {
		t.Errorf("redirect = %q, want /login", payload.Redirect)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newDashboard(t)
	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json",
		bytes.NewReader([]byte(`{"username":"alice","password":"wrong"}`)))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestLoginAndRecordsView(t *testing.T) {
	srv := newDashboard(t)
	login(t, srv)

	payload := getView(t, srv, "")
	if payload.State != "loaded" || payload.Total != 2 || len(payload.Records) != 2 {
		t.Fatalf("view = %+v", payload)
	}
}

func TestDeepLinkOpensMissingRecord(t *testing.T) {
	srv := newDashboard(t)
	login(t, srv)

	payload := getView(t, srv, "?record_id=42")
	if !payload.DetailOpen || payload.Selected == nil || payload.Selected.ID != 42 {
		t.Fatalf("deep link failed: %+v", payload)
	}
}

func TestDeepLinkFailureKeepsList(t *testing.T) {
	srv := newDashboard(t)
	login(t, srv)

	payload := getView(t, srv, "?record_id=999")
	if payload.Notice != "获取充电记录详情失败" {
		t.Errorf("notice = %q", payload.Notice)
	}
	if payload.Total != 2 {
		t.Errorf("list unusable after failed deep link: %+v", payload)
	}
}

func TestPageSizeChangeResetsPage(t *testing.T) {
	srv := newDashboard(t)
	login(t, srv)

	payload := getView(t, srv, "?page=3")
	if payload.Page != 3 {
		t.Fatalf("page = %d, want 3", payload.Page)
	}
	payload = getView(t, srv, "?page_size=20")
	if payload.Page != 1 || payload.PageSize != 20 {
		t.Fatalf("page = %d size = %d, want page reset to 1", payload.Page, payload.PageSize)
	}
}

func TestPrintableDocument(t *testing.T) {
	srv := newDashboard(t)
	login(t, srv)

	resp, err := http.Get(srv.URL + "/api/records/1/print")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	body := buf.String()
	if !strings.Contains(body, "详单编号: CD001") || !strings.Contains(body, invoice.Disclaimer) {
		t.Error("printable document incomplete")
	}
}

func TestInvoicePDFDownload(t *testing.T) {
	srv := newDashboard(t)
	login(t, srv)

	resp, err := http.Get(srv.URL + "/api/records/1/invoice.pdf")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("response is not a PDF document")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	srv := newDashboard(t)
	login(t, srv)

	resp, err := http.Post(srv.URL+"/api/auth/logout", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}

	after, err := http.Get(srv.URL + "/api/records")
	if err != nil {
		t.Fatal(err)
	}
	defer after.Body.Close()
	if after.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status after logout = %d, want 401", after.StatusCode)
	}
}
