package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	handler "github.com/anishmaharjan/caremap/internal/adapters/http"
	"github.com/anishmaharjan/caremap/internal/core/domain"
	"github.com/anishmaharjan/caremap/internal/core/usecases"
)

const testSecret = "test-secret"

// ---- Mock repositories ----

type mockHospitalRepo struct {
	upsertBatchFn func(ctx context.Context, hospitals []domain.Hospital) ([]domain.Hospital, error)
	getByCoordsFn func(ctx context.Context, lat, lon float64) (*domain.Hospital, error)
	insertFn      func(ctx context.Context, h *domain.Hospital) (*domain.Hospital, error)
	getByIDFn     func(ctx context.Context, id string) (*domain.Hospital, error)
	findNearbyFn  func(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.Hospital, error)
}

func (m *mockHospitalRepo) UpsertBatch(ctx context.Context, hospitals []domain.Hospital) ([]domain.Hospital, error) {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, hospitals)
	}
	return hospitals, nil
}
func (m *mockHospitalRepo) GetByCoordinates(ctx context.Context, lat, lon float64) (*domain.Hospital, error) {
	if m.getByCoordsFn != nil {
		return m.getByCoordsFn(ctx, lat, lon)
	}
	return nil, nil
}
func (m *mockHospitalRepo) Insert(ctx context.Context, h *domain.Hospital) (*domain.Hospital, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, h)
	}
	out := *h
	out.ID = "h-new"
	return &out, nil
}
func (m *mockHospitalRepo) GetByID(ctx context.Context, id string) (*domain.Hospital, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockHospitalRepo) FindNearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.Hospital, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lon, radiusKm, limit)
	}
	return nil, nil
}

type mockProfileRepo struct {
	refByUserFn func(ctx context.Context, userRef string) (string, error)
}

func (m *mockProfileRepo) RefByUser(ctx context.Context, userRef string) (string, error) {
	if m.refByUserFn != nil {
		return m.refByUserFn(ctx, userRef)
	}
	return "", nil
}

type mockAssessmentRepo struct {
	latestFn func(ctx context.Context, userRef string) (*domain.Assessment, error)
}

func (m *mockAssessmentRepo) LatestByUser(ctx context.Context, userRef string) (*domain.Assessment, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, userRef)
	}
	return nil, nil
}

type mockBookingRepo struct {
	createFn     func(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	listByUserFn func(ctx context.Context, userRef string) ([]domain.Booking, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	if m.createFn != nil {
		return m.createFn(ctx, b)
	}
	out := *b
	out.ID = "booking-1"
	return &out, nil
}
func (m *mockBookingRepo) ListByUser(ctx context.Context, userRef string) ([]domain.Booking, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userRef)
	}
	return nil, nil
}

type mockLocator struct {
	positionFn func(ctx context.Context) (domain.GeoPoint, error)
}

func (m *mockLocator) CurrentPosition(ctx context.Context) (domain.GeoPoint, error) {
	if m.positionFn != nil {
		return m.positionFn(ctx)
	}
	return domain.GeoPoint{Lat: 43.26, Lon: -2.93}, nil
}

type mockProvider struct {
	fetchFn func(ctx context.Context, center domain.GeoPoint, radiusKm float64) ([]domain.SourceElement, error)
}

func (m *mockProvider) FetchHospitals(ctx context.Context, center domain.GeoPoint, radiusKm float64) ([]domain.SourceElement, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, center, radiusKm)
	}
	return nil, nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	hospitals := &mockHospitalRepo{}
	d := &handler.Dependencies{
		Hospitals: usecases.NewHospitalService(hospitals, nil),
		Sync: usecases.NewSyncService(
			&mockLocator{}, &mockProvider{},
			usecases.NewReconciler(hospitals, 0), nil, 0),
		Bookings: usecases.NewBookingService(
			hospitals, &mockProfileRepo{}, &mockAssessmentRepo{},
			&mockBookingRepo{}, handler.ContextAuth{}, nil),
		Drafts:    handler.NewDraftStore(),
		JWTSecret: testSecret,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func bearerToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

// ---- Hospital handler tests ----

func TestNearbyHospitals_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Hospitals = usecases.NewHospitalService(&mockHospitalRepo{
			findNearbyFn: func(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.Hospital, error) {
				return []domain.Hospital{
					{ID: "h1", Name: "Basurto", Location: domain.GeoPoint{Lat: lat + 0.01, Lon: lon}},
					{ID: "h2", Name: "Cruces", Location: domain.GeoPoint{Lat: lat + 0.1, Lon: lon}},
				}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/hospitals/nearby?lat=43.26&lon=-2.93&radius_km=20", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var result struct {
		Hospitals []domain.Hospital `json:"hospitals"`
		Count     int               `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Count != 2 {
		t.Errorf("expected count 2, got %d", result.Count)
	}
	if result.Hospitals[0].Name != "Basurto" {
		t.Errorf("expected closest hospital first, got %s", result.Hospitals[0].Name)
	}
}

func TestNearbyHospitals_MissingCoords(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/hospitals/nearby", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetHospital_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/hospitals/nope", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetHospital_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Hospitals = usecases.NewHospitalService(&mockHospitalRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Hospital, error) {
				return &domain.Hospital{ID: id, Name: "Basurto"}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/hospitals/h1", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var h domain.Hospital
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	if h.Name != "Basurto" {
		t.Errorf("got %q", h.Name)
	}
}

// ---- Sync handler tests ----

func TestSyncStatus_StartsIdle(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/sync/status", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var report domain.SyncReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Status != domain.SyncIdle {
		t.Errorf("status = %s, want idle", report.Status)
	}
}

func TestTriggerSync_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		hospitals := &mockHospitalRepo{}
		provider := &mockProvider{
			fetchFn: func(ctx context.Context, center domain.GeoPoint, radiusKm float64) ([]domain.SourceElement, error) {
				lat, lon := 43.26, -2.93
				return []domain.SourceElement{
					{Type: "node", Lat: &lat, Lon: &lon, Tags: map[string]string{"name": "Basurto"}},
				}, nil
			},
		}
		d.Sync = usecases.NewSyncService(&mockLocator{}, provider,
			usecases.NewReconciler(hospitals, 0), nil, 0)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/sync", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var report domain.SyncReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Status != domain.SyncDone {
		t.Errorf("status = %s, want done", report.Status)
	}
	if report.Reconciled != 1 {
		t.Errorf("reconciled = %d, want 1", report.Reconciled)
	}
}

func TestTriggerSync_LocationFailureIs503(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		locator := &mockLocator{
			positionFn: func(ctx context.Context) (domain.GeoPoint, error) {
				return domain.GeoPoint{}, domain.ErrLocationUnavailable
			},
		}
		d.Sync = usecases.NewSyncService(locator, &mockProvider{},
			usecases.NewReconciler(&mockHospitalRepo{}, 0), nil, 0)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/sync", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}

	var report domain.SyncReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Status != domain.SyncFailed {
		t.Errorf("status = %s, want failed", report.Status)
	}
}

// ---- Booking handler tests ----

func TestCreateBooking_Unauthorized(t *testing.T) {
	app := setupApp(makeDeps())

	body := strings.NewReader(`{"name":"Basurto","lat":43.26,"lon":-2.93}`)
	req := httptest.NewRequest("POST", "/v1/bookings", body)
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateBooking_Success(t *testing.T) {
	app := setupApp(makeDeps())

	body := strings.NewReader(`{"name":"Basurto","lat":43.26,"lon":-2.93,"note":"morning please"}`)
	req := httptest.NewRequest("POST", "/v1/bookings", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, "user-1"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var booking domain.Booking
	if err := json.NewDecoder(resp.Body).Decode(&booking); err != nil {
		t.Fatal(err)
	}
	if booking.Status != domain.BookingStatusPending {
		t.Errorf("status = %s, want pending", booking.Status)
	}
	if booking.UserRef != "user-1" {
		t.Errorf("user_ref = %s, want user-1", booking.UserRef)
	}
	if booking.Notes == nil || *booking.Notes != "morning please" {
		t.Errorf("notes = %v", booking.Notes)
	}
}

func TestCreateBooking_HospitalFieldsReachInsert(t *testing.T) {
	var inserted *domain.Hospital
	deps := makeDeps(func(d *handler.Dependencies) {
		hospitals := &mockHospitalRepo{
			insertFn: func(ctx context.Context, h *domain.Hospital) (*domain.Hospital, error) {
				inserted = h
				out := *h
				out.ID = "h-new"
				return &out, nil
			},
		}
		d.Bookings = usecases.NewBookingService(
			hospitals, &mockProfileRepo{}, &mockAssessmentRepo{},
			&mockBookingRepo{}, handler.ContextAuth{}, nil)
	})
	app := setupApp(deps)

	body := strings.NewReader(`{
		"name":"Cruces","lat":43.281,"lon":-2.988,
		"address":"Plaza de Cruces","phone":"+34 946 006 000",
		"specialities":"cardiology;oncology","emergency_available":true
	}`)
	req := httptest.NewRequest("POST", "/v1/bookings", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, "user-1"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	if inserted == nil {
		t.Fatal("hospital was not inserted")
	}
	if inserted.Specialities != "cardiology;oncology" {
		t.Errorf("specialities = %q", inserted.Specialities)
	}
	if inserted.Phone != "+34 946 006 000" || !inserted.EmergencyAvailable {
		t.Errorf("hospital = %+v", inserted)
	}
}

func TestCreateBooking_InvalidToken(t *testing.T) {
	app := setupApp(makeDeps())

	body := strings.NewReader(`{"name":"Basurto","lat":43.26,"lon":-2.93}`)
	req := httptest.NewRequest("POST", "/v1/bookings", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestListBookings_RequiresAuth(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/bookings", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestListBookings_Pagination(t *testing.T) {
	bookings := make([]domain.Booking, 5)
	for i := range bookings {
		bookings[i] = domain.Booking{ID: fmt.Sprintf("b%d", i), Status: domain.BookingStatusPending}
	}
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Bookings = usecases.NewBookingService(
			&mockHospitalRepo{}, &mockProfileRepo{}, &mockAssessmentRepo{},
			&mockBookingRepo{
				listByUserFn: func(ctx context.Context, userRef string) ([]domain.Booking, error) {
					return bookings, nil
				},
			}, handler.ContextAuth{}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/bookings?offset=2&limit=2", nil)
	req.Header.Set("Authorization", bearerToken(t, "user-1"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var result struct {
		Data       []domain.Booking `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 5 {
		t.Errorf("total = %d, want 5", result.Pagination.Total)
	}
	if len(result.Data) != 2 || result.Data[0].ID != "b2" {
		t.Errorf("page = %+v", result.Data)
	}
	if resp.Header.Get("Link") == "" {
		t.Error("missing Link header")
	}
}

// ---- Draft handler tests ----

func TestDrafts_RoundTrip(t *testing.T) {
	app := setupApp(makeDeps())

	put := httptest.NewRequest("PUT", "/v1/drafts?lat=43.26&lon=-2.93", strings.NewReader(`{"note":"ask for dr. ruiz","open":true}`))
	put.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(put, -1)
	if resp.StatusCode != 204 {
		t.Fatalf("put: expected 204, got %d", resp.StatusCode)
	}

	get := httptest.NewRequest("GET", "/v1/drafts?lat=43.26&lon=-2.93", nil)
	resp, _ = app.Test(get, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}
	var draft domain.BookingDraft
	if err := json.NewDecoder(resp.Body).Decode(&draft); err != nil {
		t.Fatal(err)
	}
	if draft.Note != "ask for dr. ruiz" || !draft.Open {
		t.Errorf("draft = %+v", draft)
	}

	del := httptest.NewRequest("DELETE", "/v1/drafts?lat=43.26&lon=-2.93", nil)
	resp, _ = app.Test(del, -1)
	if resp.StatusCode != 204 {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/drafts?lat=43.26&lon=-2.93", nil), -1)
	if err := json.NewDecoder(resp.Body).Decode(&draft); err != nil {
		t.Fatal(err)
	}
	if draft.Note != "" || draft.Open {
		t.Errorf("expected zero draft after delete, got %+v", draft)
	}
}

func TestDrafts_MissingCoords(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/drafts", nil), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
