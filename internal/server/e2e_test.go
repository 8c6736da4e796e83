package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"evea/internal/config"
	"evea/internal/database"
	"evea/internal/domain"
	"evea/internal/modules/vendor"
	"evea/internal/pkg/mailer"
	"evea/internal/pkg/queue"
	"evea/internal/pkg/storage"
)

var (
	tokenPattern    = regexp.MustCompile(`token=([0-9a-f]+)`)
	passwordPattern = regexp.MustCompile(`Temporary password: (\S+)`)
)

type e2e struct {
	t      *testing.T
	db     *gorm.DB
	srv    *Server
	mail   *mailer.Recorder
	broker *queue.Recorder
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:      "test",
		FrontendURL: "http://app.test",
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-123",
			SessionTTL:           time.Hour,
			CookieName:           "evea_session",
			CookieSameSite:       "Lax",
			CookiePath:           "/",
			VerificationTokenTTL: 24 * time.Hour,
			VerifyResendCooldown: time.Minute,
		},
		Storage:   config.StorageConfig{Driver: "memory"},
		RateLimit: config.RateLimitConfig{Enabled: true, Capacity: 20, RefillPerSec: 0.5},
		Outbox:    config.OutboxConfig{Interval: time.Second, BatchSize: 50, MaxAttempts: 8},
	}
}

func newE2E(t *testing.T) *e2e {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := database.OpenTest(t)
	mail := mailer.NewRecorder()
	broker := &queue.Recorder{}

	srv := New(Deps{
		Config:    testConfig(),
		DB:        db,
		Store:     storage.NewMemoryStore(),
		Mailer:    mail,
		Publisher: broker,
	})
	t.Cleanup(srv.Hub.Close)
	return &e2e{t: t, db: db, srv: srv, mail: mail, broker: broker}
}

// do sends a JSON request, authenticated with cookie when it is not nil.
func (e *e2e) do(method, path string, body any, cookie *http.Cookie) (*httptest.ResponseRecorder, map[string]any) {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return e.serve(req)
}

func (e *e2e) serve(req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	e.srv.Router.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (e *e2e) drainOutbox() {
	e.t.Helper()
	_, err := e.srv.Dispatcher.RunOnce(context.Background())
	require.NoError(e.t, err)
}

func (e *e2e) adminCookie() *http.Cookie {
	e.t.Helper()
	u := &domain.User{FullName: "Admin", Email: "admin@evea.in", PasswordHash: "x", Role: domain.RoleAdmin, IsActive: true}
	require.NoError(e.t, e.db.Create(u).Error)
	token, err := e.srv.JWT.GenerateToken(domain.Principal{UserID: u.ID, Role: u.Role, Email: u.Email})
	require.NoError(e.t, err)
	return &http.Cookie{Name: "evea_session", Value: token}
}

func sessionFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "evea_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func lastText(t *testing.T, m *mailer.Recorder, to string) string {
	t.Helper()
	msgs := m.To(to)
	require.NotEmpty(t, msgs, "no email sent to %s", to)
	return msgs[len(msgs)-1].Text
}

// onboard runs a vendor from registration to the review queue and returns
// its id.
func (e *e2e) onboard(email, business, phone string, categoryID int64) int64 {
	t := e.t
	t.Helper()

	w, body := e.do(http.MethodPost, "/api/vendor/register", vendor.RegisterRequest{
		FullName: "Asha Rao", Email: email, Phone: phone, Password: "secret123",
		BusinessName: business, Address: "12 MG Road", City: "Bengaluru", State: "Karnataka",
		PostalCode: "560001", AgreeToTerms: true,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	vendorID := int64(body["vendorId"].(float64))

	e.drainOutbox()
	m := tokenPattern.FindStringSubmatch(lastText(t, e.mail, email))
	require.Len(t, m, 2)
	w, _ = e.do(http.MethodPost, "/api/vendor/verify-email", gin.H{"token": m[1]}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = e.do(http.MethodPost, "/api/vendor/services-location", vendor.ServicesLocationRequest{
		VendorID: vendorID, Address: "12 MG Road", City: "Bengaluru", State: "Karnataka",
		PostalCode: "560001", PanNumber: "ABCDE1234F", CategoryID: categoryID,
		ServiceType:       "Wedding photography",
		BasicPackagePrice: decimal.NewNullDecimal(decimal.NewFromInt(25000)),
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("vendorId", strconv.FormatInt(vendorID, 10)))
	require.NoError(t, mw.WriteField("documentTypes", "pan_card"))
	part, err := mw.CreateFormFile("documents", "pan.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/vendor/upload-documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, body = e.serve(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 3, body["registrationStep"])

	return vendorID
}

func TestEndToEnd_OnboardingToVendorLogin(t *testing.T) {
	e := newE2E(t)
	cat := &domain.Category{Name: "Photography", Slug: "photography"}
	require.NoError(t, e.db.Create(cat).Error)
	admin := e.adminCookie()

	vendorID := e.onboard("a@x.com", "Acme Events", "9876543210", cat.ID)

	// Not approved yet.
	w, body := e.do(http.MethodPost, "/api/vendor-login", gin.H{"email": "a@x.com", "password": "secret123"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Account pending approval", body["error"])

	w, _ = e.do(http.MethodGet, "/api/admin/vendors/pending", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = e.do(http.MethodGet, "/api/admin/vendors/pending", nil, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pending := body["vendors"].([]any)
	require.Len(t, pending, 1)
	assert.Equal(t, "Acme Events", pending[0].(map[string]any)["businessName"])

	w, _ = e.do(http.MethodPost, "/api/admin/vendors/approve", gin.H{"vendorId": vendorID}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = e.do(http.MethodPost, "/api/admin/vendors/approve", gin.H{"vendorId": vendorID}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.drainOutbox()
	m := passwordPattern.FindStringSubmatch(lastText(t, e.mail, "a@x.com"))
	require.Len(t, m, 2)

	w, body = e.do(http.MethodPost, "/api/vendor-login", gin.H{"email": "a@x.com", "password": m[1]}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, vendorID, body["vendor"].(map[string]any)["id"])
	vendorSession := sessionFrom(t, w)

	w, body = e.do(http.MethodGet, "/api/notifications", nil, vendorSession)
	require.Equal(t, http.StatusOK, w.Code)
	notes := body["notifications"].([]any)
	require.Len(t, notes, 1)
	assert.Equal(t, string(domain.NotifVendorApproved), notes[0].(map[string]any)["type"])

	var keys []string
	for _, p := range e.broker.Messages() {
		keys = append(keys, p.RoutingKey)
	}
	assert.Contains(t, keys, "vendor.approved")
}

func TestEndToEnd_MarketplaceOrder(t *testing.T) {
	e := newE2E(t)
	cat := &domain.Category{Name: "Photography", Slug: "photography"}
	require.NoError(t, e.db.Create(cat).Error)
	admin := e.adminCookie()

	vendorID := e.onboard("a@x.com", "Acme Events", "9876543210", cat.ID)
	w, _ := e.do(http.MethodPost, "/api/admin/vendors/approve", gin.H{"vendorId": vendorID}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	e.drainOutbox()
	m := passwordPattern.FindStringSubmatch(lastText(t, e.mail, "a@x.com"))
	require.Len(t, m, 2)
	w, _ = e.do(http.MethodPost, "/api/vendor-login", gin.H{"email": "a@x.com", "password": m[1]}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	vendorSession := sessionFrom(t, w)

	w, body := e.do(http.MethodGet, "/api/vendor-cards?category=photography", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	items := body["items"].([]any)
	require.Len(t, items, 1)
	cardID := int64(items[0].(map[string]any)["id"].(float64))

	w, body = e.do(http.MethodGet, "/api/search?q=acme", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["vendorCards"], 1)

	w, _ = e.do(http.MethodPost, "/api/auth/register", gin.H{
		"fullName": "Priya Shah", "email": "priya@example.com", "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	customer := sessionFrom(t, w)

	w, _ = e.do(http.MethodPost, "/api/cart", gin.H{"vendorCardId": cardID, "quantity": 2}, customer)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = e.do(http.MethodPost, "/api/favorites", gin.H{"vendorCardId": cardID}, customer)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, body = e.do(http.MethodPost, "/api/orders/checkout", nil, customer)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orders := body["orders"].([]any)
	require.Len(t, orders, 1)
	orderID := int64(orders[0].(map[string]any)["id"].(float64))

	w, body = e.do(http.MethodGet, "/api/cart", nil, customer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["cart"].(map[string]any)["itemCount"])

	// Customers cannot reach the vendor desk.
	w, _ = e.do(http.MethodGet, "/api/vendor/orders", nil, customer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = e.do(http.MethodGet, "/api/vendor/orders?status=pending", nil, vendorSession)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, body["total"])

	path := "/api/vendor/orders/" + strconv.FormatInt(orderID, 10)
	w, _ = e.do(http.MethodPatch, path, gin.H{"status": "confirmed"}, vendorSession)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = e.do(http.MethodPost, "/api/vendor-cards/"+strconv.FormatInt(cardID, 10)+"/reviews",
		gin.H{"rating": 5, "comment": "Lovely photos"}, customer)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	e.drainOutbox()

	w, body = e.do(http.MethodGet, "/api/notifications/unread-count", nil, vendorSession)
	require.Equal(t, http.StatusOK, w.Code)
	// vendor approved, order placed, new review
	assert.EqualValues(t, 3, body["unreadCount"])

	w, body = e.do(http.MethodGet, "/api/notifications", nil, customer)
	require.Equal(t, http.StatusOK, w.Code)
	notes := body["notifications"].([]any)
	require.Len(t, notes, 1)
	assert.Equal(t, string(domain.NotifOrderStatusChanged), notes[0].(map[string]any)["type"])

	w, body = e.do(http.MethodGet, "/api/admin/statistics", nil, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, body)
}

func TestEndToEnd_Plumbing(t *testing.T) {
	e := newE2E(t)

	w, body := e.do(http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	w, _ = e.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "evea_http_requests_total")

	w, body = e.do(http.MethodGet, "/api/nowhere", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", body["code"])

	req := httptest.NewRequest(http.MethodOptions, "/api/cart", nil)
	req.Header.Set("Origin", "http://app.test")
	w, _ = e.serve(req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
