package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"backoffice-service/internal/config"
	"backoffice-service/internal/hashing"
	"backoffice-service/internal/identity"
	"backoffice-service/internal/mail"
	"backoffice-service/internal/obs"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/repository/kv"
	"backoffice-service/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Environment: "development",
		JWT:         config.JWTConfig{Secret: "test-secret", TTL: time.Hour, Issuer: "backoffice"},
		OTP:         config.OTPConfig{TTL: 5 * time.Minute, MaxAttempts: 3, DebugResponse: true},
		Activity:    config.ActivityConfig{MaxEntries: 1000},
	}
	logger := zap.NewNop()
	store := kv.NewMemoryStore()
	signer := &identity.TokenSigner{Key: []byte(cfg.JWT.Secret), TTL: cfg.JWT.TTL, Issuer: cfg.JWT.Issuer}
	provider := identity.NewLocalProvider(store, hashing.NewHasher(), signer, logger)

	accountRepo := repository.NewAccountRepository(store)
	activityRepo := repository.NewActivityRepository(store, cfg.Activity.MaxEntries)
	depositRepo := repository.NewDepositRepository(store)
	bankDepositRepo := repository.NewBankDepositRepository(store)
	roleRepo := repository.NewRoleRepository(store)
	bankRepo := repository.NewBankRepository(store)

	activity := service.NewActivityLog(activityRepo, nil, nil, logger)
	gate := service.NewAuthorizationGate(provider, accountRepo, logger)
	accounts := service.NewAccountService(accountRepo, provider, activity, logger)
	otp := service.NewOtpFlow(cfg, repository.NewOtpRepository(store), accountRepo, provider, mail.NoopSender{}, activity, logger)
	deposits := service.NewDepositService(depositRepo, gate, activity, logger)
	bankDeps := service.NewBankDepositService(bankDepositRepo, bankRepo, gate, activity, logger)
	banks := service.NewBankService(bankRepo, bankDeps, activity, logger)
	roles := service.NewRoleService(roleRepo, accountRepo, activity, logger)
	dashboard := service.NewDashboardService(deposits, bankDeps, accounts, activity, logger)

	handlers := &Handlers{
		Auth:        NewAuthHandler(accounts, otp, gate, logger),
		Staff:       NewStaffHandler(accounts, gate, logger),
		Deposits:    NewDepositHandler(deposits, gate, logger),
		BankDeposit: NewBankDepositHandler(bankDeps, gate, logger),
		Activities:  NewActivityHandler(activity, gate, logger),
		Roles:       NewRoleHandler(roles, gate, logger),
		Banks:       NewBankHandler(banks, gate, logger),
		Dashboard:   NewDashboardHandler(dashboard, gate, logger),
	}
	return NewRouter(handlers, obs.NewMetrics(), logger)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return resp.Data
}

func signupToken(t *testing.T, router http.Handler, name, email string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/signup", "", map[string]string{
		"name": name, "email": email, "password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup returned %d: %s", rec.Code, rec.Body.String())
	}
	token, _ := decodeData(t, rec)["token"].(string)
	if token == "" {
		t.Fatal("signup returned no token")
	}
	return token
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health returned %d", rec.Code)
	}
}

func TestSignupSignInFlow(t *testing.T) {
	router := newTestRouter(t)
	signupToken(t, router, "Alice", "alice@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/signin", "", map[string]string{
		"email": "alice@example.com", "password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signin returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/signin", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad signin returned %d", rec.Code)
	}
}

func TestCurrentUserRequiresToken(t *testing.T) {
	router := newTestRouter(t)
	token := signupToken(t, router, "Alice", "alice@example.com")

	if rec := doJSON(t, router, http.MethodGet, "/api/v1/user", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/api/v1/user", token, nil); rec.Code != http.StatusOK {
		t.Errorf("valid token: got %d", rec.Code)
	}
}

func TestAnonymousSignupCannotEscalate(t *testing.T) {
	router := newTestRouter(t)
	signupToken(t, router, "Alice", "alice@example.com")

	// A second signup without a bearer token asks for Super Admin and a
	// full matrix; both must be ignored.
	fullMatrix := map[string]map[string]bool{
		"dashboard":       {"view": true},
		"staffManagement": {"view": true, "add": true, "edit": true, "delete": true},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/signup", "", map[string]interface{}{
		"name": "Mallory", "email": "mallory@example.com", "password": "password123",
		"role": "Super Admin", "permissions": fullMatrix,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup returned %d: %s", rec.Code, rec.Body.String())
	}
	token, _ := decodeData(t, rec)["token"].(string)

	if rec := doJSON(t, router, http.MethodGet, "/api/v1/staff/", token, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("staff list with self-granted matrix returned %d, want 403", rec.Code)
	}
}

func TestPrivilegedSignupAssignsMatrix(t *testing.T) {
	router := newTestRouter(t)
	admin := signupToken(t, router, "Alice", "alice@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/signup", admin, map[string]interface{}{
		"name": "Bob", "email": "bob@example.com", "password": "password123",
		"role": "Admin", "permissions": map[string]map[string]bool{
			"staffManagement": {"view": true},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup returned %d: %s", rec.Code, rec.Body.String())
	}
	token, _ := decodeData(t, rec)["token"].(string)

	if rec := doJSON(t, router, http.MethodGet, "/api/v1/staff/", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("staff list with assigned matrix returned %d, want 200", rec.Code)
	}
}

func TestChangePasswordEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := signupToken(t, router, "Alice", "alice@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/change-password", token, map[string]string{
		"currentPassword": "password123", "newPassword": "newpassword1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("change-password returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/signin", "", map[string]string{
		"email": "alice@example.com", "password": "newpassword1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signin after change returned %d", rec.Code)
	}
}

func TestDepositEndpointsEnforceMatrix(t *testing.T) {
	router := newTestRouter(t)
	admin := signupToken(t, router, "Alice", "alice@example.com")
	staff := signupToken(t, router, "Bob", "bob@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/deposits", admin, map[string]interface{}{
		"type": "cash", "amount": 100.0, "currency": "USD",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin create deposit returned %d: %s", rec.Code, rec.Body.String())
	}

	// Second account starts with an empty matrix.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/deposits", staff, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("staff list deposits returned %d, want 403", rec.Code)
	}
}

func TestOtpEndpoints(t *testing.T) {
	router := newTestRouter(t)
	signupToken(t, router, "Alice", "alice@example.com")

	// The noop sender always fails, so the debug fallback returns the code.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/forgot-password/send-otp", "", map[string]string{
		"email": "alice@example.com",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("send-otp returned %d: %s", rec.Code, rec.Body.String())
	}
	code, _ := decodeData(t, rec)["otp"].(string)
	if len(code) != 6 {
		t.Fatalf("expected debug code in response, got %q", code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/forgot-password/verify-otp", "", map[string]string{
		"email": "alice@example.com", "otp": "000000", "newPassword": "newpassword1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong otp returned %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/forgot-password/verify-otp", "", map[string]string{
		"email": "alice@example.com", "otp": code, "newPassword": "newpassword1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify-otp returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/forgot-password/verify-otp", "", map[string]string{
		"email": "alice@example.com", "otp": code, "newPassword": "newpassword1",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("consumed otp returned %d, want 404", rec.Code)
	}
}

func TestDashboardGatedOnView(t *testing.T) {
	router := newTestRouter(t)
	admin := signupToken(t, router, "Alice", "alice@example.com")
	staff := signupToken(t, router, "Bob", "bob@example.com")

	if rec := doJSON(t, router, http.MethodGet, "/api/v1/dashboard/metrics", admin, nil); rec.Code != http.StatusOK {
		t.Errorf("admin dashboard returned %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/api/v1/dashboard/metrics", staff, nil); rec.Code != http.StatusForbidden {
		t.Errorf("staff dashboard returned %d, want 403", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics returned %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/v1/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route returned %d", rec.Code)
	}
}
