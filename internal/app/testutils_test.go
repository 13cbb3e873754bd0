package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oneshowhq/oneshow/internal/domain"
	"github.com/oneshowhq/oneshow/internal/mailer"
	"github.com/oneshowhq/oneshow/internal/mocks"
	"github.com/oneshowhq/oneshow/internal/payment"
	"github.com/oneshowhq/oneshow/internal/validator"
	"github.com/stretchr/testify/mock"
)

const (
	testUserId     = "user_2mK4x"
	testAdminId    = "user_admin_1"
	testUserToken  = "valid-user-token"
	testAdminToken = "valid-admin-token"
)

func newTestApplication(opts ...func(*Application)) *Application {
	verifier := new(mocks.MockIdentityVerifier)
	verifier.On("VerifyToken", mock.Anything, testUserToken).
		Return(domain.Identity{UserID: testUserId}, nil).Maybe()
	verifier.On("VerifyToken", mock.Anything, testAdminToken).
		Return(domain.Identity{UserID: testAdminId, Admin: true}, nil).Maybe()
	verifier.On("VerifyToken", mock.Anything, mock.Anything).
		Return(domain.Identity{}, domain.ErrInvalidToken).Maybe()

	cfg := Config{Env: "test"}
	cfg.Gateway.Currency = "INR"
	cfg.Identity.WebhookSecret = "test-webhook-secret"

	app := &Application{
		config:           cfg,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		validator:        validator.NewValidator(),
		mailer:           mailer.NewMockMailer(),
		identityVerifier: verifier,
		paymentProvider:  payment.NewMockProvider("rzp_test_key", "test-gateway-secret"),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

func executeRequest(t *testing.T, app *Application, method, url string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)

	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	app.Routes().ServeHTTP(w, r)

	return w
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var resp T
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return resp
}

func checkErrorMessage(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantMessage string) {
	t.Helper()

	if wantStatus >= 200 && wantStatus < 300 {
		return
	}

	if wantStatus == http.StatusUnprocessableEntity {
		resp := decodeResponse[ValidationErrorResponse](t, w)

		errorSet := make(map[string]bool)
		for _, vErr := range resp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if wantMessage != "" && !errorSet[wantMessage] {
			t.Errorf("expected validation error %q not found in %v", wantMessage, resp.ValidationErrors)
		}

		return
	}

	resp := decodeResponse[ErrorResponse](t, w)

	if wantMessage != "" && resp.Message != wantMessage {
		t.Errorf("error message = %q, want %q", resp.Message, wantMessage)
	}
}

func ptr[T any](v T) *T {
	return &v
}
