package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"

	"moma/handlers"
	"moma/services/auth"
)

func newAuthRouter(t *testing.T) (*mux.Router, *auth.LocalProvider) {
	t.Helper()
	provider, err := auth.NewLocalProvider(auth.LocalOptions{
		Fs:         afero.NewMemMapFs(),
		StorageDir: "/auth",
		Secret:     "handler-secret",
		SessionTTL: time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	h := handlers.NewAuthHandler(provider)
	r := mux.NewRouter()
	r.Use(handlers.SessionMiddleware(provider))
	r.HandleFunc("/api/auth/signup", h.SignUp).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", h.Logout).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/me", h.Me).Methods(http.MethodGet)
	return r, provider
}

func postJSON(r http.Handler, path string, body any, token string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type loginResponse struct {
	Token    string `json:"token"`
	Redirect string `json:"redirect"`
	User     struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func TestSignUpLoginMeLogout(t *testing.T) {
	r, _ := newAuthRouter(t)
	creds := map[string]string{"email": "ada@example.com", "password": "secret1"}

	rec := postJSON(r, "/api/auth/signup", creds, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected signup 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var signup loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &signup); err != nil {
		t.Fatalf("failed to decode signup: %v", err)
	}
	if signup.Redirect != "/" || signup.Token == "" || signup.User.Email != "ada@example.com" {
		t.Fatalf("unexpected signup response %+v", signup)
	}

	rec = postJSON(r, "/api/auth/signup", creds, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected duplicate signup 409, got %d", rec.Code)
	}

	rec = postJSON(r, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "wrong-pass"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected bad login 401, got %d", rec.Code)
	}

	rec = postJSON(r, "/api/auth/login", creds, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login 200, got %d", rec.Code)
	}
	var login loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("failed to decode login: %v", err)
	}

	meReq := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	meReq.Header.Set("Authorization", "Bearer "+login.Token)
	meRec := httptest.NewRecorder()
	r.ServeHTTP(meRec, meReq)
	if meRec.Code != http.StatusOK {
		t.Fatalf("expected me 200, got %d", meRec.Code)
	}

	rec = postJSON(r, "/api/auth/logout", nil, login.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected logout 200, got %d", rec.Code)
	}
	var logout map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &logout); err != nil {
		t.Fatalf("failed to decode logout: %v", err)
	}
	if logout["redirect"] != "/login" {
		t.Fatalf("expected redirect to /login, got %q", logout["redirect"])
	}

	meRec = httptest.NewRecorder()
	r.ServeHTTP(meRec, meReq)
	if meRec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked token to be rejected, got %d", meRec.Code)
	}
}

func TestSignUpRejectsInvalidForm(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec := postJSON(r, "/api/auth/signup", map[string]string{"email": "nope", "password": "123"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Error  string            `json:"error"`
		Fields []auth.FieldError `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %+v", body.Fields)
	}
	if body.Fields[0].Message != "Please provide a valid email address" {
		t.Fatalf("unexpected email message %q", body.Fields[0].Message)
	}
}

func TestSignUpRejectsPasswordOverBcryptLimit(t *testing.T) {
	r, _ := newAuthRouter(t)

	for _, password := range []string{strings.Repeat("a", 73), strings.Repeat("é", 40)} {
		rec := postJSON(r, "/api/auth/signup", map[string]string{"email": "long@example.com", "password": password}, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %d byte password, got %d: %s", len(password), rec.Code, rec.Body.String())
		}
		var body struct {
			Fields []auth.FieldError `json:"fields"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(body.Fields) != 1 || body.Fields[0].Field != "password" {
			t.Fatalf("expected one password field error, got %+v", body.Fields)
		}
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	r, _ := newAuthRouter(t)
	rec := postJSON(r, "/api/auth/logout", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected logout 200, got %d", rec.Code)
	}
}
