package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"moma/models"
	"moma/services/auth"
)

// AuthHandler runs every request through a fresh auth.Gateway so the
// redirect it chooses can be returned to the client.
type AuthHandler struct {
	Provider auth.Provider
}

func NewAuthHandler(provider auth.Provider) *AuthHandler {
	return &AuthHandler{Provider: provider}
}

type authResponse struct {
	Token    string       `json:"token"`
	User     *models.User `json:"user"`
	Redirect string       `json:"redirect"`
}

// passwordTooLong covers passwords short enough in characters to pass the
// form but longer than bcrypt accepts in bytes.
var passwordTooLong = auth.FieldError{Field: "password", Message: "Password must be at most 72 bytes long"}

func writeFieldErrors(w http.ResponseWriter, fields []auth.FieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  auth.ErrInvalidForm.Error(),
		"fields": fields,
	})
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, auth.ModeSignUp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, auth.ModeSignIn)
}

func (h *AuthHandler) submit(w http.ResponseWriter, r *http.Request, mode auth.Mode) {
	form := auth.InitForm()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(form); err != nil {
		writeError(w, http.StatusBadRequest, auth.ErrInvalidForm.Error())
		return
	}

	var redirect string
	gateway := auth.NewGateway(h.Provider, auth.NavigatorFunc(func(path string) { redirect = path }))
	defer gateway.Close()

	if err := gateway.Submit(r.Context(), mode, form); err != nil {
		var ve *auth.ValidationError
		switch {
		case errors.As(err, &ve):
			writeFieldErrors(w, ve.Fields)
		case errors.Is(err, auth.ErrPasswordTooLong):
			writeFieldErrors(w, []auth.FieldError{passwordTooLong})
		case errors.Is(err, auth.ErrEmailTaken):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token:    gateway.Token(),
		User:     gateway.CurrentUser(),
		Redirect: redirect,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var redirect string
	gateway := auth.NewGateway(h.Provider, auth.NavigatorFunc(func(path string) { redirect = path }))
	defer gateway.Close()

	if token := tokenFromContext(r.Context()); token != "" {
		// An unverifiable token leaves nothing to revoke.
		_ = gateway.Resume(r.Context(), token)
	}
	if err := gateway.SignOut(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": redirect})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, auth.ErrSessionInvalid.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}
