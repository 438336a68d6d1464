package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"go.uber.org/zap"

	"github.com/mediafeed/service/internal/response"
	"github.com/mediafeed/service/internal/user"
)

const minPasswordLength = 8

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type credentialsRequest struct {
	Email    string `json:"email"    example:"alice@example.com"`
	Password string `json:"password" example:"correct horse battery"`
}

type tokenData struct {
	AccessToken string `json:"access_token" example:"eyJhbGci..."`
	TokenType   string `json:"token_type"   example:"bearer"`
}

func (req credentialsRequest) validate() string {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "invalid email address"
	}
	if len(req.Password) < minPasswordLength {
		return "password must be at least 8 characters"
	}
	return ""
}

// Register godoc
//
//	@Summary		Register new user
//	@Description	Create an account with an email and password.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		credentialsRequest	true	"Credentials"
//	@Success		201		{object}	user.User
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		response.BadRequest(w, msg)
		return
	}

	u, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			response.Conflict(w, "email already registered")
			return
		}
		h.log.Error("register user", zap.Error(err))
		response.InternalError(w, "")
		return
	}

	response.Created(w, u)
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Exchange an email and password for a bearer token.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		credentialsRequest	true	"Credentials"
//	@Success		200		{object}	tokenData
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/jwt/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, "invalid email or password")
			return
		}
		h.log.Error("login", zap.Error(err))
		response.InternalError(w, "")
		return
	}

	response.OK(w, tokenData{AccessToken: token, TokenType: "bearer"})
}
