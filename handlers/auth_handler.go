package handlers

import (
	"log/slog"
	"net/http"

	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/services"
)

type AuthHandler struct {
	auth   services.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth services.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register godoc
// @Summary Create a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param input body services.RegisterInput true "Registration data"
// @Success 201 {object} models.User
// @Router /auth/signup [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readJSON(r, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.auth.Register(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login godoc
// @Summary Exchange credentials for a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginRequest true "Credentials"
// @Success 200 {object} loginResponse
// @Router /auth/signin [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}
