package httpapi

import (
	"net/http"

	"oakfire-be/internal/user"
)

type AuthHandler struct {
	svc user.Service
}

func NewAuthHandler(svc user.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponseDTO struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

// PostLogin handles POST /auth/login.
func (h *AuthHandler) PostLogin(w http.ResponseWriter, r *http.Request) {
	var dto loginDTO
	if err := decodeBody(r, &dto); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if dto.Email == "" || dto.Password == "" {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "email and password are required"})
		return
	}

	token, admin, err := h.svc.Login(r.Context(), dto.Email, dto.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, http.StatusOK, loginResponseDTO{
		Success: true,
		Token:   token,
		Email:   admin.Email,
		Role:    string(admin.Role),
	})
}
