package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xavierca1/contactship-crm/internal/entity"
	"github.com/xavierca1/contactship-crm/internal/usecase"
)

type AuthHandler struct {
	loginUC *usecase.LoginUseCase
}

func NewAuthHandler(loginUC *usecase.LoginUseCase) *AuthHandler {
	return &AuthHandler{loginUC: loginUC}
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var input usecase.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	out, err := h.loginUC.Execute(r.Context(), input)
	if errors.Is(err, entity.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}

	writeJSON(w, http.StatusOK, out)
}
