package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/nava-store/internal/auth"
)

type AuthHandler struct {
	Auth *auth.Authenticator
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/api/login", h.login)
}

// kredensial kosong diperlakukan sama dengan kredensial salah (401)
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	token, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
