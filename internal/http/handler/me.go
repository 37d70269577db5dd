package handler

import (
	"encoding/json"
	"net/http"

	"mycore/internal/auth"
	"mycore/internal/store"
)

type MeHandler struct {
	Store *store.Store
}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	u, err := h.Store.User(r.Context(), uid)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}

// Reset clears the caller's session state; whether durable data goes
// with it is the store's reset policy.
func (h *MeHandler) Reset(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	if err := h.Store.Reset(r.Context(), uid); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
