package handler

import (
	"net/http"
	"strings"

	"mycore/internal/auth"
	"mycore/internal/store"
)

type SuggestionHandler struct {
	Store *store.Store
}

// Suggestions filters the template catalog by ?interests=a,b; with no
// query it falls back to the caller's stored interests.
func (h *SuggestionHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var interests []string
	for _, i := range strings.Split(r.URL.Query().Get("interests"), ",") {
		i = strings.TrimSpace(strings.ToUpper(i))
		if i != "" {
			interests = append(interests, i)
		}
	}

	suggested, err := h.Store.Suggestions(r.Context(), uid, interests)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, suggested)
}

type StatsHandler struct {
	Store *store.Store
}

func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	stats, err := h.Store.Stats(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}
