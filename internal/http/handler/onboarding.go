package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"mycore/internal/auth"
	"mycore/internal/habit"
	"mycore/internal/store"
)

type OnboardingHandler struct {
	Store *store.Store
}

type onboardingReq struct {
	Interests []string `json:"interests"`
	Habits    []struct {
		Name          string            `json:"name"`
		Icon          string            `json:"icon"`
		Category      string            `json:"category"`
		Schedule      habit.Schedule    `json:"schedule"`
		Trigger       habit.TriggerType `json:"trigger"`
		TriggerConfig json.RawMessage   `json:"trigger_config"`
	} `json:"habits"`
	Permissions habit.Settings `json:"permissions"`
}

func (h *OnboardingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req onboardingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	habits := make([]habit.Habit, 0, len(req.Habits))
	for _, in := range req.Habits {
		if in.Name == "" {
			http.Error(w, "habit name required", http.StatusBadRequest)
			return
		}
		habits = append(habits, habit.Habit{
			Name:          in.Name,
			Icon:          in.Icon,
			Category:      in.Category,
			Schedule:      in.Schedule,
			Trigger:       in.Trigger,
			TriggerConfig: in.TriggerConfig,
		})
	}

	err := h.Store.CompleteOnboarding(r.Context(), uid, req.Interests, habits, req.Permissions)
	if errors.Is(err, store.ErrAlreadyOnboarded) {
		http.Error(w, "already onboarded", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
