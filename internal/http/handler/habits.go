package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"mycore/internal/auth"
	"mycore/internal/habit"
	"mycore/internal/store"

	"github.com/go-chi/chi/v5"
)

type HabitHandler struct {
	Store *store.Store
}

func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	habits, err := h.Store.Habits(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, habits)
}

type habitReq struct {
	Name          string            `json:"name"`
	Icon          string            `json:"icon"`
	Category      string            `json:"category"`
	Schedule      habit.Schedule    `json:"schedule"`
	Trigger       habit.TriggerType `json:"trigger"`
	TriggerConfig json.RawMessage   `json:"trigger_config"`
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req habitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	if req.Schedule == "" {
		req.Schedule = habit.ScheduleDaily
	}
	if req.Trigger == "" {
		req.Trigger = habit.TriggerManual
	}

	created, err := h.Store.AddHabit(r.Context(), uid, habit.Habit{
		Name:          strings.TrimSpace(req.Name),
		Icon:          req.Icon,
		Category:      req.Category,
		Schedule:      req.Schedule,
		Trigger:       req.Trigger,
		TriggerConfig: req.TriggerConfig,
	})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(created)
}

// Week materializes and returns the instances for the calendar week
// containing ?date= (default today).
func (h *HabitHandler) Week(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	anchor := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := habit.ParseDate(d)
		if err != nil {
			http.Error(w, "bad date", http.StatusBadRequest)
			return
		}
		anchor = parsed
	}

	instances, err := h.Store.WeekInstances(r.Context(), uid, habit.WeekDates(anchor))
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, instances)
}

type instanceStatusReq struct {
	Completed bool     `json:"completed"`
	Value     *float64 `json:"value,omitempty"`
}

func (h *HabitHandler) UpdateInstance(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req instanceStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	if err := h.Store.UpdateInstanceStatus(r.Context(), uid, id, req.Completed, req.Value); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
