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

type TaskHandler struct {
	Store *store.Store
}

type taskReq struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueAt       *time.Time     `json:"due_at"`
	Priority    habit.Priority `json:"priority"`
	Category    string         `json:"category"`
	ProjectID   *string        `json:"project_id"`
	Completed   bool           `json:"completed"`
	RemindAt    *time.Time     `json:"remind_at"`
}

func (req taskReq) toTask() habit.Task {
	priority := req.Priority
	if priority == "" {
		priority = habit.PriorityMedium
	}
	return habit.Task{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		DueAt:       req.DueAt,
		Priority:    priority,
		Category:    req.Category,
		ProjectID:   req.ProjectID,
		Completed:   req.Completed,
		RemindAt:    req.RemindAt,
	}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	tasks, err := h.Store.Tasks(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req taskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	created, err := h.Store.AddTask(r.Context(), uid, req.toTask())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(created)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req taskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	t := req.toTask()
	t.ID = id
	updated, err := h.Store.UpdateTask(r.Context(), uid, t)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if updated.ID == "" {
		// unknown task: idempotent no-op
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, updated)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteTask(r.Context(), uid, id); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
