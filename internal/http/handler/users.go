package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bday/internal/jobs"
	"bday/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const birthdayLayout = "2006-01-02"

// UserStore is the persistence surface the handlers need. *user.Repo
// implements it.
type UserStore interface {
	Create(ctx context.Context, u *user.User) error
	ByID(ctx context.Context, id uint64) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
	Delete(ctx context.Context, id uint64) (*user.User, error)
	List(ctx context.Context, p user.ListParams) (*user.Page, error)
}

type UsersHandler struct {
	Users UserStore
	Jobs  *jobs.Service
	Log   zerolog.Logger
}

type userReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Birthday string `json:"birthday"` // YYYY-MM-DD
	Timezone string `json:"timezone"`
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalUsers int64 `json:"totalUsers"`
	TotalPages int   `json:"totalPages"`
}

type response struct {
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty"`
	Errors     []string    `json:"errors,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeErrors(w http.ResponseWriter, status int, message string, errs ...string) {
	if len(errs) == 0 {
		errs = []string{message}
	}
	writeJSON(w, status, response{Message: message, Errors: errs})
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := 1, 10
	var errs []string

	if v := strings.TrimSpace(r.URL.Query().Get("page")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, "Page and limit must be numbers")
		} else {
			page = n
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, "Page and limit must be numbers")
		} else {
			limit = n
		}
	}
	if page < 1 || limit < 1 {
		errs = append(errs, "Page and limit must be greater than 0")
	}
	if limit > 100 {
		errs = append(errs, "Limit cannot exceed 100")
	}
	if len(errs) > 0 {
		writeErrors(w, http.StatusBadRequest, "Invalid query parameters", errs...)
		return
	}

	res, err := h.Users.List(r.Context(), user.ListParams{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	})
	if err != nil {
		h.Log.Error().Err(err).Msg("list users")
		writeErrors(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(res.Users) == 0 || page > res.TotalPages {
		writeErrors(w, http.StatusBadRequest, "No users found")
		return
	}

	writeJSON(w, http.StatusOK, response{
		Message: "Users retrieved successfully",
		Data:    res.Users,
		Pagination: &pagination{
			Page:       res.Page,
			Limit:      res.Limit,
			TotalUsers: res.TotalUsers,
			TotalPages: res.TotalPages,
		},
	})
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	u, err := h.Users.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeErrors(w, http.StatusNotFound, "User not found")
			return
		}
		h.Log.Error().Err(err).Uint64("user", id).Msg("get user")
		writeErrors(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, response{Message: "User retrieved successfully", Data: u})
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, birthday, ok := h.decodeAndValidate(w, r)
	if !ok {
		return
	}

	u := &user.User{
		Name:     req.Name,
		Email:    req.Email,
		Birthday: birthday,
		Timezone: req.Timezone,
	}
	if err := h.Users.Create(r.Context(), u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			writeErrors(w, http.StatusBadRequest, "Email already exists")
			return
		}
		h.Log.Error().Err(err).Msg("create user")
		writeErrors(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if _, err := h.Jobs.Schedule(r.Context(), u.Email, u.Name, u.Birthday, u.Timezone); err != nil {
		// The user exists either way; the missed job is an operator concern.
		h.Log.Error().Err(err).Str("email", u.Email).Msg("schedule birthday job")
	}

	writeJSON(w, http.StatusCreated, response{Message: "User created successfully", Data: u})
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	req, birthday, ok := h.decodeAndValidate(w, r)
	if !ok {
		return
	}

	u, err := h.Users.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeErrors(w, http.StatusNotFound, "User not found")
			return
		}
		h.Log.Error().Err(err).Uint64("user", id).Msg("load user for update")
		writeErrors(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	prevEmail := u.Email

	u.Name = req.Name
	u.Email = req.Email
	u.Birthday = birthday
	u.Timezone = req.Timezone
	if err := h.Users.Update(r.Context(), u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			writeErrors(w, http.StatusBadRequest, "Email already exists")
			return
		}
		h.Log.Error().Err(err).Uint64("user", id).Msg("update user")
		writeErrors(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Cancel before insert so the user never holds two live jobs. The prior
	// job is keyed by the email the user had when it was scheduled.
	if _, err := h.Jobs.Cancel(r.Context(), prevEmail); err != nil {
		h.Log.Error().Err(err).Str("email", prevEmail).Msg("cancel birthday job")
	}
	if _, err := h.Jobs.Schedule(r.Context(), u.Email, u.Name, u.Birthday, u.Timezone); err != nil {
		h.Log.Error().Err(err).Str("email", u.Email).Msg("schedule birthday job")
	}

	writeJSON(w, http.StatusOK, response{Message: "User updated successfully", Data: u})
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	u, err := h.Users.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeErrors(w, http.StatusNotFound, "User not found")
			return
		}
		h.Log.Error().Err(err).Uint64("user", id).Msg("delete user")
		writeErrors(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if _, err := h.Jobs.Cancel(r.Context(), u.Email); err != nil {
		h.Log.Error().Err(err).Str("email", u.Email).Msg("cancel birthday job")
	}

	writeJSON(w, http.StatusOK, response{Message: "User deleted successfully", Data: u})
}

func parseID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErrors(w, http.StatusBadRequest, "Invalid parameters", "ID is required")
		return 0, false
	}
	return id, true
}

func (h *UsersHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request) (userReq, time.Time, bool) {
	var req userReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrors(w, http.StatusBadRequest, "Invalid request body", "Request body must be valid JSON")
		return req, time.Time{}, false
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Birthday = strings.TrimSpace(req.Birthday)
	req.Timezone = strings.TrimSpace(req.Timezone)

	if req.Name == "" || req.Email == "" || req.Birthday == "" || req.Timezone == "" {
		writeErrors(w, http.StatusBadRequest, "Name, email, birthday, and timezone are required")
		return req, time.Time{}, false
	}

	birthday, errs := validateUser(req)
	if len(errs) > 0 {
		writeErrors(w, http.StatusBadRequest, "Invalid request body", errs...)
		return req, time.Time{}, false
	}
	return req, birthday, true
}
