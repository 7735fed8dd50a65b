package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/lifevault/internal/vault"
)

type createPasswordRequest struct {
	ServiceName string `json:"serviceName" validate:"required,max=200"`
	Username    string `json:"username" validate:"max=200"`
	Email       string `json:"email" validate:"omitempty,email"`
	URL         string `json:"url" validate:"omitempty,url"`
	Notes       string `json:"notes" validate:"max=5000"`
	Category    string `json:"category" validate:"max=100"`
	Password    string `json:"password" validate:"required"`
}

type updatePasswordRequest struct {
	ServiceName *string `json:"serviceName" validate:"omitempty,max=200"`
	Username    *string `json:"username" validate:"omitempty,max=200"`
	Email       *string `json:"email" validate:"omitempty,email"`
	URL         *string `json:"url" validate:"omitempty,url"`
	Notes       *string `json:"notes" validate:"omitempty,max=5000"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Password    *string `json:"password"`
}

type passwordResponse struct {
	ID          uuid.UUID `json:"id"`
	ServiceName string    `json:"serviceName"`
	Username    string    `json:"username,omitempty"`
	Email       string    `json:"email,omitempty"`
	URL         string    `json:"url,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Category    string    `json:"category,omitempty"`
	Password    string    `json:"password,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toPasswordResponse(e vault.Entry) passwordResponse {
	return passwordResponse{
		ID:          e.ID,
		ServiceName: e.ServiceName,
		Username:    e.Username,
		Email:       e.Email,
		URL:         e.URL,
		Notes:       e.Notes,
		Category:    e.Category,
		Password:    e.Password,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func entryID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return id, nil
}

func (a *api) listPasswords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := a.vault.List(r.Context(), identity(r).UserID, vault.ListFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	})
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	out := make([]passwordResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toPasswordResponse(e))
	}
	respondWithMeta(w, out, map[string]any{"count": len(out)})
}

// createPassword answers without the password; callers fetch it with
// revealPassword.
func (a *api) createPassword(w http.ResponseWriter, r *http.Request) {
	var req createPasswordRequest
	if err := decode(r, &req); err != nil {
		a.errs.write(w, r, err)
		return
	}
	e, err := a.vault.Create(r.Context(), identity(r).UserID, vault.CreateInput{
		ServiceName: req.ServiceName,
		Username:    req.Username,
		Email:       req.Email,
		URL:         req.URL,
		Notes:       req.Notes,
		Category:    req.Category,
		Password:    req.Password,
	})
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	e.Password = ""
	respond(w, http.StatusCreated, toPasswordResponse(e))
}

func (a *api) revealPassword(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	e, err := a.vault.Reveal(r.Context(), identity(r).UserID, id)
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	respond(w, http.StatusOK, toPasswordResponse(e))
}

func (a *api) updatePassword(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	var req updatePasswordRequest
	if err := decode(r, &req); err != nil {
		a.errs.write(w, r, err)
		return
	}
	e, err := a.vault.Update(r.Context(), identity(r).UserID, id, vault.UpdateInput{
		ServiceName: req.ServiceName,
		Username:    req.Username,
		Email:       req.Email,
		URL:         req.URL,
		Notes:       req.Notes,
		Category:    req.Category,
		Password:    req.Password,
	})
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	e.Password = ""
	respond(w, http.StatusOK, toPasswordResponse(e))
}

func (a *api) deletePassword(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	if err := a.vault.Delete(r.Context(), identity(r).UserID, id); err != nil {
		a.errs.write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) generatePassword(w http.ResponseWriter, r *http.Request) {
	length := 0
	if raw := r.URL.Query().Get("length"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			a.errs.write(w, r, ValidationError{"length": {"must be an integer"}})
			return
		}
		length = n
	}
	pw, err := a.vault.GeneratePassword(length)
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"password": pw, "length": len([]rune(pw))})
}
