package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/lifevault/internal/auth"
	"github.com/dmitrymomot/lifevault/internal/store"
	"github.com/dmitrymomot/lifevault/internal/twofactor"
)

type codeRequest struct {
	Code string `json:"code" validate:"required,max=16"`
}

type secondFactorRequest struct {
	Code       string `json:"code" validate:"required_without=BackupCode,max=16"`
	BackupCode string `json:"backupCode" validate:"required_without=Code,max=16"`
}

type tokenResponse struct {
	AccessToken          string    `json:"accessToken"`
	TokenType            string    `json:"tokenType"`
	ExpiresAt            time.Time `json:"expiresAt"`
	BackupCodesRemaining *int      `json:"backupCodesRemaining,omitempty"`
}

type enrollmentResponse struct {
	Secret        string   `json:"secret"`
	BackupCodes   []string `json:"backupCodes"`
	EnrollmentURI string   `json:"enrollmentUri"`
	QRCode        string   `json:"qrCode"`
}

type backupCodesResponse struct {
	Enabled     bool     `json:"enabled"`
	BackupCodes []string `json:"backupCodes"`
}

type statusResponse struct {
	State                twofactor.State `json:"state"`
	Enabled              bool            `json:"enabled"`
	BackupCodesRemaining int             `json:"backupCodesRemaining"`
}

type summaryResponse struct {
	TwoFactor           statusResponse `json:"twoFactor"`
	RecentActivityCount int            `json:"recentActivityCount"`
	LastActivity        *time.Time     `json:"lastActivity"`
}

type eventResponse struct {
	ID         uuid.UUID      `json:"id"`
	Action     string         `json:"action"`
	Result     string         `json:"result"`
	EntityType string         `json:"entityType,omitempty"`
	EntityID   string         `json:"entityId,omitempty"`
	IPAddress  string         `json:"ipAddress,omitempty"`
	UserAgent  string         `json:"userAgent,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func identity(r *http.Request) auth.Identity {
	// Routes are mounted behind auth.Middleware.
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}

// loginSecondFactor exchanges an mfa token and a second factor for an access
// token.
func (a *api) loginSecondFactor(w http.ResponseWriter, r *http.Request) {
	var req secondFactorRequest
	if err := decode(r, &req); err != nil {
		a.errs.write(w, r, err)
		return
	}
	id := identity(r)

	var remaining *int
	if req.Code != "" {
		if err := a.twoFactor.VerifyLogin(r.Context(), id.UserID, req.Code); err != nil {
			a.errs.write(w, r, err)
			return
		}
	} else {
		n, err := a.twoFactor.UseBackupCode(r.Context(), id.UserID, req.BackupCode)
		if err != nil {
			a.errs.write(w, r, err)
			return
		}
		remaining = &n
	}

	tok, err := a.tokens.IssueAccess(id.UserID, id.Email)
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	respond(w, http.StatusOK, tokenResponse{
		AccessToken:          tok.Value,
		TokenType:            "Bearer",
		ExpiresAt:            tok.ExpiresAt,
		BackupCodesRemaining: remaining,
	})
}

func (a *api) twoFactorStatus(w http.ResponseWriter, r *http.Request) {
	st, err := a.twoFactor.Status(r.Context(), identity(r).UserID)
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	respond(w, http.StatusOK, toStatusResponse(st))
}

func (a *api) enableTwoFactor(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	label := id.Email
	if label == "" {
		label = id.UserID.String()
	}

	enrollment, err := a.twoFactor.Enable(r.Context(), id.UserID, label)
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	qr, err := a.qr.DataURI(enrollment.EnrollmentURI)
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	respond(w, http.StatusOK, enrollmentResponse{
		Secret:        enrollment.Secret,
		BackupCodes:   enrollment.BackupCodes,
		EnrollmentURI: enrollment.EnrollmentURI,
		QRCode:        qr,
	})
}

func (a *api) verifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decode(r, &req); err != nil {
		a.errs.write(w, r, err)
		return
	}
	codes, err := a.twoFactor.Confirm(r.Context(), identity(r).UserID, req.Code)
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	respond(w, http.StatusOK, backupCodesResponse{Enabled: true, BackupCodes: codes})
}

// disableTwoFactor accepts an empty body for abandoning a pending enrollment.
func (a *api) disableTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code       string `json:"code" validate:"max=16"`
		BackupCode string `json:"backupCode" validate:"max=16"`
	}
	if err := decode(r, &req); err != nil {
		a.errs.write(w, r, err)
		return
	}
	err := a.twoFactor.Disable(r.Context(), identity(r).UserID, twofactor.Credentials{
		Code:       req.Code,
		BackupCode: req.BackupCode,
	})
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	respond(w, http.StatusOK, statusResponse{State: twofactor.StateDisabled})
}

func (a *api) regenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := decode(r, &req); err != nil {
		a.errs.write(w, r, err)
		return
	}
	codes, err := a.twoFactor.RegenerateBackupCodes(r.Context(), identity(r).UserID, req.Code)
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	respond(w, http.StatusOK, backupCodesResponse{Enabled: true, BackupCodes: codes})
}

func (a *api) securitySummary(w http.ResponseWriter, r *http.Request) {
	sum, err := a.twoFactor.Summary(r.Context(), identity(r).UserID)
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	respond(w, http.StatusOK, summaryResponse{
		TwoFactor:           toStatusResponse(sum.Status),
		RecentActivityCount: sum.RecentActivityCount,
		LastActivity:        sum.LastActivity,
	})
}

func (a *api) auditLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50, 1, 100)
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0, 0, 1<<20)
	if err != nil {
		a.errs.write(w, r, err)
		return
	}

	events, err := a.twoFactor.Events(r.Context(), identity(r).UserID, limit, offset)
	if err != nil {
		a.errs.write(w, r, err)
		return
	}
	out := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventResponse(ev))
	}
	respondWithMeta(w, out, map[string]any{"limit": limit, "offset": offset, "count": len(out)})
}

func toStatusResponse(st twofactor.Status) statusResponse {
	return statusResponse{
		State:                st.State,
		Enabled:              st.State == twofactor.StateEnabled,
		BackupCodesRemaining: st.BackupCodesRemaining,
	}
}

func toEventResponse(ev store.SecurityEvent) eventResponse {
	return eventResponse{
		ID:         ev.ID,
		Action:     ev.Action,
		Result:     ev.Result,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
		IPAddress:  ev.IPAddress,
		UserAgent:  ev.UserAgent,
		Metadata:   ev.Metadata,
		CreatedAt:  ev.CreatedAt,
	}
}
