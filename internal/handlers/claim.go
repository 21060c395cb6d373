package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"FindIt/internal/core/claim"
	"FindIt/internal/core/thread"
	"FindIt/internal/model"
	"FindIt/internal/service"
)

// ClaimHandler: протокол заявки: от создания до передачи вещи.
type ClaimHandler struct {
	ClaimService *service.ClaimService
	Logger       *zap.SugaredLogger
}

func NewClaimHandler(claimService *service.ClaimService, logger *zap.SugaredLogger) *ClaimHandler {
	return &ClaimHandler{ClaimService: claimService, Logger: logger}
}

// ClaimDTO: заявка в ответах API.
type ClaimDTO struct {
	ID             string             `json:"claim_id"`
	ItemID         string             `json:"item_id"`
	FinderID       int64              `json:"finder_id"`
	ClaimantID     int64              `json:"claimant_id"`
	Status         claim.Status       `json:"status"`
	LegacyStatus   claim.LegacyStatus `json:"legacy_status"`
	Role           claim.Role         `json:"role,omitempty"`
	Proof          string             `json:"proof,omitempty"`
	ItemTitle      string             `json:"item_title,omitempty"`
	OtherPartyName string             `json:"other_party_name,omitempty"`
	LastMessage    string             `json:"last_message,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func toClaimDTO(c *model.Claim, role claim.Role) ClaimDTO {
	return ClaimDTO{
		ID:           c.ID,
		ItemID:       c.ItemID,
		FinderID:     c.FinderID,
		ClaimantID:   c.ClaimantID,
		Status:       c.Status,
		LegacyStatus: c.Status.Legacy(),
		Role:         role,
		Proof:        c.Proof,
		CreatedAt:    c.CreatedAt.UTC(),
		UpdatedAt:    c.UpdatedAt.UTC(),
	}
}

// ThreadViewDTO: лента, размеченная для участника.
type ThreadViewDTO struct {
	Claim   ClaimDTO      `json:"claim"`
	Entries []thread.View `json:"entries"`
	// Подсказки для клиента, восстановленные из ленты.
	IdentityFormOutstanding bool       `json:"identity_form_outstanding"`
	CodeOutstanding         bool       `json:"code_outstanding"`
	CodeExpiresAt           *time.Time `json:"code_expires_at,omitempty"`
}

type createClaimRequest struct {
	ItemID string `json:"item_id"`
	Proof  string `json:"proof,omitempty"`
}

func (h *ClaimHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req createClaimRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.ClaimService.CreateClaim(r.Context(), req.ItemID, uid, req.Proof)
	if err != nil {
		writeError(w, h.Logger, "CreateClaim", err)
		return
	}
	writeJSON(w, http.StatusCreated, toClaimDTO(c, claim.RoleClaimant))
}

func (h *ClaimHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	rows, err := h.ClaimService.ListClaims(r.Context(), uid)
	if err != nil {
		writeError(w, h.Logger, "ListClaims", err)
		return
	}
	out := make([]ClaimDTO, 0, len(rows))
	for i := range rows {
		dto := toClaimDTO(&rows[i].Claim, rows[i].Role)
		dto.ItemTitle = rows[i].ItemTitle
		dto.OtherPartyName = rows[i].OtherPartyName
		dto.LastMessage = rows[i].LastMessage
		out = append(out, dto)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ClaimHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	c, role, err := h.ClaimService.GetClaim(r.Context(), chi.URLParam(r, "claimID"), uid)
	if err != nil {
		writeError(w, h.Logger, "GetClaim", err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(c, role))
}

// Thread отдаёт сообщения по порядку; ?after=N: только новее seq N.
func (h *ClaimHandler) Thread(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var after int64
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			writeErrorKind(w, http.StatusBadRequest, "validation_failed", "after must be a non-negative integer")
			return
		}
		after = n
	}
	entries, err := h.ClaimService.GetThread(r.Context(), chi.URLParam(r, "claimID"), uid, after)
	if err != nil {
		writeError(w, h.Logger, "GetThread", err)
		return
	}
	if entries == nil {
		entries = []thread.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *ClaimHandler) View(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	v, err := h.ClaimService.ViewThread(r.Context(), chi.URLParam(r, "claimID"), uid)
	if err != nil {
		writeError(w, h.Logger, "ViewThread", err)
		return
	}
	writeJSON(w, http.StatusOK, ThreadViewDTO{
		Claim:                   toClaimDTO(v.Claim, v.Role),
		Entries:                 v.Entries,
		IdentityFormOutstanding: v.State.IdentityFormOutstanding,
		CodeOutstanding:         v.State.CodeOutstanding,
		CodeExpiresAt:           v.State.CodeExpiresAt,
	})
}

type postMessageRequest struct {
	Content string `json:"content"`
}

func (h *ClaimHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req postMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, err := h.ClaimService.PostTextMessage(r.Context(), chi.URLParam(r, "claimID"), uid, req.Content)
	if err != nil {
		writeError(w, h.Logger, "PostMessage", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

type requestIdentityRequest struct {
	Schema thread.IdentitySchema `json:"schema,omitempty"`
}

func (h *ClaimHandler) RequestIdentity(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req requestIdentityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.ClaimService.RequestIdentity(r.Context(), chi.URLParam(r, "claimID"), uid, req.Schema)
	h.respondClaim(w, "RequestIdentity", c, claim.RoleFinder, err)
}

func (h *ClaimHandler) SubmitIdentity(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req thread.IdentityResponsePayload
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.ClaimService.SubmitIdentity(r.Context(), chi.URLParam(r, "claimID"), uid, req)
	h.respondClaim(w, "SubmitIdentity", c, claim.RoleClaimant, err)
}

func (h *ClaimHandler) InitiateHandover(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	c, err := h.ClaimService.InitiateHandover(r.Context(), chi.URLParam(r, "claimID"), uid)
	h.respondClaim(w, "InitiateHandover", c, claim.RoleFinder, err)
}

// CodeResponse: выданный код передачи.
type CodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Reused    bool      `json:"reused"`
}

func (h *ClaimHandler) StartCode(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	g, err := h.ClaimService.StartHandoverCode(r.Context(), chi.URLParam(r, "claimID"), uid)
	if err != nil {
		writeError(w, h.Logger, "StartHandoverCode", err)
		return
	}
	writeJSON(w, http.StatusOK, CodeResponse{Code: g.Code, ExpiresAt: g.ExpiresAt.UTC(), Reused: g.Reused})
}

type verifyCodeRequest struct {
	Code string `json:"code"`
}

func (h *ClaimHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req verifyCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.ClaimService.VerifyHandoverCode(r.Context(), chi.URLParam(r, "claimID"), uid, req.Code)
	if err != nil {
		writeError(w, h.Logger, "VerifyHandoverCode", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": c.Status, "claim_id": c.ID})
}

type rejectRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (h *ClaimHandler) Reject(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req rejectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.ClaimService.RejectClaim(r.Context(), chi.URLParam(r, "claimID"), uid, req.Reason)
	h.respondClaim(w, "RejectClaim", c, claim.RoleFinder, err)
}

func (h *ClaimHandler) respondClaim(w http.ResponseWriter, op string, c *model.Claim, role claim.Role, err error) {
	if err != nil {
		writeError(w, h.Logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimDTO(c, role))
}
