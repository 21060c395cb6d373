// Package thread models the claim message log as a tagged union of typed
// entries and projects it back into claim state.
package thread

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"FindIt/internal/core/claim"
)

// MessageType discriminates thread entries.
type MessageType string

const (
	TypeText             MessageType = "text"
	TypeSystem           MessageType = "system"
	TypeIdentityForm     MessageType = "identity_form"
	TypeIdentityResponse MessageType = "identity_response"
	TypeHandoverInit     MessageType = "handover_init"
	TypeHandoverConfirm  MessageType = "handover_confirm"
)

// SystemSenderID is the sender of entries generated by the service itself.
const SystemSenderID int64 = 0

// Payload is one variant of the tagged union.
type Payload interface {
	Type() MessageType
}

// TextPayload is free chat text.
type TextPayload struct {
	Text string `json:"text"`
}

// SystemEvent names what a system entry records.
type SystemEvent string

const (
	EventClaimCreated      SystemEvent = "claim_created"
	EventClaimRejected     SystemEvent = "claim_rejected"
	EventClaimAutoRejected SystemEvent = "claim_auto_rejected"
	EventCodeRevoked       SystemEvent = "code_revoked"
)

// SystemPayload is a service-generated note.
type SystemPayload struct {
	Event SystemEvent `json:"event"`
	Note  string      `json:"note,omitempty"`
}

// IdentitySchema selects the shape of the verification payload.
type IdentitySchema string

const (
	// SchemaQuestions asks four fixed questions answered in free text.
	SchemaQuestions IdentitySchema = "questions"
	// SchemaDetails asks for structured loss details.
	SchemaDetails IdentitySchema = "details"
)

// IdentityQuestions are the fixed prompts of SchemaQuestions.
var IdentityQuestions = []string{
	"What color is the item?",
	"Describe any unique marks or features",
	"Describe or tell us what your wallpaper is",
	"What was the last thing you did with the item?",
}

// ParseSchema defaults an empty value to SchemaDetails.
func ParseSchema(s string) (IdentitySchema, error) {
	switch IdentitySchema(s) {
	case "", SchemaDetails:
		return SchemaDetails, nil
	case SchemaQuestions:
		return SchemaQuestions, nil
	}
	return "", fmt.Errorf("%w: unknown identity schema %q", claim.ErrValidation, s)
}

// IdentityFormPayload is the finder's request for verification.
type IdentityFormPayload struct {
	Schema  IdentitySchema `json:"schema"`
	Prompts []string       `json:"prompts,omitempty"`
}

// NewIdentityForm builds the form for schema, including prompts for SchemaQuestions.
func NewIdentityForm(schema IdentitySchema) IdentityFormPayload {
	f := IdentityFormPayload{Schema: schema}
	if schema == SchemaQuestions {
		f.Prompts = append([]string(nil), IdentityQuestions...)
	}
	return f
}

// IdentityDetails is the structured variant of a verification answer.
type IdentityDetails struct {
	FullName          string `json:"full_name"`
	PlaceFound        string `json:"place_found,omitempty"`
	DateOfLoss        string `json:"date_of_loss,omitempty"`
	LocationOfLoss    string `json:"location_of_loss,omitempty"`
	UnlockDescription string `json:"unlock_description,omitempty"`
}

// IdentityResponsePayload is the claimant's answer. Exactly one of Answers
// and Details is set, matching Schema.
type IdentityResponsePayload struct {
	Schema  IdentitySchema   `json:"schema"`
	Answers []string         `json:"answers,omitempty"`
	Details *IdentityDetails `json:"details,omitempty"`
}

// Validate checks the response against the requested schema. minLen applies
// to the combined free text of the answer.
func (p IdentityResponsePayload) Validate(requested IdentitySchema, minLen int) error {
	if p.Schema != requested {
		return fmt.Errorf("%w: expected %s answers, got %q", claim.ErrValidation, requested, p.Schema)
	}
	var parts []string
	switch p.Schema {
	case SchemaQuestions:
		if p.Details != nil {
			return fmt.Errorf("%w: details are not expected for questions", claim.ErrValidation)
		}
		if len(p.Answers) != len(IdentityQuestions) {
			return fmt.Errorf("%w: expected %d answers, got %d", claim.ErrValidation, len(IdentityQuestions), len(p.Answers))
		}
		for i, a := range p.Answers {
			if strings.TrimSpace(a) == "" {
				return fmt.Errorf("%w: answer %d is empty", claim.ErrValidation, i+1)
			}
			parts = append(parts, strings.TrimSpace(a))
		}
	case SchemaDetails:
		if p.Details == nil || len(p.Answers) > 0 {
			return fmt.Errorf("%w: details are required", claim.ErrValidation)
		}
		d := p.Details
		if strings.TrimSpace(d.FullName) == "" {
			return fmt.Errorf("%w: full_name is required", claim.ErrValidation)
		}
		if d.DateOfLoss != "" {
			if _, err := time.Parse(time.DateOnly, d.DateOfLoss); err != nil {
				return fmt.Errorf("%w: date_of_loss must be YYYY-MM-DD", claim.ErrValidation)
			}
		}
		for _, s := range []string{d.FullName, d.PlaceFound, d.LocationOfLoss, d.UnlockDescription} {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
	default:
		return fmt.Errorf("%w: unknown identity schema %q", claim.ErrValidation, p.Schema)
	}
	text := strings.Join(parts, " ")
	if n := utf8.RuneCountInString(text); n < minLen {
		return fmt.Errorf("%w: answers must contain at least %d characters, got %d", claim.ErrValidation, minLen, n)
	}
	if utf8.RuneCountInString(text) > claim.MaxMessageLength {
		return fmt.Errorf("%w: answers are too long", claim.ErrValidation)
	}
	return nil
}

// HandoverStage distinguishes the two handover_init events.
type HandoverStage string

const (
	StageInitiated  HandoverStage = "initiated"
	StageCodeIssued HandoverStage = "code_issued"
)

// HandoverInitPayload records either the finder initiating the handover or a
// code being issued. The code digits are never part of the payload.
type HandoverInitPayload struct {
	Stage     HandoverStage `json:"stage"`
	Owner     claim.Role    `json:"owner,omitempty"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
}

// HandoverConfirmPayload records a successful code verification.
type HandoverConfirmPayload struct {
	ConfirmedBy claim.Role `json:"confirmed_by"`
	ItemID      string     `json:"item_id"`
}

func (TextPayload) Type() MessageType             { return TypeText }
func (SystemPayload) Type() MessageType           { return TypeSystem }
func (IdentityFormPayload) Type() MessageType     { return TypeIdentityForm }
func (IdentityResponsePayload) Type() MessageType { return TypeIdentityResponse }
func (HandoverInitPayload) Type() MessageType     { return TypeHandoverInit }
func (HandoverConfirmPayload) Type() MessageType  { return TypeHandoverConfirm }

// Encode serialises a payload for storage.
func Encode(p Payload) (MessageType, []byte, error) {
	if p == nil {
		return "", nil, fmt.Errorf("%w: nil payload", claim.ErrValidation)
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s payload: %w", p.Type(), err)
	}
	return p.Type(), b, nil
}

// Decode restores the variant for t. Text entries without a payload fall back
// to content.
func Decode(t MessageType, content string, raw []byte) (Payload, error) {
	empty := len(raw) == 0 || string(raw) == "null"
	switch t {
	case TypeText:
		p := TextPayload{Text: content}
		if !empty {
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, fmt.Errorf("decode text payload: %w", err)
			}
		}
		return p, nil
	case TypeSystem:
		return decodeInto[SystemPayload](t, raw, empty)
	case TypeIdentityForm:
		return decodeInto[IdentityFormPayload](t, raw, empty)
	case TypeIdentityResponse:
		return decodeInto[IdentityResponsePayload](t, raw, empty)
	case TypeHandoverInit:
		return decodeInto[HandoverInitPayload](t, raw, empty)
	case TypeHandoverConfirm:
		return decodeInto[HandoverConfirmPayload](t, raw, empty)
	}
	return nil, fmt.Errorf("%w: unknown message type %q", claim.ErrValidation, t)
}

func decodeInto[P Payload](t MessageType, raw []byte, empty bool) (Payload, error) {
	var p P
	if empty {
		return nil, fmt.Errorf("%w: %s entry without payload", claim.ErrValidation, t)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return p, nil
}
