package contact

import (
	"strings"
	"time"

	"github.com/fixmarket/backend/internal/domain/shared"
)

// Status represents the triage status of a contact request
type Status string

const (
	StatusNew  Status = "NEW"
	StatusDone Status = "DONE"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	return s == StatusNew || s == StatusDone
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Source tags where a contact request came from
type Source string

const (
	SourceButtonFlow Source = "BUTTON_FLOW"
	SourceFreeText   Source = "FREE_TEXT"
)

// IsValid checks if the source is a valid Source
func (s Source) IsValid() bool {
	return s == SourceButtonFlow || s == SourceFreeText
}

// minPhoneDigits is the minimum number of digits a dialable number needs
const minPhoneDigits = 7

// NormalizePhone reduces free-form phone text to digits with an optional
// leading "+". Returns shared.ErrInvalidPhone when fewer than 7 digits
// remain.
func NormalizePhone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)

	var b strings.Builder
	for _, ch := range trimmed {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	digits := b.String()
	if len(digits) < minPhoneDigits {
		return "", shared.ErrInvalidPhone
	}

	if strings.HasPrefix(trimmed, "+") {
		return "+" + digits, nil
	}
	return digits, nil
}

// Request is a callback request queued for operator follow-up. The
// requester's display name is snapshotted at submission time so the
// triage list stays meaningful even after a profile refresh.
type Request struct {
	ID            int64
	RequesterID   string
	RequesterName string
	Phone         string
	Source        Source
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewRequest creates a new contact request with a normalized phone number
func NewRequest(id int64, requesterID, requesterName, rawPhone string, source Source) (*Request, error) {
	if id <= 0 {
		return nil, shared.NewDomainError("INVALID_REQUEST_ID", "Request ID must be positive")
	}
	if strings.TrimSpace(requesterID) == "" {
		return nil, shared.NewDomainError("INVALID_REQUESTER", "Requester ID cannot be empty")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Unknown contact request source")
	}

	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Request{
		ID:            id,
		RequesterID:   requesterID,
		RequesterName: requesterName,
		Phone:         phone,
		Source:        source,
		Status:        StatusNew,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// MarkDone moves the request to done. Idempotent; done is terminal.
func (r *Request) MarkDone() {
	if r.Status == StatusDone {
		return
	}
	r.Status = StatusDone
	r.UpdatedAt = time.Now()
}
