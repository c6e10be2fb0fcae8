package auth

import (
	"sort"
	"strings"

	"github.com/fixmarket/backend/internal/domain/identity"
)

// AllowList is the static operator directory. Membership is fixed at
// construction; changing it requires a restart.
type AllowList struct {
	ids map[string]struct{}
}

// NewAllowList creates an allow-list from the configured operator IDs.
// Blank entries are ignored.
func NewAllowList(ids []string) *AllowList {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return &AllowList{ids: set}
}

// IsOperator reports whether the participant is on the allow-list
func (a *AllowList) IsOperator(participantID string) bool {
	_, ok := a.ids[participantID]
	return ok
}

// IDs returns every allow-listed identifier in stable order. This is
// the operator broadcast audience, whether or not the identifier has
// ever registered.
func (a *AllowList) IDs() []string {
	ids := make([]string, 0, len(a.ids))
	for id := range a.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Size returns the number of allow-listed operators
func (a *AllowList) Size() int {
	return len(a.ids)
}

var _ identity.OperatorDirectory = (*AllowList)(nil)
