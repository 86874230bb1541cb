package auth

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
)

// Role is a single member of the closed role set.
type Role uint8

const (
	RoleUser Role = 1 << iota
	RoleAdmin
)

// allRoles fixes iteration order for Names and JSON encoding.
var allRoles = []Role{RoleUser, RoleAdmin}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// ParseRole maps a stored role label to a Role. Labels are matched after
// trimming and lower-casing; anything else is common.ErrInvalidRole.
func ParseRole(label string) (Role, error) {
	norm := strings.ToLower(strings.TrimSpace(label))
	for _, r := range allRoles {
		if r.String() == norm {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", common.ErrInvalidRole, label)
}

// Roles is a set of roles stored as a bitmask. The zero value is the empty set.
type Roles uint8

// NewRoles builds a set from its members. Duplicates collapse.
func NewRoles(rs ...Role) Roles {
	var s Roles
	for _, r := range rs {
		s |= Roles(r)
	}
	return s
}

// ParseRoles builds a set from role labels.
func ParseRoles(labels []string) (Roles, error) {
	var s Roles
	for _, l := range labels {
		r, err := ParseRole(l)
		if err != nil {
			return 0, err
		}
		s |= Roles(r)
	}
	return s, nil
}

func (s Roles) Has(r Role) bool {
	return s&Roles(r) != 0
}

// Intersects reports whether s and o share at least one role.
func (s Roles) Intersects(o Roles) bool {
	return s&o != 0
}

func (s Roles) Empty() bool {
	return s == 0
}

// Names lists the labels of the members in a fixed order.
func (s Roles) Names() []string {
	names := make([]string, 0, len(allRoles))
	for _, r := range allRoles {
		if s.Has(r) {
			names = append(names, r.String())
		}
	}
	return names
}

func (s Roles) String() string {
	return strings.Join(s.Names(), ",")
}

// MarshalJSON encodes the set as a list of labels, e.g. ["user"].
func (s Roles) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

// UnmarshalJSON rejects unknown labels.
func (s *Roles) UnmarshalJSON(b []byte) error {
	var labels []string
	if err := json.Unmarshal(b, &labels); err != nil {
		return err
	}
	parsed, err := ParseRoles(labels)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
