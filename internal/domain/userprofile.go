package domain

import (
	"strings"
	"time"
)

// UserProfile carries the preferences the recommendation generator must honor.
type UserProfile struct {
	ID                 string
	Name               string
	Role               string
	CommunicationStyle string
	AcceptedCategories []string
	AvoidedCategories  []string
	Constraints        []Constraint
	CreatedAt          time.Time
}

// Avoids reports whether category is on the user's avoided list (case-insensitive).
func (p *UserProfile) Avoids(category string) bool {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return false
	}
	for _, a := range p.AvoidedCategories {
		if strings.ToLower(strings.TrimSpace(a)) == c {
			return true
		}
	}
	return false
}

// ActiveConstraints returns constraints whose window contains now.
func (p *UserProfile) ActiveConstraints(now time.Time) []Constraint {
	var out []Constraint
	for _, c := range p.Constraints {
		if c.ActiveAt(now) {
			out = append(out, c)
		}
	}
	return out
}

// Constraint is a user-declared restriction on what can be recommended.
type Constraint struct {
	Kind            ConstraintKind `json:"kind"`
	Description     string         `json:"description"`
	Start           *time.Time     `json:"start,omitempty"`
	End             *time.Time     `json:"end,omitempty"`
	BlockedKeywords []string       `json:"blocked_keywords,omitempty"`
}

// ActiveAt reports whether now falls inside the constraint window.
// Open-ended bounds are unbounded on that side.
func (c Constraint) ActiveAt(now time.Time) bool {
	if c.Start != nil && now.Before(*c.Start) {
		return false
	}
	if c.End != nil && now.After(*c.End) {
		return false
	}
	return true
}

var builtinBlockedKeywords = map[ConstraintKind][]string{
	ConstraintNoPTO: {
		"time off", "vacation", "day off", "days off", "pto", "sabbatical",
		"take leave", "annual leave", "leave of absence",
	},
	ConstraintNoNewMeetings: {"schedule a meeting", "new meeting", "book a meeting", "set up a call"},
}

// Keywords returns the constraint's explicit keywords plus the built-ins for its kind.
func (c Constraint) Keywords() []string {
	out := append([]string{}, builtinBlockedKeywords[c.Kind]...)
	for _, k := range c.BlockedKeywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, strings.ToLower(k))
		}
	}
	return out
}
