// Package rbac holds the role policy: a fixed total order of roles where a
// lower rank means more privilege.
package rbac

import "strings"

// Rank is a role's position in the hierarchy. 0 is the most privileged.
type Rank int

// Roles from most to least privileged.
const (
	Developer  Rank = 0
	Pastor     Rank = 1
	VicePastor Rank = 2
	Secretary  Rank = 3
	Department Rank = 4
	Leader     Rank = 5
	Social     Rank = 6
	Member     Rank = 7
)

// Default is the rank given to newly registered users.
const Default = Member

var ranksByName = map[string]Rank{
	"developer":  Developer,
	"pastor":     Pastor,
	"vicepastor": VicePastor,
	"secretaria": Secretary,
	"department": Department,
	"lider":      Leader,
	"social":     Social,
	"membro":     Member,
}

var labels = [...]string{
	Developer:  "Desenvolvedor",
	Pastor:     "Pastor Presidente",
	VicePastor: "Pastor Vice-Presidente",
	Secretary:  "Secretário/a",
	Department: "Líder de Departamento",
	Leader:     "Líder",
	Social:     "Influenciador",
	Member:     "Membro",
}

// Lookup returns the rank for a role name, ignoring case and surrounding space.
func Lookup(name string) (Rank, bool) {
	r, ok := ranksByName[strings.ToLower(strings.TrimSpace(name))]
	return r, ok
}

// Valid reports whether r is part of the policy.
func (r Rank) Valid() bool {
	return r >= Developer && r <= Member
}

// Label returns the display label stored alongside the rank.
func (r Rank) Label() string {
	if !r.Valid() {
		return ""
	}
	return labels[r]
}

// Outranks reports whether r is strictly more privileged than other.
func (r Rank) Outranks(other Rank) bool {
	return r < other
}

// CanResetPassword reports whether an actor may replace another user's password.
// Only the top rank may.
func CanResetPassword(actor Rank) bool {
	return actor == Developer
}

// CanManageRoles reports whether an actor may assign roles at all.
func CanManageRoles(actor Rank) bool {
	return actor == Developer
}

// CanAssign reports whether an actor may grant the given rank.
// Only the top rank may assign roles, and it must outrank the granted role
// unless it is granting the top rank itself.
func CanAssign(actor, granted Rank) bool {
	if !CanManageRoles(actor) || !granted.Valid() {
		return false
	}
	return actor.Outranks(granted) || granted == Developer
}
