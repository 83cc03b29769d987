// Package rbac maps an employee's department and role to an access level and
// the directory group that carries it.
//
// Resolution is a pure function: same inputs always yield the same policy, and
// nothing here touches an external service. Matching is case-insensitive
// substring matching against fixed keyword sets, checked in a strict order so
// that department classification wins over role classification.
package rbac

import "strings"

// AccessLevel is the tier of access granted to a provisioned desktop.
type AccessLevel string

// Access levels, from most to least privileged.
const (
	LevelAdmin     AccessLevel = "admin"
	LevelDeveloper AccessLevel = "developer"
	LevelAnalyst   AccessLevel = "analyst"
)

// GroupRef names the directory group and organizational unit that back an
// access level. The provisioning backends translate it into their own group
// placement (AD group for joined variants, local group membership otherwise).
type GroupRef struct {
	Name string
	OU   string
}

// Policy is the result of resolving department and role.
type Policy struct {
	Level AccessLevel
	Group GroupRef
}

var (
	adminDepartments = []string{"it", "management", "infrastructure", "devops"}
	adminRoles       = []string{"manager", "director", "admin", "cto", "cio", "head of"}

	developerDepartments = []string{"engineering", "development", "devops", "tech"}
	developerRoles       = []string{"developer", "engineer", "architect"}
)

var groups = map[AccessLevel]GroupRef{
	LevelAdmin:     {Name: "Desktop-Admins", OU: "OU=Admins,OU=Desktops"},
	LevelDeveloper: {Name: "Desktop-Developers", OU: "OU=Developers,OU=Desktops"},
	LevelAnalyst:   {Name: "Desktop-Analysts", OU: "OU=Analysts,OU=Desktops"},
}

// Resolve determines the access policy for an employee. The order matters:
// admin-class departments, then admin-class roles, then developer-class
// departments, then developer-class roles; everything else is an analyst.
func Resolve(department, role string) Policy {
	dept := strings.ToLower(department)
	r := strings.ToLower(role)

	level := LevelAnalyst
	switch {
	case matchesAny(dept, adminDepartments):
		level = LevelAdmin
	case matchesAny(r, adminRoles):
		level = LevelAdmin
	case matchesAny(dept, developerDepartments):
		level = LevelDeveloper
	case matchesAny(r, developerRoles):
		level = LevelDeveloper
	}

	return Policy{Level: level, Group: groups[level]}
}

// Group returns the directory group backing an access level.
func Group(level AccessLevel) GroupRef {
	return groups[level]
}

func matchesAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
