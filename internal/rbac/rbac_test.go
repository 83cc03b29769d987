package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		department string
		role       string
		want       AccessLevel
	}{
		{"it department", "IT", "Support Technician", LevelAdmin},
		{"management department", "Management", "Assistant", LevelAdmin},
		{"infrastructure substring", "Cloud Infrastructure", "Operator", LevelAdmin},
		{"devops department wins admin", "DevOps", "Developer", LevelAdmin},
		{"manager role", "Sales", "Regional Manager", LevelAdmin},
		{"director role", "Finance", "Director of Accounting", LevelAdmin},
		{"cto role", "Product", "CTO", LevelAdmin},
		{"head of role", "Marketing", "Head of Growth", LevelAdmin},
		{"engineering department", "Engineering", "Intern", LevelDeveloper},
		{"tech department", "Tech Services", "Coordinator", LevelDeveloper},
		{"developer role", "Design", "Frontend Developer", LevelDeveloper},
		{"architect role", "Consulting", "Solutions Architect", LevelDeveloper},
		{"plain analyst", "Sales", "Account Executive", LevelAnalyst},
		{"case insensitive", "eNgInEeRiNg", "", LevelDeveloper},
		{"empty inputs", "", "", LevelAnalyst},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Resolve(tt.department, tt.role)
			assert.Equal(t, tt.want, got.Level)
			assert.Equal(t, groups[tt.want], got.Group)
		})
	}
}

func TestResolveDepartmentWinsOverRole(t *testing.T) {
	t.Parallel()

	// An admin-class department outranks a developer-class role, and an
	// admin-class role outranks a developer-class department.
	assert.Equal(t, LevelAdmin, Resolve("IT", "Developer").Level)
	assert.Equal(t, LevelAdmin, Resolve("Engineering", "Engineering Manager").Level)
}

func TestGroup(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Desktop-Admins", Group(LevelAdmin).Name)
	assert.Equal(t, "OU=Developers,OU=Desktops", Group(LevelDeveloper).OU)
	assert.Equal(t, "Desktop-Analysts", Group(LevelAnalyst).Name)
}
