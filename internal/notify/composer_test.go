package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovatech/deskprov/internal/backend"
	"github.com/innovatech/deskprov/internal/rbac"
)

func testParams() Params {
	return Params{
		Name:        "Ada Lovelace",
		Username:    "alovelace",
		Credential:  "S3cret!pass",
		PrivateIP:   "10.0.1.23",
		VPNEndpoint: "203.0.113.10",
		Domain:      "corp.innovatech.local",
		Level:       rbac.LevelDeveloper,
		Backend:     backend.KindDomainLinux,
	}
}

func TestCompose(t *testing.T) {
	t.Parallel()

	msg, err := Compose(testParams())
	require.NoError(t, err)

	assert.Equal(t, "Welcome to Innovatech - Your Account & Virtual Desktop", msg.Subject)

	for _, body := range []string{msg.Text, msg.HTML} {
		assert.Contains(t, body, "Hi Ada,")
		assert.Contains(t, body, "alovelace")
		assert.Contains(t, body, "S3cret!pass")
		assert.Contains(t, body, "10.0.1.23:3389")
		assert.Contains(t, body, "203.0.113.10")
		assert.Contains(t, body, "corp.innovatech.local")
	}
}

func TestComposeDeterministic(t *testing.T) {
	t.Parallel()

	a, err := Compose(testParams())
	require.NoError(t, err)
	b, err := Compose(testParams())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComposeOmitsEmptyOptionals(t *testing.T) {
	t.Parallel()

	p := testParams()
	p.Backend = backend.KindLocal
	p.Domain = ""
	p.VPNEndpoint = ""

	msg, err := Compose(p)
	require.NoError(t, err)
	assert.NotContains(t, msg.Text, "Domain:")
	assert.NotContains(t, msg.Text, "VPN Server:")
}

func TestLoginHint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "alovelace",
		loginHint(backend.KindLocal, "", "alovelace"))
	assert.Equal(t, `CORP\alovelace`,
		loginHint(backend.KindDomainWindows, "corp.innovatech.local", "alovelace"))
	assert.Equal(t, "alovelace (or alovelace@corp.innovatech.local)",
		loginHint(backend.KindDomainLinux, "corp.innovatech.local", "alovelace"))
	assert.Equal(t, "alovelace (or alovelace@corp.innovatech.local)",
		loginHint(backend.KindManagedAD, "corp.innovatech.local", "alovelace"))
}

func TestSudoNote(t *testing.T) {
	t.Parallel()

	assert.Contains(t, sudoNote(rbac.LevelAdmin), "has administrative")
	assert.Contains(t, sudoNote(rbac.LevelDeveloper), "has administrative")
	assert.Contains(t, sudoNote(rbac.LevelAnalyst), "does not have")
}

func TestFirstName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ada", firstName("Ada Lovelace"))
	assert.Equal(t, "Cher", firstName("Cher"))
	assert.Equal(t, "there", firstName(""))
}
