package backend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovatech/deskprov/internal/config"
	"github.com/innovatech/deskprov/internal/platform/dynamo"
	"github.com/innovatech/deskprov/internal/rbac"
)

func testConfig(kind string) *config.Config {
	return &config.Config{
		Backend:         kind,
		AMIID:           "ami-0abc1234",
		InstanceType:    "t3.medium",
		KeyName:         "desktop-key",
		InstanceProfile: "virtual-desktop-profile",
		Network: config.Network{
			SubnetID:            "subnet-0abc",
			SecurityGroupID:     "sg-0abc",
			DirectoryClientSGID: "sg-0def",
		},
		Directory: config.Directory{
			Domain:       "corp.innovatech.local",
			DNSAddrs:     []string{"10.0.0.2", "10.0.1.2"},
			JoinSecretID: "deskprov/ad-join",
		},
	}
}

func testParams(level rbac.AccessLevel) PayloadParams {
	return PayloadParams{
		Name:       "Ada Lovelace",
		Username:   "alovelace",
		Credential: "S3cret!pass",
		Department: "Engineering",
		Role:       "Developer",
		Level:      level,
		Directory: config.Directory{
			Domain:       "corp.innovatech.local",
			DNSAddrs:     []string{"10.0.0.2", "10.0.1.2"},
			JoinSecretID: "deskprov/ad-join",
		},
	}
}

func testEmployee() *dynamo.Employee {
	return &dynamo.Employee{
		ID:         "emp-1",
		Name:       "Ada Lovelace",
		Username:   "alovelace",
		Department: "Engineering",
		Role:       "Developer",
	}
}

func TestNewSelectsVariant(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{
		config.BackendLocal, config.BackendDomainLinux,
		config.BackendDomainWindows, config.BackendManagedAD,
	} {
		be, err := New(testConfig(kind))
		require.NoError(t, err)
		assert.Equal(t, Kind(kind), be.Kind())
	}

	_, err := New(testConfig("mainframe"))
	assert.Error(t, err)
}

func TestRequiresIdentity(t *testing.T) {
	t.Parallel()

	assert.False(t, localBackend{}.RequiresIdentity())
	assert.True(t, domainLinuxBackend{}.RequiresIdentity())
	assert.True(t, domainWindowsBackend{}.RequiresIdentity())
	assert.True(t, managedADBackend{}.RequiresIdentity())
}

func TestLocalPayload(t *testing.T) {
	t.Parallel()

	payload, err := localBackend{}.BuildPayload(testParams(rbac.LevelDeveloper))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(payload, "#!/bin/bash"))
	// The local variant is the only one that carries the credential: the
	// account is created on the box itself.
	assert.Contains(t, payload, "alovelace")
	assert.Contains(t, payload, "S3cret!pass")
	assert.Contains(t, payload, "xrdp")
}

func TestDomainLinuxPayload(t *testing.T) {
	t.Parallel()

	payload, err := domainLinuxBackend{}.BuildPayload(testParams(rbac.LevelDeveloper))
	require.NoError(t, err)

	assert.Contains(t, payload, "corp.innovatech.local")
	assert.Contains(t, payload, "10.0.0.2")
	assert.Contains(t, payload, "realm join")
	// The join credential is fetched by reference at boot; neither it nor the
	// employee credential may appear in the payload.
	assert.Contains(t, payload, "deskprov/ad-join")
	assert.NotContains(t, payload, "S3cret!pass")
}

func TestDomainWindowsPayload(t *testing.T) {
	t.Parallel()

	payload, err := domainWindowsBackend{}.BuildPayload(testParams(rbac.LevelAdmin))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(payload, "<powershell>"))
	assert.Contains(t, payload, "Add-Computer")
	assert.Contains(t, payload, "deskprov/ad-join")
	assert.NotContains(t, payload, "S3cret!pass")
}

func TestPayloadAccessLevels(t *testing.T) {
	t.Parallel()

	admin, err := domainLinuxBackend{}.BuildPayload(testParams(rbac.LevelAdmin))
	require.NoError(t, err)
	assert.Contains(t, admin, "ansible")
	assert.Contains(t, admin, "docker.io")

	developer, err := domainLinuxBackend{}.BuildPayload(testParams(rbac.LevelDeveloper))
	require.NoError(t, err)
	assert.Contains(t, developer, "docker.io")
	assert.NotContains(t, developer, "ansible")

	analyst, err := domainLinuxBackend{}.BuildPayload(testParams(rbac.LevelAnalyst))
	require.NoError(t, err)
	assert.Contains(t, analyst, "libreoffice")
	assert.NotContains(t, analyst, "docker.io")
}

func TestDomainPayloadValidation(t *testing.T) {
	t.Parallel()

	p := testParams(rbac.LevelAnalyst)
	p.Directory.JoinSecretID = ""
	_, err := domainLinuxBackend{}.BuildPayload(p)
	assert.ErrorContains(t, err, "join secret")

	p = testParams(rbac.LevelAnalyst)
	p.Directory.DNSAddrs = nil
	_, err = domainWindowsBackend{}.BuildPayload(p)
	assert.ErrorContains(t, err, "DNS")
}

func TestBuildLaunchRequest(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.BackendDomainLinux)
	be := domainLinuxBackend{}

	payload, err := be.BuildPayload(testParams(rbac.LevelDeveloper))
	require.NoError(t, err)

	req, err := be.BuildLaunchRequest(payload, testEmployee(), rbac.LevelDeveloper, cfg)
	require.NoError(t, err)

	assert.Equal(t, "ami-0abc1234", req.ImageID)
	assert.Equal(t, int32(30), req.VolumeSizeGiB)
	// Joined variants carry the directory-client security group.
	assert.Equal(t, []string{"sg-0abc", "sg-0def"}, req.SecurityGroupIDs)
	assert.Equal(t, "virtual-desktop-alovelace", req.Tags["Name"])
	assert.Equal(t, "developer", req.Tags["AccessLevel"])
	assert.Equal(t, "domain-linux", req.Tags["Backend"])
}

func TestBuildLaunchRequestLocal(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.BackendLocal)
	be := localBackend{}

	payload, err := be.BuildPayload(testParams(rbac.LevelAnalyst))
	require.NoError(t, err)

	req, err := be.BuildLaunchRequest(payload, testEmployee(), rbac.LevelAnalyst, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"sg-0abc"}, req.SecurityGroupIDs)
}

func TestBuildLaunchRequestWindowsVolume(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.BackendDomainWindows)
	be := domainWindowsBackend{}

	payload, err := be.BuildPayload(testParams(rbac.LevelDeveloper))
	require.NoError(t, err)

	req, err := be.BuildLaunchRequest(payload, testEmployee(), rbac.LevelDeveloper, cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(50), req.VolumeSizeGiB)
}

func TestBuildLaunchRequestMissingDirectorySG(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.BackendDomainLinux)
	cfg.Network.DirectoryClientSGID = ""
	be := domainLinuxBackend{}

	payload, err := be.BuildPayload(testParams(rbac.LevelDeveloper))
	require.NoError(t, err)

	_, err = be.BuildLaunchRequest(payload, testEmployee(), rbac.LevelDeveloper, cfg)
	assert.ErrorContains(t, err, "directory-client security group")
}

func TestBuildLaunchRequestNilEmployee(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.BackendLocal)
	_, err := localBackend{}.BuildLaunchRequest("payload", nil, rbac.LevelAnalyst, cfg)
	assert.Error(t, err)
}
