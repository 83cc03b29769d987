// Package backend builds the bootstrap payload and launch request for each
// provisioning variant.
//
// Historically this logic existed as near-identical pipelines per target
// (plain Linux user, domain-joined Linux, domain-joined Windows, managed
// directory). They are unified here behind one capability set; the variant is
// selected by configuration, never by code duplication. Backends are pure:
// they assemble values and render templates but never call external services.
package backend

import (
	"fmt"

	"github.com/innovatech/deskprov/internal/config"
	"github.com/innovatech/deskprov/internal/platform/compute"
	"github.com/innovatech/deskprov/internal/platform/dynamo"
	"github.com/innovatech/deskprov/internal/rbac"
	"github.com/innovatech/deskprov/internal/util/tags"
)

// Kind identifies a provisioning backend variant.
type Kind string

const (
	KindLocal         Kind = config.BackendLocal
	KindDomainLinux   Kind = config.BackendDomainLinux
	KindDomainWindows Kind = config.BackendDomainWindows
	KindManagedAD     Kind = config.BackendManagedAD
)

// PayloadParams carries the per-instance fields a bootstrap payload embeds.
// Exactly these fields and nothing more: directory administrator credentials
// never appear in a payload, joins are delegated to the secret referenced by
// Directory.JoinSecretID.
type PayloadParams struct {
	Name       string
	Username   string
	Credential string
	Department string
	Role       string
	Level      rbac.AccessLevel
	Directory  config.Directory
}

// Backend is the capability set every variant implements.
type Backend interface {
	Kind() Kind

	// RequiresIdentity reports whether the orchestrator must run the identity
	// step before compute launch. False only for the local-account variant,
	// where user creation is embedded in the payload.
	RequiresIdentity() bool

	// BuildPayload renders the machine-startup script for one instance.
	// Fails only on invalid or missing required fields.
	BuildPayload(p PayloadParams) (string, error)

	// BuildLaunchRequest assembles the full launch specification around a
	// rendered payload.
	BuildLaunchRequest(payload string, emp *dynamo.Employee, level rbac.AccessLevel, cfg *config.Config) (*compute.LaunchRequest, error)
}

// New returns the backend selected by configuration.
func New(cfg *config.Config) (Backend, error) {
	switch cfg.Backend {
	case config.BackendLocal:
		return &localBackend{}, nil
	case config.BackendDomainLinux:
		return &domainLinuxBackend{}, nil
	case config.BackendDomainWindows:
		return &domainWindowsBackend{}, nil
	case config.BackendManagedAD:
		return &managedADBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// buildLaunchRequest is the shared assembly used by every variant. Joined
// variants add the directory-client security group; Windows gets the larger
// volume.
func buildLaunchRequest(kind Kind, payload string, emp *dynamo.Employee, level rbac.AccessLevel, cfg *config.Config, volumeGiB int32, directoryJoined bool) (*compute.LaunchRequest, error) {
	if emp == nil || emp.ID == "" || emp.Username == "" {
		return nil, fmt.Errorf("launch request requires an employee with id and username")
	}

	groups := []string{cfg.Network.SecurityGroupID}
	if directoryJoined {
		if cfg.Network.DirectoryClientSGID == "" {
			return nil, fmt.Errorf("backend %s requires a directory-client security group", kind)
		}
		groups = append(groups, cfg.Network.DirectoryClientSGID)
	}

	req := &compute.LaunchRequest{
		ImageID:          cfg.AMIID,
		InstanceType:     cfg.InstanceType,
		KeyName:          cfg.KeyName,
		InstanceProfile:  cfg.InstanceProfile,
		SubnetID:         cfg.Network.SubnetID,
		SecurityGroupIDs: groups,
		VolumeSizeGiB:    volumeGiB,
		UserData:         payload,
		Tags: tags.NewBuilder().
			WithName(fmt.Sprintf("virtual-desktop-%s", emp.Username)).
			WithEmployee(emp.Name, emp.ID).
			WithDepartment(emp.Department).
			WithRole(emp.Role).
			WithAccessLevel(string(level)).
			WithBackend(string(kind)).
			Build(),
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// packagesFor returns the access-level software set for Linux variants.
func packagesFor(level rbac.AccessLevel) []string {
	base := []string{"xfce4", "xfce4-goodies", "xrdp", "firefox"}
	switch level {
	case rbac.LevelAdmin:
		return append(base, "git", "build-essential", "python3-pip", "docker.io", "ansible", "awscli")
	case rbac.LevelDeveloper:
		return append(base, "git", "build-essential", "python3-pip", "docker.io")
	default:
		return append(base, "libreoffice")
	}
}

// sudoFor reports whether the access level gets sudo on its desktop.
func sudoFor(level rbac.AccessLevel) bool {
	return level == rbac.LevelAdmin || level == rbac.LevelDeveloper
}
