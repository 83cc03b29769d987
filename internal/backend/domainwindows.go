package backend

import (
	"github.com/innovatech/deskprov/internal/config"
	"github.com/innovatech/deskprov/internal/platform/compute"
	"github.com/innovatech/deskprov/internal/platform/dynamo"
	"github.com/innovatech/deskprov/internal/rbac"
)

// domainWindowsBackend provisions a Windows desktop joined to the AD domain.
// Same join delegation as the Linux variant; Windows images get a larger
// volume and the root device is carried by the AMI's block mapping name.
type domainWindowsBackend struct{}

func (domainWindowsBackend) Kind() Kind { return KindDomainWindows }

func (domainWindowsBackend) RequiresIdentity() bool { return true }

func (domainWindowsBackend) BuildPayload(p PayloadParams) (string, error) {
	if err := validateDomainParams(p); err != nil {
		return "", err
	}
	return renderPayload("domain_windows.ps1.tmpl", p)
}

func (b domainWindowsBackend) BuildLaunchRequest(payload string, emp *dynamo.Employee, level rbac.AccessLevel, cfg *config.Config) (*compute.LaunchRequest, error) {
	return buildLaunchRequest(b.Kind(), payload, emp, level, cfg, 50, true)
}
