package backend

import (
	"fmt"

	"github.com/innovatech/deskprov/internal/config"
	"github.com/innovatech/deskprov/internal/platform/compute"
	"github.com/innovatech/deskprov/internal/platform/dynamo"
	"github.com/innovatech/deskprov/internal/rbac"
)

// domainLinuxBackend provisions a Linux desktop joined to the self-managed AD
// domain. The identity is created out of band (SNS push channel); the payload
// joins the machine using the delegated join secret and never sees the
// employee's credential.
type domainLinuxBackend struct{}

func (domainLinuxBackend) Kind() Kind { return KindDomainLinux }

func (domainLinuxBackend) RequiresIdentity() bool { return true }

func (domainLinuxBackend) BuildPayload(p PayloadParams) (string, error) {
	if err := validateDomainParams(p); err != nil {
		return "", err
	}
	return renderPayload("domain_linux.sh.tmpl", p)
}

func (b domainLinuxBackend) BuildLaunchRequest(payload string, emp *dynamo.Employee, level rbac.AccessLevel, cfg *config.Config) (*compute.LaunchRequest, error) {
	return buildLaunchRequest(b.Kind(), payload, emp, level, cfg, 30, true)
}

func validateDomainParams(p PayloadParams) error {
	switch {
	case p.Username == "":
		return fmt.Errorf("domain payload requires a username")
	case p.Directory.Domain == "":
		return fmt.Errorf("domain payload requires a directory domain")
	case len(p.Directory.DNSAddrs) == 0:
		return fmt.Errorf("domain payload requires directory DNS addresses")
	case p.Directory.JoinSecretID == "":
		return fmt.Errorf("domain payload requires a join secret reference")
	}
	return nil
}
