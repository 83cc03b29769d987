package backend

import (
	"github.com/innovatech/deskprov/internal/config"
	"github.com/innovatech/deskprov/internal/platform/compute"
	"github.com/innovatech/deskprov/internal/platform/dynamo"
	"github.com/innovatech/deskprov/internal/rbac"
)

// managedADBackend provisions a Linux desktop joined to AWS Managed Microsoft
// AD. The join sequence is identical to the self-managed domain variant; what
// differs is the identity step, which targets the Directory Service API
// instead of the configuration-management push channel.
type managedADBackend struct{}

func (managedADBackend) Kind() Kind { return KindManagedAD }

func (managedADBackend) RequiresIdentity() bool { return true }

func (managedADBackend) BuildPayload(p PayloadParams) (string, error) {
	if err := validateDomainParams(p); err != nil {
		return "", err
	}
	return renderPayload("domain_linux.sh.tmpl", p)
}

func (b managedADBackend) BuildLaunchRequest(payload string, emp *dynamo.Employee, level rbac.AccessLevel, cfg *config.Config) (*compute.LaunchRequest, error) {
	return buildLaunchRequest(b.Kind(), payload, emp, level, cfg, 30, true)
}
