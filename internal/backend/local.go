package backend

import (
	"fmt"

	"github.com/innovatech/deskprov/internal/config"
	"github.com/innovatech/deskprov/internal/platform/compute"
	"github.com/innovatech/deskprov/internal/platform/dynamo"
	"github.com/innovatech/deskprov/internal/rbac"
)

// localBackend provisions a desktop with an OS-local account. The only
// variant that embeds the credential in the payload, because there is no
// external identity to carry it.
type localBackend struct{}

func (localBackend) Kind() Kind { return KindLocal }

func (localBackend) RequiresIdentity() bool { return false }

func (localBackend) BuildPayload(p PayloadParams) (string, error) {
	if p.Username == "" || p.Credential == "" {
		return "", fmt.Errorf("local payload requires username and credential")
	}
	return renderPayload("local_linux.sh.tmpl", p)
}

func (b localBackend) BuildLaunchRequest(payload string, emp *dynamo.Employee, level rbac.AccessLevel, cfg *config.Config) (*compute.LaunchRequest, error) {
	return buildLaunchRequest(b.Kind(), payload, emp, level, cfg, 30, false)
}
