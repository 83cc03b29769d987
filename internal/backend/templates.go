package backend

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// payloadData is the template context for bootstrap payloads. DNS1/DNS2 are
// split out because the resolver and wait-loop snippets address them
// individually.
type payloadData struct {
	Name       string
	Username   string
	Credential string
	Department string
	Role       string
	Level      string
	Sudo       bool
	Packages   string

	Domain       string
	DomainUpper  string
	DNS1         string
	DNS2         string
	JoinSecretID string
}

func newPayloadData(p PayloadParams) payloadData {
	d := payloadData{
		Name:         p.Name,
		Username:     p.Username,
		Credential:   p.Credential,
		Department:   p.Department,
		Role:         p.Role,
		Level:        string(p.Level),
		Sudo:         sudoFor(p.Level),
		Packages:     strings.Join(packagesFor(p.Level), " "),
		Domain:       p.Directory.Domain,
		DomainUpper:  strings.ToUpper(p.Directory.Domain),
		JoinSecretID: p.Directory.JoinSecretID,
	}
	if len(p.Directory.DNSAddrs) > 0 {
		d.DNS1 = p.Directory.DNSAddrs[0]
	}
	if len(p.Directory.DNSAddrs) > 1 {
		d.DNS2 = p.Directory.DNSAddrs[1]
	}
	return d
}

// renderPayload executes one embedded payload template.
func renderPayload(name string, p PayloadParams) (string, error) {
	content, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read payload template %s: %w", name, err)
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse payload template %s: %w", name, err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, newPayloadData(p)); err != nil {
		return "", fmt.Errorf("failed to execute payload template %s: %w", name, err)
	}
	return out.String(), nil
}
