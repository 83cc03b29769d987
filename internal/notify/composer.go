// Package notify renders the credential notification sent to a new employee.
//
// Composition is deterministic and pure; delivery is the mailer's problem and
// its failure never fails a provisioning attempt, because the compute and
// identity side effects have already happened by the time an email goes out.
package notify

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/innovatech/deskprov/internal/backend"
	"github.com/innovatech/deskprov/internal/rbac"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Params carries everything the message embeds.
type Params struct {
	Name        string
	Username    string
	Credential  string
	PrivateIP   string
	VPNEndpoint string
	Domain      string
	Level       rbac.AccessLevel
	Backend     backend.Kind
}

// Message is a composed notification ready for delivery.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// messageData is the shared template context for the text and HTML bodies.
type messageData struct {
	FirstName   string
	Username    string
	Credential  string
	DesktopAddr string
	VPNEndpoint string
	Domain      string
	Level       string
	LoginHint   string
	Tools       string
	SudoNote    string
	DelayNote   string
}

// Compose renders the subject and both bodies. It never fails on well-formed
// input; the only error paths are template problems, which are programming
// errors surfaced at test time.
func Compose(p Params) (Message, error) {
	data := messageData{
		FirstName:   firstName(p.Name),
		Username:    p.Username,
		Credential:  p.Credential,
		DesktopAddr: fmt.Sprintf("%s:3389", p.PrivateIP),
		VPNEndpoint: p.VPNEndpoint,
		Domain:      p.Domain,
		Level:       string(p.Level),
		LoginHint:   loginHint(p.Backend, p.Domain, p.Username),
		Tools:       toolsFor(p.Level),
		SudoNote:    sudoNote(p.Level),
		DelayNote:   delayNote(p.Backend),
	}

	text, err := renderText("credentials.txt.tmpl", data)
	if err != nil {
		return Message{}, err
	}
	html, err := renderHTML("credentials.html.tmpl", data)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Subject: "Welcome to Innovatech - Your Account & Virtual Desktop",
		Text:    text,
		HTML:    html,
	}, nil
}

// loginHint spells out the login format for the backend: plain username for
// local accounts, DOMAIN\username or username@domain for joined desktops.
func loginHint(kind backend.Kind, domain, username string) string {
	switch kind {
	case backend.KindLocal:
		return username
	case backend.KindDomainWindows:
		return fmt.Sprintf(`%s\%s`, strings.ToUpper(firstLabel(domain)), username)
	default:
		return fmt.Sprintf("%s (or %s@%s)", username, username, domain)
	}
}

func toolsFor(level rbac.AccessLevel) string {
	switch level {
	case rbac.LevelAdmin:
		return "full administrative toolset, development tools, Ansible, AWS CLI"
	case rbac.LevelDeveloper:
		return "Git, build tools, Python, Docker"
	default:
		return "LibreOffice and Firefox"
	}
}

func sudoNote(level rbac.AccessLevel) string {
	if level == rbac.LevelAnalyst {
		return "Your account does not have administrative (sudo) rights. Contact IT if you need additional software installed."
	}
	return "Your account has administrative (sudo) rights on this desktop."
}

func delayNote(kind backend.Kind) string {
	if kind == backend.KindLocal {
		return "Your desktop may take a few minutes to finish provisioning."
	}
	return "Your desktop is domain-joined and may take 10-15 minutes to fully provision and join the domain."
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

func firstLabel(domain string) string {
	if i := strings.IndexByte(domain, '.'); i > 0 {
		return domain[:i]
	}
	return domain
}

func renderText(name string, data messageData) (string, error) {
	content, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read message template %s: %w", name, err)
	}
	tmpl, err := texttemplate.New(name).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse message template %s: %w", name, err)
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to execute message template %s: %w", name, err)
	}
	return out.String(), nil
}

func renderHTML(name string, data messageData) (string, error) {
	content, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read message template %s: %w", name, err)
	}
	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse message template %s: %w", name, err)
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to execute message template %s: %w", name, err)
	}
	return out.String(), nil
}
