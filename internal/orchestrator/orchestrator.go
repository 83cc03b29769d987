// Package orchestrator drives one provisioning attempt per change event.
//
// The sequence per record is fixed: guard, claim, resolve policy, generate
// credential, ensure identity, launch compute, wait for readiness, notify,
// record. Identity must precede compute because directory-joined payloads
// assume the account already exists. Readiness and notification are best
// effort; everything between policy resolution and compute launch is fatal
// for the attempt and leaves the record unprocessed so that event redelivery
// retries the full sequence.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/innovatech/deskprov/internal/backend"
	"github.com/innovatech/deskprov/internal/config"
	"github.com/innovatech/deskprov/internal/identity"
	"github.com/innovatech/deskprov/internal/notify"
	"github.com/innovatech/deskprov/internal/password"
	"github.com/innovatech/deskprov/internal/platform/compute"
	"github.com/innovatech/deskprov/internal/platform/dynamo"
	"github.com/innovatech/deskprov/internal/rbac"
)

// DefaultRole is assumed when a change event carries no role.
const DefaultRole = "Analyst"

// ErrMalformedEvent marks a contract violation in the incoming event. Such
// events are surfaced immediately and never retried.
var ErrMalformedEvent = errors.New("malformed change event")

// Event is the snapshot of a newly inserted employee record as delivered on
// the change channel.
type Event struct {
	ID         string
	Name       string
	Email      string
	Username   string
	Department string
	Role       string
	Processed  bool
}

// RecordStore is the orchestrator's view of the employee record store.
type RecordStore interface {
	Get(ctx context.Context, id string) (*dynamo.Employee, error)
	Claim(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
	MarkProcessed(ctx context.Context, id string, outcome dynamo.Outcome) error
}

// ComputeProvisioner launches desktops and polls their state.
type ComputeProvisioner interface {
	Launch(ctx context.Context, req *compute.LaunchRequest) (string, string, error)
	AwaitRunning(ctx context.Context, instanceID string, maxAttempts int, interval time.Duration) bool
}

// Mailer delivers a composed notification.
type Mailer interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// Orchestrator ties the provisioning steps together. All collaborators are
// injected; the orchestrator owns no global state and attempts for different
// records may run concurrently.
type Orchestrator struct {
	cfg      *config.Config
	store    RecordStore
	backend  backend.Backend
	identity identity.Provisioner
	compute  ComputeProvisioner
	mailer   Mailer
}

// New creates an orchestrator.
func New(cfg *config.Config, store RecordStore, be backend.Backend, idp identity.Provisioner, cp ComputeProvisioner, mailer Mailer) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		store:    store,
		backend:  be,
		identity: idp,
		compute:  cp,
		mailer:   mailer,
	}
}

// Process handles one change event end to end. A nil return means the attempt
// reached a terminal state: either the record was processed now, or it was
// already processed (or claimed) and the event was skipped.
func (o *Orchestrator) Process(ctx context.Context, ev Event) error {
	if err := validateEvent(ev); err != nil {
		attemptsTotal.WithLabelValues("malformed").Inc()
		return err
	}
	if ev.Role == "" {
		ev.Role = DefaultRole
	}

	// Idempotency guard: the event snapshot first, then a consistent read of
	// the record itself. Redelivered events for completed records stop here
	// without any external side effect.
	if ev.Processed {
		o.skip(ev.ID, "event snapshot already processed")
		return nil
	}

	rec, err := o.store.Get(ctx, ev.ID)
	if err != nil {
		return o.fail(ctx, ev.ID, "guard", false, err)
	}
	if rec == nil {
		attemptsTotal.WithLabelValues("malformed").Inc()
		return fmt.Errorf("%w: record %s not found", ErrMalformedEvent, ev.ID)
	}
	if rec.Processed {
		o.skip(ev.ID, "record already processed")
		return nil
	}

	// Claim before any side effect, so concurrent redeliveries of the same
	// never-processed record cannot both provision.
	claimed, err := o.store.Claim(ctx, ev.ID)
	if err != nil {
		return o.fail(ctx, ev.ID, "claim", false, err)
	}
	if !claimed {
		o.skip(ev.ID, "record claimed by a concurrent attempt")
		return nil
	}

	started := time.Now()
	log.Printf("[Orchestrator] Processing new employee %s (%s)", rec.Name, rec.Username)

	policy := rbac.Resolve(rec.Department, rec.Role)

	credential, err := password.Generate(o.cfg.PasswordLength)
	if err != nil {
		return o.fail(ctx, ev.ID, "credential", true, err)
	}

	if o.backend.RequiresIdentity() {
		err := o.identity.EnsureIdentity(ctx, identity.Request{
			Username:    rec.Username,
			DisplayName: rec.Name,
			Email:       rec.Email,
			Credential:  credential,
			Group:       policy.Group,
		})
		if err != nil {
			return o.fail(ctx, ev.ID, "identity", true, err)
		}
	}

	payload, err := o.backend.BuildPayload(backend.PayloadParams{
		Name:       rec.Name,
		Username:   rec.Username,
		Credential: credential,
		Department: rec.Department,
		Role:       rec.Role,
		Level:      policy.Level,
		Directory:  o.cfg.Directory,
	})
	if err != nil {
		return o.fail(ctx, ev.ID, "payload", true, err)
	}

	req, err := o.backend.BuildLaunchRequest(payload, rec, policy.Level, o.cfg)
	if err != nil {
		return o.fail(ctx, ev.ID, "request", true, err)
	}

	instanceID, privateIP, err := o.compute.Launch(ctx, req)
	if err != nil {
		return o.fail(ctx, ev.ID, "launch", true, err)
	}
	log.Printf("[Orchestrator] Launched desktop %s (%s) for %s", instanceID, privateIP, rec.Username)

	// Best effort: a desktop still booting is a warning, not a failure.
	if !o.compute.AwaitRunning(ctx, instanceID, o.cfg.ReadinessAttempts, o.cfg.ReadinessInterval) {
		readinessTimeoutsTotal.Inc()
		log.Printf("[Orchestrator] Desktop %s not running yet after %d attempts, continuing", instanceID, o.cfg.ReadinessAttempts)
	}

	o.notify(ctx, rec, policy.Level, credential, privateIP)

	err = o.store.MarkProcessed(ctx, ev.ID, dynamo.Outcome{
		InstanceID:  instanceID,
		PrivateIP:   privateIP,
		AccessLevel: string(policy.Level),
	})
	switch {
	case errors.Is(err, dynamo.ErrAlreadyProcessed):
		// A concurrent attempt completed first; its outcome stands.
		log.Printf("[Orchestrator] Record %s already recorded by a concurrent attempt", ev.ID)
	case err != nil:
		return o.fail(ctx, ev.ID, "record", true, err)
	}

	attemptsTotal.WithLabelValues("success").Inc()
	provisionDuration.Observe(time.Since(started).Seconds())
	log.Printf("[Orchestrator] Provisioned desktop for %s: instance=%s access=%s", rec.Username, instanceID, policy.Level)
	return nil
}

// notify composes and sends the credential email. Delivery failure is logged
// and swallowed: the side effects that matter already happened.
func (o *Orchestrator) notify(ctx context.Context, rec *dynamo.Employee, level rbac.AccessLevel, credential, privateIP string) {
	msg, err := notify.Compose(notify.Params{
		Name:        rec.Name,
		Username:    rec.Username,
		Credential:  credential,
		PrivateIP:   privateIP,
		VPNEndpoint: o.cfg.VPNEndpoint,
		Domain:      o.cfg.Directory.Domain,
		Level:       level,
		Backend:     o.backend.Kind(),
	})
	if err != nil {
		notificationFailuresTotal.Inc()
		log.Printf("[Orchestrator] Failed to compose notification for %s: %v", rec.Username, err)
		return
	}
	if err := o.mailer.Send(ctx, rec.Email, msg.Subject, msg.Text, msg.HTML); err != nil {
		notificationFailuresTotal.Inc()
		log.Printf("[Orchestrator] Failed to send notification to %s: %v", rec.Email, err)
	}
}

// fail records the failed step, optionally releases the claim so redelivery
// does not wait out the lease, and wraps the error for the consumer log.
func (o *Orchestrator) fail(ctx context.Context, id, step string, release bool, err error) error {
	stepFailuresTotal.WithLabelValues(step).Inc()
	attemptsTotal.WithLabelValues("failure").Inc()
	if release {
		if relErr := o.store.Release(ctx, id); relErr != nil {
			log.Printf("[Orchestrator] Failed to release claim on %s: %v", id, relErr)
		}
	}
	return fmt.Errorf("record %s failed at %s: %w", id, step, err)
}

func (o *Orchestrator) skip(id, reason string) {
	attemptsTotal.WithLabelValues("skipped").Inc()
	log.Printf("[Orchestrator] Skipping record %s: %s", id, reason)
}

func validateEvent(ev Event) error {
	switch {
	case ev.ID == "":
		return fmt.Errorf("%w: missing id", ErrMalformedEvent)
	case ev.Username == "":
		return fmt.Errorf("%w: missing username for %s", ErrMalformedEvent, ev.ID)
	case ev.Email == "":
		return fmt.Errorf("%w: missing email for %s", ErrMalformedEvent, ev.ID)
	case ev.Name == "":
		return fmt.Errorf("%w: missing name for %s", ErrMalformedEvent, ev.ID)
	}
	return nil
}
