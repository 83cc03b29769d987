package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovatech/deskprov/internal/backend"
	"github.com/innovatech/deskprov/internal/config"
	"github.com/innovatech/deskprov/internal/identity"
	"github.com/innovatech/deskprov/internal/platform/compute"
	"github.com/innovatech/deskprov/internal/platform/dynamo"
)

type fakeStore struct {
	record *dynamo.Employee
	getErr error

	claimOK  bool
	claimErr error

	markErr error

	claimCalls   int
	releaseCalls int
	markCalls    []dynamo.Outcome
}

func (f *fakeStore) Get(context.Context, string) (*dynamo.Employee, error) {
	return f.record, f.getErr
}

func (f *fakeStore) Claim(context.Context, string) (bool, error) {
	f.claimCalls++
	return f.claimOK, f.claimErr
}

func (f *fakeStore) Release(context.Context, string) error {
	f.releaseCalls++
	return nil
}

func (f *fakeStore) MarkProcessed(_ context.Context, _ string, outcome dynamo.Outcome) error {
	f.markCalls = append(f.markCalls, outcome)
	return f.markErr
}

type fakeCompute struct {
	launchErr error
	running   bool

	launchCalls []*compute.LaunchRequest
	awaitCalls  int
}

func (f *fakeCompute) Launch(_ context.Context, req *compute.LaunchRequest) (string, string, error) {
	f.launchCalls = append(f.launchCalls, req)
	if f.launchErr != nil {
		return "", "", f.launchErr
	}
	return "i-0fake", "10.0.1.10", nil
}

func (f *fakeCompute) AwaitRunning(context.Context, string, int, time.Duration) bool {
	f.awaitCalls++
	return f.running
}

type fakeIdentity struct {
	err   error
	calls []identity.Request
}

func (f *fakeIdentity) EnsureIdentity(_ context.Context, req identity.Request) error {
	f.calls = append(f.calls, req)
	return f.err
}

type fakeMailer struct {
	err   error
	calls []string
}

func (f *fakeMailer) Send(_ context.Context, to, _, _, _ string) error {
	f.calls = append(f.calls, to)
	return f.err
}

type harness struct {
	orch     *Orchestrator
	store    *fakeStore
	compute  *fakeCompute
	identity *fakeIdentity
	mailer   *fakeMailer
}

func newHarness(t *testing.T, backendKind string) *harness {
	t.Helper()

	cfg := &config.Config{
		Backend:         backendKind,
		AMIID:           "ami-0abc1234",
		InstanceType:    "t3.medium",
		KeyName:         "desktop-key",
		InstanceProfile: "virtual-desktop-profile",
		VPNEndpoint:     "203.0.113.10",
		Network: config.Network{
			SubnetID:            "subnet-0abc",
			SecurityGroupID:     "sg-0abc",
			DirectoryClientSGID: "sg-0def",
		},
		Directory: config.Directory{
			Domain:       "corp.innovatech.local",
			DNSAddrs:     []string{"10.0.0.2"},
			JoinSecretID: "deskprov/ad-join",
		},
		PasswordLength:    12,
		ReadinessAttempts: 3,
		ReadinessInterval: time.Millisecond,
	}

	be, err := backend.New(cfg)
	require.NoError(t, err)

	h := &harness{
		store: &fakeStore{
			record: &dynamo.Employee{
				ID:         "emp-1",
				Name:       "Ada Lovelace",
				Email:      "ada@innovatech.com",
				Username:   "alovelace",
				Department: "Engineering",
				Role:       "Developer",
			},
			claimOK: true,
		},
		compute:  &fakeCompute{running: true},
		identity: &fakeIdentity{},
		mailer:   &fakeMailer{},
	}
	h.orch = New(cfg, h.store, be, h.identity, h.compute, h.mailer)
	return h
}

func validEvent() Event {
	return Event{
		ID:         "emp-1",
		Name:       "Ada Lovelace",
		Email:      "ada@innovatech.com",
		Username:   "alovelace",
		Department: "Engineering",
		Role:       "Developer",
	}
}

func TestProcessSuccess(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.BackendDomainLinux)

	require.NoError(t, h.orch.Process(context.Background(), validEvent()))

	require.Len(t, h.identity.calls, 1)
	idReq := h.identity.calls[0]
	assert.Equal(t, "alovelace", idReq.Username)
	assert.Equal(t, "Desktop-Developers", idReq.Group.Name)
	assert.Len(t, idReq.Credential, 12)

	require.Len(t, h.compute.launchCalls, 1)
	launch := h.compute.launchCalls[0]
	assert.Equal(t, "ami-0abc1234", launch.ImageID)
	// The credential handed to the identity step never reaches a joined
	// payload.
	assert.NotContains(t, launch.UserData, idReq.Credential)

	assert.Equal(t, []string{"ada@innovatech.com"}, h.mailer.calls)

	require.Len(t, h.store.markCalls, 1)
	outcome := h.store.markCalls[0]
	assert.Equal(t, "i-0fake", outcome.InstanceID)
	assert.Equal(t, "10.0.1.10", outcome.PrivateIP)
	assert.Equal(t, "developer", outcome.AccessLevel)

	assert.Zero(t, h.store.releaseCalls)
}

func TestProcessLocalBackendSkipsIdentity(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.BackendLocal)

	require.NoError(t, h.orch.Process(context.Background(), validEvent()))
	assert.Empty(t, h.identity.calls)
	assert.Len(t, h.compute.launchCalls, 1)
}

func TestProcessSkipsProcessedSnapshot(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.BackendDomainLinux)

	ev := validEvent()
	ev.Processed = true
	require.NoError(t, h.orch.Process(context.Background(), ev))

	// Nothing downstream runs, not even the claim.
	assert.Zero(t, h.store.claimCalls)
	assert.Empty(t, h.identity.calls)
	assert.Empty(t, h.compute.launchCalls)
	assert.Empty(t, h.mailer.calls)
	assert.Empty(t, h.store.markCalls)
}

func TestProcessSkipsProcessedRecord(t *testing.T) {
	t.Parallel()

	// Redelivered event whose snapshot predates completion: the consistent
	// read catches the processed flag.
	h := newHarness(t, config.BackendDomainLinux)
	h.store.record.Processed = true

	require.NoError(t, h.orch.Process(context.Background(), validEvent()))
	assert.Zero(t, h.store.claimCalls)
	assert.Empty(t, h.compute.launchCalls)
}

func TestProcessSkipsWhenClaimLost(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.BackendDomainLinux)
	h.store.claimOK = false

	require.NoError(t, h.orch.Process(context.Background(), validEvent()))
	assert.Equal(t, 1, h.store.claimCalls)
	assert.Empty(t, h.compute.launchCalls)
	assert.Empty(t, h.store.markCalls)
}

func TestProcessIdentityFailureReleasesClaim(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.BackendDomainLinux)
	h.identity.err = identity.ErrUnavailable

	err := h.orch.Process(context.Background(), validEvent())
	assert.ErrorIs(t, err, identity.ErrUnavailable)

	assert.Empty(t, h.compute.launchCalls)
	assert.Empty(t, h.store.markCalls)
	assert.Equal(t, 1, h.store.releaseCalls)
}

func TestProcessLaunchFailureLeavesUnprocessed(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.BackendDomainLinux)
	h.compute.launchErr = errors.New("InsufficientInstanceCapacity")

	err := h.orch.Process(context.Background(), validEvent())
	assert.ErrorContains(t, err, "failed at launch")

	assert.Empty(t, h.mailer.calls)
	assert.Empty(t, h.store.markCalls)
	assert.Equal(t, 1, h.store.releaseCalls)
}

func TestProcessReadinessTimeoutIsNotFatal(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.BackendDomainLinux)
	h.compute.running = false

	require.NoError(t, h.orch.Process(context.Background(), validEvent()))
	assert.Len(t, h.store.markCalls, 1)
	assert.Len(t, h.mailer.calls, 1)
}

func TestProcessMailFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.BackendDomainLinux)
	h.mailer.err = errors.New("mailbox unavailable")

	require.NoError(t, h.orch.Process(context.Background(), validEvent()))
	assert.Len(t, h.store.markCalls, 1)
}

func TestProcessConcurrentCompletionIsTerminal(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.BackendDomainLinux)
	h.store.markErr = dynamo.ErrAlreadyProcessed

	require.NoError(t, h.orch.Process(context.Background(), validEvent()))
	assert.Zero(t, h.store.releaseCalls)
}

func TestProcessMarkFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.BackendDomainLinux)
	h.store.markErr = errors.New("throttled")

	err := h.orch.Process(context.Background(), validEvent())
	assert.ErrorContains(t, err, "failed at record")
	assert.Equal(t, 1, h.store.releaseCalls)
}

func TestProcessDefaultsRole(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.BackendDomainLinux)
	h.store.record.Role = ""
	h.store.record.Department = "Sales"

	ev := validEvent()
	ev.Role = ""
	ev.Department = "Sales"
	require.NoError(t, h.orch.Process(context.Background(), ev))

	require.Len(t, h.store.markCalls, 1)
	assert.Equal(t, "analyst", h.store.markCalls[0].AccessLevel)
}

func TestProcessMalformedEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Event)
	}{
		{"missing id", func(ev *Event) { ev.ID = "" }},
		{"missing username", func(ev *Event) { ev.Username = "" }},
		{"missing email", func(ev *Event) { ev.Email = "" }},
		{"missing name", func(ev *Event) { ev.Name = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, config.BackendDomainLinux)
			ev := validEvent()
			tt.mutate(&ev)

			err := h.orch.Process(context.Background(), ev)
			assert.ErrorIs(t, err, ErrMalformedEvent)
			assert.Zero(t, h.store.claimCalls)
		})
	}
}

func TestProcessUnknownRecord(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.BackendDomainLinux)
	h.store.record = nil

	err := h.orch.Process(context.Background(), validEvent())
	assert.ErrorIs(t, err, ErrMalformedEvent)
	assert.Zero(t, h.store.claimCalls)
}
