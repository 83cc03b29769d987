// Package config holds the runtime configuration for the provisioning service.
//
// Configuration is environment-driven, matching how the service is deployed:
// every identifier the orchestrator needs (table, stream, network placement,
// image, directory parameters) is injected by the surrounding infrastructure.
// An optional YAML overlay file can override or supplement the environment for
// local runs and tests.
package config

import "time"

// Backend kinds selectable via configuration.
const (
	BackendLocal         = "local"
	BackendDomainLinux   = "domain-linux"
	BackendDomainWindows = "domain-windows"
	BackendManagedAD     = "managed-ad"
)

// Defaults applied by Load when the environment leaves a knob unset.
const (
	DefaultInstanceType      = "t3.medium"
	DefaultInstanceProfile   = "virtual-desktop-profile"
	DefaultPasswordLength    = 12
	DefaultReadinessAttempts = 20
	DefaultReadinessInterval = 15 * time.Second
	DefaultStreamPollDelay   = 5 * time.Second
	DefaultMetricsAddr       = ":8080"
)

// Directory holds the parameters for directory-joined backends.
type Directory struct {
	// Domain is the AD domain the desktop joins, e.g. "corp.example.local".
	Domain string `yaml:"domain"`

	// DNSAddrs are the directory DNS servers pushed into the instance resolver
	// config before the join is attempted.
	DNSAddrs []string `yaml:"dns_addrs"`

	// JoinSecretID references the Secrets Manager secret holding the delegated
	// join credential. Only the reference ever appears in a bootstrap payload;
	// the instance fetches the secret itself through its instance profile.
	JoinSecretID string `yaml:"join_secret_id"`

	// DirectoryID is the AWS Managed Microsoft AD directory ID, required by
	// the managed-ad backend.
	DirectoryID string `yaml:"directory_id"`

	// TopicARN is the SNS topic the identity push channel publishes to for the
	// domain-linux and domain-windows backends.
	TopicARN string `yaml:"topic_arn"`
}

// Network holds the placement and security-boundary identifiers for launched
// desktops.
type Network struct {
	SubnetID            string `yaml:"subnet_id"`
	SecurityGroupID     string `yaml:"security_group_id"`
	DirectoryClientSGID string `yaml:"directory_client_sg_id"`
}

// Config is the complete service configuration.
type Config struct {
	Region string `yaml:"region"`

	// Record store and change-event source.
	TableName string `yaml:"table_name"`
	StreamARN string `yaml:"stream_arn"`

	// Notification.
	SenderEmail string `yaml:"sender_email"`
	VPNEndpoint string `yaml:"vpn_endpoint"`

	// Compute.
	Backend         string  `yaml:"backend"`
	AMIID           string  `yaml:"ami_id"`
	InstanceType    string  `yaml:"instance_type"`
	KeyName         string  `yaml:"key_name"`
	InstanceProfile string  `yaml:"instance_profile"`
	Network         Network `yaml:"network"`

	Directory Directory `yaml:"directory"`

	PasswordLength    int `yaml:"password_length"`
	ReadinessAttempts int `yaml:"readiness_attempts"`

	// Timing knobs are environment-only; YAML has no native duration syntax.
	ReadinessInterval time.Duration `yaml:"-"`
	StreamPollDelay   time.Duration `yaml:"-"`

	MetricsAddr string `yaml:"metrics_addr"`
}

// RequiresDirectory reports whether the selected backend depends on directory
// parameters being configured.
func (c *Config) RequiresDirectory() bool {
	return c.Backend != BackendLocal
}
