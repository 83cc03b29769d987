package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration from the environment, applies the optional
// YAML overlay referenced by DESKPROV_CONFIG, fills defaults, and validates.
func Load() (*Config, error) {
	cfg := &Config{
		Region:      os.Getenv("AWS_REGION"),
		TableName:   os.Getenv("DYNAMODB_TABLE"),
		StreamARN:   os.Getenv("STREAM_ARN"),
		SenderEmail: os.Getenv("SES_SENDER_EMAIL"),
		VPNEndpoint: os.Getenv("OPENVPN_SERVER_IP"),

		Backend:         os.Getenv("BACKEND"),
		AMIID:           os.Getenv("AMI_ID"),
		InstanceType:    os.Getenv("INSTANCE_TYPE"),
		KeyName:         os.Getenv("KEY_NAME"),
		InstanceProfile: os.Getenv("IAM_INSTANCE_PROFILE"),
		Network: Network{
			SubnetID:            os.Getenv("SUBNET_ID"),
			SecurityGroupID:     os.Getenv("SECURITY_GROUP_ID"),
			DirectoryClientSGID: os.Getenv("AD_CLIENT_SG_ID"),
		},
		Directory: Directory{
			Domain:       os.Getenv("AD_DOMAIN"),
			JoinSecretID: os.Getenv("AD_JOIN_SECRET_ID"),
			DirectoryID:  os.Getenv("DIRECTORY_ID"),
			TopicARN:     os.Getenv("SNS_TOPIC_ARN"),
		},
		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}

	for _, key := range []string{"AD_DNS_1", "AD_DNS_2"} {
		if v := os.Getenv(key); v != "" {
			cfg.Directory.DNSAddrs = append(cfg.Directory.DNSAddrs, v)
		}
	}

	var err error
	if cfg.PasswordLength, err = intEnv("PASSWORD_LENGTH"); err != nil {
		return nil, err
	}
	if cfg.ReadinessAttempts, err = intEnv("READINESS_ATTEMPTS"); err != nil {
		return nil, err
	}
	if cfg.ReadinessInterval, err = durationEnv("READINESS_INTERVAL"); err != nil {
		return nil, err
	}
	if cfg.StreamPollDelay, err = durationEnv("STREAM_POLL_DELAY"); err != nil {
		return nil, err
	}

	if path := os.Getenv("DESKPROV_CONFIG"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyFile overlays YAML settings on top of the environment-derived config.
// Unset YAML fields leave the existing values untouched.
func applyFile(cfg *Config, path string) error {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendDomainLinux
	}
	if c.InstanceType == "" {
		c.InstanceType = DefaultInstanceType
	}
	if c.InstanceProfile == "" {
		c.InstanceProfile = DefaultInstanceProfile
	}
	if c.PasswordLength == 0 {
		c.PasswordLength = DefaultPasswordLength
	}
	if c.ReadinessAttempts == 0 {
		c.ReadinessAttempts = DefaultReadinessAttempts
	}
	if c.ReadinessInterval == 0 {
		c.ReadinessInterval = DefaultReadinessInterval
	}
	if c.StreamPollDelay == 0 {
		c.StreamPollDelay = DefaultStreamPollDelay
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = DefaultMetricsAddr
	}
}

func intEnv(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func durationEnv(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
