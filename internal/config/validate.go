package config

import "fmt"

var validBackends = map[string]bool{
	BackendLocal:         true,
	BackendDomainLinux:   true,
	BackendDomainWindows: true,
	BackendManagedAD:     true,
}

// Validate checks that the configuration is complete for the selected backend.
// It fails fast at startup rather than at the first provisioning attempt.
func (c *Config) Validate() error {
	if !validBackends[c.Backend] {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.TableName == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required")
	}
	if c.StreamARN == "" {
		return fmt.Errorf("STREAM_ARN is required")
	}
	if c.SenderEmail == "" {
		return fmt.Errorf("SES_SENDER_EMAIL is required")
	}
	if c.AMIID == "" {
		return fmt.Errorf("AMI_ID is required")
	}
	if c.KeyName == "" {
		return fmt.Errorf("KEY_NAME is required")
	}
	if c.Network.SubnetID == "" {
		return fmt.Errorf("SUBNET_ID is required")
	}
	if c.Network.SecurityGroupID == "" {
		return fmt.Errorf("SECURITY_GROUP_ID is required")
	}

	if !c.RequiresDirectory() {
		return nil
	}

	if c.Directory.Domain == "" {
		return fmt.Errorf("AD_DOMAIN is required for backend %q", c.Backend)
	}
	if len(c.Directory.DNSAddrs) == 0 {
		return fmt.Errorf("AD_DNS_1 is required for backend %q", c.Backend)
	}
	if c.Network.DirectoryClientSGID == "" {
		return fmt.Errorf("AD_CLIENT_SG_ID is required for backend %q", c.Backend)
	}
	if c.Directory.JoinSecretID == "" {
		return fmt.Errorf("AD_JOIN_SECRET_ID is required for backend %q", c.Backend)
	}

	switch c.Backend {
	case BackendManagedAD:
		if c.Directory.DirectoryID == "" {
			return fmt.Errorf("DIRECTORY_ID is required for backend %q", c.Backend)
		}
	case BackendDomainLinux, BackendDomainWindows:
		if c.Directory.TopicARN == "" {
			return fmt.Errorf("SNS_TOPIC_ARN is required for backend %q", c.Backend)
		}
	}
	return nil
}
