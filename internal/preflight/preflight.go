// Package preflight verifies at startup that every resource the configuration
// references actually exists and is reachable, so a misdeployment fails fast
// instead of surfacing mid-provisioning with a half-built desktop.
package preflight

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/innovatech/deskprov/internal/config"
	"github.com/innovatech/deskprov/internal/util/async"
	"github.com/innovatech/deskprov/pkg/cloud"
)

// Pinger checks that the record store's table is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SenderVerifier checks that the notification sender identity can send.
type SenderVerifier interface {
	VerifySender(ctx context.Context) error
}

// Checker runs all startup checks.
type Checker struct {
	cfg     *config.Config
	store   Pinger
	mailer  SenderVerifier
	ec2     cloud.EC2API
	sns     cloud.SNSAPI
	secrets cloud.SecretsAPI
}

// NewChecker creates a checker over the configured resources.
func NewChecker(cfg *config.Config, store Pinger, mailer SenderVerifier, ec2API cloud.EC2API, snsAPI cloud.SNSAPI, secretsAPI cloud.SecretsAPI) *Checker {
	return &Checker{
		cfg:     cfg,
		store:   store,
		mailer:  mailer,
		ec2:     ec2API,
		sns:     snsAPI,
		secrets: secretsAPI,
	}
}

// Run executes every applicable check in parallel and returns the first
// failure. Directory checks only run for backends that need them.
func (c *Checker) Run(ctx context.Context) error {
	tasks := []async.Task{
		{Name: "record table", Func: c.store.Ping},
		{Name: "sender identity", Func: c.mailer.VerifySender},
		{Name: "image", Func: c.checkImage},
		{Name: "subnet", Func: c.checkSubnet},
		{Name: "security groups", Func: c.checkSecurityGroups},
	}

	if c.cfg.RequiresDirectory() {
		tasks = append(tasks, async.Task{Name: "join secret", Func: c.checkJoinSecret})
		if c.cfg.Directory.TopicARN != "" {
			tasks = append(tasks, async.Task{Name: "identity topic", Func: c.checkTopic})
		}
	}

	log.Printf("[Preflight] Running %d checks", len(tasks))
	if err := async.RunParallel(ctx, tasks); err != nil {
		return fmt.Errorf("preflight failed: %w", err)
	}
	log.Printf("[Preflight] All checks passed")
	return nil
}

func (c *Checker) checkImage(ctx context.Context) error {
	out, err := c.ec2.DescribeImages(ctx, &ec2.DescribeImagesInput{
		ImageIds: []string{c.cfg.AMIID},
	})
	if err != nil {
		return fmt.Errorf("failed to describe image %s: %w", c.cfg.AMIID, err)
	}
	if len(out.Images) == 0 {
		return fmt.Errorf("image %s not found", c.cfg.AMIID)
	}
	return nil
}

func (c *Checker) checkSubnet(ctx context.Context) error {
	out, err := c.ec2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		SubnetIds: []string{c.cfg.Network.SubnetID},
	})
	if err != nil {
		return fmt.Errorf("failed to describe subnet %s: %w", c.cfg.Network.SubnetID, err)
	}
	if len(out.Subnets) == 0 {
		return fmt.Errorf("subnet %s not found", c.cfg.Network.SubnetID)
	}
	return nil
}

func (c *Checker) checkSecurityGroups(ctx context.Context) error {
	ids := []string{c.cfg.Network.SecurityGroupID}
	if c.cfg.RequiresDirectory() && c.cfg.Network.DirectoryClientSGID != "" {
		ids = append(ids, c.cfg.Network.DirectoryClientSGID)
	}
	out, err := c.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		GroupIds: ids,
	})
	if err != nil {
		return fmt.Errorf("failed to describe security groups %v: %w", ids, err)
	}
	if len(out.SecurityGroups) != len(ids) {
		return fmt.Errorf("expected %d security groups, found %d", len(ids), len(out.SecurityGroups))
	}
	return nil
}

func (c *Checker) checkTopic(ctx context.Context) error {
	_, err := c.sns.GetTopicAttributes(ctx, &sns.GetTopicAttributesInput{
		TopicArn: aws.String(c.cfg.Directory.TopicARN),
	})
	if err != nil {
		return fmt.Errorf("failed to describe topic %s: %w", c.cfg.Directory.TopicARN, err)
	}
	return nil
}

func (c *Checker) checkJoinSecret(ctx context.Context) error {
	_, err := c.secrets.DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{
		SecretId: aws.String(c.cfg.Directory.JoinSecretID),
	})
	if err != nil {
		return fmt.Errorf("failed to describe join secret %s: %w", c.cfg.Directory.JoinSecretID, err)
	}
	return nil
}
