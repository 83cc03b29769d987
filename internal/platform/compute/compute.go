// Package compute launches and observes virtual desktop instances on EC2.
package compute

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/innovatech/deskprov/internal/util/retry"
	"github.com/innovatech/deskprov/internal/util/tags"
	"github.com/innovatech/deskprov/pkg/cloud"
)

// LaunchRequest is the assembled specification for one desktop instance. It is
// ephemeral: built per attempt by a provisioning backend and never shared.
type LaunchRequest struct {
	ImageID          string
	InstanceType     string
	KeyName          string
	InstanceProfile  string
	SubnetID         string
	SecurityGroupIDs []string
	VolumeSizeGiB    int32
	UserData         string
	Tags             map[string]string
}

// Validate checks the request for missing required fields. Launch requests
// fail here, before any external call is made.
func (r *LaunchRequest) Validate() error {
	switch {
	case r.ImageID == "":
		return fmt.Errorf("launch request missing image ID")
	case r.InstanceType == "":
		return fmt.Errorf("launch request missing instance type")
	case r.SubnetID == "":
		return fmt.Errorf("launch request missing subnet ID")
	case len(r.SecurityGroupIDs) == 0:
		return fmt.Errorf("launch request missing security groups")
	case r.UserData == "":
		return fmt.Errorf("launch request missing bootstrap payload")
	}
	return nil
}

// LaunchError wraps a failed compute launch (quota, image, or network errors
// from the service). Launch failures are fatal for the attempt; there is no
// retry below the event-redelivery level.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("compute launch failed: %v", e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Provisioner launches desktops and polls their state.
type Provisioner struct {
	ec2 cloud.EC2API
}

// NewProvisioner creates a compute provisioner.
func NewProvisioner(api cloud.EC2API) *Provisioner {
	return &Provisioner{ec2: api}
}

// Launch starts exactly one instance from the request and returns its ID and
// private address. The private IP is usually assigned synchronously; when it
// is not, a short bounded poll picks it up.
func (p *Provisioner) Launch(ctx context.Context, req *LaunchRequest) (string, string, error) {
	if err := req.Validate(); err != nil {
		return "", "", err
	}

	input := &ec2.RunInstancesInput{
		ImageId:      aws.String(req.ImageID),
		InstanceType: ec2types.InstanceType(req.InstanceType),
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
		UserData:     aws.String(base64.StdEncoding.EncodeToString([]byte(req.UserData))),
		NetworkInterfaces: []ec2types.InstanceNetworkInterfaceSpecification{{
			DeviceIndex:              aws.Int32(0),
			SubnetId:                 aws.String(req.SubnetID),
			AssociatePublicIpAddress: aws.Bool(false),
			Groups:                   req.SecurityGroupIDs,
		}},
		TagSpecifications: []ec2types.TagSpecification{{
			ResourceType: ec2types.ResourceTypeInstance,
			Tags:         tags.ToEC2(req.Tags),
		}},
		BlockDeviceMappings: []ec2types.BlockDeviceMapping{{
			DeviceName: aws.String("/dev/sda1"),
			Ebs: &ec2types.EbsBlockDevice{
				VolumeSize:          aws.Int32(req.VolumeSizeGiB),
				VolumeType:          ec2types.VolumeTypeGp3,
				DeleteOnTermination: aws.Bool(true),
				Encrypted:           aws.Bool(true),
			},
		}},
	}
	if req.KeyName != "" {
		input.KeyName = aws.String(req.KeyName)
	}
	if req.InstanceProfile != "" {
		input.IamInstanceProfile = &ec2types.IamInstanceProfileSpecification{
			Name: aws.String(req.InstanceProfile),
		}
	}

	out, err := p.ec2.RunInstances(ctx, input)
	if err != nil {
		return "", "", &LaunchError{Err: err}
	}
	if len(out.Instances) == 0 || out.Instances[0].InstanceId == nil {
		return "", "", &LaunchError{Err: fmt.Errorf("no instance in launch response")}
	}

	inst := out.Instances[0]
	instanceID := aws.ToString(inst.InstanceId)
	privateIP := aws.ToString(inst.PrivateIpAddress)

	if privateIP == "" {
		privateIP, err = p.awaitPrivateIP(ctx, instanceID)
		if err != nil {
			return "", "", &LaunchError{Err: err}
		}
	}

	log.Printf("[Compute] Launched instance %s at %s", instanceID, privateIP)
	return instanceID, privateIP, nil
}

// AwaitRunning polls the instance state until it reports running or the
// attempt budget runs out. Timeout is not an error: the caller decides whether
// a desktop that is still booting fails the attempt. Cancellation of ctx ends
// the wait early with false.
func (p *Provisioner) AwaitRunning(ctx context.Context, instanceID string, maxAttempts int, interval time.Duration) bool {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		state, err := p.instanceState(ctx, instanceID)
		if err != nil {
			log.Printf("[Compute] Describe %s failed (attempt %d/%d): %v", instanceID, attempt, maxAttempts, err)
		} else if state == ec2types.InstanceStateNameRunning {
			return true
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(interval):
			}
		}
	}
	return false
}

func (p *Provisioner) instanceState(ctx context.Context, instanceID string) (ec2types.InstanceStateName, error) {
	out, err := p.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return "", err
	}
	for _, res := range out.Reservations {
		for _, inst := range res.Instances {
			if aws.ToString(inst.InstanceId) == instanceID && inst.State != nil {
				return inst.State.Name, nil
			}
		}
	}
	return "", errors.New("instance not found")
}

func (p *Provisioner) awaitPrivateIP(ctx context.Context, instanceID string) (string, error) {
	var ip string
	err := retry.Do(ctx, func() error {
		out, err := p.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
			InstanceIds: []string{instanceID},
		})
		if err != nil {
			return err
		}
		for _, res := range out.Reservations {
			for _, inst := range res.Instances {
				if aws.ToString(inst.InstanceId) == instanceID {
					ip = aws.ToString(inst.PrivateIpAddress)
				}
			}
		}
		if ip == "" {
			return fmt.Errorf("private IP not yet assigned to %s", instanceID)
		}
		return nil
	}, retry.WithMaxAttempts(6), retry.WithInitialDelay(2*time.Second))
	if err != nil {
		return "", err
	}
	return ip, nil
}
