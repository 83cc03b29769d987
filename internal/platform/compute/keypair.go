package compute

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	"github.com/innovatech/deskprov/internal/util/keygen"
	"github.com/innovatech/deskprov/internal/util/tags"
)

// EnsureKeyPair imports a freshly generated ed25519 key pair under the
// configured name if no key pair with that name exists yet. The private half
// is discarded: desktops are reached over RDP with directory or local
// credentials, the key pair only satisfies the launch template.
func (p *Provisioner) EnsureKeyPair(ctx context.Context, name string) error {
	_, err := p.ec2.DescribeKeyPairs(ctx, &ec2.DescribeKeyPairsInput{
		KeyNames: []string{name},
	})
	if err == nil {
		return nil
	}
	if !isKeyPairNotFound(err) {
		return fmt.Errorf("failed to look up key pair %s: %w", name, err)
	}

	pair, err := keygen.GenerateED25519(name)
	if err != nil {
		return err
	}

	_, err = p.ec2.ImportKeyPair(ctx, &ec2.ImportKeyPairInput{
		KeyName:           &name,
		PublicKeyMaterial: pair.PublicKey,
		TagSpecifications: []ec2types.TagSpecification{{
			ResourceType: ec2types.ResourceTypeKeyPair,
			Tags:         tags.ToEC2(tags.NewBuilder().WithName(name).Build()),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to import key pair %s: %w", name, err)
	}

	log.Printf("[Compute] Imported key pair %s", name)
	return nil
}

func isKeyPairNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "InvalidKeyPair.NotFound"
	}
	return false
}
