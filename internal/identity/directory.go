package identity

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/directoryservice"
	"github.com/aws/aws-sdk-go-v2/service/directoryservicedata"
	dsdatatypes "github.com/aws/aws-sdk-go-v2/service/directoryservicedata/types"

	"github.com/innovatech/deskprov/pkg/cloud"
)

// Directory provisions identities in an AWS Managed Microsoft AD directory
// through the Directory Service APIs: create-or-reset by lookup, then group
// placement. No domain controller credentials are involved anywhere.
type Directory struct {
	data        cloud.DirectoryDataAPI
	ds          cloud.DirectoryAPI
	directoryID string
}

// NewDirectory creates a managed-directory identity provisioner.
func NewDirectory(data cloud.DirectoryDataAPI, ds cloud.DirectoryAPI, directoryID string) *Directory {
	return &Directory{data: data, ds: ds, directoryID: directoryID}
}

// EnsureIdentity looks the user up, creates it if absent, always sets the
// credential to the one in the request, and ensures group membership. Calling
// it twice with different credentials leaves one user holding the second
// credential.
func (d *Directory) EnsureIdentity(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	exists, err := d.userExists(ctx, req.Username)
	if err != nil {
		return err
	}

	if !exists {
		if err := d.createUser(ctx, req); err != nil {
			return err
		}
		log.Printf("[Identity] Created directory user %s", req.Username)
	}

	// Reset unconditionally: for a fresh user this sets the initial
	// credential, for an existing one it rotates to the newly generated one.
	_, err = d.ds.ResetUserPassword(ctx, &directoryservice.ResetUserPasswordInput{
		DirectoryId: aws.String(d.directoryID),
		UserName:    aws.String(req.Username),
		NewPassword: aws.String(req.Credential),
	})
	if err != nil {
		return classify(err)
	}

	if err := d.ensureGroupMember(ctx, req.Username, req.Group.Name); err != nil {
		return err
	}

	log.Printf("[Identity] Ensured directory user %s in group %s", req.Username, req.Group.Name)
	return nil
}

func (d *Directory) userExists(ctx context.Context, username string) (bool, error) {
	_, err := d.data.DescribeUser(ctx, &directoryservicedata.DescribeUserInput{
		DirectoryId:    aws.String(d.directoryID),
		SAMAccountName: aws.String(username),
	})
	if err != nil {
		var nf *dsdatatypes.ResourceNotFoundException
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, classify(err)
	}
	return true, nil
}

func (d *Directory) createUser(ctx context.Context, req Request) error {
	given, surname := splitDisplayName(req.DisplayName)
	_, err := d.data.CreateUser(ctx, &directoryservicedata.CreateUserInput{
		DirectoryId:    aws.String(d.directoryID),
		SAMAccountName: aws.String(req.Username),
		EmailAddress:   aws.String(req.Email),
		GivenName:      aws.String(given),
		Surname:        aws.String(surname),
	})
	if err != nil {
		// A concurrent attempt may have created the user between lookup and
		// create; that still satisfies ensure semantics.
		var conflict *dsdatatypes.ConflictException
		if errors.As(err, &conflict) {
			return nil
		}
		return classify(err)
	}
	return nil
}

func (d *Directory) ensureGroupMember(ctx context.Context, username, group string) error {
	_, err := d.data.AddGroupMember(ctx, &directoryservicedata.AddGroupMemberInput{
		DirectoryId: aws.String(d.directoryID),
		GroupName:   aws.String(group),
		MemberName:  aws.String(username),
	})
	if err != nil {
		var conflict *dsdatatypes.ConflictException
		if errors.As(err, &conflict) {
			return nil
		}
		return classify(err)
	}
	return nil
}

func splitDisplayName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], parts[0]
	}
	return parts[0], strings.Join(parts[1:], " ")
}
