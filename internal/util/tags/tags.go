// Package tags provides consistent tagging for provisioned AWS resources.
//
// Every resource deskprov creates carries the same tag set so desktops can be
// found, grouped, and cleaned up by employee, department, or access level.
package tags

import (
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// Standard tag keys for provisioned resources.
const (
	KeyName        = "Name"
	KeyEmployee    = "Employee"
	KeyEmployeeID  = "EmployeeId"
	KeyDepartment  = "Department"
	KeyRole        = "Role"
	KeyAccessLevel = "AccessLevel"
	KeyBackend     = "Backend"
	KeyManagedBy   = "ManagedBy"
)

// ManagedBy value for all deskprov-owned resources.
const ManagedByDeskprov = "deskprov"

// Builder assembles the tag set for one provisioned desktop.
type Builder struct {
	tags map[string]string
}

// NewBuilder creates a builder with the ManagedBy tag pre-set.
func NewBuilder() *Builder {
	return &Builder{tags: map[string]string{KeyManagedBy: ManagedByDeskprov}}
}

// WithName sets the resource display name.
func (b *Builder) WithName(name string) *Builder {
	b.tags[KeyName] = name
	return b
}

// WithEmployee sets the employee name and record ID tags.
func (b *Builder) WithEmployee(name, id string) *Builder {
	b.tags[KeyEmployee] = name
	b.tags[KeyEmployeeID] = id
	return b
}

// WithDepartment sets the department tag.
func (b *Builder) WithDepartment(department string) *Builder {
	b.tags[KeyDepartment] = department
	return b
}

// WithRole sets the role tag.
func (b *Builder) WithRole(role string) *Builder {
	b.tags[KeyRole] = role
	return b
}

// WithAccessLevel sets the resolved access level tag.
func (b *Builder) WithAccessLevel(level string) *Builder {
	b.tags[KeyAccessLevel] = level
	return b
}

// WithBackend sets the provisioning backend kind tag.
func (b *Builder) WithBackend(kind string) *Builder {
	b.tags[KeyBackend] = kind
	return b
}

// Build returns the tag map.
func (b *Builder) Build() map[string]string {
	out := make(map[string]string, len(b.tags))
	for k, v := range b.tags {
		out[k] = v
	}
	return out
}

// ToEC2 converts a tag map to EC2 tag structs in deterministic key order.
func ToEC2(tags map[string]string) []ec2types.Tag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]ec2types.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, ec2types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}
