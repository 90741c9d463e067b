// Package domain defines the capability token data model.
//
// A capability grants one action on one resource. Resource kinds and actions
// are closed enumerations so that new members force a review of every switch
// over them.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ResourceKind is the closed set of resource types a capability can target.
type ResourceKind string

const (
	ResourceDataset     ResourceKind = "dataset"
	ResourceDID         ResourceKind = "did"
	ResourceFile        ResourceKind = "file"
	ResourceMetadata    ResourceKind = "metadata"
	ResourceUserProfile ResourceKind = "user_profile"
)

// Valid reports whether the kind is a member of the closed set.
func (k ResourceKind) Valid() bool {
	switch k {
	case ResourceDataset, ResourceDID, ResourceFile, ResourceMetadata, ResourceUserProfile:
		return true
	}
	return false
}

// Action is the closed set of operations a capability can grant.
type Action string

const (
	ActionCreate   Action = "create"
	ActionRead     Action = "read"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionUpload   Action = "upload"
	ActionDownload Action = "download"
	ActionProcess  Action = "process"
	ActionPublish  Action = "publish"
)

// Valid reports whether the action is a member of the closed set.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete,
		ActionUpload, ActionDownload, ActionProcess, ActionPublish:
		return true
	}
	return false
}

// Resource is a tagged reference to a concrete resource instance.
type Resource struct {
	Kind ResourceKind
	ID   string
}

// String renders the resource as "<kind>:<id>".
func (r Resource) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// ParseResource parses a "<kind>:<id>" string. The id may itself contain
// colons (DIDs do).
func ParseResource(s string) (Resource, error) {
	kind, id, found := strings.Cut(s, ":")
	if !found {
		return Resource{}, fmt.Errorf("malformed resource %q", s)
	}
	r := Resource{Kind: ResourceKind(kind), ID: id}
	if !r.Kind.Valid() {
		return Resource{}, fmt.Errorf("unknown resource kind %q", kind)
	}
	return r, nil
}

// Capability grants one action on one resource.
type Capability struct {
	Resource Resource
	Action   Action
}

// MarshalJSON encodes the capability as a ["<kind>:<id>", "<action>"] pair,
// the wire form carried inside token strings.
func (c Capability) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{c.Resource.String(), string(c.Action)})
}

// UnmarshalJSON decodes the pair form, rejecting unknown kinds and actions.
func (c *Capability) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}

	resource, err := ParseResource(pair[0])
	if err != nil {
		return err
	}

	action := Action(pair[1])
	if !action.Valid() {
		return fmt.Errorf("unknown action %q", pair[1])
	}

	c.Resource = resource
	c.Action = action
	return nil
}
