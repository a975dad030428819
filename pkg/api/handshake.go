// Package api defines the JSON data shapes exposed by the HTTP surface:
// the handshake, read, and subscribe responses. The HTTP endpoints
// themselves (the handlers that serialize these shapes) are a thin
// wrapper left to cmd/rojo.
package api

import (
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxtree"
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"
	"github.com/rojo-rbx/rojo-sub001/pkg/rojo"
)

// HandshakeResponse is the body of `/api/rojo`.
type HandshakeResponse struct {
	SessionID        string  `json:"sessionId"`
	ServerVersion    string  `json:"serverVersion"`
	ProtocolVersion  int     `json:"protocolVersion"`
	ExpectedPlaceIDs []int64 `json:"expectedPlaceIds,omitempty"`
	RootInstanceID   string  `json:"rootInstanceId"`
}

// Instance is the wire representation of a single rbxtree.Instance,
// returned in maps keyed by instance ID from `/api/read/{ids}`.
type Instance struct {
	ID         string                    `json:"Id"`
	Parent     *string                   `json:"Parent"`
	Name       string                    `json:"Name"`
	ClassName  string                    `json:"ClassName"`
	Properties map[string]rbxvalue.Value `json:"Properties"`
	Children   []string                  `json:"Children"`
}

// NewInstance converts a tree instance into its wire representation.
func NewInstance(inst *rbxtree.Instance) Instance {
	var parent *string
	if inst.Parent != nil {
		s := inst.Parent.String()
		parent = &s
	}
	children := make([]string, len(inst.Children))
	for i, c := range inst.Children {
		children[i] = c.String()
	}
	return Instance{
		ID:         inst.ID.String(),
		Parent:     parent,
		Name:       inst.Name,
		ClassName:  inst.Class,
		Properties: inst.Properties,
		Children:   children,
	}
}

// ReadResponse is the body of `/api/read/{ids}`: a map of requested
// instance IDs to their current representation.
type ReadResponse struct {
	SessionID string              `json:"sessionId"`
	Instances map[string]Instance `json:"instances"`
}

// Message is a single queued patch rendered for the wire, paired with the
// cursor it was assigned (mirrors pkg/queue.Message but with JSON tags and
// wire-friendly instance IDs instead of rbxtree.ID values).
type Message struct {
	Cursor  uint32        `json:"cursor"`
	Removed []string      `json:"removed,omitempty"`
	Added   []AddedEntry  `json:"added,omitempty"`
	Updated []UpdateEntry `json:"updated,omitempty"`
}

// AddedEntry pairs a new instance's parent with the added root instance;
// that instance's children appear only as IDs in its Children list.
type AddedEntry struct {
	Parent   string   `json:"parent"`
	Instance Instance `json:"instance"`
}

// UpdateEntry is a wire-friendly rendering of patch.Update.
type UpdateEntry struct {
	ID                string                     `json:"id"`
	ChangedName       *string                    `json:"changedName,omitempty"`
	ChangedClassName  *string                    `json:"changedClassName,omitempty"`
	ChangedProperties map[string]*rbxvalue.Value `json:"changedProperties,omitempty"`
}

// SubscribeResponse is the body of `/api/subscribe/{cursor}`: a long-poll
// result carrying every message pushed after the requested cursor.
type SubscribeResponse struct {
	SessionID     string    `json:"sessionId"`
	MessageCursor uint32    `json:"messageCursor"`
	Messages      []Message `json:"messages"`
}
