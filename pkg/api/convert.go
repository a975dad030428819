package api

import (
	"github.com/rojo-rbx/rojo-sub001/pkg/patch"
	"github.com/rojo-rbx/rojo-sub001/pkg/queue"
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxtree"
	"github.com/rojo-rbx/rojo-sub001/pkg/rojo"
)

// NewHandshakeResponse builds the `/api/rojo` response body.
func NewHandshakeResponse(sessionID string, rootID rbxtree.ID, expectedPlaceIDs []int64) HandshakeResponse {
	return HandshakeResponse{
		SessionID:        sessionID,
		ServerVersion:    rojo.Version,
		ProtocolVersion:  rojo.ProtocolVersion,
		ExpectedPlaceIDs: expectedPlaceIDs,
		RootInstanceID:   rootID.String(),
	}
}

// NewMessage converts a queued patch into its wire representation, looking
// up each added instance in tree by its assigned ID. Messages are rendered
// when a subscriber reads them, so an added instance that has since left
// tree yields an entry with only its parent and a zero Instance.
func NewMessage(tree *rbxtree.Tree, m queue.Message) Message {
	wire := Message{Cursor: m.Cursor}

	for _, id := range m.Patch.Removed {
		wire.Removed = append(wire.Removed, id.String())
	}

	for _, add := range m.Patch.Added {
		entry := AddedEntry{Parent: add.Parent.String()}
		if inst, ok := tree.Get(add.AssignedID); ok {
			entry.Instance = NewInstance(inst)
		}
		wire.Added = append(wire.Added, entry)
	}

	for _, upd := range m.Patch.Updated {
		wire.Updated = append(wire.Updated, NewUpdateEntry(upd))
	}

	return wire
}

// NewUpdateEntry converts a patch.Update into its wire representation.
func NewUpdateEntry(u patch.Update) UpdateEntry {
	return UpdateEntry{
		ID:                u.ID.String(),
		ChangedName:       u.ChangedName,
		ChangedClassName:  u.ChangedClass,
		ChangedProperties: u.ChangedProperties,
	}
}

// NewSubscribeResponse converts a queue.Since/WaitForSince result into the
// `/api/subscribe/{cursor}` response body.
func NewSubscribeResponse(sessionID string, tree *rbxtree.Tree, cursor uint32, messages []queue.Message) SubscribeResponse {
	wire := SubscribeResponse{SessionID: sessionID, MessageCursor: cursor}
	for _, m := range messages {
		wire.Messages = append(wire.Messages, NewMessage(tree, m))
	}
	return wire
}
