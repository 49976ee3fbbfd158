// Package notification describes the fire-and-forget messages the lifecycle
// engine hands to the delivery collaborator.
package notification

import "context"

type Kind string

const (
	KindApplicationSubmitted Kind = "application_submitted"
	KindStatusChanged        Kind = "status_changed"
	KindDocumentsRequested   Kind = "documents_requested"
	KindRestorationRequested Kind = "restoration_requested"
	KindRestorationApproved  Kind = "restoration_approved"
	KindRestorationRejected  Kind = "restoration_rejected"
)

type Message struct {
	To   string            `json:"to"`
	Kind Kind              `json:"kind"`
	Data map[string]string `json:"data"`
}

// Sender delivers one message. Implementations may block on the network.
type Sender interface {
	Send(ctx context.Context, m Message) error
}
