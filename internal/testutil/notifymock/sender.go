package notifymock

import (
	"context"
	"sync"

	"loan-backoffice/internal/domain/notification"
)

var _ notification.Sender = (*Sender)(nil)

// Sender records every message. When Err is set it is returned after recording.
type Sender struct {
	mu   sync.Mutex
	sent []notification.Message
	Err  error
}

func (s *Sender) Send(_ context.Context, m notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
	return s.Err
}

func (s *Sender) Sent() []notification.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notification.Message, len(s.sent))
	copy(out, s.sent)
	return out
}

// Kinds returns the kinds sent, in order.
func (s *Sender) Kinds() []notification.Kind {
	var out []notification.Kind
	for _, m := range s.Sent() {
		out = append(out, m.Kind)
	}
	return out
}
