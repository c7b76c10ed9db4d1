package testutil

import (
	"context"
	"regexp"
	"sync"

	"github.com/crisisline/crisishub/internal/app/system/mailer"
)

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

// MailSink is a mailer.Sender that keeps every message in memory.
type MailSink struct {
	mu   sync.Mutex
	Sent []mailer.Email
	Err  error // returned from Send when set
}

func (m *MailSink) Send(_ context.Context, e mailer.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, e)
	return nil
}

// Count returns the number of messages sent.
func (m *MailSink) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// LastCode returns the six-digit code in the most recent message to addr,
// or "" if there is none.
func (m *MailSink) LastCode(addr string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Sent) - 1; i >= 0; i-- {
		if m.Sent[i].To == addr {
			return codePattern.FindString(m.Sent[i].TextBody)
		}
	}
	return ""
}
