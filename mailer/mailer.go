// Package mailer composes the signalist emails and hands them to a Mailer.
//
// Bodies are written in markdown and sent as multipart/alternative messages
// with the HTML rendering produced by goldmark.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
)

// DefaultFrom is the sender of the emails unless configured otherwise.
const DefaultFrom = "Signalist <noreply@signalist.app>"

// Message is an email.
type Message struct {
	From     string
	To       string
	Subject  string
	Markdown string // body
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// Bytes returns the RFC 5322 encoding of m, dated now.
func (m Message) Bytes(now time.Time) ([]byte, error) {
	var html bytes.Buffer
	if err := goldmark.Convert([]byte(m.Markdown), &html); err != nil {
		return nil, fmt.Errorf("cannot render %q: %w", m.Subject, err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, part := range []struct{ contentType, content string }{
		{"text/plain; charset=utf-8", m.Markdown},
		{"text/html; charset=utf-8", html.String()},
	} {
		pw, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err := qp.Write([]byte(part.content)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@signalist>\r\n", uuid.NewString())
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", w.Boundary())
	b.Write(body.Bytes())
	return b.Bytes(), nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Outbox is a Mailer that writes each message as an .eml file in Dir, for a
// mail transfer agent to pick up.
type Outbox struct {
	Dir    string
	Now    func() time.Time
	Logger *slog.Logger

	mu sync.Mutex
	n  int
}

// Send implements Mailer.
func (o *Outbox) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("message %q has no recipient", m.Subject)
	}
	now := time.Now()
	if o.Now != nil {
		now = o.Now()
	}
	content, err := m.Bytes(now)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return err
	}

	o.mu.Lock()
	o.n++
	name := fmt.Sprintf("%s-%04d-%s.eml", now.Format("20060102T150405"), o.n, unsafeChars.ReplaceAllString(m.To, "_"))
	o.mu.Unlock()

	file := filepath.Join(o.Dir, name)
	if err := os.WriteFile(file, content, 0o644); err != nil {
		return err
	}
	if o.Logger != nil {
		o.Logger.Info("email queued", "to", m.To, "subject", m.Subject, "file", file)
	}
	return nil
}
