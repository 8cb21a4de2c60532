package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/emersion/go-mbox"
	"github.com/jhillyerd/enmime"

	"github.com/agentic-research/fextract/api"
)

// NewEmailHandler parses a single RFC 5322 message (.eml).
func NewEmailHandler() *FormatHandler {
	return newFormatHandler(api.FormatEmail, extractEmail)
}

// NewMboxHandler parses every message of an mbox file.
func NewMboxHandler() *FormatHandler {
	return newFormatHandler(api.FormatMbox, extractMbox)
}

func extractEmail(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }() // read-only

	env, err := enmime.ReadEnvelope(f)
	if err != nil {
		return nil, parseUnlessIO("parse message", err)
	}

	attachments := make([]string, 0, len(env.Attachments))
	for _, part := range env.Attachments {
		attachments = append(attachments, part.FileName)
	}
	return &api.EmailPayload{
		Subject:     env.GetHeader("Subject"),
		From:        env.GetHeader("From"),
		To:          addressList(env, "To"),
		Cc:          addressList(env, "Cc"),
		Date:        env.GetHeader("Date"),
		Text:        env.Text,
		Attachments: attachments,
	}, nil
}

// addressList renders a header as individual addresses. A header that does
// not parse as an address list is kept whole.
func addressList(env *enmime.Envelope, key string) []string {
	out := []string{}
	list, err := env.AddressList(key)
	if err != nil {
		if raw := env.GetHeader(key); raw != "" {
			out = append(out, raw)
		}
		return out
	}
	for _, addr := range list {
		out = append(out, addr.String())
	}
	return out
}

func extractMbox(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }() // read-only

	payload := &api.MboxPayload{Messages: []api.Message{}}
	mr := mbox.NewReader(f)
	for i := 1; ; i++ {
		msg, err := mr.NextMessage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseUnlessIO(fmt.Sprintf("message %d", i), err)
		}
		env, err := enmime.ReadEnvelope(msg)
		if err != nil {
			return nil, parseUnlessIO(fmt.Sprintf("message %d", i), err)
		}
		payload.Messages = append(payload.Messages, api.Message{
			Subject: env.GetHeader("Subject"),
			From:    env.GetHeader("From"),
			Date:    env.GetHeader("Date"),
			Text:    env.Text,
		})
	}
	return payload, nil
}
