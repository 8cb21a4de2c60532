package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/fextract/api"
)

const sampleEmail = "From: Ada Lovelace <ada@example.com>\r\n" +
	"To: Charles <charles@example.com>, team@example.com\r\n" +
	"Cc: archive@example.com\r\n" +
	"Subject: Engine notes\r\n" +
	"Date: Mon, 02 Jan 2006 15:04:05 +0000\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=\"XYZ\"\r\n" +
	"\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"The analytical engine weaves algebraic patterns.\r\n" +
	"--XYZ\r\n" +
	"Content-Type: application/octet-stream\r\n" +
	"Content-Disposition: attachment; filename=\"notes.bin\"\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"AAEC\r\n" +
	"--XYZ--\r\n"

func TestEmailHandler(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "message.eml", []byte(sampleEmail))
	p := payloadOf[*api.EmailPayload](t, NewEmailHandler().Extract(path))

	assert.Equal(t, "Engine notes", p.Subject)
	assert.Contains(t, p.From, "ada@example.com")
	require.Len(t, p.To, 2)
	assert.Contains(t, p.To[0], "charles@example.com")
	assert.Contains(t, p.To[1], "team@example.com")
	assert.Len(t, p.Cc, 1)
	assert.Equal(t, "Mon, 02 Jan 2006 15:04:05 +0000", p.Date)
	assert.Contains(t, p.Text, "analytical engine")
	assert.Equal(t, []string{"notes.bin"}, p.Attachments)
}

func TestMboxHandler(t *testing.T) {
	mbox := "From ada@example.com Mon Jan  2 15:04:05 2006\n" +
		"From: ada@example.com\nSubject: First\nDate: Mon, 02 Jan 2006 15:04:05 +0000\n\nhello one\n\n" +
		"From bob@example.com Tue Jan  3 15:04:05 2006\n" +
		"From: bob@example.com\nSubject: Second\n\nhello two\n"
	path := writeFixture(t, t.TempDir(), "inbox.mbox", []byte(mbox))

	p := payloadOf[*api.MboxPayload](t, NewMboxHandler().Extract(path))
	require.Len(t, p.Messages, 2)
	assert.Equal(t, "First", p.Messages[0].Subject)
	assert.Equal(t, "ada@example.com", p.Messages[0].From)
	assert.True(t, strings.HasPrefix(p.Messages[0].Text, "hello one"))
	assert.Equal(t, "Second", p.Messages[1].Subject)
	assert.Contains(t, p.Messages[1].Text, "hello two")

	empty := writeFixture(t, t.TempDir(), "empty.mbox", nil)
	assert.Empty(t, payloadOf[*api.MboxPayload](t, NewMboxHandler().Extract(empty)).Messages)
}
