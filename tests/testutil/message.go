// Package testutil builds raw RFC 822 fixtures for mailbox tests.
package testutil

import (
	"fmt"
	"strings"
)

// FixtureDate is the Date header stamped on every built message.
const FixtureDate = "Tue, 10 Jun 2025 09:30:00 +0000"

// Part is one body part of a multipart fixture.
type Part struct {
	ContentType string
	Body        string
}

// TextPart builds a plain-text alternative part.
func TextPart(body string) Part {
	return Part{ContentType: "text/plain; charset=utf-8", Body: body}
}

// HTMLPart builds an HTML alternative part.
func HTMLPart(body string) Part {
	return Part{ContentType: "text/html; charset=utf-8", Body: body}
}

// PlainMessage renders a single-part text message.
func PlainMessage(from, subject, body string) []byte {
	return singlePart(from, subject, "text/plain; charset=utf-8", body)
}

// HTMLMessage renders a single-part HTML message.
func HTMLMessage(from, subject, body string) []byte {
	return singlePart(from, subject, "text/html; charset=utf-8", body)
}

func singlePart(from, subject, contentType, body string) []byte {
	var sb strings.Builder
	writeCommonHeaders(&sb, from, subject)
	fmt.Fprintf(&sb, "Content-Type: %s\r\n", contentType)
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return []byte(sb.String())
}

// MultipartMessage renders a multipart/alternative message with the given
// parts in order.
func MultipartMessage(from, subject string, parts ...Part) []byte {
	const boundary = "fixture-boundary"

	var sb strings.Builder
	writeCommonHeaders(&sb, from, subject)
	fmt.Fprintf(&sb, "Content-Type: multipart/alternative; boundary=%s\r\n", boundary)
	sb.WriteString("\r\n")
	for _, part := range parts {
		fmt.Fprintf(&sb, "--%s\r\n", boundary)
		fmt.Fprintf(&sb, "Content-Type: %s\r\n", part.ContentType)
		sb.WriteString("\r\n")
		sb.WriteString(part.Body)
		sb.WriteString("\r\n")
	}
	fmt.Fprintf(&sb, "--%s--\r\n", boundary)
	return []byte(sb.String())
}

func writeCommonHeaders(sb *strings.Builder, from, subject string) {
	fmt.Fprintf(sb, "From: %s\r\n", from)
	sb.WriteString("To: agent@example.com\r\n")
	fmt.Fprintf(sb, "Subject: %s\r\n", subject)
	fmt.Fprintf(sb, "Date: %s\r\n", FixtureDate)
	sb.WriteString("MIME-Version: 1.0\r\n")
}
