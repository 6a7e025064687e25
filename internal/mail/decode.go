package mail

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-message/charset"
	gomail "github.com/emersion/go-message/mail"
)

// headerDecoder decodes MIME encoded-word header values. Unknown charsets
// fall back to the raw bytes instead of failing the whole header.
var headerDecoder = &mime.WordDecoder{CharsetReader: lenientCharsetReader}

func lenientCharsetReader(name string, input io.Reader) (io.Reader, error) {
	r, err := charset.Reader(name, input)
	if err != nil {
		return input, nil
	}
	return r, nil
}

// decodeHeader decodes the encoded words of a header value into plain UTF-8.
// A value that cannot be decoded is returned as-is, minus invalid bytes.
func decodeHeader(value string) string {
	decoded, err := headerDecoder.DecodeHeader(value)
	if err != nil {
		return sanitizeText(value)
	}
	return sanitizeText(decoded)
}

// decodeMessage normalizes one raw RFC 822 message. Header fields that fail
// to decode are left empty, and a body that cannot be parsed degrades to the
// raw payload text. Decoding never fails a message.
func decodeMessage(raw []byte) Message {
	var msg Message
	mr, _ := gomail.CreateReader(bytes.NewReader(raw))
	if mr == nil {
		msg.Body = sanitizeText(rawPayload(raw))
		msg.Preview = buildPreview(msg.Body)
		return msg
	}
	defer func() { _ = mr.Close() }()

	msg.Subject = decodeHeader(mr.Header.Get("Subject"))
	msg.From = decodeHeader(mr.Header.Get("From"))
	msg.Date = decodeHeader(mr.Header.Get("Date"))
	msg.Body = readBody(mr)
	msg.Preview = buildPreview(msg.Body)
	return msg
}

// readBody walks the message parts depth-first and returns the displayable
// body text. Multipart messages yield their first plain-text part, other
// messages yield their single payload whatever its content type.
func readBody(mr *gomail.Reader) string {
	contentType, _, _ := mr.Header.ContentType()
	multipart := strings.HasPrefix(contentType, "multipart/")

	for {
		// NextPart can return a usable part together with an unknown
		// charset error, so only a nil part ends the walk.
		part, err := mr.NextPart()
		if err == io.EOF || part == nil {
			break
		}
		header, ok := part.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}
		if multipart {
			partType, _, _ := header.ContentType()
			if partType != "text/plain" {
				continue
			}
		}
		text, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		return sanitizeText(string(text))
	}
	return ""
}

// rawPayload returns everything after the header break, or the whole input
// when no break exists.
func rawPayload(raw []byte) string {
	crlf := bytes.Index(raw, []byte("\r\n\r\n"))
	lf := bytes.Index(raw, []byte("\n\n"))
	switch {
	case crlf >= 0 && (lf < 0 || crlf <= lf):
		return string(raw[crlf+4:])
	case lf >= 0:
		return string(raw[lf+2:])
	}
	return string(raw)
}

func sanitizeText(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}

var newlineCollapser = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// buildPreview keeps short bodies unchanged. Longer bodies have their
// newlines collapsed to spaces, are cut at previewLimit runes, and end with
// a truncation marker.
func buildPreview(body string) string {
	if utf8.RuneCountInString(body) <= previewLimit {
		return body
	}
	collapsed := newlineCollapser.Replace(body)
	runes := []rune(collapsed)
	if len(runes) > previewLimit {
		runes = runes[:previewLimit]
	}
	return string(runes) + "..."
}
