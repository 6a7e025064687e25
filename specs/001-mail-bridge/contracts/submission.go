// SMTP submission contract. One connection per send, upgraded in place.
//
// Library: net/smtp + crypto/tls; message assembly via emersion/go-message
package contracts

// Send sequence:
//   Dial the configured SMTP port in plaintext.
//   STARTTLS with the server name pinned to the configured host.
//   AUTH PLAIN with address + password.
//   MAIL FROM (configured address), RCPT TO for To and CC, DATA, QUIT.
//
// Message assembly:
//   From / To / Cc / Subject / Date headers plus a generated Message-ID
//   (uuid@sender-domain). Subjects with non-ASCII content are emitted as
//   encoded words. Body is a single text/plain part.
//
// Failure mapping:
//   dial failure        -> ConnectError
//   STARTTLS rejection  -> ConnectError
//   AUTH rejection      -> AuthError
//   MAIL / RCPT / DATA / QUIT rejection -> SendError
//   missing To address  -> SendError before any dial
//
// The receipt's SentAt is taken after QUIT succeeds; a failed submission
// yields no receipt at all.
