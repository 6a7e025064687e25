// IMAP mailbox contract. Every read operation runs on its own short-lived
// session; nothing is cached between calls.
//
// Library: emersion/go-imap v2 + emersion/go-message
// Auth: username + password (app password for Gmail)
package contracts

// Session discipline (all read operations):
//   Dial with implicit TLS on the configured IMAP port.
//   LOGIN with address + password.
//   SELECT the target folder read-only.
//   Do the operation's searches and fetches.
//   LOGOUT, on success and on failure alike.
//
// ListRecent:
//   UID SEARCH ALL, take the highest count UIDs, fetch newest first.
//
// Search:
//   UID SEARCH with server-side criteria:
//     unread=true  -> UNSEEN
//     unread=false -> SEEN
//     sender       -> FROM "<substring>"
//   Fetch all hits, then refine by case-insensitive subject substring
//   against the decoded Subject header. Results ordered newest first.
//
// UnreadCount:
//   UID SEARCH UNSEEN, count the result set. No fetches.
//
// Fetch shape (per message):
//   UID FETCH <uid> (UID BODY.PEEK[])
//   PEEK keeps the read-only promise: listing never flips \Seen.
//
// Normalization:
//   Subject/From/Date pass through RFC 2047 decoding with a lenient
//   charset reader; an undecodable word stays verbatim rather than
//   failing the message.
//   Body is the first text/plain part found walking the MIME structure
//   top-down; single-part messages yield their payload whatever the
//   content type; multipart mail without a text/plain part yields "".
//   Preview collapses newlines and caps the body at 150 runes with a
//   "..." suffix.
//
// Failure atomicity:
//   A fetch or parse failure fails the whole operation. Callers never see
//   a partially assembled page.
