// MCP tool contract. The bridge registers four tools on a stdio server;
// argument schemas are inferred from the handler argument structs.
//
// Library: modelcontextprotocol/go-sdk
// Transport: stdio (stdout is the protocol channel, logs go to stderr)
package contracts

// read_emails:
//   args:   count (int, optional, default 10), folder (string, default "INBOX")
//   maps to MailService.ListRecent
//   render: "📧 Found N email(s) in <folder>:" followed by numbered entries
//           with From / Subject / Date / Preview, or "No emails found in
//           <folder>." when empty.
//
// filter_emails:
//   args:   sender, subject, is_unread (bool, tri-state via omission),
//           folder (default "INBOX")
//   maps to MailService.Search
//   render: "🔍 Found N email(s) matching criteria (<criteria>):" with the
//           same numbered entries; criteria echoes the filters that were
//           actually set, or "no filters".
//
// send_email:
//   args:   to (required), subject, body, cc (optional)
//   maps to MailService.Send
//   render: "✅ Email sent successfully!" plus To / CC / Subject and the
//           submission timestamp in RFC 3339.
//
// get_unread_count:
//   args:   folder (default "INBOX")
//   maps to MailService.UnreadCount
//   render: "📬 You have **N** unread email(s) in <folder>."
//
// Failure handling:
//   Every handler converts an operation error into a tool result with
//   IsError set and a "❌ Error: <cause>" text payload. Handlers never
//   return protocol-level errors for mailbox failures; the agent always
//   receives renderable text.
//
// Defaults are applied in the tool layer, not the engine: an omitted count
// becomes 10, an omitted folder becomes INBOX. The engine treats count 0
// literally and returns nothing.
