package mcp

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mailbridge-io/mailbridge/internal/mail"
)

// renderMessageList formats read_emails results as a numbered markdown
// list.
func renderMessageList(messages []mail.Message, folder string) string {
	if len(messages) == 0 {
		return fmt.Sprintf("No emails found in %s.", folder)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📧 Found %d email(s) in %s:\n\n", len(messages), folder)
	writeMessageEntries(&sb, messages)
	return sb.String()
}

// renderFilterResults formats filter_emails results, echoing the criteria
// the agent asked for.
func renderFilterResults(messages []mail.Message, f mail.Filter) string {
	var criteria []string
	if f.Sender != "" {
		criteria = append(criteria, "sender: "+f.Sender)
	}
	if f.Subject != "" {
		criteria = append(criteria, "subject contains: "+f.Subject)
	}
	if f.Unread != nil {
		criteria = append(criteria, "unread: "+strconv.FormatBool(*f.Unread))
	}
	criteriaText := "no filters"
	if len(criteria) > 0 {
		criteriaText = strings.Join(criteria, ", ")
	}

	if len(messages) == 0 {
		return fmt.Sprintf("🔍 No emails found matching criteria (%s).", criteriaText)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔍 Found %d email(s) matching criteria (%s):\n\n", len(messages), criteriaText)
	writeMessageEntries(&sb, messages)
	return sb.String()
}

func writeMessageEntries(sb *strings.Builder, messages []mail.Message) {
	for i, msg := range messages {
		fmt.Fprintf(sb, "%d. **From:** %s\n", i+1, msg.From)
		fmt.Fprintf(sb, "   **Subject:** %s\n", msg.Subject)
		fmt.Fprintf(sb, "   **Date:** %s\n", msg.Date)
		fmt.Fprintf(sb, "   **Preview:** %s\n\n", msg.Preview)
	}
}

// renderSendReceipt confirms an accepted submission.
func renderSendReceipt(args sendEmailArgs, receipt *mail.SendReceipt) string {
	var sb strings.Builder
	sb.WriteString("✅ Email sent successfully!\n\n")
	fmt.Fprintf(&sb, "**To:** %s\n", args.To)
	if args.CC != "" {
		fmt.Fprintf(&sb, "**CC:** %s\n", args.CC)
	}
	fmt.Fprintf(&sb, "**Subject:** %s\n", args.Subject)
	fmt.Fprintf(&sb, "**Sent at:** %s", receipt.SentAt.Format(time.RFC3339))
	return sb.String()
}

func renderUnreadCount(count int, folder string) string {
	return fmt.Sprintf("📬 You have **%d** unread email(s) in %s.", count, folder)
}
