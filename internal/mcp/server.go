// Package mcp exposes the mailbox operations as agent-invocable tools over
// the Model Context Protocol.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mailbridge-io/mailbridge/internal/mail"
)

const serverName = "mailbridge"

// defaultReadCount is how many messages read_emails returns when the agent
// does not say.
const defaultReadCount = 10

// MailService is the part of the mail engine the tools depend on.
type MailService interface {
	ListRecent(ctx context.Context, count int, folder string) ([]mail.Message, error)
	Search(ctx context.Context, f mail.Filter) ([]mail.Message, error)
	Send(ctx context.Context, req mail.SendRequest) (*mail.SendReceipt, error)
	UnreadCount(ctx context.Context, folder string) (int, error)
}

// Server wires the mail service into an MCP server. Tool failures are
// reported to the agent as error results, never as broken sessions.
type Server struct {
	svc     MailService
	logger  *slog.Logger
	version string
}

// NewServer returns a server for the given mail service.
func NewServer(svc MailService, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, logger: logger, version: version}
}

// Run serves tool calls over stdin/stdout until ctx is cancelled or the
// agent disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) run(ctx context.Context, transport mcpsdk.Transport) error {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: serverName, Version: s.version}, nil)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "read_emails",
		Description: "Read recent emails from inbox or specified folder. Returns a list of emails with subject, sender, date, and preview.",
	}, s.handleReadEmails)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "filter_emails",
		Description: "Search and filter emails by sender, subject, or unread status. Useful for finding specific emails.",
	}, s.handleFilterEmails)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "send_email",
		Description: "Send an email to a recipient with subject and body. Can optionally include CC.",
	}, s.handleSendEmail)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_unread_count",
		Description: "Get the count of unread emails in inbox or specified folder.",
	}, s.handleGetUnreadCount)

	s.logger.Info("mcp server starting", "name", serverName, "version", s.version)
	return server.Run(ctx, transport)
}

type readEmailsArgs struct {
	Count  int    `json:"count,omitempty" jsonschema:"Number of emails to retrieve (default: 10)"`
	Folder string `json:"folder,omitempty" jsonschema:"Email folder to read from (default: INBOX)"`
}

type filterEmailsArgs struct {
	Sender   string `json:"sender,omitempty" jsonschema:"Filter by sender email address (optional)"`
	Subject  string `json:"subject,omitempty" jsonschema:"Filter by subject (case-insensitive substring match) (optional)"`
	IsUnread *bool  `json:"is_unread,omitempty" jsonschema:"Filter by unread status (optional)"`
	Folder   string `json:"folder,omitempty" jsonschema:"Email folder to search in (default: INBOX)"`
}

type sendEmailArgs struct {
	To      string `json:"to" jsonschema:"Recipient email address"`
	Subject string `json:"subject" jsonschema:"Email subject line"`
	Body    string `json:"body" jsonschema:"Email body content (plain text)"`
	CC      string `json:"cc,omitempty" jsonschema:"CC recipient email address (optional)"`
}

type unreadCountArgs struct {
	Folder string `json:"folder,omitempty" jsonschema:"Email folder to check (default: INBOX)"`
}

func (s *Server) handleReadEmails(ctx context.Context, _ *mcpsdk.CallToolRequest, args readEmailsArgs) (*mcpsdk.CallToolResult, any, error) {
	count := args.Count
	if count == 0 {
		count = defaultReadCount
	}
	folder := args.Folder
	if folder == "" {
		folder = mail.DefaultFolder
	}

	messages, err := s.svc.ListRecent(ctx, count, folder)
	if err != nil {
		s.logger.Error("read_emails failed", "folder", folder, "error", err)
		return errorResult(err), nil, nil
	}
	return textResult(renderMessageList(messages, folder)), nil, nil
}

func (s *Server) handleFilterEmails(ctx context.Context, _ *mcpsdk.CallToolRequest, args filterEmailsArgs) (*mcpsdk.CallToolResult, any, error) {
	folder := args.Folder
	if folder == "" {
		folder = mail.DefaultFolder
	}
	filter := mail.Filter{
		Sender:  args.Sender,
		Subject: args.Subject,
		Unread:  args.IsUnread,
		Folder:  folder,
	}

	messages, err := s.svc.Search(ctx, filter)
	if err != nil {
		s.logger.Error("filter_emails failed", "folder", folder, "error", err)
		return errorResult(err), nil, nil
	}
	return textResult(renderFilterResults(messages, filter)), nil, nil
}

func (s *Server) handleSendEmail(ctx context.Context, _ *mcpsdk.CallToolRequest, args sendEmailArgs) (*mcpsdk.CallToolResult, any, error) {
	receipt, err := s.svc.Send(ctx, mail.SendRequest{
		To:      args.To,
		Subject: args.Subject,
		Body:    args.Body,
		CC:      args.CC,
	})
	if err != nil {
		s.logger.Error("send_email failed", "to", args.To, "error", err)
		return errorResult(err), nil, nil
	}
	return textResult(renderSendReceipt(args, receipt)), nil, nil
}

func (s *Server) handleGetUnreadCount(ctx context.Context, _ *mcpsdk.CallToolRequest, args unreadCountArgs) (*mcpsdk.CallToolResult, any, error) {
	folder := args.Folder
	if folder == "" {
		folder = mail.DefaultFolder
	}

	count, err := s.svc.UnreadCount(ctx, folder)
	if err != nil {
		s.logger.Error("get_unread_count failed", "folder", folder, "error", err)
		return errorResult(err), nil, nil
	}
	return textResult(renderUnreadCount(count, folder)), nil, nil
}

func textResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: fmt.Sprintf("❌ Error: %v", err)}},
		IsError: true,
	}
}
