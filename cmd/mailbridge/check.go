package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mailbridge-io/mailbridge/internal/credential"
	"github.com/mailbridge-io/mailbridge/internal/logging"
	"github.com/mailbridge-io/mailbridge/internal/mail"
	"github.com/mailbridge-io/mailbridge/internal/theme"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the mailbox connection",
	Long: `Check connects to the configured account, counts unread mail and reads a
few recent messages. Run it after setup to confirm the bridge works before
wiring it into an agent host.`,
	RunE: runCheck,
}

var errCheckFailed = errors.New("check failed")

func runCheck(cmd *cobra.Command, args []string) error {
	fmt.Println(theme.TitleStyle.Render("mailbridge check"))
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.Setup("error", cfg.Logging.Format)

	step("Initializing mail client")
	client, err := mail.NewClient(cfg.Credentials(credential.PasswordFor), logger)
	if err != nil {
		return failCheck(err)
	}
	pass("Email configured: " + cfg.Account.Address)

	ctx := cmd.Context()

	step("Testing unread count")
	unread, err := client.UnreadCount(ctx, mail.DefaultFolder)
	if err != nil {
		return failCheck(err)
	}
	pass(fmt.Sprintf("Unread emails: %d", unread))

	step("Reading 3 recent emails")
	messages, err := client.ListRecent(ctx, 3, mail.DefaultFolder)
	if err != nil {
		return failCheck(err)
	}
	pass(fmt.Sprintf("Retrieved %d email(s)", len(messages)))

	if len(messages) > 0 {
		first := messages[0]
		fmt.Println()
		fmt.Println(theme.SubtleStyle.Render("First email:"))
		printField("From", first.From)
		printField("Subject", first.Subject)
		printField("Preview", clip(first.Preview, 100))
	}

	fmt.Println()
	fmt.Println(theme.SuccessStyle.Render("All checks passed. The bridge is ready to use."))
	return nil
}

func step(text string) {
	fmt.Println(theme.SubtleStyle.Render("• " + text + "..."))
}

func pass(text string) {
	fmt.Println(theme.SuccessStyle.Render("  ✓ ") + text)
}

func printField(name, value string) {
	fmt.Println("  " + theme.LabelStyle.Render(name+":") + " " + value)
}

// clip shortens s to at most limit runes for single-line display.
func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func failCheck(err error) error {
	fmt.Println()
	fmt.Println(theme.ErrorStyle.Render("  ✗ ") + err.Error())
	fmt.Println()
	fmt.Println(theme.WarnStyle.Render("Common issues:"))
	fmt.Println("  1. Use an app password, not your regular account password")
	fmt.Println("  2. Gmail requires 2-Step Verification before app passwords work")
	fmt.Println("  3. Generate one at: https://myaccount.google.com/apppasswords")
	fmt.Println("  4. Check your internet connection")
	return errCheckFailed
}
