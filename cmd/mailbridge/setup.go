package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mailbridge-io/mailbridge/internal/config"
	"github.com/mailbridge-io/mailbridge/internal/credential"
	"github.com/mailbridge-io/mailbridge/internal/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the mail account interactively",
	Long: `Setup walks through the account settings in an interactive form. The
password goes to the OS keyring; everything else is written to the config
file with the password field left blank.`,
	RunE: runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	address := cfg.Account.Address
	password := ""
	imapHost := cfg.Account.IMAPHost
	imapPort := strconv.Itoa(cfg.Account.IMAPPort)
	smtpHost := cfg.Account.SMTPHost
	smtpPort := strconv.Itoa(cfg.Account.SMTPPort)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email Address").
				Description("Account identity used for login and as sender").
				Placeholder("user@gmail.com").
				Value(&address).
				Validate(validateRequired("Email Address")),
			huh.NewInput().
				Title("Password").
				Description("Account password or app password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(validateRequired("Password")),
			huh.NewInput().
				Title("IMAP Host").
				Description("IMAP server hostname").
				Placeholder("imap.gmail.com").
				Value(&imapHost).
				Validate(validateRequired("IMAP Host")),
			huh.NewInput().
				Title("IMAP Port").
				Description("IMAP server port (e.g., 993)").
				Placeholder("993").
				Value(&imapPort).
				Validate(validatePort),
			huh.NewInput().
				Title("SMTP Host").
				Description("SMTP server hostname").
				Placeholder("smtp.gmail.com").
				Value(&smtpHost).
				Validate(validateRequired("SMTP Host")),
			huh.NewInput().
				Title("SMTP Port").
				Description("SMTP server port (e.g., 587)").
				Placeholder("587").
				Value(&smtpPort).
				Validate(validatePort),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup aborted: %w", err)
	}

	if err := credential.SetPassword(address, password); err != nil {
		return fmt.Errorf("storing password: %w", err)
	}

	cfg.Account.Address = address
	cfg.Account.Password = "" // the secret stays out of the file
	cfg.Account.IMAPHost = imapHost
	cfg.Account.IMAPPort, _ = strconv.Atoi(imapPort)
	cfg.Account.SMTPHost = smtpHost
	cfg.Account.SMTPPort, _ = strconv.Atoi(smtpPort)

	path := configPath()
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Println(theme.SuccessStyle.Render("Configuration saved."))
	fmt.Println(theme.SubtleStyle.Render("  config:   " + path))
	fmt.Println(theme.SubtleStyle.Render("  password: OS keyring"))
	fmt.Println()
	fmt.Println("Run " + theme.LabelStyle.Render("mailbridge check") + " to verify the connection.")
	return nil
}

// --- Validators ---

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validatePort(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("port is required")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return fmt.Errorf("port must be a number")
		}
	}
	return nil
}
