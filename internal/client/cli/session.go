package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (c *Cli) newLoginCommand() *cobra.Command {
	var phone, pin string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with phone number and PIN",
		Long: `Sign in with a phone number and a 4-8 digit PIN.
The account is created on first login. The PIN is prompted for when
not passed with --pin or CROPAID_PIN.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLogin(cmd.Context(), phone, pin)
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number, e.g. 9876543210 or +919876543210")
	cmd.Flags().StringVar(&pin, "pin", "", "PIN (not recommended, use the prompt or CROPAID_PIN)")
	return cmd
}

func (c *Cli) runLogin(ctx context.Context, phone, pin string) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	if !c.monitor.IsOnline() {
		return fmt.Errorf("server is not reachable, login requires a connection")
	}

	var err error
	if phone == "" {
		if phone, err = c.io.ReadInput("Phone number: "); err != nil {
			return fmt.Errorf("failed to read phone number: %w", err)
		}
	}
	if pin == "" {
		pin = envPin()
	}
	if pin == "" {
		if pin, err = c.io.ReadSecret("PIN: "); err != nil {
			return fmt.Errorf("failed to read pin: %w", err)
		}
	}

	c.io.Println("Authenticating...")
	data, err := c.auth.Login(ctx, phone, pin)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Phone: %s\n", data.PhoneNumber)
	c.io.Printf("Access token expires: %s\n", time.Unix(data.ExpiresAt, 0).Format(time.RFC3339))

	// Записи, сделанные в гостевом режиме, можно отправить сразу
	if count, err := c.store.PendingCount(ctx); err == nil && count > 0 {
		c.io.Printf("\n%d queued action(s) will be sent on the next 'cropaid sync'.\n", count)
	}
	return nil
}

func (c *Cli) newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			c.io.Println("✓ Logged out")
			return nil
		},
	}
}

func (c *Cli) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity, session and pending sync counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStatus(cmd.Context())
		},
	}
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()
	c.io.Printf("Server:     %s (%s)\n", c.cfg.Server, c.connectionLabel())

	session := c.auth.Current()
	switch {
	case c.cfg.Guest:
		c.io.Println("Session:    guest mode")
	case session == nil:
		c.io.Println("Session:    not signed in (writes are queued)")
	default:
		expiresAt := time.Unix(session.ExpiresAt, 0)
		c.io.Printf("Session:    %s\n", session.PhoneNumber)
		if c.auth.Expired() {
			c.io.Println("⚠️  Token has expired. Please login again.")
		} else {
			c.io.Printf("Expires in: %s\n", time.Until(expiresAt).Round(time.Second))
		}
	}

	pending, err := c.store.PendingCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending count: %w", err)
	}
	abandoned, err := c.store.ListAbandoned(ctx)
	if err != nil {
		return fmt.Errorf("failed to list abandoned actions: %w", err)
	}
	unsynced, err := c.captures.PendingSyncCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count unsynced captures: %w", err)
	}

	c.io.Println()
	c.io.Printf("Queued actions:    %d\n", pending)
	if len(abandoned) > 0 {
		c.io.Printf("Abandoned actions: %d\n", len(abandoned))
	}
	c.io.Printf("Unsynced captures: %d\n", unsynced)

	if pending > 0 || unsynced > 0 {
		c.io.Println()
		c.io.Println("Run 'cropaid sync' to synchronize with server.")
	} else {
		c.io.Println()
		c.io.Println("✓ All data synchronized with server")
	}
	return nil
}
