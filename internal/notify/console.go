package notify

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ConsoleChannel writes alerts to a local stream instead of sending them.
// Used by dry-run mode.
type ConsoleChannel struct {
	out io.Writer
}

// NewConsole creates a console channel writing to stdout.
func NewConsole() *ConsoleChannel {
	return &ConsoleChannel{out: os.Stdout}
}

// Name returns the channel identifier.
func (c *ConsoleChannel) Name() string { return "console" }

// Send prints the formatted alert message.
func (c *ConsoleChannel) Send(_ context.Context, alert *Alert) error {
	_, err := fmt.Fprintln(c.out, FormatMessage(alert))
	return err
}
