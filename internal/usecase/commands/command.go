package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"happyBot/internal/domain"
)

type Category string

const (
	CategoryGeneral Category = "General"
	CategoryFun     Category = "Fun"
	CategoryStaff   Category = "Staff Tools"
	CategoryBot     Category = "Bot"
)

// Cooldown is the minimum interval between two invocations by one actor.
type Cooldown struct {
	Amount int
	Unit   time.Duration
}

func (c Cooldown) Delay() time.Duration {
	if c.Amount <= 0 || c.Unit <= 0 {
		return 0
	}
	return time.Duration(c.Amount) * c.Unit
}

type Handler func(ctx context.Context, c *Context) error

// Command describes a chat command. Values are copied into the router on
// registration and never modified afterwards.
type Command struct {
	Name      string
	Aliases   []string
	Usage     string
	Help      string
	Category  Category
	Role      domain.RoleKey
	Cooldown  *Cooldown
	Platforms []domain.Platform
	Handler   Handler
}

func (c *Command) SupportsPlatform(p domain.Platform) bool {
	if len(c.Platforms) == 0 {
		return true
	}
	for _, allowed := range c.Platforms {
		if allowed == p {
			return true
		}
	}
	return false
}

func (c *Command) hasCooldown() bool {
	return c.Cooldown != nil && c.Cooldown.Delay() > 0
}

type Context struct {
	Message domain.Message
	Out     domain.OutgoingMessagePort
	Command *Command

	// Raw is the argument string after the command name.
	Raw  string
	Args []string

	prefix string
}

func (c *Context) Reply(ctx context.Context, text string) error {
	return c.Out.SendMessage(ctx, c.Message.Platform, c.Message.ChannelID, text)
}

func (c *Context) ReplySuccess(ctx context.Context, text string) error {
	return c.Reply(ctx, "✅ "+text)
}

func (c *Context) ReplyError(ctx context.Context, text string) error {
	return c.Reply(ctx, "❌ "+text)
}

// Usage replies with the command's correct usage and returns a *UsageError.
func (c *Context) Usage(ctx context.Context) error {
	usage := c.UsageLine()
	if err := c.ReplyError(ctx, "**Correct Usage:** "+usage); err != nil {
		return fmt.Errorf("usage reply: %w", err)
	}
	return &UsageError{Usage: usage}
}

func (c *Context) UsageLine() string {
	if c.Command == nil {
		return ""
	}
	return usageLine(c.prefix, c.Command)
}

func usageLine(prefix string, cmd *Command) string {
	return strings.TrimSpace(prefix + cmd.Name + " " + cmd.Usage)
}
