package commands

import (
	"context"
	"fmt"
	"log"

	"happyBot/internal/domain"
)

type lockCommand struct {
	chat domain.ChatLockService
}

// NewLockCommand restricts the channel's chat to staff. chat may be nil when
// no platform API is configured; the command then explains that instead.
func NewLockCommand(chat domain.ChatLockService) Command {
	c := &lockCommand{chat: chat}
	return Command{
		Name:     "lock",
		Help:     "Locks the current channel!",
		Category: CategoryStaff,
		Role:     domain.RoleAdmin,
		Handler: func(ctx context.Context, cmdCtx *Context) error {
			return c.set(ctx, cmdCtx, true)
		},
	}
}

func NewUnlockCommand(chat domain.ChatLockService) Command {
	c := &lockCommand{chat: chat}
	return Command{
		Name:     "unlock",
		Help:     "Unlocks the current channel!",
		Category: CategoryStaff,
		Role:     domain.RoleAdmin,
		Handler: func(ctx context.Context, cmdCtx *Context) error {
			return c.set(ctx, cmdCtx, false)
		},
	}
}

func (c *lockCommand) set(ctx context.Context, cmdCtx *Context, locked bool) error {
	if c.chat == nil {
		return cmdCtx.ReplyError(ctx, "Chat settings are not configured for this bot.")
	}

	if err := c.chat.SetChatLocked(ctx, locked); err != nil {
		log.Printf("lock command: locked=%t: %v", locked, err)
		if replyErr := cmdCtx.ReplyError(ctx, "Could not change the chat settings."); replyErr != nil {
			return replyErr
		}
		return fmt.Errorf("lock command: %w", err)
	}

	if locked {
		return cmdCtx.ReplySuccess(ctx, ":lock: Channel has been locked!")
	}
	return cmdCtx.ReplySuccess(ctx, ":unlock: Channel has been unlocked!")
}
