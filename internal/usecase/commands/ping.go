package commands

import (
	"context"
	"time"
)

func NewPingCommand() Command {
	return Command{
		Name:     "ping",
		Help:     "Checks that the bot is alive.",
		Category: CategoryGeneral,
		Cooldown: &Cooldown{Amount: 5, Unit: time.Second},
		Handler: func(ctx context.Context, cmdCtx *Context) error {
			return cmdCtx.Reply(ctx, "pong from "+string(cmdCtx.Message.Platform))
		},
	}
}
