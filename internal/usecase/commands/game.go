package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"happyBot/internal/domain"
)

type GameTracker interface {
	Begin(name string) (func(), error)
	End(name string) error
	Sessions() []string
	Pending() (domain.RestartRequest, bool)
}

type gameCommand struct {
	games GameTracker
}

func NewGameCommand(games GameTracker) Command {
	c := &gameCommand{games: games}
	return Command{
		Name:     "game",
		Usage:    "<start|end|status> [name]",
		Help:     "Starts, ends or lists running games.",
		Category: CategoryFun,
		Role:     domain.RoleModerator,
		Cooldown: &Cooldown{Amount: 3, Unit: time.Second},
		Handler:  c.handle,
	}
}

func (c *gameCommand) handle(ctx context.Context, cmdCtx *Context) error {
	if len(cmdCtx.Args) == 0 {
		return cmdCtx.Usage(ctx)
	}

	action := strings.ToLower(cmdCtx.Args[0])
	name := strings.Join(cmdCtx.Args[1:], " ")

	switch action {
	case "start":
		if strings.TrimSpace(name) == "" {
			return cmdCtx.Usage(ctx)
		}
		if _, err := c.games.Begin(name); err != nil {
			return cmdCtx.ReplyError(ctx, err.Error())
		}
		return cmdCtx.ReplySuccess(ctx, fmt.Sprintf("Game %q started.", name))
	case "end":
		if strings.TrimSpace(name) == "" {
			return cmdCtx.Usage(ctx)
		}
		if err := c.games.End(name); err != nil {
			return cmdCtx.ReplyError(ctx, err.Error())
		}
		return cmdCtx.ReplySuccess(ctx, fmt.Sprintf("Game %q ended.", name))
	case "status":
		return cmdCtx.Reply(ctx, c.status())
	default:
		return cmdCtx.Usage(ctx)
	}
}

func (c *gameCommand) status() string {
	sessions := c.games.Sessions()
	text := "No games running."
	if len(sessions) > 0 {
		text = "Running games: " + strings.Join(sessions, ", ")
	}
	if req, ok := c.games.Pending(); ok {
		text += fmt.Sprintf(" | restart pending (exit code %d)", req.ExitCode)
	}
	return text
}
