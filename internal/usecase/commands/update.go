package commands

import (
	"context"

	"happyBot/internal/domain"
	"happyBot/internal/usecase/restart"
)

type RestartStarter interface {
	Start(ctx context.Context, req domain.RestartRequest, reply restart.Replier) <-chan restart.Outcome
}

type updateCommand struct {
	restarts RestartStarter
}

func NewUpdateCommand(restarts RestartStarter) Command {
	c := &updateCommand{restarts: restarts}
	return Command{
		Name:     "update",
		Usage:    "<j(enkins)/d(ropbox)> [-s] [-dev] [-f|--force]",
		Help:     "Restarts the VM with an update.",
		Category: CategoryBot,
		Role:     domain.RoleDeveloper,
		Handler:  c.handle,
	}
}

func (c *updateCommand) handle(ctx context.Context, cmdCtx *Context) error {
	req, err := restart.ParseRequest(cmdCtx.Args)
	if err != nil {
		return cmdCtx.Usage(ctx)
	}
	req.RequestedBy = cmdCtx.Message.ActorKey()

	// The sequence reports back through the reply sink; the dispatcher
	// does not wait for it.
	c.restarts.Start(ctx, req, cmdCtx.Reply)
	return nil
}
