package commands

import (
	"context"
	"fmt"
	"strings"

	"happyBot/internal/domain"
)

type roleCommand struct {
	repo  domain.RoleRepository
	table domain.RoleTable
}

func NewRoleCommand(repo domain.RoleRepository, table domain.RoleTable) Command {
	c := &roleCommand{repo: repo, table: table}
	return Command{
		Name:     "role",
		Usage:    "<grant|revoke> <user_id> <role>",
		Help:     "Grants or revokes a bot role for a user on this platform.",
		Category: CategoryStaff,
		Role:     domain.RoleSuperAdmin,
		Handler:  c.handle,
	}
}

func (c *roleCommand) handle(ctx context.Context, cmdCtx *Context) error {
	if len(cmdCtx.Args) != 3 {
		return cmdCtx.Usage(ctx)
	}
	action := strings.ToLower(cmdCtx.Args[0])
	userID := strings.TrimSpace(cmdCtx.Args[1])
	key := domain.RoleKey(strings.ToLower(cmdCtx.Args[2]))

	role, ok := c.table.Lookup(key)
	if !ok || userID == "" {
		return cmdCtx.Usage(ctx)
	}
	platform := cmdCtx.Message.Platform

	switch action {
	case "grant":
		if err := c.repo.GrantRole(ctx, platform, userID, role.ID); err != nil {
			return fmt.Errorf("role command: grant: %w", err)
		}
		return cmdCtx.ReplySuccess(ctx, fmt.Sprintf("%s is now %s.", userID, role.Name))
	case "revoke":
		removed, err := c.repo.RevokeRole(ctx, platform, userID, role.ID)
		if err != nil {
			return fmt.Errorf("role command: revoke: %w", err)
		}
		if !removed {
			return cmdCtx.ReplyError(ctx, fmt.Sprintf("%s does not hold %s.", userID, role.Name))
		}
		return cmdCtx.ReplySuccess(ctx, fmt.Sprintf("%s is no longer %s.", userID, role.Name))
	default:
		return cmdCtx.Usage(ctx)
	}
}
