package commands

import (
	"context"
	"fmt"
	"strings"
)

func NewHelpCommand(router *Router) Command {
	return Command{
		Name:     "help",
		Aliases:  []string{"commands"},
		Usage:    "[command]",
		Help:     "Lists the commands or shows how to use one.",
		Category: CategoryGeneral,
		Handler: func(ctx context.Context, cmdCtx *Context) error {
			if len(cmdCtx.Args) > 0 {
				return helpFor(ctx, router, cmdCtx, cmdCtx.Args[0])
			}
			return helpIndex(ctx, router, cmdCtx)
		},
	}
}

func helpFor(ctx context.Context, router *Router, cmdCtx *Context, name string) error {
	cmd, ok := router.Lookup(strings.TrimPrefix(name, router.Prefix()))
	if !ok {
		return cmdCtx.Usage(ctx)
	}
	line := fmt.Sprintf("%s | %s", usageLine(router.Prefix(), &cmd), cmd.Help)
	if cmd.Role != "" {
		line += " | requires " + router.perms.Table().DisplayName(cmd.Role)
	}
	return cmdCtx.Reply(ctx, line)
}

func helpIndex(ctx context.Context, router *Router, cmdCtx *Context) error {
	var order []Category
	byCategory := make(map[Category][]string)
	for _, cmd := range router.Commands() {
		if !cmd.SupportsPlatform(cmdCtx.Message.Platform) {
			continue
		}
		if _, seen := byCategory[cmd.Category]; !seen {
			order = append(order, cmd.Category)
		}
		byCategory[cmd.Category] = append(byCategory[cmd.Category], router.Prefix()+cmd.Name)
	}

	sections := make([]string, 0, len(order))
	for _, category := range order {
		sections = append(sections, fmt.Sprintf("%s: %s", category, strings.Join(byCategory[category], ", ")))
	}
	return cmdCtx.Reply(ctx, strings.Join(sections, " | "))
}
