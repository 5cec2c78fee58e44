package commands

import (
	"context"
	"log"
	"strings"

	"happyBot/internal/domain"
)

func NewRulesCommand(messages domain.MessageRepository) Command {
	return Command{
		Name:     "rules",
		Help:     "Links you to the rules",
		Category: CategoryGeneral,
		Handler: func(ctx context.Context, cmdCtx *Context) error {
			text := domain.DefaultMessages[domain.MessageRules]
			if messages != nil {
				stored, err := messages.GetMessage(ctx, domain.MessageRules)
				if err != nil {
					log.Printf("rules command: %v", err)
				} else if strings.TrimSpace(stored) != "" {
					text = stored
				}
			}
			return cmdCtx.ReplySuccess(ctx, text)
		},
	}
}
