// Package handle_message
package handle_message

import (
	"context"
	"strings"

	"happyBot/internal/domain"
	"happyBot/internal/usecase/commands"
)

type Interactor struct {
	router *commands.Router
	out    domain.OutgoingMessagePort
}

func NewInteractor(out domain.OutgoingMessagePort, router *commands.Router) *Interactor {
	return &Interactor{
		router: router,
		out:    out,
	}
}

// Handle ignores messages without text or sender and hands the rest to the
// router.
func (uc *Interactor) Handle(ctx context.Context, msg domain.Message) error {
	if strings.TrimSpace(msg.Text) == "" || strings.TrimSpace(msg.UserID) == "" {
		return nil
	}
	return uc.router.Handle(ctx, msg, uc.out)
}
