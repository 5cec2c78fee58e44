package announce

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"happyBot/internal/domain"
)

type Destination struct {
	Platform  domain.Platform
	ChannelID string
}

type Config struct {
	Out         domain.OutgoingMessagePort
	Destination Destination
	Messages    domain.MessageRepository
	// Highlight, when set, also posts the banner as a platform announcement.
	Highlight domain.AnnouncementService
}

// Announcer posts the impending update banner to the bot meta channel.
type Announcer struct {
	cfg Config
}

func NewAnnouncer(cfg Config) *Announcer {
	return &Announcer{cfg: cfg}
}

func (a *Announcer) Announce(ctx context.Context, source string) error {
	text := a.Compose(ctx, source)

	var errs []error
	if a.cfg.Out != nil && a.cfg.Destination.ChannelID != "" {
		if err := a.cfg.Out.SendMessage(ctx, a.cfg.Destination.Platform, a.cfg.Destination.ChannelID, text); err != nil {
			errs = append(errs, fmt.Errorf("announce: send to %s: %w", a.cfg.Destination.ChannelID, err))
		}
	}
	if a.cfg.Highlight != nil {
		if err := a.cfg.Highlight.SendAnnouncement(ctx, text); err != nil {
			errs = append(errs, fmt.Errorf("announce: highlight: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Compose builds the banner text: the stored start message followed by the
// update source.
func (a *Announcer) Compose(ctx context.Context, source string) string {
	banner := domain.DefaultMessages[domain.MessageUpdateStart]
	if a.cfg.Messages != nil {
		stored, err := a.cfg.Messages.GetMessage(ctx, domain.MessageUpdateStart)
		if err != nil {
			log.Printf("announce: loading banner: %v", err)
		} else if strings.TrimSpace(stored) != "" {
			banner = stored
		}
	}
	return fmt.Sprintf("Impending Update | %s New Impending Update from %s. Bot is currently restarting", banner, source)
}
