package twitchinfra

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/nicklaw5/helix/v2"

	"happyBot/internal/domain"
)

// HelixChatSettings locks chat by toggling emote-only mode, which leaves
// moderators and the broadcaster able to type. The token needs the
// moderator:manage:chat_settings scope.
type HelixChatSettings struct {
	client        *helix.Client
	broadcasterID string
	moderatorID   string
}

type ChatSettingsConfig struct {
	ClientID        string
	UserAccessToken string
	BroadcasterID   string
	// ModeratorID defaults to the broadcaster.
	ModeratorID string
	// APIBaseURL overrides the Helix endpoint.
	APIBaseURL string
}

func NewHelixChatSettings(cfg ChatSettingsConfig) (*HelixChatSettings, error) {
	broadcasterID := strings.TrimSpace(cfg.BroadcasterID)
	if broadcasterID == "" {
		return nil, fmt.Errorf("helix: broadcaster id not configured")
	}
	client, err := helix.NewClient(&helix.Options{
		ClientID:        cfg.ClientID,
		UserAccessToken: cfg.UserAccessToken,
		APIBaseURL:      strings.TrimRight(cfg.APIBaseURL, "/"),
	})
	if err != nil {
		return nil, fmt.Errorf("helix: NewClient: %w", err)
	}

	moderatorID := strings.TrimSpace(cfg.ModeratorID)
	if moderatorID == "" {
		moderatorID = broadcasterID
	}

	return &HelixChatSettings{
		client:        client,
		broadcasterID: broadcasterID,
		moderatorID:   moderatorID,
	}, nil
}

func (s *HelixChatSettings) SetChatLocked(ctx context.Context, locked bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	resp, err := s.client.UpdateChatSettings(&helix.UpdateChatSettingsParams{
		BroadcasterID: s.broadcasterID,
		ModeratorID:   s.moderatorID,
		EmoteMode:     &locked,
	})
	if err != nil {
		return fmt.Errorf("helix: UpdateChatSettings: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("helix: UpdateChatSettings failed (%d: %s) %s",
			resp.StatusCode, resp.Error, resp.ErrorMessage)
	}

	return nil
}

var _ domain.ChatLockService = (*HelixChatSettings)(nil)
