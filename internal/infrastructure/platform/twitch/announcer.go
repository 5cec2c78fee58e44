package twitchinfra

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/nicklaw5/helix/v2"

	"happyBot/internal/domain"
)

// HelixAnnouncer posts chat announcements through the Helix API. The token
// needs the moderator:manage:announcements scope.
type HelixAnnouncer struct {
	client        *helix.Client
	broadcasterID string
	moderatorID   string
	color         string

	mu sync.Mutex
}

type AnnouncerConfig struct {
	ClientID        string
	UserAccessToken string
	BroadcasterID   string
	// ModeratorID defaults to the broadcaster.
	ModeratorID string
	Color       string
}

func NewHelixAnnouncer(cfg AnnouncerConfig) (*HelixAnnouncer, error) {
	client, err := helix.NewClient(&helix.Options{
		ClientID:        cfg.ClientID,
		UserAccessToken: cfg.UserAccessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("helix: NewClient: %w", err)
	}

	moderatorID := strings.TrimSpace(cfg.ModeratorID)
	if moderatorID == "" {
		moderatorID = strings.TrimSpace(cfg.BroadcasterID)
	}
	color := strings.TrimSpace(cfg.Color)
	if color == "" {
		color = "orange"
	}

	return &HelixAnnouncer{
		client:        client,
		broadcasterID: strings.TrimSpace(cfg.BroadcasterID),
		moderatorID:   moderatorID,
		color:         color,
	}, nil
}

func (a *HelixAnnouncer) SendAnnouncement(ctx context.Context, text string) error {
	if a.broadcasterID == "" {
		return fmt.Errorf("helix: broadcaster id not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	resp, err := a.client.SendChatAnnouncement(&helix.SendChatAnnouncementParams{
		BroadcasterID: a.broadcasterID,
		ModeratorID:   a.moderatorID,
		Message:       text,
		Color:         a.color,
	})
	if err != nil {
		return fmt.Errorf("helix: SendChatAnnouncement: %w", err)
	}

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("helix: SendChatAnnouncement failed (%d: %s) %s",
			resp.StatusCode, resp.Error, resp.ErrorMessage)
	}

	return nil
}

// ResolveBroadcasterID looks up the numeric user ID of login.
func ResolveBroadcasterID(clientID, accessToken, login string) (string, error) {
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(accessToken) == "" {
		return "", fmt.Errorf("helix: missing client id or access token")
	}
	if strings.TrimSpace(login) == "" {
		return "", fmt.Errorf("helix: empty login")
	}

	client, err := helix.NewClient(&helix.Options{
		ClientID:        clientID,
		UserAccessToken: accessToken,
	})
	if err != nil {
		return "", fmt.Errorf("helix: NewClient: %w", err)
	}

	resp, err := client.GetUsers(&helix.UsersParams{
		Logins: []string{strings.TrimPrefix(strings.TrimSpace(login), "#")},
	})
	if err != nil {
		return "", fmt.Errorf("helix: GetUsers: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("helix: GetUsers failed (%d: %s) %s",
			resp.StatusCode, resp.Error, resp.ErrorMessage)
	}

	if len(resp.Data.Users) == 0 {
		return "", fmt.Errorf("helix: user not found: %s", login)
	}

	return resp.Data.Users[0].ID, nil
}

var _ domain.AnnouncementService = (*HelixAnnouncer)(nil)
