package kickadapter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	kicksdk "github.com/glichtv/kick-sdk"
	kickchatwrapper "github.com/johanvandegriff/kick-chat-wrapper"

	"happyBot/internal/domain"
)

type Config struct {
	// Bot access token from the Kick OAuth flow.
	AccessToken string

	BroadcasterUserID int

	// The chatroom ID differs from the user ID; it is the "chatroom.id"
	// field of https://kick.com/api/v2/channels/{slug}.
	ChatroomID int
}

type MessageHandler func(ctx context.Context, msg domain.Message) error

type Adapter struct {
	cfg     Config
	handler MessageHandler

	mu  sync.RWMutex
	sdk *kicksdk.Client
	ws  *kickchatwrapper.Client
}

func NewAdapter(cfg Config) *Adapter {
	return &Adapter{cfg: cfg}
}

func (a *Adapter) SetHandler(h MessageHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handler = h
}

func (a *Adapter) Start(ctx context.Context) error {
	if a.cfg.AccessToken == "" {
		return errors.New("kick: empty access token")
	}
	if a.cfg.ChatroomID == 0 {
		return errors.New("kick: chatroom id not configured")
	}
	if a.cfg.BroadcasterUserID == 0 {
		return errors.New("kick: broadcaster user id not configured")
	}

	sdkClient := kicksdk.NewClient(
		kicksdk.WithAccessTokens(kicksdk.AccessTokens{
			UserAccessToken: a.cfg.AccessToken,
		}),
	)

	wsClient, err := kickchatwrapper.NewClient()
	if err != nil {
		return fmt.Errorf("kick: creating ws client: %w", err)
	}

	if err := wsClient.JoinChannelByID(a.cfg.ChatroomID); err != nil {
		return fmt.Errorf("kick: JoinChannelByID: %w", err)
	}

	msgChan := wsClient.ListenForMessages()

	a.mu.Lock()
	a.sdk = sdkClient
	a.ws = wsClient
	a.mu.Unlock()

	log.Printf("kick: connected to chatroom %d (broadcasterUserID=%d)", a.cfg.ChatroomID, a.cfg.BroadcasterUserID)

	go func() {
		for {
			select {
			case m, ok := <-msgChan:
				if !ok {
					log.Println("kick: message channel closed")
					return
				}
				if !isChatMessage(m) {
					continue
				}

				a.mu.RLock()
				handler := a.handler
				a.mu.RUnlock()
				if handler == nil {
					continue
				}

				if err := handler(ctx, mapChatMessageToDomain(m, a.cfg.BroadcasterUserID)); err != nil {
					log.Printf("kick: handler error: %v", err)
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()

	a.Close()
	return ctx.Err()
}

// Close leaves the chatroom websocket. It is safe to call more than once.
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ws != nil {
		a.ws.Close()
		a.ws = nil
		log.Println("kick: disconnected")
	}
	a.sdk = nil
}

func (a *Adapter) SendMessage(ctx context.Context, platform domain.Platform, channelID, text string) error {
	if platform != domain.PlatformKick {
		return fmt.Errorf("kick adapter does not support platform %s", platform)
	}

	a.mu.RLock()
	client := a.sdk
	a.mu.RUnlock()

	if client == nil {
		return errors.New("kick: sdk client not initialised")
	}
	if text == "" {
		return nil
	}

	resp, err := client.Chat().PostMessage(ctx, kicksdk.PostChatMessageInput{
		BroadcasterUserID: a.cfg.BroadcasterUserID,
		Content:           text,
		PosterType:        kicksdk.MessagePosterUser,
	})
	if err != nil {
		return fmt.Errorf("kick: posting chat message: %w", err)
	}

	if !resp.Payload.IsSent {
		meta := resp.ResponseMetadata
		log.Printf(
			"kick: PostMessage rejected (status=%d, kick_message=%q, kick_error=%q)",
			meta.StatusCode,
			meta.KickMessage,
			meta.KickError,
		)
		return fmt.Errorf("kick: message not accepted by the API (status %d)", meta.StatusCode)
	}

	return nil
}

// isChatMessage skips frames without a sender or text, such as pinned
// message updates.
func isChatMessage(m kickchatwrapper.ChatMessage) bool {
	return m.Sender.ID != 0 && strings.TrimSpace(m.Content) != ""
}

func mapChatMessageToDomain(m kickchatwrapper.ChatMessage, broadcasterUserID int) domain.Message {
	sender := m.Sender

	var roles []string
	if sender.ID == broadcasterUserID {
		roles = append(roles, domain.BadgeBroadcaster)
	}
	for _, b := range sender.Identity.Badges {
		switch strings.ToLower(b.Type) {
		case "broadcaster":
			roles = append(roles, domain.BadgeBroadcaster)
		case "moderator":
			roles = append(roles, domain.BadgeModerator)
		case "vip":
			roles = append(roles, domain.BadgeVIP)
		}
	}

	msg := domain.Message{
		Platform:  domain.PlatformKick,
		ChannelID: strconv.Itoa(m.ChatroomID),
		UserID:    strconv.Itoa(sender.ID),
		Username:  sender.Username,
		Text:      m.Content,
	}
	return msg.WithRoles(roles...)
}
