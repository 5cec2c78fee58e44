package events

import (
	"time"

	"happyBot/internal/domain"
	"happyBot/internal/usecase/games"
	"happyBot/internal/usecase/restart"
)

// ChatMessageDTO is the serialisable form of domain.Message sent to event
// subscribers.
type ChatMessageDTO struct {
	Platform  string   `json:"platform"`
	ChannelID string   `json:"channel_id"`
	UserID    string   `json:"user_id"`
	Username  string   `json:"username"`
	Text      string   `json:"text"`
	IsPrivate bool     `json:"is_private"`
	Roles     []string `json:"roles,omitempty"`
	Timestamp string   `json:"timestamp"`
}

func NewChatMessageDTO(msg domain.Message) ChatMessageDTO {
	return ChatMessageDTO{
		Platform:  string(msg.Platform),
		ChannelID: msg.ChannelID,
		UserID:    msg.UserID,
		Username:  msg.Username,
		Text:      msg.Text,
		IsPrivate: msg.IsPrivate,
		Roles:     append([]string(nil), msg.Roles...),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

type RestartEventDTO struct {
	State       string `json:"state"`
	ExitCode    int    `json:"exit_code"`
	Source      string `json:"source"`
	Forced      bool   `json:"forced"`
	RequestedBy string `json:"requested_by,omitempty"`
	Timestamp   string `json:"timestamp"`
}

func NewRestartEventDTO(state restart.State, req domain.RestartRequest) RestartEventDTO {
	return RestartEventDTO{
		State:       state.String(),
		ExitCode:    req.ExitCode,
		Source:      req.Source,
		Forced:      req.Forced,
		RequestedBy: req.RequestedBy,
		Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
	}
}

type GameEventDTO struct {
	Kind      string `json:"kind"`
	Game      string `json:"game,omitempty"`
	Active    int    `json:"active"`
	ExitCode  int    `json:"exit_code,omitempty"`
	Timestamp string `json:"timestamp"`
}

func NewGameEventDTO(ev games.Event) GameEventDTO {
	return GameEventDTO{
		Kind:      string(ev.Kind),
		Game:      ev.Game,
		Active:    ev.Active,
		ExitCode:  ev.ExitCode,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}
