package domain

import "context"

type OutgoingMessagePort interface {
	SendMessage(ctx context.Context, platform Platform, channelID, text string) error
}

// RoleRepository stores role grants that platforms cannot express as badges.
type RoleRepository interface {
	RolesForUser(ctx context.Context, platform Platform, userID string) ([]string, error)
	GrantRole(ctx context.Context, platform Platform, userID, roleID string) error
	RevokeRole(ctx context.Context, platform Platform, userID, roleID string) (bool, error)
}

// MessageRepository returns configurable bot texts by key.
type MessageRepository interface {
	GetMessage(ctx context.Context, key string) (string, error)
	SetMessage(ctx context.Context, key, value string) error
}

// AnnouncementService posts a highlighted message on a platform channel.
type AnnouncementService interface {
	SendAnnouncement(ctx context.Context, text string) error
}

// ChatLockService restricts a channel's chat to staff and lifts the
// restriction again.
type ChatLockService interface {
	SetChatLocked(ctx context.Context, locked bool) error
}
