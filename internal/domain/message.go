package domain

type Platform string

const (
	PlatformTwitch Platform = "twitch"
	PlatformKick   Platform = "kick"
	PlatformWeb    Platform = "web"
)

type Message struct {
	Platform  Platform
	ChannelID string
	UserID    string
	Username  string
	Text      string
	IsPrivate bool

	// Roles holds the role IDs the actor carries. Adapters fill the
	// platform badges; the interactor appends stored grants.
	Roles []string
}

// ActorKey identifies the sender across platforms.
func (m Message) ActorKey() string {
	return string(m.Platform) + ":" + m.UserID
}

// WithRoles returns a copy of the message with extra role IDs appended,
// skipping duplicates.
func (m Message) WithRoles(ids ...string) Message {
	seen := make(map[string]struct{}, len(m.Roles)+len(ids))
	merged := make([]string, 0, len(m.Roles)+len(ids))
	for _, list := range [][]string{m.Roles, ids} {
		for _, id := range list {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	m.Roles = merged
	return m
}
