package commands

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"happyBot/internal/domain"
)

type sentMessage struct {
	Platform  domain.Platform
	ChannelID string
	Text      string
}

type recordingOut struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (r *recordingOut) SendMessage(_ context.Context, platform domain.Platform, channelID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{Platform: platform, ChannelID: channelID, Text: text})
	return r.err
}

func (r *recordingOut) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, m := range r.sent {
		out = append(out, m.Text)
	}
	return out
}

func (r *recordingOut) last() string {
	texts := r.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type staticLookup struct {
	roles map[string][]string
	err   error
}

func (l staticLookup) RolesOf(_ context.Context, msg domain.Message) ([]string, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.roles[msg.ActorKey()], nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRouter(t *testing.T, lookup RoleLookup, cmds ...Command) (*Router, *fakeClock) {
	t.Helper()
	router := NewRouter("!", NewPermissionResolver(domain.DefaultRoleTable(), lookup))
	clock := newFakeClock()
	router.SetClock(clock.Now)
	for _, cmd := range cmds {
		require.NoError(t, router.Register(cmd))
	}
	return router, clock
}

func chatMessage(userID, text string, roles ...string) domain.Message {
	return domain.Message{
		Platform:  domain.PlatformTwitch,
		ChannelID: "#happy",
		UserID:    userID,
		Username:  "user-" + userID,
		Text:      text,
		Roles:     roles,
	}
}

// countingCommand returns a command whose handler increments *calls.
func countingCommand(name string, calls *int) Command {
	return Command{
		Name:     name,
		Usage:    "<text>",
		Category: CategoryGeneral,
		Handler: func(ctx context.Context, c *Context) error {
			*calls++
			return c.Reply(ctx, "ok")
		},
	}
}
