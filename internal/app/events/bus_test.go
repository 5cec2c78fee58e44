package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"happyBot/internal/domain"
	"happyBot/internal/usecase/games"
	"happyBot/internal/usecase/restart"
)

func TestPublishDeliversToTopicSubscribers(t *testing.T) {
	bus := NewBus()
	restarts, unsubRestart := bus.Subscribe(TopicRestart)
	defer unsubRestart()
	chat, unsubChat := bus.Subscribe(TopicChatMessage)
	defer unsubChat()

	bus.Publish(TopicRestart, "deferred")

	require.Len(t, restarts, 1)
	assert.Equal(t, "deferred", <-restarts)
	assert.Len(t, chat, 0)
}

func TestUnsubscribeClosesChannelOnce(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(TopicGames)

	unsubscribe()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)
	bus.Publish(TopicGames, "ignored")
}

func TestPublishDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(TopicAppError)
	defer unsubscribe()

	for i := 0; i < defaultBufferSize+10; i++ {
		bus.Publish(TopicAppError, i)
	}

	assert.Len(t, ch, defaultBufferSize)
	assert.Equal(t, uint64(10), bus.dropCounts[TopicAppError])
}

func TestClosedBusIgnoresPublish(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(TopicChatMessage)
	defer unsubscribe()

	bus.Close()
	bus.Publish(TopicChatMessage, "late")
	assert.Len(t, ch, 0)
}

func TestDTOs(t *testing.T) {
	chat := NewChatMessageDTO(domain.Message{Platform: domain.PlatformKick, UserID: "1", Text: "!ping", Roles: []string{"badge:vip"}})
	assert.Equal(t, "kick", chat.Platform)
	assert.Equal(t, []string{"badge:vip"}, chat.Roles)
	assert.NotEmpty(t, chat.Timestamp)

	req := domain.RestartRequest{ExitCode: 20, Source: "Jenkins", Forced: true, RequestedBy: "twitch:dev"}
	ev := NewRestartEventDTO(restart.StateTerminating, req)
	assert.Equal(t, "terminating", ev.State)
	assert.Equal(t, 20, ev.ExitCode)
	assert.True(t, ev.Forced)
	assert.Equal(t, "twitch:dev", ev.RequestedBy)

	game := NewGameEventDTO(games.Event{Kind: games.EventDrained, ExitCode: 10})
	assert.Equal(t, "restart_drained", game.Kind)
	assert.Equal(t, 10, game.ExitCode)
}
