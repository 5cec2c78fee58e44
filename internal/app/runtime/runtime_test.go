package runtime

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"happyBot/internal/app/events"
	"happyBot/internal/domain"
	"happyBot/internal/usecase/restart"
)

func TestSanitizeTwitchChannels(t *testing.T) {
	got := sanitizeTwitchChannels([]string{"Happy, #other", "happy", " "})
	assert.Equal(t, []string{"#happy", "#other"}, got)
}

func TestFormatTwitchOAuthToken(t *testing.T) {
	assert.Equal(t, "", formatTwitchOAuthToken(""))
	assert.Equal(t, "oauth:abc", formatTwitchOAuthToken("abc"))
	assert.Equal(t, "oauth:abc", formatTwitchOAuthToken("oauth:abc"))
}

type recordingTerminator struct {
	mu    sync.Mutex
	codes []int
}

func (r *recordingTerminator) Terminate(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, code)
}

func startTestRuntime(t *testing.T, term restart.Terminator) *Runtime {
	t.Helper()
	for _, key := range []string{"TWITCH_BOT_USERNAME", "TWITCH_BOT_ACCESS_TOKEN", "KICK_BOT_TOKEN", "TWITCH_CLIENT_ID", "TWITCH_API_ACCESS_TOKEN"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("BOT_WS_ADDR", "127.0.0.1:0")
	t.Setenv("BOT_RESTART_GRACE", "1ms")

	dir := t.TempDir()
	rt, err := Start(context.Background(), Options{
		EnvFiles:     []string{filepath.Join(dir, "missing.env")},
		DatabasePath: filepath.Join(dir, "bot.db"),
		Terminator:   term,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Stop() })
	return rt
}

func TestRuntimeDispatchesWebCommands(t *testing.T) {
	rt := startTestRuntime(t, &recordingTerminator{})
	chat, unsubscribe := rt.Bus().Subscribe(events.TopicChatMessage)
	defer unsubscribe()

	msg := domain.Message{Platform: domain.PlatformWeb, UserID: "web", Text: "!ping"}
	require.NoError(t, rt.DispatchMessage(context.Background(), msg))

	require.Len(t, chat, 1)
	dto, ok := (<-chat).(events.ChatMessageDTO)
	require.True(t, ok)
	assert.Equal(t, "!ping", dto.Text)

	names := make([]string, 0)
	for _, cmd := range rt.Router().Commands() {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"ping", "rules", "help", "game", "role", "lock", "unlock", "update"}, names)
}

func TestRuntimeUpdateDefersUntilGamesEnd(t *testing.T) {
	term := &recordingTerminator{}
	rt := startTestRuntime(t, term)
	ctx := context.Background()
	require.NoError(t, rt.store.GrantRole(ctx, domain.PlatformWeb, "dev", "developer"))

	release, err := rt.Games().Begin("trivia")
	require.NoError(t, err)

	msg := domain.Message{Platform: domain.PlatformWeb, UserID: "dev", Text: "!update d -s"}
	require.NoError(t, rt.DispatchMessage(ctx, msg))
	rt.coordinator.Wait()

	pending, ok := rt.Games().Pending()
	require.True(t, ok)
	assert.Equal(t, domain.ExitCodeSSH, pending.ExitCode)
	assert.Empty(t, term.codes)

	release()
	term.mu.Lock()
	defer term.mu.Unlock()
	assert.Equal(t, []int{domain.ExitCodeSSH}, term.codes)
}

func TestRuntimeRestartIsVisibleBeforeDone(t *testing.T) {
	var rt *Runtime
	exited := make(chan int, 1)
	term := &restart.ProcessTerminator{
		Shutdown: func(ctx context.Context) error { return rt.Shutdown(ctx) },
		Exit:     func(code int) { exited <- code },
	}
	rt = startTestRuntime(t, term)
	ctx := context.Background()
	require.NoError(t, rt.store.GrantRole(ctx, domain.PlatformWeb, "dev", "developer"))
	assert.False(t, rt.Terminating())

	woke := make(chan bool, 1)
	go func() {
		<-rt.Done()
		woke <- rt.Terminating()
	}()

	msg := domain.Message{Platform: domain.PlatformWeb, UserID: "dev", Text: "!update j -s"}
	require.NoError(t, rt.DispatchMessage(ctx, msg))

	select {
	case code := <-exited:
		assert.Equal(t, domain.ExitCodeJenkins, code)
	case <-time.After(5 * time.Second):
		t.Fatal("terminator never exited")
	}
	assert.True(t, <-woke, "Done closed before the restart was recorded")
}

func TestRuntimeStopIsIdempotent(t *testing.T) {
	rt := startTestRuntime(t, &recordingTerminator{})

	require.NoError(t, rt.Stop())
	require.NoError(t, rt.Stop())

	select {
	case <-rt.Done():
	default:
		t.Fatal("runtime context still running after Stop")
	}
}
