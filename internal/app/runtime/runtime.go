package runtime

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"happyBot/internal/app/events"
	"happyBot/internal/domain"
	"happyBot/internal/infrastructure/config"
	sqlitestorage "happyBot/internal/infrastructure/persistence/sqlite"
	twitchinfra "happyBot/internal/infrastructure/platform/twitch"
	kickadapter "happyBot/internal/interface/adapters/kick"
	twitchadapter "happyBot/internal/interface/adapters/twitch"
	ws "happyBot/internal/interface/api/ws"
	"happyBot/internal/interface/outs"
	"happyBot/internal/usecase/announce"
	"happyBot/internal/usecase/commands"
	"happyBot/internal/usecase/games"
	"happyBot/internal/usecase/handle_message"
	"happyBot/internal/usecase/restart"
)

type Options struct {
	EnvFiles     []string
	RolesFile    string
	DatabasePath string
	// Terminator overrides the process terminator; used by tests.
	Terminator restart.Terminator
}

type Runtime struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config

	store       *sqlitestorage.Store
	bus         *events.Bus
	multiOut    *outs.MultiSender
	router      *commands.Router
	monitor     *games.Monitor
	coordinator *restart.Coordinator
	wsServer    *ws.Server
	dispatcher  func(context.Context, domain.Message) error

	wg          sync.WaitGroup
	started     bool
	terminating atomic.Bool
	stopOnce sync.Once
	stopErr  error
}

func Start(ctx context.Context, opts Options) (*Runtime, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runtimeCtx, cancel := context.WithCancel(ctx)

	cfg, err := config.Load(opts.EnvFiles...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.RolesFile != "" {
		cfg.RolesFile = opts.RolesFile
	}
	if opts.DatabasePath != "" {
		cfg.DatabasePath = opts.DatabasePath
	}

	roleTable, err := config.LoadRoleTable(cfg.RolesFile)
	if err != nil {
		cancel()
		return nil, err
	}

	store, err := sqlitestorage.NewStore(cfg.DatabasePath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	run := &Runtime{
		ctx:      runtimeCtx,
		cancel:   cancel,
		cfg:      cfg,
		store:    store,
		bus:      events.NewBus(),
		multiOut: outs.NewMultiSender(),
	}

	inner := opts.Terminator
	if inner == nil {
		inner = restart.NewProcessTerminator(run.Shutdown)
	}
	// Set before the inner terminator cancels the runtime context.
	terminator := restart.TerminatorFunc(func(exitCode int) {
		run.terminating.Store(true)
		inner.Terminate(exitCode)
	})

	broadcasterID := run.twitchBroadcasterID()

	run.monitor = games.NewMonitor(terminator)
	run.monitor.OnEvent(func(ev games.Event) {
		run.bus.Publish(events.TopicGames, events.NewGameEventDTO(ev))
	})

	run.coordinator = restart.NewCoordinator(restart.Config{
		Monitor:     run.monitor,
		Announcer:   run.newAnnouncer(broadcasterID),
		Terminator:  terminator,
		GracePeriod: cfg.RestartGrace,
		OnState: func(state restart.State, req domain.RestartRequest) {
			run.bus.Publish(events.TopicRestart, events.NewRestartEventDTO(state, req))
		},
	})

	chatLock := run.newChatLock(broadcasterID)
	perms := commands.NewPermissionResolver(roleTable, commands.LookupFromRepository(store))
	router := commands.NewRouter(cfg.Prefix, perms)
	router.MustRegister(
		commands.NewPingCommand(),
		commands.NewRulesCommand(store),
		commands.NewHelpCommand(router),
		commands.NewGameCommand(run.monitor),
		commands.NewRoleCommand(store, roleTable),
		commands.NewLockCommand(chatLock),
		commands.NewUnlockCommand(chatLock),
		commands.NewUpdateCommand(run.coordinator),
	)
	run.router = router

	run.wsServer = ws.NewServer(ws.Config{
		Addr:           cfg.EventsAddr,
		Bus:            run.bus,
		Games:          run.monitor,
		AllowedOrigins: cfg.WebOrigins,
		Catalog: func() []commands.CommandDescriptor {
			return commands.Catalog(router)
		},
	})
	run.multiOut.Register(domain.PlatformWeb, run.wsServer)

	uc := handle_message.NewInteractor(run.multiOut, router)
	run.dispatcher = func(ctx context.Context, msg domain.Message) error {
		run.bus.Publish(events.TopicChatMessage, events.NewChatMessageDTO(msg))
		if err := uc.Handle(ctx, msg); err != nil {
			run.bus.Publish(events.TopicAppError, err.Error())
			return err
		}
		return nil
	}
	run.wsServer.SetHandler(run.dispatcher)

	run.goRun("ws server", run.wsServer.Start)
	run.startTwitch()
	run.startKick()

	run.started = true
	log.Println("runtime: bot started")
	return run, nil
}

func (r *Runtime) newAnnouncer(broadcasterID string) *announce.Announcer {
	cfg := announce.Config{
		Out:      r.multiOut,
		Messages: r.store,
		Destination: announce.Destination{
			Platform:  domain.Platform(strings.ToLower(strings.TrimSpace(r.cfg.MetaPlatform))),
			ChannelID: r.cfg.MetaChannel,
		},
	}

	if broadcasterID != "" {
		highlight, err := twitchinfra.NewHelixAnnouncer(twitchinfra.AnnouncerConfig{
			ClientID:        r.cfg.TwitchClientId,
			UserAccessToken: r.cfg.TwitchApiToken,
			BroadcasterID:   broadcasterID,
			ModeratorID:     r.cfg.TwitchModeratorId,
		})
		if err != nil {
			log.Printf("runtime: helix announcer disabled: %v", err)
		} else {
			cfg.Highlight = highlight
		}
	}

	return announce.NewAnnouncer(cfg)
}

// newChatLock returns nil when Helix is not configured; lock and unlock
// then reply that chat settings are unavailable.
func (r *Runtime) newChatLock(broadcasterID string) domain.ChatLockService {
	if broadcasterID == "" {
		return nil
	}
	chat, err := twitchinfra.NewHelixChatSettings(twitchinfra.ChatSettingsConfig{
		ClientID:        r.cfg.TwitchClientId,
		UserAccessToken: r.cfg.TwitchApiToken,
		BroadcasterID:   broadcasterID,
		ModeratorID:     r.cfg.TwitchModeratorId,
	})
	if err != nil {
		log.Printf("runtime: helix chat settings disabled: %v", err)
		return nil
	}
	return chat
}

// twitchBroadcasterID returns the configured broadcaster, resolving it from
// the first Twitch channel when only the login is known.
func (r *Runtime) twitchBroadcasterID() string {
	if !r.cfg.HelixEnabled() {
		return ""
	}
	broadcasterID := r.cfg.TwitchBroadcasterId
	if broadcasterID == "" && len(r.cfg.TwitchChannels) > 0 {
		id, err := twitchinfra.ResolveBroadcasterID(r.cfg.TwitchClientId, r.cfg.TwitchApiToken, r.cfg.TwitchChannels[0])
		if err != nil {
			log.Printf("runtime: could not resolve Twitch broadcaster id: %v", err)
		}
		broadcasterID = id
	}
	return broadcasterID
}

func (r *Runtime) startTwitch() {
	if !r.cfg.TwitchEnabled() {
		log.Println("twitch: adapter disabled until the bot credentials are configured")
		return
	}
	adapter := twitchadapter.NewAdapter(twitchadapter.Config{
		Username:   r.cfg.TwitchUsername,
		OAuthToken: formatTwitchOAuthToken(r.cfg.TwitchToken),
		Channels:   sanitizeTwitchChannels(r.cfg.TwitchChannels),
	})
	adapter.SetHandler(r.dispatcher)
	r.multiOut.Register(domain.PlatformTwitch, adapter)
	r.goRun("twitch adapter", adapter.Start)
}

func (r *Runtime) startKick() {
	if !r.cfg.KickEnabled() {
		log.Println("kick: adapter disabled until the bot credentials are configured")
		return
	}
	adapter := kickadapter.NewAdapter(kickadapter.Config{
		AccessToken:       r.cfg.KickToken,
		BroadcasterUserID: r.cfg.KickBroadcasterUserID,
		ChatroomID:        r.cfg.KickChatroomID,
	})
	adapter.SetHandler(r.dispatcher)
	r.multiOut.Register(domain.PlatformKick, adapter)
	r.goRun("kick adapter", adapter.Start)
}

func (r *Runtime) goRun(name string, fn func(context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := fn(r.ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("runtime: %s error: %v", name, err)
			r.bus.Publish(events.TopicAppError, fmt.Sprintf("%s: %v", name, err))
		}
	}()
}

// Shutdown detaches from every transport and waits for the adapters to
// return, or for ctx to expire.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	r.stopOnce.Do(func() {
		r.multiOut.Detach()
		r.cancel()

		done := make(chan struct{})
		go func() {
			r.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			r.stopErr = fmt.Errorf("runtime: waiting for adapters: %w", ctx.Err())
		}

		r.bus.Close()
		if err := r.store.Close(); err != nil && r.stopErr == nil {
			r.stopErr = err
		}
		r.started = false
	})
	return r.stopErr
}

func (r *Runtime) Stop() error {
	if r == nil || !r.started {
		return nil
	}
	return r.Shutdown(context.Background())
}

// Done is closed when the runtime context ends.
func (r *Runtime) Done() <-chan struct{} {
	return r.ctx.Done()
}

// Terminating reports whether a restart has handed the process over to the
// terminator. The terminator owns the exit code from then on.
func (r *Runtime) Terminating() bool {
	return r != nil && r.terminating.Load()
}

func (r *Runtime) Bus() *events.Bus {
	if r == nil {
		return nil
	}
	return r.bus
}

func (r *Runtime) Router() *commands.Router {
	if r == nil {
		return nil
	}
	return r.router
}

func (r *Runtime) Games() *games.Monitor {
	if r == nil {
		return nil
	}
	return r.monitor
}

func (r *Runtime) Config() *config.Config {
	if r == nil {
		return nil
	}
	return r.cfg
}

func (r *Runtime) DispatchMessage(ctx context.Context, msg domain.Message) error {
	if r == nil || r.dispatcher == nil {
		return fmt.Errorf("dispatcher unavailable")
	}
	if ctx == nil {
		ctx = r.ctx
	}
	return r.dispatcher(ctx, msg)
}

func formatTwitchOAuthToken(token string) string {
	if token == "" {
		return ""
	}
	if strings.HasPrefix(token, "oauth:") {
		return token
	}
	return "oauth:" + token
}

func sanitizeTwitchChannels(input []string) []string {
	var result []string
	seen := make(map[string]struct{})
	for _, raw := range input {
		parts := strings.Split(raw, ",")
		for _, part := range parts {
			channel := ensureTwitchChannel(part)
			if channel == "" {
				continue
			}
			if _, ok := seen[channel]; ok {
				continue
			}
			seen[channel] = struct{}{}
			result = append(result, channel)
		}
	}
	return result
}

func ensureTwitchChannel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !strings.HasPrefix(value, "#") {
		value = "#" + value
	}
	return strings.ToLower(value)
}
