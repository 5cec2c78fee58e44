package commands

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"

	"happyBot/internal/domain"
)

type Router struct {
	prefix   string
	perms    *PermissionResolver
	now      func() time.Time
	cmdIndex map[string]*Command
	ordered  []*Command

	cooldownMu sync.Mutex
	cooldowns  map[string]*CooldownTracker
}

func NewRouter(prefix string, perms *PermissionResolver) *Router {
	return &Router{
		prefix:    prefix,
		perms:     perms,
		now:       time.Now,
		cmdIndex:  make(map[string]*Command),
		cooldowns: make(map[string]*CooldownTracker),
	}
}

func (r *Router) Prefix() string {
	return r.prefix
}

// SetClock replaces the time source used for cooldowns.
func (r *Router) SetClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Register adds cmd under its name and aliases. Names are case-insensitive.
func (r *Router) Register(cmd Command) error {
	name := strings.ToLower(strings.TrimSpace(cmd.Name))
	if name == "" {
		return fmt.Errorf("router: command without name")
	}
	if cmd.Handler == nil {
		return fmt.Errorf("router: command %q has no handler", name)
	}
	cmd.Name = name
	cmd.Aliases = append([]string(nil), cmd.Aliases...)
	cmd.Platforms = append([]domain.Platform(nil), cmd.Platforms...)
	if cmd.Cooldown != nil {
		cd := *cmd.Cooldown
		cmd.Cooldown = &cd
	}

	keys := make([]string, 0, len(cmd.Aliases)+1)
	for _, key := range append([]string{name}, cmd.Aliases...) {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if _, exists := r.cmdIndex[key]; exists {
			return fmt.Errorf("router: %q already registered", key)
		}
		keys = append(keys, key)
	}

	stored := &cmd
	for _, key := range keys {
		r.cmdIndex[key] = stored
	}
	r.ordered = append(r.ordered, stored)
	return nil
}

// MustRegister panics on registration errors; used for built-in commands.
func (r *Router) MustRegister(cmds ...Command) {
	for _, cmd := range cmds {
		if err := r.Register(cmd); err != nil {
			panic(err)
		}
	}
}

func (r *Router) Lookup(name string) (Command, bool) {
	cmd, ok := r.cmdIndex[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Command{}, false
	}
	return *cmd, true
}

// Commands returns the registered commands in registration order.
func (r *Router) Commands() []Command {
	out := make([]Command, 0, len(r.ordered))
	for _, cmd := range r.ordered {
		out = append(out, *cmd)
	}
	return out
}

// Handle dispatches msg and only reports errors that were not already
// answered in chat.
func (r *Router) Handle(ctx context.Context, msg domain.Message, out domain.OutgoingMessagePort) error {
	err := r.Dispatch(ctx, msg, out)
	if err != nil && IsUserFacing(err) {
		return nil
	}
	return err
}

// Dispatch runs the permission and cooldown gates and then the handler.
// Gate rejections are replied to and returned as typed errors.
func (r *Router) Dispatch(ctx context.Context, msg domain.Message, out domain.OutgoingMessagePort) error {
	text := strings.TrimSpace(msg.Text)
	if text == "" || !strings.HasPrefix(text, r.prefix) {
		return nil
	}

	withoutPrefix := strings.TrimPrefix(text, r.prefix)
	parts := strings.Fields(withoutPrefix)
	if len(parts) == 0 {
		return nil
	}

	cmdName := strings.ToLower(parts[0])
	cmd, ok := r.cmdIndex[cmdName]
	if !ok {
		return out.SendMessage(ctx, msg.Platform, msg.ChannelID, r.notFound(cmdName))
	}

	if !cmd.SupportsPlatform(msg.Platform) {
		return out.SendMessage(ctx, msg.Platform, msg.ChannelID, "This command is not available here.")
	}

	if cmd.Role != "" && !r.perms.HasRole(ctx, msg, cmd.Role) {
		roleName := r.perms.Table().DisplayName(cmd.Role)
		if err := out.SendMessage(ctx, msg.Platform, msg.ChannelID, "❌ "+permissionMessage(roleName)); err != nil {
			return fmt.Errorf("router: permission reply: %w", err)
		}
		return &PermissionDeniedError{Role: cmd.Role, RoleName: roleName}
	}

	if cmd.hasCooldown() {
		tracker := r.tracker(cmd)
		if remaining, ok := tracker.Acquire(msg.ActorKey(), r.now()); !ok {
			reply := fmt.Sprintf("❌ You must wait before doing that command again! (%s left)", formatRemaining(remaining))
			if err := out.SendMessage(ctx, msg.Platform, msg.ChannelID, reply); err != nil {
				return fmt.Errorf("router: cooldown reply: %w", err)
			}
			return &CooldownActiveError{Command: cmd.Name, Remaining: remaining}
		}
	}

	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(withoutPrefix), parts[0]))
	cmdCtx := &Context{
		Message: msg,
		Out:     out,
		Command: cmd,
		Raw:     raw,
		Args:    parts[1:],
		prefix:  r.prefix,
	}

	return cmd.Handler(ctx, cmdCtx)
}

// tracker returns the cooldown tracker of cmd, creating it on first use.
func (r *Router) tracker(cmd *Command) *CooldownTracker {
	r.cooldownMu.Lock()
	defer r.cooldownMu.Unlock()
	t, ok := r.cooldowns[cmd.Name]
	if !ok {
		t = NewCooldownTracker(cmd.Cooldown.Delay())
		r.cooldowns[cmd.Name] = t
	}
	return t
}

func (r *Router) notFound(name string) string {
	names := make([]string, 0, len(r.cmdIndex))
	for key := range r.cmdIndex {
		names = append(names, key)
	}
	slices.Sort(names)
	matches := fuzzy.Find(name, names)
	if len(matches) == 0 {
		log.Printf("router: unknown command %q", name)
		return "Unknown command."
	}
	return fmt.Sprintf("Unknown command. Did you mean %s%s?", r.prefix, matches[0].Str)
}

func formatRemaining(d time.Duration) string {
	if d < time.Second {
		return "1s"
	}
	return d.Round(time.Second).String()
}
