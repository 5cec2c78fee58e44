package commands

import (
	"errors"
	"fmt"
	"time"

	"happyBot/internal/domain"
)

// PermissionDeniedError is returned when the actor lacks the command's role.
type PermissionDeniedError struct {
	Role     domain.RoleKey
	RoleName string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: requires %s", e.RoleName)
}

// CooldownActiveError is returned while the actor's cooldown has not expired.
type CooldownActiveError struct {
	Command   string
	Remaining time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("cooldown active for %s: %s remaining", e.Command, e.Remaining)
}

// UsageError is returned by handlers that rejected their arguments.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Usage
}

// IsUserFacing reports whether err was already answered in chat.
func IsUserFacing(err error) bool {
	var perm *PermissionDeniedError
	var cool *CooldownActiveError
	var usage *UsageError
	return errors.As(err, &perm) || errors.As(err, &cool) || errors.As(err, &usage)
}

func permissionMessage(roleName string) string {
	return "This requires Permission Rank **" + roleName + "** to execute!"
}
