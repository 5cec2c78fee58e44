package domain

import (
	"fmt"
	"strings"
)

type RoleKey string

const (
	RoleDeveloper      RoleKey = "developer"
	RoleSuperAdmin     RoleKey = "super_admin"
	RoleChannelManager RoleKey = "channel_manager"
	RoleAdmin          RoleKey = "admin"
	RoleModerator      RoleKey = "moderator"
	RoleHelper         RoleKey = "helper"
	RoleVIP            RoleKey = "vip"
)

// Badge role IDs produced by the transport adapters.
const (
	BadgeBroadcaster = "badge:broadcaster"
	BadgeModerator   = "badge:moderator"
	BadgeVIP         = "badge:vip"
)

type Role struct {
	Key  RoleKey `yaml:"-"`
	ID   string  `yaml:"id"`
	Name string  `yaml:"name"`
}

// RoleTable maps role keys to the platform identities that carry them.
// Implies lists, for a held role, the required roles it also satisfies.
// The relation is applied one level deep only.
type RoleTable struct {
	Roles   map[RoleKey]Role      `yaml:"roles"`
	Implies map[RoleKey][]RoleKey `yaml:"implies"`
}

func DefaultRoleTable() RoleTable {
	return RoleTable{
		Roles: map[RoleKey]Role{
			RoleDeveloper:      {Key: RoleDeveloper, ID: "developer", Name: "Developer"},
			RoleSuperAdmin:     {Key: RoleSuperAdmin, ID: "super_admin", Name: "Super Admin"},
			RoleChannelManager: {Key: RoleChannelManager, ID: BadgeBroadcaster, Name: "Channel Manager"},
			RoleAdmin:          {Key: RoleAdmin, ID: "admin", Name: "Admin"},
			RoleModerator:      {Key: RoleModerator, ID: BadgeModerator, Name: "Moderator"},
			RoleHelper:         {Key: RoleHelper, ID: "helper", Name: "Helper"},
			RoleVIP:            {Key: RoleVIP, ID: BadgeVIP, Name: "VIP"},
		},
		Implies: map[RoleKey][]RoleKey{
			RoleChannelManager: {RoleSuperAdmin},
		},
	}
}

func (t RoleTable) Lookup(key RoleKey) (Role, bool) {
	role, ok := t.Roles[key]
	if !ok || strings.TrimSpace(role.ID) == "" {
		return Role{}, false
	}
	role.Key = key
	return role, true
}

// DisplayName falls back to the key when the table has no entry.
func (t RoleTable) DisplayName(key RoleKey) string {
	if role, ok := t.Lookup(key); ok && role.Name != "" {
		return role.Name
	}
	return string(key)
}

// Satisfying returns the roles whose holders pass a check for required:
// the role itself plus every role that implies it.
func (t RoleTable) Satisfying(required RoleKey) []Role {
	var out []Role
	if role, ok := t.Lookup(required); ok {
		out = append(out, role)
	}
	for held, implied := range t.Implies {
		for _, key := range implied {
			if key != required {
				continue
			}
			if role, ok := t.Lookup(held); ok {
				out = append(out, role)
			}
		}
	}
	return out
}

func (t RoleTable) Validate() error {
	for key, role := range t.Roles {
		if strings.TrimSpace(role.ID) == "" {
			return fmt.Errorf("role %q: empty id", key)
		}
	}
	for held, implied := range t.Implies {
		if _, ok := t.Roles[held]; !ok {
			return fmt.Errorf("implies: unknown role %q", held)
		}
		for _, key := range implied {
			if _, ok := t.Roles[key]; !ok {
				return fmt.Errorf("implies %q: unknown role %q", held, key)
			}
		}
	}
	return nil
}
