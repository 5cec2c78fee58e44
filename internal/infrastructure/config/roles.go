package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"happyBot/internal/domain"
)

// LoadRoleTable reads a YAML role table and overlays it on the default one.
// An empty path returns the defaults.
//
//	roles:
//	  developer: {id: "12345", name: Developer}
//	implies:
//	  channel_manager: [super_admin]
func LoadRoleTable(path string) (domain.RoleTable, error) {
	table := domain.DefaultRoleTable()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RoleTable{}, fmt.Errorf("config: read roles: %w", err)
	}
	return ParseRoleTable(data, table)
}

func ParseRoleTable(data []byte, base domain.RoleTable) (domain.RoleTable, error) {
	var file domain.RoleTable
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.RoleTable{}, fmt.Errorf("config: parse roles: %w", err)
	}

	out := domain.RoleTable{
		Roles:   make(map[domain.RoleKey]domain.Role, len(base.Roles)+len(file.Roles)),
		Implies: base.Implies,
	}
	for key, role := range base.Roles {
		out.Roles[key] = role
	}
	for key, role := range file.Roles {
		if prev, ok := out.Roles[key]; ok && role.Name == "" {
			role.Name = prev.Name
		}
		role.Key = key
		out.Roles[key] = role
	}
	if file.Implies != nil {
		out.Implies = file.Implies
	}

	if err := out.Validate(); err != nil {
		return domain.RoleTable{}, fmt.Errorf("config: roles: %w", err)
	}
	return out, nil
}
