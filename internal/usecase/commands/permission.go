package commands

import (
	"context"
	"log"

	"happyBot/internal/domain"
)

// RoleLookup resolves additional role IDs for the sender of msg.
type RoleLookup interface {
	RolesOf(ctx context.Context, msg domain.Message) ([]string, error)
}

type PermissionResolver struct {
	table  domain.RoleTable
	lookup RoleLookup
}

func NewPermissionResolver(table domain.RoleTable, lookup RoleLookup) *PermissionResolver {
	return &PermissionResolver{table: table, lookup: lookup}
}

func (p *PermissionResolver) Table() domain.RoleTable {
	if p == nil {
		return domain.RoleTable{}
	}
	return p.table
}

// HasRole reports whether the sender holds required. A role set that cannot
// be resolved counts as no permission.
func (p *PermissionResolver) HasRole(ctx context.Context, msg domain.Message, required domain.RoleKey) bool {
	if p == nil {
		return false
	}
	held := msg.Roles
	if p.lookup != nil {
		extra, err := p.lookup.RolesOf(ctx, msg)
		if err != nil {
			log.Printf("permissions: resolving roles for %s: %v", msg.ActorKey(), err)
			return false
		}
		held = msg.WithRoles(extra...).Roles
	}
	return p.holds(held, required)
}

func (p *PermissionResolver) holds(held []string, required domain.RoleKey) bool {
	accepted := p.table.Satisfying(required)
	if len(accepted) == 0 {
		return false
	}
	for _, id := range held {
		for _, role := range accepted {
			if id == role.ID {
				return true
			}
		}
	}
	return false
}

type repositoryLookup struct {
	repo domain.RoleRepository
}

// LookupFromRepository resolves stored grants for the sender's platform
// account.
func LookupFromRepository(repo domain.RoleRepository) RoleLookup {
	if repo == nil {
		return nil
	}
	return &repositoryLookup{repo: repo}
}

func (l *repositoryLookup) RolesOf(ctx context.Context, msg domain.Message) ([]string, error) {
	return l.repo.RolesForUser(ctx, msg.Platform, msg.UserID)
}
