package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"happyBot/internal/domain"
)

type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite: empty db path")
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: creating dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	const roleGrantsTable = `
CREATE TABLE IF NOT EXISTS role_grants (
	platform TEXT NOT NULL,
	user_id TEXT NOT NULL,
	role_id TEXT NOT NULL,
	granted_at TIMESTAMP NOT NULL,
	PRIMARY KEY (platform, user_id, role_id)
);`

	if _, err := db.Exec(roleGrantsTable); err != nil {
		return fmt.Errorf("sqlite: migrate role_grants: %w", err)
	}

	const messagesTable = `
CREATE TABLE IF NOT EXISTS messages (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

	if _, err := db.Exec(messagesTable); err != nil {
		return fmt.Errorf("sqlite: migrate messages: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) RolesForUser(ctx context.Context, platform domain.Platform, userID string) ([]string, error) {
	const query = `
SELECT role_id
FROM role_grants
WHERE platform = ? AND user_id = ?
ORDER BY role_id;
`

	rows, err := s.db.QueryContext(ctx, query, string(platform), strings.TrimSpace(userID))
	if err != nil {
		return nil, fmt.Errorf("sqlite: roles for user: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var roleID string
		if err := rows.Scan(&roleID); err != nil {
			return nil, fmt.Errorf("sqlite: scan role: %w", err)
		}
		out = append(out, roleID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: roles rows: %w", err)
	}
	return out, nil
}

func (s *Store) GrantRole(ctx context.Context, platform domain.Platform, userID, roleID string) error {
	userID = strings.TrimSpace(userID)
	roleID = strings.TrimSpace(roleID)
	if userID == "" || roleID == "" {
		return fmt.Errorf("sqlite: grant role: empty user or role")
	}

	const stmt = `
INSERT INTO role_grants (platform, user_id, role_id, granted_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(platform, user_id, role_id) DO NOTHING;
`

	if _, err := s.db.ExecContext(ctx, stmt, string(platform), userID, roleID, time.Now().UTC()); err != nil {
		return fmt.Errorf("sqlite: grant role: %w", err)
	}
	return nil
}

func (s *Store) RevokeRole(ctx context.Context, platform domain.Platform, userID, roleID string) (bool, error) {
	const stmt = `DELETE FROM role_grants WHERE platform = ? AND user_id = ? AND role_id = ?;`

	res, err := s.db.ExecContext(ctx, stmt, string(platform), strings.TrimSpace(userID), strings.TrimSpace(roleID))
	if err != nil {
		return false, fmt.Errorf("sqlite: revoke role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: revoke role: %w", err)
	}
	return affected > 0, nil
}

// GetMessage returns the stored text for key, or "" when none is stored.
func (s *Store) GetMessage(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM messages WHERE key = ? LIMIT 1;`

	var value sql.NullString
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("sqlite: get message: %w", err)
	}
	return value.String, nil
}

func (s *Store) SetMessage(ctx context.Context, key, value string) error {
	const stmt = `
INSERT INTO messages (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	value=excluded.value,
	updated_at=excluded.updated_at;
`

	if _, err := s.db.ExecContext(ctx, stmt, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("sqlite: set message: %w", err)
	}
	return nil
}

var (
	_ domain.RoleRepository    = (*Store)(nil)
	_ domain.MessageRepository = (*Store)(nil)
)
