package datastore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Installation is a Slack workspace that installed the app through OAuth.
type Installation struct {
	TeamID       string
	TeamName     string
	EnterpriseID string
	BotUserID    string
	BotToken     string
	Scope        string
	InstalledAt  time.Time
	UpdatedAt    time.Time
}

// Store keeps Slack installations in sqlite.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewStore opens the database at path, creating its directory, and ensures
// the schema. ":memory:" opens a private in-memory database.
func NewStore(path string, logger zerolog.Logger) (*Store, error) {
	logger = logger.With().Str("component", "InstallationStore").Logger()
	logger.Info().Str("db_path", path).Msg("Initializing installation database")

	if path != ":memory:" {
		dbDir := filepath.Dir(path)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, WrapError(err, "failed to create database directory "+dbDir)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, WrapError(err, "sql.Open failed for "+path)
	}
	// sqlite allows one writer; an in-memory database also lives per connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.InitSchema(context.Background()); err != nil {
		s.Close()
		return nil, WrapError(err, "failed to initialize schema")
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema creates the installations table if it doesn't already exist.
func (s *Store) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS slack_installations (
		team_id TEXT PRIMARY KEY,
		team_name TEXT NOT NULL DEFAULT '',
		enterprise_id TEXT NOT NULL DEFAULT '',
		bot_user_id TEXT NOT NULL DEFAULT '',
		bot_token TEXT NOT NULL,
		scope TEXT NOT NULL DEFAULT '',
		installed_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		s.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	s.logger.Debug().Msg("Schema initialized (slack_installations table ensured)")
	return nil
}

// SaveInstallation inserts or replaces the installation of inst.TeamID. A
// reinstall keeps the original InstalledAt.
func (s *Store) SaveInstallation(ctx context.Context, inst Installation) error {
	if inst.TeamID == "" {
		return NewValidationError("team_id", inst.TeamID, "team id is required")
	}
	if inst.BotToken == "" {
		return NewValidationError("bot_token", "", "bot token is required")
	}

	now := time.Now().UTC()
	if inst.InstalledAt.IsZero() {
		inst.InstalledAt = now
	}

	query := `
	INSERT INTO slack_installations (team_id, team_name, enterprise_id, bot_user_id, bot_token, scope, installed_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(team_id) DO UPDATE SET
		team_name = excluded.team_name,
		enterprise_id = excluded.enterprise_id,
		bot_user_id = excluded.bot_user_id,
		bot_token = excluded.bot_token,
		scope = excluded.scope,
		updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		inst.TeamID, inst.TeamName, inst.EnterpriseID, inst.BotUserID, inst.BotToken, inst.Scope,
		inst.InstalledAt.UTC(), now)
	if err != nil {
		s.logger.Error().Err(err).Str("team_id", inst.TeamID).Msg("Failed to save installation")
		return WrapError(err, "failed to save installation for team "+inst.TeamID)
	}

	s.logger.Info().Str("team_id", inst.TeamID).Str("team_name", inst.TeamName).Msg("Saved Slack installation")
	return nil
}

// GetInstallation returns the installation of teamID, or ErrNotFound.
func (s *Store) GetInstallation(ctx context.Context, teamID string) (*Installation, error) {
	query := `
	SELECT team_id, team_name, enterprise_id, bot_user_id, bot_token, scope, installed_at, updated_at
	FROM slack_installations WHERE team_id = ?
	`
	var inst Installation
	err := s.db.QueryRowContext(ctx, query, teamID).Scan(
		&inst.TeamID, &inst.TeamName, &inst.EnterpriseID, &inst.BotUserID, &inst.BotToken, &inst.Scope,
		&inst.InstalledAt, &inst.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Error().Err(err).Str("team_id", teamID).Msg("Failed to query installation")
		return nil, WrapError(err, "failed to query installation for team "+teamID)
	}
	return &inst, nil
}

// DeleteInstallation removes the installation of teamID, e.g. after the app
// was uninstalled. Deleting a missing team returns ErrNotFound.
func (s *Store) DeleteInstallation(ctx context.Context, teamID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM slack_installations WHERE team_id = ?`, teamID)
	if err != nil {
		return WrapError(err, "failed to delete installation for team "+teamID)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	s.logger.Info().Str("team_id", teamID).Msg("Deleted Slack installation")
	return nil
}

// CountInstallations returns how many workspaces are installed.
func (s *Store) CountInstallations(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM slack_installations`).Scan(&n); err != nil {
		return 0, WrapError(err, "failed to count installations")
	}
	return n, nil
}
