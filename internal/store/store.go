// Package store is the Postgres persistence layer: users, diagrams,
// memberships, and scene document snapshots.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	email        TEXT NOT NULL UNIQUE,
	password     TEXT NOT NULL,
	display_name TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS diagrams (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	owner_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS diagram_members (
	diagram_id TEXT NOT NULL REFERENCES diagrams(id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	role       TEXT NOT NULL,
	PRIMARY KEY (diagram_id, user_id)
);

CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	diagram_id TEXT NOT NULL REFERENCES diagrams(id) ON DELETE CASCADE,
	version    INTEGER NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (diagram_id, version)
);
`

// --- Users ---

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   time.Time
}

func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password, display_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, email, password, display_name, created_at`,
		u.ID, u.Email, u.Password, u.DisplayName)
	var out User
	err := row.Scan(&out.ID, &out.Email, &out.Password, &out.DisplayName, &out.CreatedAt)
	return out, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, email, password, display_name, created_at FROM users WHERE email = $1`,
		email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

func (s *Store) GetUserByID(ctx context.Context, id string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, email, password, display_name, created_at FROM users WHERE id = $1`,
		id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

// --- Diagrams ---

type Diagram struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
)

type Member struct {
	DiagramID   string
	UserID      string
	Role        Role
	DisplayName string
	Email       string
}

func (s *Store) CreateDiagram(ctx context.Context, d Diagram) (Diagram, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO diagrams (id, name, owner_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, owner_id, created_at, updated_at`,
		d.ID, d.Name, d.OwnerID)
	var out Diagram
	err := row.Scan(&out.ID, &out.Name, &out.OwnerID, &out.CreatedAt, &out.UpdatedAt)
	return out, err
}

func (s *Store) GetDiagram(ctx context.Context, id string) (Diagram, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, owner_id, created_at, updated_at FROM diagrams WHERE id = $1`,
		id)
	var d Diagram
	err := row.Scan(&d.ID, &d.Name, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (s *Store) ListDiagramsForUser(ctx context.Context, userID string) ([]Diagram, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT d.id, d.name, d.owner_id, d.created_at, d.updated_at
		 FROM diagrams d
		 JOIN diagram_members m ON m.diagram_id = d.id
		 WHERE m.user_id = $1
		 ORDER BY d.updated_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var diagrams []Diagram
	for rows.Next() {
		var d Diagram
		if err := rows.Scan(&d.ID, &d.Name, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		diagrams = append(diagrams, d)
	}
	return diagrams, rows.Err()
}

func (s *Store) DeleteDiagram(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM diagrams WHERE id = $1`, id)
	return err
}

func (s *Store) TouchDiagram(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `UPDATE diagrams SET updated_at = now() WHERE id = $1`, id)
	return err
}

// --- Members ---

func (s *Store) AddMember(ctx context.Context, diagramID, userID string, role Role) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO diagram_members (diagram_id, user_id, role) VALUES ($1, $2, $3)
		 ON CONFLICT (diagram_id, user_id) DO NOTHING`,
		diagramID, userID, role)
	return err
}

func (s *Store) GetMember(ctx context.Context, diagramID, userID string) (Member, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT diagram_id, user_id, role FROM diagram_members
		 WHERE diagram_id = $1 AND user_id = $2`,
		diagramID, userID)
	var m Member
	err := row.Scan(&m.DiagramID, &m.UserID, &m.Role)
	return m, err
}

func (s *Store) ListMembers(ctx context.Context, diagramID string) ([]Member, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT m.diagram_id, m.user_id, m.role, u.display_name, u.email
		 FROM diagram_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.diagram_id = $1
		 ORDER BY u.display_name`,
		diagramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.DiagramID, &m.UserID, &m.Role, &m.DisplayName, &m.Email); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) RemoveMember(ctx context.Context, diagramID, userID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM diagram_members WHERE diagram_id = $1 AND user_id = $2`,
		diagramID, userID)
	return err
}

// --- Snapshots ---

type Snapshot struct {
	ID        string
	DiagramID string
	Version   int32
	Document  []byte
	CreatedAt time.Time
}

func (s *Store) CreateSnapshot(ctx context.Context, snap Snapshot) (Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO snapshots (id, diagram_id, version, document)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, diagram_id, version, document, created_at`,
		snap.ID, snap.DiagramID, snap.Version, snap.Document)
	var out Snapshot
	err := row.Scan(&out.ID, &out.DiagramID, &out.Version, &out.Document, &out.CreatedAt)
	return out, err
}

func (s *Store) GetLatestSnapshot(ctx context.Context, diagramID string) (Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, diagram_id, version, document, created_at
		 FROM snapshots WHERE diagram_id = $1
		 ORDER BY version DESC LIMIT 1`,
		diagramID)
	var snap Snapshot
	err := row.Scan(&snap.ID, &snap.DiagramID, &snap.Version, &snap.Document, &snap.CreatedAt)
	return snap, err
}
