package diagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/planemotion/planemotion/backend-go/internal/scene"
	"github.com/planemotion/planemotion/backend-go/internal/store"
	"github.com/planemotion/planemotion/backend-go/internal/typeid"
)

var (
	ErrNotFound  = errors.New("diagram not found")
	ErrForbidden = errors.New("forbidden")
	ErrNotMember = errors.New("not a diagram member")
)

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

type Diagram struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

func (s *Service) Create(ctx context.Context, name, ownerID string) (*Diagram, error) {
	diagramID := typeid.NewDiagramID()

	d, err := s.store.CreateDiagram(ctx, store.Diagram{
		ID:      diagramID,
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create diagram: %w", err)
	}

	// Add owner as member
	if err := s.store.AddMember(ctx, diagramID, ownerID, store.RoleOwner); err != nil {
		return nil, fmt.Errorf("add owner as member: %w", err)
	}

	// Seed an empty scene snapshot so loads never 404
	docJSON, err := scene.Marshal(scene.New())
	if err != nil {
		return nil, fmt.Errorf("marshal empty scene: %w", err)
	}

	_, err = s.store.CreateSnapshot(ctx, store.Snapshot{
		ID:        typeid.NewSnapshotID(),
		DiagramID: diagramID,
		Version:   1,
		Document:  docJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return toDiagram(d), nil
}

func (s *Service) Get(ctx context.Context, diagramID, userID string) (*Diagram, error) {
	if err := s.checkMembership(ctx, diagramID, userID); err != nil {
		return nil, err
	}

	d, err := s.store.GetDiagram(ctx, diagramID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get diagram: %w", err)
	}

	return toDiagram(d), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Diagram, error) {
	rows, err := s.store.ListDiagramsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list diagrams: %w", err)
	}

	diagrams := make([]Diagram, len(rows))
	for i, d := range rows {
		diagrams[i] = *toDiagram(d)
	}

	return diagrams, nil
}

func (s *Service) Delete(ctx context.Context, diagramID, userID string) error {
	d, err := s.store.GetDiagram(ctx, diagramID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get diagram: %w", err)
	}

	if d.OwnerID != userID {
		return ErrForbidden
	}

	return s.store.DeleteDiagram(ctx, diagramID)
}

func (s *Service) InviteByEmail(ctx context.Context, diagramID, ownerID, inviteeEmail string) error {
	d, err := s.store.GetDiagram(ctx, diagramID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get diagram: %w", err)
	}

	if d.OwnerID != ownerID {
		return ErrForbidden
	}

	invitee, err := s.store.GetUserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.New("user not found")
		}
		return fmt.Errorf("find user: %w", err)
	}

	return s.store.AddMember(ctx, diagramID, invitee.ID, store.RoleEditor)
}

func (s *Service) ListMembers(ctx context.Context, diagramID, userID string) ([]Member, error) {
	if err := s.checkMembership(ctx, diagramID, userID); err != nil {
		return nil, err
	}

	rows, err := s.store.ListMembers(ctx, diagramID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]Member, len(rows))
	for i, m := range rows {
		members[i] = Member{
			UserID:      m.UserID,
			Role:        string(m.Role),
			DisplayName: m.DisplayName,
			Email:       m.Email,
		}
	}

	return members, nil
}

func (s *Service) RemoveMember(ctx context.Context, diagramID, ownerID, targetUserID string) error {
	d, err := s.store.GetDiagram(ctx, diagramID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get diagram: %w", err)
	}

	if d.OwnerID != ownerID {
		return ErrForbidden
	}

	if targetUserID == ownerID {
		return errors.New("cannot remove diagram owner")
	}

	return s.store.RemoveMember(ctx, diagramID, targetUserID)
}

func (s *Service) GetLatestSnapshot(ctx context.Context, diagramID, userID string) (json.RawMessage, error) {
	if err := s.checkMembership(ctx, diagramID, userID); err != nil {
		return nil, err
	}

	snap, err := s.store.GetLatestSnapshot(ctx, diagramID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	return snap.Document, nil
}

func (s *Service) checkMembership(ctx context.Context, diagramID, userID string) error {
	_, err := s.store.GetMember(ctx, diagramID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotMember
		}
		return fmt.Errorf("check membership: %w", err)
	}
	return nil
}

func toDiagram(d store.Diagram) *Diagram {
	return &Diagram{
		ID:        d.ID,
		Name:      d.Name,
		OwnerID:   d.OwnerID,
		CreatedAt: d.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: d.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
