package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/room"
)

// Repository reads the prospect and team catalog tables.
type Repository struct {
	db room.DBTX
}

func NewRepository(db room.DBTX) *Repository {
	return &Repository{db: db}
}

// Load reads the full catalog for a draft year into an immutable snapshot.
func (r *Repository) Load(ctx context.Context, year int) (*Snapshot, error) {
	prospects, err := r.loadProspects(ctx, year)
	if err != nil {
		return nil, err
	}
	teams, err := r.loadTeams(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(prospects, teams), nil
}

func (r *Repository) loadProspects(ctx context.Context, year int) ([]models.Prospect, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, position, rank, year
		FROM prospects
		WHERE year = $1
		ORDER BY rank`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load prospects: %w", err)
	}
	defer rows.Close()

	var out []models.Prospect
	for rows.Next() {
		var p models.Prospect
		if err := rows.Scan(&p.ID, &p.Name, &p.Position, &p.Rank, &p.Year); err != nil {
			return nil, fmt.Errorf("failed to scan prospect: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) loadTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, needs, logo_url
		FROM teams
		ORDER BY draft_order`)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	defer rows.Close()

	var out []models.Team
	for rows.Next() {
		var t models.Team
		var id uuid.UUID
		var needs []string
		if err := rows.Scan(&id, &t.Name, pq.Array(&needs), &t.LogoURL); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		t.ID = id
		t.Needs = make([]models.Position, len(needs))
		for i, n := range needs {
			t.Needs[i] = models.Position(n)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
