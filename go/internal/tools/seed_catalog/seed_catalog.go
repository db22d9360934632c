package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/dbconfig"
)

// SeedProspect mirrors the JSON snapshot structure
type SeedProspect struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Rank     int    `json:"rank"`
	Year     int    `json:"year"`
}

// SeedTeam mirrors the JSON snapshot structure
type SeedTeam struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Needs      []string `json:"needs"`
	LogoURL    string   `json:"logo_url"`
	DraftOrder int      `json:"draft_order"`
}

func main() {
	prospects, err := readJSON[SeedProspect]("go/internal/assets/prospects.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load prospects: %v\n", err)
		os.Exit(1)
	}
	teams, err := readJSON[SeedTeam]("go/internal/assets/teams.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load teams: %v\n", err)
		os.Exit(1)
	}

	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var inserted, skipped, errs int
	for _, p := range prospects {
		id := p.ID
		if id == "" {
			id = uuid.New().String()
		}
		cmdTag, err := pool.Exec(context.Background(), `
            INSERT INTO prospects (id, name, position, rank, year)
            VALUES ($1,$2,$3,$4,$5)
            ON CONFLICT (year, rank) DO NOTHING
        `, id, p.Name, p.Position, p.Rank, p.Year)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting prospect %s: %v\n", p.Name, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}
	fmt.Printf("prospects: %d inserted, %d skipped, %d errors (of %d)\n", inserted, skipped, errs, len(prospects))

	inserted, skipped, errs = 0, 0, 0
	for _, t := range teams {
		id := t.ID
		if id == "" {
			id = uuid.New().String()
		}
		cmdTag, err := pool.Exec(context.Background(), `
            INSERT INTO teams (id, name, needs, logo_url, draft_order)
            VALUES ($1,$2,$3,$4,$5)
            ON CONFLICT (draft_order) DO NOTHING
        `, id, t.Name, t.Needs, t.LogoURL, t.DraftOrder)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting team %s: %v\n", t.Name, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}
	fmt.Printf("teams: %d inserted, %d skipped, %d errors (of %d)\n", inserted, skipped, errs, len(teams))
}

func readJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
