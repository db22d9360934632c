package room

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so queries can run inside or
// outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository persists rooms and participants. Row updates are plain
// overwrites; last write wins at the row level.
type Repository struct {
	db DBTX
}

func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx}
}

const roomColumns = `id, invite_code, status, host_id, draft_state, created_at, updated_at`

func (r *Repository) CreateRoom(ctx context.Context, room models.Room) (*models.Room, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO rooms (id, invite_code, status, host_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+roomColumns,
		room.ID, room.InviteCode, room.Status, room.HostID,
	)
	return scanRoom(row)
}

func (r *Repository) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
	return scanRoom(row)
}

func (r *Repository) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE invite_code = $1`, code)
	return scanRoom(row)
}

// LockRoom reads a room by id with FOR UPDATE.
func (r *Repository) LockRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = $1 FOR UPDATE`, id)
	return scanRoom(row)
}

// LockRoomByCode reads a room with FOR UPDATE so joins serialize on the row.
func (r *Repository) LockRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE invite_code = $1 FOR UPDATE`, code)
	return scanRoom(row)
}

func (r *Repository) UpdateRoomStatus(ctx context.Context, id uuid.UUID, status models.RoomStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}
	return nil
}

func (r *Repository) UpdateRoomHost(ctx context.Context, id, hostID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET host_id = $2, updated_at = NOW() WHERE id = $1`, id, hostID)
	if err != nil {
		return fmt.Errorf("failed to update room host: %w", err)
	}
	return nil
}

// SaveDraftState overwrites the serialized draft-state snapshot on the room.
func (r *Repository) SaveDraftState(ctx context.Context, id uuid.UUID, state []byte) error {
	blob := pqtype.NullRawMessage{RawMessage: state, Valid: state != nil}
	_, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET draft_state = $2, updated_at = NOW() WHERE id = $1`, id, blob)
	if err != nil {
		return fmt.Errorf("failed to save draft state: %w", err)
	}
	return nil
}

const participantColumns = `id, room_id, display_name, team_id, color_slot, is_host, connected, joined_at`

func (r *Repository) CreateParticipant(ctx context.Context, p models.Participant) (*models.Participant, error) {
	var teamID uuid.NullUUID
	if p.TeamID != nil {
		teamID = uuid.NullUUID{UUID: *p.TeamID, Valid: true}
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO participants (id, room_id, display_name, team_id, color_slot, is_host, connected)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+participantColumns,
		p.ID, p.RoomID, p.DisplayName, teamID, p.ColorSlot, p.IsHost, p.Connected,
	)
	return scanParticipant(row)
}

func (r *Repository) ListParticipants(ctx context.Context, roomID uuid.UUID) ([]models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+participantColumns+`
		FROM participants WHERE room_id = $1
		ORDER BY color_slot`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var out []models.Participant
	for rows.Next() {
		p, err := scanParticipantRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repository) ClaimTeam(ctx context.Context, participantID, teamID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE participants SET team_id = $2 WHERE id = $1`, participantID, teamID)
	if err != nil {
		return fmt.Errorf("failed to claim team: %w", err)
	}
	return nil
}

func (r *Repository) SetConnected(ctx context.Context, participantID uuid.UUID, connected bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE participants SET connected = $2 WHERE id = $1`, participantID, connected)
	if err != nil {
		return fmt.Errorf("failed to set connected flag: %w", err)
	}
	return nil
}

func (r *Repository) SetHost(ctx context.Context, participantID uuid.UUID, isHost bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE participants SET is_host = $2 WHERE id = $1`, participantID, isHost)
	if err != nil {
		return fmt.Errorf("failed to set host flag: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*models.Room, error) {
	var room models.Room
	var state pqtype.NullRawMessage
	err := row.Scan(
		&room.ID, &room.InviteCode, &room.Status, &room.HostID,
		&state, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if state.Valid {
		room.DraftState = state.RawMessage
	}
	return &room, nil
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	return scanParticipantRows(row)
}

func scanParticipantRows(row rowScanner) (*models.Participant, error) {
	var p models.Participant
	var teamID uuid.NullUUID
	err := row.Scan(
		&p.ID, &p.RoomID, &p.DisplayName, &teamID,
		&p.ColorSlot, &p.IsHost, &p.Connected, &p.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	if teamID.Valid {
		id := teamID.UUID
		p.TeamID = &id
	}
	return &p, nil
}
