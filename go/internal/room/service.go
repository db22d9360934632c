package room

import (
	"context"
	"database/sql"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/models"
	"github.com/ben-hockley/NFL-Draft-Simulator-Pro-sub000/go/internal/sqlutil"
)

// MaxDisplayNameLen bounds participant names.
const MaxDisplayNameLen = 24

var (
	ErrRoomFull     = errors.New("room already has the maximum number of participants")
	ErrRoomNotFound = errors.New("room not found")
	ErrDraftStarted = errors.New("draft has already started in this room")
	ErrNameTooLong  = errors.New("display name is too long")
	ErrNameEmpty    = errors.New("display name is required")
	ErrTeamTaken    = errors.New("team is already claimed by another participant")
	ErrNotHost      = errors.New("only the host may do that")
)

// Service owns room lifecycle and membership rules on top of the repository.
type Service struct {
	db   *sql.DB
	repo *Repository
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, repo: NewRepository(db)}
}

// CreateRoom makes a new lobby with the creator as host in color slot 1.
// Invite codes are regenerated on the rare collision.
func (s *Service) CreateRoom(ctx context.Context, hostName string) (*models.Room, *models.Participant, error) {
	if err := ValidateDisplayName(hostName); err != nil {
		return nil, nil, err
	}

	var code string
	for {
		c, err := GenerateCode()
		if err != nil {
			return nil, nil, err
		}
		_, err = s.repo.GetRoomByCode(ctx, c)
		if errors.Is(err, sql.ErrNoRows) {
			code = c
			break
		}
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("code", c).Msg("invite code collision, regenerating")
	}

	hostID := uuid.New()
	var createdRoom *models.Room
	var createdHost *models.Participant
	err := sqlutil.Run(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.repo.WithTx(tx)
		var err error
		createdRoom, err = repo.CreateRoom(ctx, models.Room{
			ID:         uuid.New(),
			InviteCode: code,
			Status:     models.RoomStatusLobby,
			HostID:     hostID,
		})
		if err != nil {
			return err
		}
		createdHost, err = repo.CreateParticipant(ctx, models.Participant{
			ID:          hostID,
			RoomID:      createdRoom.ID,
			DisplayName: hostName,
			ColorSlot:   1,
			IsHost:      true,
			Connected:   true,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	log.Info().
		Str("room_id", createdRoom.ID.String()).
		Str("invite_code", createdRoom.InviteCode).
		Msg("room created")
	return createdRoom, createdHost, nil
}

// JoinRoom adds a participant to a lobby. The join transaction locks the room
// row so concurrent joins serialize: capacity and color slots stay consistent.
func (s *Service) JoinRoom(ctx context.Context, rawCode, displayName string) (*models.Room, *models.Participant, error) {
	code, err := NormalizeCode(rawCode)
	if err != nil {
		return nil, nil, err
	}
	if err := ValidateDisplayName(displayName); err != nil {
		return nil, nil, err
	}

	var joinedRoom *models.Room
	var joined *models.Participant
	err = sqlutil.Run(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.repo.WithTx(tx)
		joinedRoom, err = repo.LockRoomByCode(ctx, code)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		if joinedRoom.Status != models.RoomStatusLobby {
			return ErrDraftStarted
		}

		participants, err := repo.ListParticipants(ctx, joinedRoom.ID)
		if err != nil {
			return err
		}
		if len(participants) >= models.MaxParticipants {
			return ErrRoomFull
		}

		joined, err = repo.CreateParticipant(ctx, models.Participant{
			ID:          uuid.New(),
			RoomID:      joinedRoom.ID,
			DisplayName: displayName,
			ColorSlot:   LowestFreeSlot(participants),
			Connected:   true,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	log.Info().
		Str("room_id", joinedRoom.ID.String()).
		Str("participant_id", joined.ID.String()).
		Int("color_slot", joined.ColorSlot).
		Msg("participant joined room")
	return joinedRoom, joined, nil
}

// ClaimTeam assigns a team to a participant. A team may be claimed by at most
// one participant per room.
func (s *Service) ClaimTeam(ctx context.Context, roomID, participantID, teamID uuid.UUID) error {
	return sqlutil.Run(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.LockRoom(ctx, roomID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRoomNotFound
			}
			return err
		}
		participants, err := repo.ListParticipants(ctx, roomID)
		if err != nil {
			return err
		}
		for _, p := range participants {
			if p.ID != participantID && p.TeamID != nil && *p.TeamID == teamID {
				return ErrTeamTaken
			}
		}
		return repo.ClaimTeam(ctx, participantID, teamID)
	})
}

// StartDraft flips the room to drafting and stores the initial state snapshot.
// Host-gated: only the participant flagged as host may start.
func (s *Service) StartDraft(ctx context.Context, roomID, byParticipant uuid.UUID, stateBlob []byte) error {
	current, err := s.repo.GetRoom(ctx, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRoomNotFound
	}
	if err != nil {
		return err
	}
	if current.HostID != byParticipant {
		return ErrNotHost
	}
	if current.Status != models.RoomStatusLobby {
		return ErrDraftStarted
	}
	return sqlutil.Run(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.repo.WithTx(tx)
		if err := repo.SaveDraftState(ctx, roomID, stateBlob); err != nil {
			return err
		}
		return repo.UpdateRoomStatus(ctx, roomID, models.RoomStatusDrafting)
	})
}

// SaveState overwrites the persisted draft-state snapshot. Last write wins.
func (s *Service) SaveState(ctx context.Context, roomID uuid.UUID, stateBlob []byte) error {
	return s.repo.SaveDraftState(ctx, roomID, stateBlob)
}

// Complete marks the room's draft finished.
func (s *Service) Complete(ctx context.Context, roomID uuid.UUID) error {
	return s.repo.UpdateRoomStatus(ctx, roomID, models.RoomStatusComplete)
}

// MarkDisconnected is the best-effort unload path. Delivery is not guaranteed.
func (s *Service) MarkDisconnected(ctx context.Context, participantID uuid.UUID) error {
	return s.repo.SetConnected(ctx, participantID, false)
}

// MarkConnected flags a participant as present again after a reconnect.
func (s *Service) MarkConnected(ctx context.Context, participantID uuid.UUID) error {
	return s.repo.SetConnected(ctx, participantID, true)
}

// RoomSnapshot reads the room row and its participants in one call. Used by
// sessions reconciling after a row-change notification.
func (s *Service) RoomSnapshot(ctx context.Context, roomID uuid.UUID) (*models.Room, []models.Participant, error) {
	current, err := s.repo.GetRoom(ctx, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	participants, err := s.repo.ListParticipants(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	return current, participants, nil
}

// SetHost moves the host flag to another participant, keeping exactly one
// host per room.
func (s *Service) SetHost(ctx context.Context, roomID, newHostID uuid.UUID) error {
	return sqlutil.Run(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.repo.WithTx(tx)
		participants, err := repo.ListParticipants(ctx, roomID)
		if err != nil {
			return err
		}
		for _, p := range participants {
			if err := repo.SetHost(ctx, p.ID, p.ID == newHostID); err != nil {
				return err
			}
		}
		return repo.UpdateRoomHost(ctx, roomID, newHostID)
	})
}

// Repo exposes the repository for read paths that need no room rules.
func (s *Service) Repo() *Repository {
	return s.repo
}

// LowestFreeSlot returns the smallest color slot in 1..MaxParticipants not
// held by an existing participant.
func LowestFreeSlot(participants []models.Participant) int {
	used := make(map[int]bool, len(participants))
	for _, p := range participants {
		used[p.ColorSlot] = true
	}
	for slot := 1; slot <= models.MaxParticipants; slot++ {
		if !used[slot] {
			return slot
		}
	}
	return 0
}

// ElectNextHost picks the connected participant with the lowest color slot,
// excluding the departing host. Nothing calls this automatically on
// disconnect; host failover remains a manual action.
func ElectNextHost(participants []models.Participant, departing uuid.UUID) (models.Participant, bool) {
	best := models.Participant{}
	found := false
	for _, p := range participants {
		if p.ID == departing || !p.Connected {
			continue
		}
		if !found || p.ColorSlot < best.ColorSlot {
			best = p
			found = true
		}
	}
	return best, found
}

// ValidateDisplayName applies the lobby's name rules.
func ValidateDisplayName(name string) error {
	if name == "" {
		return ErrNameEmpty
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return ErrNameTooLong
	}
	return nil
}
