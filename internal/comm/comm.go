package comm

import (
	"time"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

// Subjects used on the NATS bus between the engine and its collaborators.
const (
	SubjectNotify      = "notify.person"
	SubjectPlayerEdge  = "network.played_together"
	SubjectClockState  = "game.clock_state"
	SubjectPermissions = "club.permissions"
)

// Notification asks the delivery service to reach one person.
type Notification struct {
	PersonID int64     `json:"person_id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}

// PlayerEdge is one pairwise played-together fact.
type PlayerEdge struct {
	ClubID  int64 `json:"club_id"`
	PersonA int64 `json:"person_a"`
	PersonB int64 `json:"person_b"`
	GameID  int64 `json:"game_id"`
}

// ClockFrame is one broadcast tick of a game's derived clock state.
type ClockFrame struct {
	State      *models.GameStateView `json:"state"`
	InstanceID string                `json:"instance_id"`
	At         time.Time             `json:"at"`
}

// PermissionRequest asks the membership service what an actor may do in a
// club; PermissionReply is the typed capability set it resolves to.
type PermissionRequest struct {
	ClubID   int64 `json:"club_id"`
	PersonID int64 `json:"person_id"`
}

type PermissionReply struct {
	ManageClock   bool `json:"manage_clock"`
	ManageSeating bool `json:"manage_seating"`
	RecordMoney   bool `json:"record_money"`
	LockBooks     bool `json:"lock_books"`
}
