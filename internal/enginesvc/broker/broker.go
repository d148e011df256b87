package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/ronheaslet/pkrnight-sub001/internal/comm"
	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/service"
)

// Broker bridges the engine to its out-of-process collaborators over NATS:
// the notification service, the player network and the membership service.
// It satisfies the service package's Notifier, PlayerNetwork and Membership
// interfaces.
type Broker struct {
	Conn       *nats.Conn
	InstanceID string
}

func NewBroker(nc *nats.Conn, instanceID string) *Broker {
	return &Broker{Conn: nc, InstanceID: instanceID}
}

func (b *Broker) publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.Conn.Publish(subject, data)
}

func (b *Broker) Notify(_ context.Context, personID int64, title, body string) error {
	return b.publish(comm.SubjectNotify, comm.Notification{
		PersonID: personID,
		Title:    title,
		Body:     body,
		SentAt:   time.Now(),
	})
}

func (b *Broker) PlayedTogether(_ context.Context, clubID, personA, personB, gameID int64) error {
	return b.publish(comm.SubjectPlayerEdge, comm.PlayerEdge{
		ClubID:  clubID,
		PersonA: personA,
		PersonB: personB,
		GameID:  gameID,
	})
}

// PublishClockState fans one derived clock frame out to displays.
func (b *Broker) PublishClockState(v *models.GameStateView) {
	frame := comm.ClockFrame{State: v, InstanceID: b.InstanceID, At: time.Now()}
	if err := b.publish(comm.SubjectClockState, frame); err != nil {
		log.Warnf("clock state publish failed for game %d: %v", v.GameID, err)
	}
}

// ResolvePermissions asks the membership service over request/reply. A club
// that does not answer in time resolves to no capabilities.
func (b *Broker) ResolvePermissions(ctx context.Context, clubID, personID int64) (*service.Permissions, error) {
	req, err := json.Marshal(comm.PermissionRequest{ClubID: clubID, PersonID: personID})
	if err != nil {
		return nil, err
	}
	msg, err := b.Conn.RequestWithContext(ctx, comm.SubjectPermissions, req)
	if err != nil {
		log.Warnf("permission lookup failed for person %d in club %d: %v", personID, clubID, err)
		return &service.Permissions{}, nil
	}
	var reply comm.PermissionReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, err
	}
	return &service.Permissions{
		ManageClock:   reply.ManageClock,
		ManageSeating: reply.ManageSeating,
		RecordMoney:   reply.RecordMoney,
		LockBooks:     reply.LockBooks,
	}, nil
}
