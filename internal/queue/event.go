// Package queue defines the audit events emitted when fitness centers change
// and publishes them to the message broker.
package queue

import (
	"time"

	"github.com/iliyamo/fitness-center-listings/internal/model"
)

// Event types, also used as the AMQP message type.
const (
	CenterCreated = "center.created"
	CenterUpdated = "center.updated"
	CenterDeleted = "center.deleted"
)

// CenterEvent is published after a successful mutation.  It carries enough
// of the record for downstream consumers to index or audit the change
// without querying the primary database.
type CenterEvent struct {
	Type       string         `json:"type"`
	CenterID   uint64         `json:"center_id"`
	Name       string         `json:"name"`
	Category   model.Category `json:"category"`
	MonthlyFee int64          `json:"monthly_fee"`
	OwnerID    uint64         `json:"owner_id"`
	ActorID    uint64         `json:"actor_id"`
	RequestID  string         `json:"request_id,omitempty"`
	OccurredAt string         `json:"occurred_at"`
}

// NewCenterEvent snapshots fc for an event of the given type performed by
// actorID.
func NewCenterEvent(typ string, fc *model.FitnessCenter, actorID uint64, at time.Time) CenterEvent {
	return CenterEvent{
		Type:       typ,
		CenterID:   fc.ID,
		Name:       fc.Name,
		Category:   fc.Category,
		MonthlyFee: fc.MonthlyFee,
		OwnerID:    fc.OwnerID,
		ActorID:    actorID,
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
}
