package reservations

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

type Reservation struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Date        string    `bson:"date" json:"date"`
	Time        string    `bson:"time" json:"time"`
	Status      string    `bson:"status" json:"status"`
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
	ClientID    string    `bson:"clientId" json:"clientId"`
	ServiceID   string    `bson:"serviceId,omitempty" json:"serviceId,omitempty"`
	FormationID string    `bson:"formationId,omitempty" json:"formationId,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

type CreateRequest struct {
	Date        string `json:"date" validate:"required,date"`
	Time        string `json:"time" validate:"required,clock"`
	ClientID    string `json:"clientId" validate:"required"`
	ServiceID   string `json:"serviceId"`
	FormationID string `json:"formationId"`
	Notes       string `json:"notes" validate:"omitempty,max=2000"`
	// Accepted but ignored: a new reservation always starts pending.
	Status string `json:"status"`
}

type UpdateRequest struct {
	Date        *string `json:"date" validate:"omitempty,date"`
	Time        *string `json:"time" validate:"omitempty,clock"`
	ClientID    *string `json:"clientId" validate:"omitempty"`
	ServiceID   *string `json:"serviceId"`
	FormationID *string `json:"formationId"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled completed"`
}

type ListFilter struct {
	Date     string
	Status   string
	ClientID string
}
