package quotes

import "time"

const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

type LineItem struct {
	Description string `bson:"description" json:"description"`
	Quantity    int    `bson:"quantity" json:"quantity"`
	UnitPrice   int    `bson:"unitPrice" json:"unitPrice"`
	Total       int    `bson:"total" json:"total"`
}

type Quote struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	Number    string     `bson:"number" json:"number"`
	ClientID  string     `bson:"clientId" json:"clientId"`
	Items     []LineItem `bson:"items" json:"items"`
	Subtotal  int        `bson:"subtotal" json:"subtotal"`
	Total     int        `bson:"total" json:"total"`
	Status    string     `bson:"status" json:"status"`
	IssuedAt  time.Time  `bson:"issuedAt" json:"issuedAt"`
	ValidTill *time.Time `bson:"validTill,omitempty" json:"validTill,omitempty"`
	Notes     string     `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}

type LineItemRequest struct {
	Description string `json:"description" validate:"required,max=500"`
	Quantity    int    `json:"quantity" validate:"required,gte=1"`
	UnitPrice   int    `json:"unitPrice" validate:"gte=0"`
}

type UpsertRequest struct {
	ClientID  string            `json:"clientId" validate:"required"`
	Items     []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	Status    string            `json:"status" validate:"omitempty,oneof=draft sent accepted declined"`
	ValidTill *time.Time        `json:"validTill"`
	Notes     string            `json:"notes" validate:"omitempty,max=2000"`
}

type ListFilter struct {
	ClientID string
	Status   string
}
