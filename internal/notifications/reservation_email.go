package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"eclat-backend/internal/reservations"
)

const reservationConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Bonjour {{.ClientName}},</p>
  <p>Votre reservation chez Eclat Studio est bien enregistree. Voici les details :</p>
  <ul>
    <li>Prestation : {{.TargetName}}</li>
    <li>Date : {{.Date}}</li>
    <li>Heure : {{.Time}}</li>
    <li>Numero de reservation : {{.ReservationID}}</li>
  </ul>
  <p>Nous vous contacterons pour confirmer le rendez-vous.</p>
  <p>A bientot.</p>
</body>
</html>`

var reservationConfirmationTmpl = template.Must(template.New("reservation_confirmation").Parse(reservationConfirmationTemplate))

type reservationConfirmationData struct {
	ClientName    string
	TargetName    string
	Date          string
	Time          string
	ReservationID string
}

// Recipient is the client contact resolved for a reservation.
type Recipient struct {
	Name  string
	Email string
}

// RecipientLookup resolves a client id to its contact details and
// TargetLookup resolves the booked service or formation to a display name.
// Both are wired over the mongo collections at startup, which keeps this
// package free of storage concerns.
type (
	RecipientLookup func(ctx context.Context, clientID string) (Recipient, error)
	TargetLookup    func(ctx context.Context, reservation reservations.Reservation) (string, error)
)

// ReservationMailer implements the confirmation hook of the reservations
// handler on top of the Brevo transactional email API.
type ReservationMailer struct {
	client          *BrevoClient
	lookupRecipient RecipientLookup
	lookupTarget    TargetLookup
}

func NewReservationMailer(client *BrevoClient, lookupRecipient RecipientLookup, lookupTarget TargetLookup) *ReservationMailer {
	if client == nil {
		return nil
	}
	return &ReservationMailer{
		client:          client,
		lookupRecipient: lookupRecipient,
		lookupTarget:    lookupTarget,
	}
}

func (m *ReservationMailer) SendReservationConfirmation(ctx context.Context, reservation reservations.Reservation) (string, error) {
	recipient, err := m.lookupRecipient(ctx, reservation.ClientID)
	if err != nil {
		return "", fmt.Errorf("resolve recipient: %w", err)
	}
	targetName, err := m.lookupTarget(ctx, reservation)
	if err != nil {
		return "", fmt.Errorf("resolve target: %w", err)
	}

	data := reservationConfirmationData{
		ClientName:    recipient.Name,
		TargetName:    targetName,
		Date:          reservation.Date,
		Time:          reservation.Time,
		ReservationID: reservation.ID,
	}
	var buf bytes.Buffer
	if err := reservationConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	subject := fmt.Sprintf("Confirmation de reservation - %s", targetName)
	return m.client.sendHTML(ctx, recipient.Email, recipient.Name, subject, buf.String())
}
