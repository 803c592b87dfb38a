// Package contactlink builds the wa.me link the shop owner receives for each
// accepted booking.
package contactlink

import (
	"fmt"
	"strings"

	"motoagenda/pkg/model"

	"github.com/nyaruka/phonenumbers"
)

const (
	baseURL          = "https://wa.me/"
	emptyDescription = "N/A"
	messageTemplate  = "\n*Nome:*  %s\n\n*Telefone:*  %s\n\n*Veículo:*  %s\n\n*Serviço:*  %s\n\n*Descrição:*  %s\n\n*Data:*  %s\n\n*Hora:*  %s\n  "
)

type Builder struct {
	ownerPhone string
}

// NewBuilder validates the owner's number and keeps it as the digits-only
// E.164 form wa.me expects.
func NewBuilder(ownerPhone string) (*Builder, error) {
	normalized, err := NormalizeOwnerPhone(ownerPhone)
	if err != nil {
		return nil, err
	}
	return &Builder{ownerPhone: normalized}, nil
}

func (b *Builder) OwnerPhone() string {
	return b.ownerPhone
}

func (b *Builder) Build(appt *model.Appointment) string {
	return baseURL + b.ownerPhone + "?text=" + EncodeURIComponent(Message(appt))
}

// Message renders the owner notification text for appt.
func Message(appt *model.Appointment) string {
	description := appt.Description
	if description == "" {
		description = emptyDescription
	}
	return fmt.Sprintf(messageTemplate,
		appt.Name,
		appt.Phone,
		appt.Vehicle,
		appt.ServiceType,
		description,
		appt.Date,
		appt.Time,
	)
}

func NormalizeOwnerPhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", fmt.Errorf("owner phone cannot be empty")
	}
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	parsed, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return "", fmt.Errorf("invalid owner phone %q: %w", phone, err)
	}
	if !phonenumbers.IsPossibleNumber(parsed) {
		return "", fmt.Errorf("invalid owner phone %q: not a possible number", phone)
	}

	return strings.TrimPrefix(phonenumbers.Format(parsed, phonenumbers.E164), "+"), nil
}
