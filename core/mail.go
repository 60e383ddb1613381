package core

import "net/mail"

type (
	// EmailMessage is a message to be sent out via an EmailService.
	EmailMessage struct {
		To      []mail.Address
		Subject string
		Body    string
	}

	EmailService interface {
		SendMessages(messages ...*EmailMessage) error
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
