package email

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trezcool/shule/core"
)

type sendgridService struct {
	client *sendgrid.Client
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService() core.EmailService {
	return &sendgridService{client: sendgrid.NewSendClient(core.Conf.SendgridApiKey)}
}

func (svc *sendgridService) SendMessages(messages ...*core.EmailMessage) error {
	for _, msg := range messages {
		if !msg.HasRecipients() {
			continue
		}
		from := sgmail.NewEmail(core.Conf.DefaultFromEmail.Name, core.Conf.DefaultFromEmail.Address)
		sgMsg := sgmail.NewV3Mail()
		sgMsg.SetFrom(from)
		sgMsg.Subject = msg.Subject
		p := sgmail.NewPersonalization()
		for _, to := range msg.To {
			p.AddTos(sgmail.NewEmail(to.Name, to.Address))
		}
		sgMsg.AddPersonalizations(p)
		sgMsg.AddContent(sgmail.NewContent("text/plain", msg.Body))

		resp, err := svc.client.Send(sgMsg)
		if err != nil {
			return errors.Wrap(err, "sending email")
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return errors.Errorf("sending email: sendgrid responded with %d: %s", resp.StatusCode, resp.Body)
		}
	}
	return nil
}
