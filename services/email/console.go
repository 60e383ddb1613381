package email

import (
	"fmt"
	"io"

	"github.com/trezcool/shule/core"
)

// consoleService writes outgoing emails to a writer instead of sending them.
// Used in development and tests.
type consoleService struct {
	out io.Writer
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(out io.Writer) core.EmailService {
	return &consoleService{out: out}
}

func (svc *consoleService) SendMessages(messages ...*core.EmailMessage) error {
	for _, msg := range messages {
		if !msg.HasRecipients() {
			continue
		}
		fmt.Fprintf(svc.out, "---------- EMAIL ----------\n")
		fmt.Fprintf(svc.out, "From: %s\n", core.Conf.DefaultFromEmail.String())
		for _, to := range msg.To {
			fmt.Fprintf(svc.out, "To: %s\n", to.String())
		}
		fmt.Fprintf(svc.out, "Subject: %s\n\n%s\n", msg.Subject, msg.Body)
		fmt.Fprintf(svc.out, "---------------------------\n")
	}
	return nil
}
