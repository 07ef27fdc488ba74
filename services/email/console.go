package emailsvc

import (
	"fmt"
	"strings"

	"github.com/trezcool/darasa/core"
)

// consoleService writes emails to stdout; for local development.
type consoleService struct {
	conf *core.Config
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) *consoleService {
	return &consoleService{conf: conf}
}

func (svc *consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if err := msg.Render(); err != nil {
			fmt.Printf("rendering email: %v\n", err)
			continue
		}
		if !(msg.HasRecipients() && msg.HasContent()) {
			continue
		}

		to := make([]string, 0, len(msg.To))
		for _, addr := range msg.To {
			to = append(to, addr.String())
		}
		fmt.Println(strings.Repeat("-", 70))
		fmt.Printf("From: %s <%s>\n", svc.conf.AppName, svc.conf.DefaultFromEmail)
		fmt.Printf("To: %s\n", strings.Join(to, ", "))
		fmt.Printf("Subject: [%s] %s\n\n", svc.conf.AppName, msg.Subject)
		fmt.Println(msg.TextContent)
		fmt.Println(strings.Repeat("-", 70))
	}
}
