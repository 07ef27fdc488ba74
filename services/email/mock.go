package emailsvc

import (
	"sync"

	"github.com/trezcool/darasa/core"
)

// ServiceMock collects messages instead of sending them; for tests.
type ServiceMock struct {
	mutex    sync.Mutex
	Messages []*core.EmailMessage
}

var _ core.EmailService = (*ServiceMock)(nil)

func NewServiceMock() *ServiceMock {
	return &ServiceMock{}
}

func (svc *ServiceMock) SendMessages(messages ...*core.EmailMessage) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	for _, msg := range messages {
		_ = msg.Render()
		svc.Messages = append(svc.Messages, msg)
	}
}
