// Package notification 알림 채널(텔레그램, 콘솔)을 관리하고 비동기 알림 발송을 제공합니다.
package notification

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/darkkaiser/capture-server/internal/service/contract"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

// notifyRequest 내부 채널을 통해 전달되는 알림 데이터입니다.
type notifyRequest struct {
	title         string
	message       string
	errorOccurred bool
}

// notifierHandler 개별 알림 채널의 공통 인터페이스입니다.
type notifierHandler interface {
	ID() contract.NotifierID

	// Notify 메시지를 발송 큐에 등록합니다. 등록 성공 여부를 반환합니다.
	Notify(request *notifyRequest) bool

	// Run 채널의 발송 루프를 시작합니다. notificationStopCtx가 취소되면 종료합니다.
	Run(notificationStopCtx context.Context, notificationStopWaiter *sync.WaitGroup)
}

// notifier notifierHandler의 기본 구현체입니다.
// 공통적인 큐 등록 로직을 제공하며, 구체적인 채널 구현체에 임베딩되어 사용됩니다.
type notifier struct {
	id contract.NotifierID

	requestC chan *notifyRequest
}

func newNotifier(id contract.NotifierID, bufferSize int) notifier {
	return notifier{
		id:       id,
		requestC: make(chan *notifyRequest, bufferSize),
	}
}

func (n *notifier) ID() contract.NotifierID {
	return n.id
}

// Notify 메시지를 큐에 등록하여 비동기 발송을 요청합니다.
// 채널이 닫히는 시점과 경합하여 패닉이 발생해도 recover하여 안정성을 유지합니다.
func (n *notifier) Notify(request *notifyRequest) (succeeded bool) {
	defer func() {
		if r := recover(); r != nil {
			succeeded = false

			applog.WithComponentAndFields("notification.service", log.Fields{
				"notifier_id": n.ID(),
				"panic":       r,
			}).Error("알림메시지 발송중에 panic 발생")
		}
	}()

	if n.requestC == nil {
		return false
	}

	n.requestC <- request

	return true
}
