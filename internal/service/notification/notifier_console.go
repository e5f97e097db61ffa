package notification

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/darkkaiser/capture-server/internal/service/contract"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

// consoleNotifierID 알림 채널이 하나도 설정되지 않은 경우에 사용하는 대체 채널의 ID입니다.
const consoleNotifierID contract.NotifierID = "console"

// consoleNotifier 알림 메시지를 로그로만 출력하는 대체 알림 채널입니다.
// 외부 채널 설정 없이도 알림 경로가 항상 존재하도록 보장합니다.
type consoleNotifier struct {
	notifier
}

func newConsoleNotifier() *consoleNotifier {
	return &consoleNotifier{
		notifier: newNotifier(consoleNotifierID, 10),
	}
}

func (n *consoleNotifier) Run(notificationStopCtx context.Context, notificationStopWaiter *sync.WaitGroup) {
	defer notificationStopWaiter.Done()

	for {
		select {
		case request := <-n.requestC:
			if request == nil {
				continue
			}

			entry := applog.WithComponentAndFields("notification.console", log.Fields{
				"title": request.title,
			})
			if request.errorOccurred {
				entry.Error(request.message)
			} else {
				entry.Info(request.message)
			}

		case <-notificationStopCtx.Done():
			close(n.requestC)
			n.requestC = nil

			return
		}
	}
}
