package bridge

import (
	"github.com/sirupsen/logrus"

	applog "github.com/darkkaiser/capture-server/pkg/log"
)

// Sender 봉투를 전송 계층으로 내보내는 송신부입니다.
//
// 전송은 Fire-and-Forget입니다. 전송 계층이 없거나 사용 불가능한 상태,
// 그리고 전달 실패는 모두 로그만 남기고 조용히 무시됩니다. 전송 문제로
// 추출 루프가 실패해서는 안 됩니다.
type Sender struct {
	transport Transport
	log       *logrus.Entry
}

// NewSender 주어진 전송 계층을 사용하는 Sender를 생성합니다. transport는 nil일 수 있습니다.
func NewSender(transport Transport) *Sender {
	return &Sender{
		transport: transport,
		log:       applog.WithComponent("bridge.sender"),
	}
}

// Send 봉투를 전송합니다. 어떤 경우에도 에러를 반환하지 않습니다.
func (s *Sender) Send(envelope *Envelope) {
	if envelope == nil {
		return
	}

	if s.transport == nil || !s.transport.Available() {
		s.log.WithFields(logrus.Fields{
			"type":     envelope.Type,
			"retailer": envelope.Retailer,
		}).Warn("전송 계층이 사용 불가능하여 메시지를 폐기합니다.")
		return
	}

	if err := s.transport.Deliver(envelope); err != nil {
		s.log.WithFields(logrus.Fields{
			"type":     envelope.Type,
			"retailer": envelope.Retailer,
		}).WithError(err).Warn("메시지 전달이 실패하여 폐기합니다.")
	}
}
