package bridge

import (
	"sync"

	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
)

// ErrTransportClosed 닫힌 전송 계층으로 전달을 시도할 때 반환하는 에러입니다.
var ErrTransportClosed = apperrors.New(apperrors.Unavailable, "전송 계층이 이미 닫혀 있습니다")

// Transport 봉투를 수신측으로 운반하는 전송 계층입니다.
type Transport interface {
	// Available 전송 계층이 현재 메시지를 받을 수 있는 상태인지 확인합니다.
	Available() bool

	// Deliver 봉투를 수신측으로 전달합니다.
	Deliver(envelope *Envelope) error
}

// channelBufferSize 수신 루프가 일시적으로 지연되어도 추출 루프가 블로킹되지
// 않도록 하는 버퍼 크기입니다. 버퍼가 가득 차면 메시지는 폐기됩니다.
const channelBufferSize = 64

// ChannelTransport 같은 프로세스 안의 수신 루프로 봉투를 전달하는 전송 계층입니다.
type ChannelTransport struct {
	ch        chan *Envelope
	closeOnce sync.Once
	closed    chan struct{}
}

// NewChannelTransport 프로세스 내 전송 계층을 생성합니다.
func NewChannelTransport() *ChannelTransport {
	return &ChannelTransport{
		ch:     make(chan *Envelope, channelBufferSize),
		closed: make(chan struct{}),
	}
}

// C 수신 루프가 소비할 봉투 채널을 반환합니다.
func (t *ChannelTransport) C() <-chan *Envelope {
	return t.ch
}

func (t *ChannelTransport) Available() bool {
	select {
	case <-t.closed:
		return false
	default:
		return true
	}
}

func (t *ChannelTransport) Deliver(envelope *Envelope) error {
	select {
	case <-t.closed:
		return ErrTransportClosed
	default:
	}

	select {
	case t.ch <- envelope:
		return nil
	default:
		return apperrors.New(apperrors.Unavailable, "전송 버퍼가 가득 차서 메시지를 전달할 수 없습니다")
	}
}

// Close 전송 계층을 닫습니다. 이후의 Deliver 호출은 실패합니다.
func (t *ChannelTransport) Close() {
	t.closeOnce.Do(func() {
		close(t.closed)
	})
}
