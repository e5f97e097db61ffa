// Package signal 페이지 변경을 감지하는 통합 신호 원천을 제공합니다.
//
// 추출 루프는 신호의 발생 방식(주기적 폴링, 변경 이벤트 구독)을 알지 못하며,
// 어느 원천이든 "페이지를 다시 평가하라"는 동일한 신호 채널로 소비합니다.
// 신호는 병합(Coalescing)됩니다. 소비가 지연되는 동안 발생한 다수의 변경은
// 한 번의 재평가로 충분하므로 신호 하나로 합쳐집니다.
package signal

import (
	"sync"
	"time"
)

// Source 페이지 변경 신호의 원천입니다.
type Source interface {
	// C 신호 채널을 반환합니다. 수신 시마다 페이지를 다시 평가해야 합니다.
	C() <-chan struct{}

	// Stop 신호 발생을 중지합니다. 여러 번 호출해도 안전합니다.
	Stop()
}

// Poller 일정 주기마다 신호를 발생시키는 원천입니다.
// DOM 변경 이벤트를 신뢰할 수 없는 사이트에서 사용합니다.
type Poller struct {
	ticker   *time.Ticker
	ch       chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewPoller 주어진 주기로 신호를 발생시키는 Poller를 생성합니다.
func NewPoller(interval time.Duration) *Poller {
	p := &Poller{
		ticker: time.NewTicker(interval),
		ch:     make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-p.done:
				return
			case <-p.ticker.C:
				p.notify()
			}
		}
	}()

	return p
}

func (p *Poller) notify() {
	select {
	case p.ch <- struct{}{}:
	default: // 소비되지 않은 신호가 남아있으면 병합
	}
}

func (p *Poller) C() <-chan struct{} {
	return p.ch
}

func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.ticker.Stop()
		close(p.done)
	})
}

// Notifier 외부 이벤트(DOM 변경 감지 등)를 신호로 변환하는 원천입니다.
type Notifier struct {
	ch       chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewNotifier 이벤트 기반 신호 원천을 생성합니다.
func NewNotifier() *Notifier {
	return &Notifier{
		ch:   make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Notify 페이지 변경 이벤트를 신호로 전달합니다. 호출을 블로킹하지 않으며,
// 소비되지 않은 신호가 남아있으면 병합됩니다. Stop 이후의 호출은 무시됩니다.
func (n *Notifier) Notify() {
	select {
	case <-n.done:
		return
	default:
	}

	select {
	case n.ch <- struct{}{}:
	default:
	}
}

func (n *Notifier) C() <-chan struct{} {
	return n.ch
}

func (n *Notifier) Stop() {
	n.stopOnce.Do(func() {
		close(n.done)
	})
}
