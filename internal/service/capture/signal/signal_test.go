package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoller(t *testing.T) {
	t.Run("주기마다 신호 발생", func(t *testing.T) {
		p := NewPoller(10 * time.Millisecond)
		defer p.Stop()

		select {
		case <-p.C():
		case <-time.After(time.Second):
			t.Fatal("폴링 신호가 발생하지 않았습니다")
		}
	})

	t.Run("Stop은 여러 번 호출해도 안전", func(t *testing.T) {
		p := NewPoller(time.Hour)

		assert.NotPanics(t, func() {
			p.Stop()
			p.Stop()
		})
	})
}

func TestNotifier(t *testing.T) {
	t.Run("이벤트가 신호로 전달됨", func(t *testing.T) {
		n := NewNotifier()
		defer n.Stop()

		n.Notify()

		select {
		case <-n.C():
		case <-time.After(time.Second):
			t.Fatal("신호가 전달되지 않았습니다")
		}
	})

	t.Run("소비되지 않은 신호는 병합됨", func(t *testing.T) {
		n := NewNotifier()
		defer n.Stop()

		// 연속 이벤트는 블로킹 없이 신호 하나로 합쳐져야 한다.
		n.Notify()
		n.Notify()
		n.Notify()

		<-n.C()

		select {
		case <-n.C():
			t.Fatal("병합되어야 할 신호가 추가로 전달되었습니다")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("Stop 이후의 이벤트는 무시됨", func(t *testing.T) {
		n := NewNotifier()
		n.Stop()

		n.Notify()

		select {
		case <-n.C():
			t.Fatal("중지된 원천이 신호를 전달했습니다")
		case <-time.After(50 * time.Millisecond):
		}
	})
}
