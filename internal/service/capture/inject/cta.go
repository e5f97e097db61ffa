package inject

import "sync"

// Activation 컨트롤의 Idle/Busy 상태 전이를 관리합니다.
//
// 추출이 진행되는 동안 컨트롤은 Busy 상태가 되며, 이 동안의 추가 활성화는
// 무시됩니다. 추출이 어떤 경로로 끝나더라도(성공, 실패, 패닉) 상태는 반드시
// Idle로 복원됩니다.
type Activation struct {
	mu   sync.Mutex
	busy bool
}

// NewActivation Idle 상태의 Activation을 생성합니다.
func NewActivation() *Activation {
	return &Activation{}
}

// Busy 현재 추출이 진행 중인지 확인합니다.
func (a *Activation) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

// TryRun Busy 상태가 아니면 fn을 실행합니다.
//
// 이미 Busy 상태라서 실행이 무시된 경우 false를 반환합니다.
// fn이 패닉하더라도 상태는 Idle로 복원됩니다.
func (a *Activation) TryRun(fn func() error) (ran bool, err error) {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return false, nil
	}
	a.busy = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.busy = false
		a.mu.Unlock()
	}()

	return true, fn()
}
