// Package service 애플리케이션을 구성하는 장기 실행 서비스들의 공통 계약을 정의합니다.
package service

import (
	"context"
	"sync"
)

// Service 애플리케이션 생명주기 동안 실행되는 서비스의 공통 인터페이스입니다.
//
// Start()는 서비스를 시작하고 즉시 반환해야 하며, 실제 작업은 내부 고루틴에서 수행합니다.
// serviceStopCtx가 취소되면 서비스는 정리 작업을 수행한 후 serviceStopWG.Done()을 호출해야 합니다.
type Service interface {
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}
