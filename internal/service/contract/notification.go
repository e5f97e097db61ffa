package contract

// NotificationSender 알림 발송 기능을 제공하는 인터페이스입니다.
// 호스트 수신부와 캡처 서비스는 이 인터페이스를 통해 알림 서비스를 사용합니다.
type NotificationSender interface {
	// Notify 지정된 Notifier를 통해 알림 메시지를 발송합니다.
	// 발송 요청이 정상적으로 큐에 등록되면 nil을 반환합니다. (실제 전송 결과와는 무관)
	Notify(notifierID NotifierID, title string, message string, errorOccurred bool) error

	// NotifyDefault 시스템에 설정된 기본 Notifier를 통해 알림 메시지를 발송합니다.
	NotifyDefault(message string) error

	// NotifyDefaultWithError 기본 Notifier를 통해 오류 성격의 알림 메시지를 발송합니다.
	// 추출 파이프라인 실패 등 관리자의 주의가 필요한 상황에 사용합니다.
	NotifyDefaultWithError(message string) error
}
