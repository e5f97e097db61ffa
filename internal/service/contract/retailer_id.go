package contract

// RetailerID 캡처 대상 소매점(Retailer)의 고유 식별자입니다.
// 사이트 프로파일 등록과 환경설정에서 동일한 값을 사용합니다. (예: "homedepot")
type RetailerID string

// String RetailerID를 문자열로 반환합니다.
func (id RetailerID) String() string {
	return string(id)
}

// IsEmpty RetailerID가 비어있는지 확인합니다.
func (id RetailerID) IsEmpty() bool {
	return id == ""
}

// NotifierID 알림 발송 채널의 고유 식별자입니다.
type NotifierID string

// String NotifierID를 문자열로 반환합니다.
func (id NotifierID) String() string {
	return string(id)
}
