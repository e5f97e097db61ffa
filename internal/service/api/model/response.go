// Package model Bridge API의 응답 모델을 정의합니다.
package model

// Response API 응답의 공통 형식입니다.
type Response struct {
	Result  string `json:"result"`            // "accepted", "ok" 또는 "error"
	Message string `json:"message,omitempty"` // 오류 시의 설명
}

// Accepted 메시지가 수신 큐에 등록되었음을 알리는 응답을 생성합니다.
func Accepted() Response {
	return Response{Result: "accepted"}
}

// OK 정상 처리 응답을 생성합니다.
func OK() Response {
	return Response{Result: "ok"}
}

// Error 오류 응답을 생성합니다.
func Error(message string) Response {
	return Response{Result: "error", Message: message}
}
