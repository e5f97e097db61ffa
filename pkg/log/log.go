// Package log 애플리케이션 전역에서 사용하는 구조적 로깅 시스템입니다.
//
// Logrus를 기반으로 레벨별 파일 분리(Main/Critical/Verbose), 로그 로테이션,
// component 필드 기반의 일관된 구조적 로깅을 제공합니다.
package log

import (
	log "github.com/sirupsen/logrus"
)

// SetDebugMode Debug 모드에 따라 로그 레벨을 설정합니다.
// - Debug 모드: Trace 레벨 (모든 로그 출력)
// - 운영 모드: Info 레벨 (Info, Warn, Error, Fatal만 출력)
func SetDebugMode(debug bool) {
	if debug {
		log.SetLevel(log.TraceLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// MaskSensitiveData 민감한 정보를 마스킹합니다.
// 토큰, 키 등의 민감 정보를 안전하게 로깅하기 위해 사용합니다.
func MaskSensitiveData(data string) string {
	if data == "" {
		return ""
	}

	if len(data) <= 3 {
		return "***"
	}

	if len(data) <= 12 {
		return data[:4] + "***"
	}

	return data[:4] + "***" + data[len(data)-4:]
}

// WithComponent component 필드를 포함한 로그 Entry를 반환합니다.
// 모든 로그에 component 필드를 일관되게 추가하기 위해 사용합니다.
func WithComponent(component string) *log.Entry {
	return log.WithFields(log.Fields{
		"component": component,
	})
}

// WithComponentAndFields component 필드와 추가 필드를 포함한 로그 Entry를 반환합니다.
func WithComponentAndFields(component string, fields log.Fields) *log.Entry {
	newFields := make(log.Fields, len(fields)+1)
	for k, v := range fields {
		newFields[k] = v
	}
	newFields["component"] = component
	return log.WithFields(newFields)
}

// StandardLogger 전역 logrus 로거를 반환합니다.
// Printf 스타일의 로거를 요구하는 외부 라이브러리(cron 등)와의 연동에 사용합니다.
func StandardLogger() *log.Logger {
	return log.StandardLogger()
}

// WithError error 필드를 포함한 로그 Entry를 반환합니다.
func WithError(err error) *log.Entry {
	return log.WithError(err)
}

// WithFields 필드를 포함한 로그 Entry를 반환합니다.
func WithFields(fields Fields) *log.Entry {
	return log.WithFields(fields)
}

// 전역 로거로 위임하는 패키지 레벨 로깅 함수들입니다.
var (
	Trace  = log.Trace
	Tracef = log.Tracef
	Debug  = log.Debug
	Debugf = log.Debugf
	Info   = log.Info
	Infof  = log.Infof
	Warn   = log.Warn
	Warnf  = log.Warnf
	Error  = log.Error
	Errorf = log.Errorf
	Fatal  = log.Fatal
	Fatalf = log.Fatalf
	Panic  = log.Panic
	Panicf = log.Panicf
)
