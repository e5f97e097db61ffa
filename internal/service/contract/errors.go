package contract

import (
	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
)

var (
	// ErrServiceStopped 서비스가 이미 중지되어 요청을 처리할 수 없을 때 반환하는 에러입니다.
	ErrServiceStopped = apperrors.New(apperrors.Unavailable, "서비스가 중지되어 요청을 처리할 수 없습니다")

	// ErrNotFoundNotifier 지정된 ID의 Notifier를 찾을 수 없을 때 반환하는 에러입니다.
	ErrNotFoundNotifier = apperrors.New(apperrors.NotFound, "지정된 Notifier를 찾을 수 없습니다")

	// ErrNotFoundRetailer 지정된 ID의 소매점 프로파일을 찾을 수 없을 때 반환하는 에러입니다.
	ErrNotFoundRetailer = apperrors.New(apperrors.NotFound, "지정된 소매점 프로파일을 찾을 수 없습니다")
)
