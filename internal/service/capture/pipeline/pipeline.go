// Package pipeline 분류된 페이지에서 상품/장바구니 스냅샷을 조립하는 추출 파이프라인입니다.
//
// 파이프라인은 문서를 입력으로 받아 완성된 데이터 모델을 반환하는 순수 함수입니다.
// 개별 필드의 추출 실패는 안전한 기본값으로 흡수되지만, 파이프라인 자체의 실행 실패
// (패닉 포함)는 에러로 변환되어 호출자에게 전달됩니다. 페이지 구조는 신뢰할 수 없는
// 입력이므로 패닉이 추출 루프 전체를 중단시켜서는 안 됩니다.
package pipeline

import (
	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
)

// recoverAsError 파이프라인 경계에서 패닉을 에러로 변환합니다.
func recoverAsError(operation string, err *error) {
	if r := recover(); r != nil {
		*err = apperrors.Newf(apperrors.ExecutionFailed, "%s 파이프라인 실행 중에 복구 불가능한 오류가 발생하였습니다: %v", operation, r)
	}
}
