package extract

import (
	"github.com/darkkaiser/capture-server/internal/service/capture/page"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
	"github.com/darkkaiser/capture-server/pkg/strutil"
)

// Specs 상품 사양 표를 항목명-값 맵으로 추출합니다.
//
// 프로파일에 행 셀렉터가 정의되지 않았거나 표를 찾지 못하면 빈 맵을 반환합니다.
func Specs(doc page.Document, rules profile.SpecRules) map[string]string {
	specs := map[string]string{}
	if rules.Row == "" {
		return specs
	}

	for _, row := range doc.Find(rules.Row) {
		keyEl := row.First(rules.Key)
		valueEl := row.First(rules.Value)
		if keyEl == nil || valueEl == nil {
			continue
		}

		key := strutil.Trim(keyEl.Text())
		value := strutil.Trim(valueEl.Text())
		if key == "" || value == "" {
			continue
		}

		specs[key] = value
	}

	return specs
}
