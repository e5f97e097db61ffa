package extract

import (
	"strings"

	"github.com/darkkaiser/capture-server/internal/service/capture/page"
)

// Images 소매점의 정적 자산 호스트 패턴과 일치하는 모든 이미지 URL을 수집합니다.
//
// URL 기준으로 정확히 중복을 제거하며, 문서 순서를 유지합니다.
// 호스트 패턴이 정의되지 않은 프로파일은 빈 목록을 반환합니다.
func Images(doc page.Document, imageHosts []string) []string {
	images := []string{}
	if len(imageHosts) == 0 {
		return images
	}

	seen := make(map[string]bool)
	for _, img := range doc.Find("img") {
		src := img.Attr("src")
		if src == "" || seen[src] {
			continue
		}
		if !containsAnyHost(src, imageHosts) {
			continue
		}
		seen[src] = true
		images = append(images, src)
	}

	return images
}

func containsAnyHost(src string, hosts []string) bool {
	for _, host := range hosts {
		if strings.Contains(src, host) {
			return true
		}
	}
	return false
}
