// Package share 외부 공유 인텐트로 전달된 자유 형식 텍스트에서 소매점 상품 URL을
// 추출하고 검증하여, 원격 가져오기 서비스를 통해 상품 정보로 변환합니다.
//
// 변환된 상품 정보는 페이지 내 추출 결과와 동일한 경로(Bridge 봉투)로 분배되므로
// 하위 소비자는 데이터의 출처를 구분할 필요가 없습니다.
package share

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/darkkaiser/capture-server/internal/config"
	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
	"github.com/darkkaiser/capture-server/internal/service/bridge"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
	"github.com/darkkaiser/capture-server/internal/service/contract"
	"github.com/darkkaiser/capture-server/internal/service/importer"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

// component Share 처리부의 로깅용 컴포넌트 이름
const component = "share.resolver"

// urlPattern 자유 형식 텍스트에서 http/https URL을 찾는 패턴
var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// ExtractURL 자유 형식 텍스트에서 첫 번째 http/https URL을 추출합니다.
// URL이 없으면 빈 문자열을 반환합니다.
func ExtractURL(text string) string {
	found := urlPattern.FindString(text)

	// 문장 끝에 붙은 구두점은 URL의 일부가 아니므로 제거합니다.
	return strings.TrimRight(found, ".,;:!?)")
}

// Resolver 공유된 텍스트를 상품 정보로 변환하는 처리부입니다.
type Resolver struct {
	shareConfig *config.ShareConfig

	registry *profile.Registry

	client *importer.Client

	sender *bridge.Sender
}

// NewResolver 새로운 Resolver 인스턴스를 생성합니다.
// sender가 nil이면 변환된 상품 정보의 분배는 생략되고 호출자에게만 반환됩니다.
func NewResolver(shareConfig *config.ShareConfig, registry *profile.Registry, client *importer.Client, sender *bridge.Sender) *Resolver {
	if shareConfig == nil {
		panic("ShareConfig는 필수입니다")
	}
	if registry == nil {
		panic("Registry는 필수입니다")
	}
	if client == nil {
		panic("Client는 필수입니다")
	}

	return &Resolver{
		shareConfig: shareConfig,

		registry: registry,

		client: client,

		sender: sender,
	}
}

// Resolve 공유된 텍스트에서 상품 URL을 추출하여 검증한 후, 원격 가져오기
// 서비스를 통해 상품 정보로 변환하고 Bridge 경로로 분배합니다.
//
// 지정된 디버그 URL은 검증과 원격 호출을 모두 우회하고 합성 상품 정보를 반환합니다.
func (r *Resolver) Resolve(ctx context.Context, text string) (*contract.ExtractedProduct, error) {
	pageURL := ExtractURL(text)
	if pageURL == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "공유된 텍스트에서 상품 URL을 찾을 수 없습니다")
	}

	if r.shareConfig.DebugURL != "" && pageURL == r.shareConfig.DebugURL {
		applog.WithComponent(component).Info("디버그 URL이 감지되어 합성 상품 정보로 응답합니다")

		product := syntheticProduct(pageURL)
		r.dispatch(product)
		return product, nil
	}

	matched, err := r.matchRetailer(pageURL)
	if err != nil {
		return nil, err
	}

	product, err := r.client.Import(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	product.Retailer = matched.ID

	applog.WithComponentAndFields(component, applog.Fields{
		"retailer": matched.ID,
		"sku":      product.SKU,
	}).Info("공유된 상품 URL의 변환이 완료되었습니다")

	r.dispatch(product)

	return product, nil
}

// matchRetailer URL의 호스트 이름을 등록된 소매점 프로파일과 대조합니다.
func (r *Resolver) matchRetailer(pageURL string) (*profile.Profile, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "공유된 상품 URL을 해석할 수 없습니다")
	}

	matched := r.registry.FindByHost(parsed.Hostname())
	if matched == nil {
		return nil, apperrors.Newf(apperrors.InvalidInput, "지원하지 않는 소매점의 URL입니다: '%s'", parsed.Hostname())
	}

	return matched, nil
}

func (r *Resolver) dispatch(product *contract.ExtractedProduct) {
	if r.sender == nil {
		return
	}

	envelope, err := bridge.NewProductEnvelope(product)
	if err != nil {
		applog.WithComponent(component).WithError(err).Error("상품 봉투 생성이 실패하여 분배를 생략합니다")
		return
	}
	r.sender.Send(envelope)
}

// syntheticProduct 디버그 URL 요청 시 반환되는 합성 상품 정보를 생성합니다.
func syntheticProduct(pageURL string) *contract.ExtractedProduct {
	product := contract.NewExtractedProduct()
	product.SKU = "DEBUG-0001"
	product.Title = "Debug Product"
	product.Brand = "Debug"
	product.Price = "1.00"
	product.URL = pageURL
	product.StockStatus = contract.StockStatusInStock
	return product
}
