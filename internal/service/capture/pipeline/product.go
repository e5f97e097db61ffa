package pipeline

import (
	"github.com/darkkaiser/capture-server/internal/service/capture/extract"
	"github.com/darkkaiser/capture-server/internal/service/capture/page"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
	"github.com/darkkaiser/capture-server/internal/service/contract"
)

// Product 상품 페이지 문서에서 상품 스냅샷을 추출합니다.
//
// 모든 필드 추출기는 실패 시 문서화된 기본값을 반환하므로, 반환되는 스냅샷은
// 항상 완전한 형태입니다. 에러는 파이프라인 수준의 실행 실패에서만 발생합니다.
func Product(doc page.Document, p *profile.Profile) (product *contract.ExtractedProduct, err error) {
	defer recoverAsError("상품 추출", &err)

	product = contract.NewExtractedProduct()
	product.Retailer = p.ID

	product.URL = extract.CanonicalURL(doc, p.Product.Canonical)
	product.SKU = extract.SKU(doc, p)
	product.Title = extract.Title(doc, p.Product.Title)
	product.Brand = extract.Brand(doc, p.Product.Brand)
	product.Price = extract.Price(doc, p)
	product.Image = extract.MainImage(doc, p.Product.MainImage)
	product.Images = extract.Images(doc, p.Product.ImageHosts)
	product.Description = extract.Description(doc, p.Product.Description)
	product.Quantity = extract.Quantity(doc, p.Product.Quantity)
	product.StockStatus = extract.Stock(doc, p.Product.Stock)
	product.SelectedOptions = extract.Options(doc, p.Product.Options)
	product.Specifications = extract.Specs(doc, p.Product.Specs)

	// 대표 이미지가 없으면 수집된 이미지 목록의 첫 번째를 사용한다.
	if product.Image == "" && len(product.Images) > 0 {
		product.Image = product.Images[0]
	}

	return product, nil
}
