// Package storage 수신된 추출 스냅샷을 JSON 파일로 보관합니다.
//
// 스냅샷은 소매점과 종류별로 구분 가능한 파일 이름으로 저장되며,
// 이후의 분석이나 재처리를 위한 원본 기록으로 사용됩니다.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iancoleman/strcase"

	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
	"github.com/darkkaiser/capture-server/internal/service/contract"
)

const (
	snapshotKindProduct = "product"
	snapshotKindCart    = "cart"

	// snapshotTimeFormat 파일 이름에 사용하는 저장 시각 형식 (밀리초까지 포함하여 충돌 방지)
	snapshotTimeFormat = "20060102_150405.000"
)

// Storage 스냅샷 파일 저장소입니다.
type Storage struct {
	dir string

	// now 테스트에서 저장 시각을 고정하기 위한 주입 지점
	now func() time.Time
}

// New 주어진 디렉터리를 사용하는 저장소를 생성합니다.
func New(dir string) *Storage {
	return &Storage{
		dir: dir,
		now: time.Now,
	}
}

// SaveProduct 상품 스냅샷을 저장하고 파일 경로를 반환합니다.
func (s *Storage) SaveProduct(product *contract.ExtractedProduct) (string, error) {
	if product == nil {
		return "", apperrors.New(apperrors.InvalidInput, "저장할 상품 스냅샷이 비어 있습니다")
	}
	return s.save(snapshotKindProduct, product.Retailer, product)
}

// SaveCart 장바구니 스냅샷을 저장하고 파일 경로를 반환합니다.
func (s *Storage) SaveCart(cart *contract.CartData) (string, error) {
	if cart == nil {
		return "", apperrors.New(apperrors.InvalidInput, "저장할 장바구니 스냅샷이 비어 있습니다")
	}
	return s.save(snapshotKindCart, cart.Retailer, cart)
}

func (s *Storage) save(kind string, retailer contract.RetailerID, snapshot any) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", apperrors.Wrap(err, apperrors.System, fmt.Sprintf("스냅샷 저장 디렉터리('%s')를 생성할 수 없습니다", s.dir))
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.Internal, "스냅샷의 직렬화가 실패하였습니다")
	}

	name := fmt.Sprintf("%s_%s_%s.json",
		strcase.ToSnake(retailerName(retailer)), kind, s.now().Format(snapshotTimeFormat))
	path := filepath.Join(s.dir, name)

	// 임시 파일에 먼저 쓴 후 이름을 변경하여, 저장 도중 중단되더라도
	// 잘린 스냅샷 파일이 남지 않도록 한다.
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.System, fmt.Sprintf("스냅샷 임시 파일의 생성이 실패하였습니다 (디렉터리: '%s')", s.dir))
	}

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", apperrors.Wrap(err, apperrors.System, fmt.Sprintf("스냅샷 파일('%s')의 저장이 실패하였습니다", path))
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", apperrors.Wrap(err, apperrors.System, fmt.Sprintf("스냅샷 파일('%s')의 저장이 실패하였습니다", path))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", apperrors.Wrap(err, apperrors.System, fmt.Sprintf("스냅샷 파일('%s')의 저장이 실패하였습니다", path))
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", apperrors.Wrap(err, apperrors.System, fmt.Sprintf("스냅샷 파일('%s')의 저장이 실패하였습니다", path))
	}

	return path, nil
}

func retailerName(retailer contract.RetailerID) string {
	if retailer.IsEmpty() {
		return "unknown"
	}
	return retailer.String()
}
