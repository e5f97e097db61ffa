package profile

import (
	"fmt"
	"sync"

	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
	"github.com/darkkaiser/capture-server/internal/service/contract"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

const component = "profile.registry"

// Registry 소매점 프로파일의 스레드 안전 저장소입니다.
//
// 각 소매점 패키지는 init() 시점에 MustRegister()를 통해 자신의 프로파일을 등록하며,
// 추출 엔진은 RetailerID 또는 호스트 이름으로 프로파일을 조회합니다.
type Registry struct {
	mu       sync.RWMutex
	profiles map[contract.RetailerID]*Profile
}

// NewRegistry 새로운 빈 Registry를 생성합니다.
func NewRegistry() *Registry {
	return &Registry{
		profiles: make(map[contract.RetailerID]*Profile),
	}
}

// defaultRegistry 전역 Registry 인스턴스
var defaultRegistry = NewRegistry()

// Register 프로파일을 Registry에 등록합니다.
func (r *Registry) Register(p *Profile) error {
	if p == nil {
		return apperrors.New(apperrors.InvalidInput, "등록할 프로파일이 nil입니다")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// 중복 등록 방지
	if _, exists := r.profiles[p.ID]; exists {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("이미 등록된 소매점 프로파일입니다: '%s'", p.ID))
	}

	r.profiles[p.ID] = p

	applog.WithComponentAndFields(component, applog.Fields{
		"retailer": p.ID,
		"hosts":    p.Hosts,
	}).Info("소매점 프로파일 등록 성공")

	return nil
}

// MustRegister 프로파일을 등록하며, 실패 시 패닉을 발생시킵니다.
//
// "Fail Fast" 원칙에 따라 애플리케이션 초기화 단계에서 잘못된 프로파일을 즉시 감지합니다.
// 각 소매점 패키지의 init() 함수에서 호출됩니다.
func (r *Registry) MustRegister(p *Profile) {
	if err := r.Register(p); err != nil {
		panic(fmt.Sprintf("초기화 치명적 오류: 소매점 프로파일 등록에 실패했습니다: %v", err))
	}
}

// Get 지정된 소매점 ID의 프로파일을 반환합니다.
func (r *Registry) Get(id contract.RetailerID) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.profiles[id]
	if !exists {
		return nil, apperrors.Wrapf(contract.ErrNotFoundRetailer, apperrors.NotFound, "소매점 ID: '%s'", id)
	}
	return p, nil
}

// FindByHost 주어진 호스트 이름에 해당하는 프로파일을 반환합니다. 없으면 nil입니다.
func (r *Registry) FindByHost(hostname string) *Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.profiles {
		if p.MatchesHost(hostname) {
			return p
		}
	}
	return nil
}

// All 등록된 모든 프로파일을 반환합니다.
func (r *Registry) All() []*Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profiles := make([]*Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		profiles = append(profiles, p)
	}
	return profiles
}

// ClearForTest Registry에 등록된 모든 프로파일을 제거합니다.
//
// 경고: 테스트 간 격리를 위한 메서드로, 프로덕션 환경에서 절대 호출되어서는 안 됩니다.
func (r *Registry) ClearForTest() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles = make(map[contract.RetailerID]*Profile)
}

// Default 전역 Registry 인스턴스를 반환합니다.
func Default() *Registry {
	return defaultRegistry
}

// MustRegister 프로파일을 전역 Registry에 등록하며, 실패 시 패닉을 발생시킵니다.
func MustRegister(p *Profile) {
	defaultRegistry.MustRegister(p)
}

// Register 프로파일을 전역 Registry에 등록합니다.
func Register(p *Profile) error {
	return defaultRegistry.Register(p)
}

// Get 전역 Registry에서 지정된 소매점 ID의 프로파일을 반환합니다.
func Get(id contract.RetailerID) (*Profile, error) {
	return defaultRegistry.Get(id)
}

// FindByHost 전역 Registry에서 주어진 호스트 이름에 해당하는 프로파일을 반환합니다.
func FindByHost(hostname string) *Profile {
	return defaultRegistry.FindByHost(hostname)
}

// All 전역 Registry에 등록된 모든 프로파일을 반환합니다.
func All() []*Profile {
	return defaultRegistry.All()
}
