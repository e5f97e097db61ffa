// Package config 애플리케이션의 환경설정 로드 및 검증을 담당합니다.
//
// 설정은 기본값 → JSON 설정 파일 → 환경 변수 순으로 로드되며, 뒤의 값이 앞의 값을 덮어씁니다.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "capture-server"

	// DefaultFilename 실행 인자로 명시적인 경로가 제공되지 않을 경우 탐색하는 기본 설정 파일명입니다.
	DefaultFilename = AppName + ".json"

	// 캡처 엔진 기본값
	DefaultSettleDelay  = "500ms" // 페이지 상태 안정화 대기 시간
	DefaultPollInterval = "1s"    // 페이지 분류 재평가 주기
	DefaultNavTimeout   = "30s"   // 브라우저 탐색 제한 시간

	// 원격 상품 가져오기 서비스 기본값
	DefaultImportTimeout  = "10s"
	DefaultImportCacheTTL = "10m"
)

// AppConfig 애플리케이션의 모든 설정을 관장하는 최상위 루트 구조체
type AppConfig struct {
	Debug     bool             `json:"debug"`
	Browser   BrowserConfig    `json:"browser"`
	Retailers []RetailerConfig `json:"retailers"`
	BridgeAPI BridgeAPIConfig  `json:"bridge_api"`
	Notifiers NotifierConfig   `json:"notifiers"`
	Importer  ImporterConfig   `json:"importer"`
	Storage   StorageConfig    `json:"storage"`
	Share     ShareConfig      `json:"share"`
}

// validate 설정 파일 로드 직후, 각 설정 항목의 정합성과 필수 값의 유효성을 검증합니다.
func (c *AppConfig) validate() error {
	if err := c.Browser.validate(); err != nil {
		return err
	}

	if err := c.validateRetailers(); err != nil {
		return err
	}

	if err := c.BridgeAPI.validate(); err != nil {
		return err
	}

	notifierIDs, err := c.Notifiers.validate()
	if err != nil {
		return err
	}

	if err := c.Importer.validate(notifierIDs); err != nil {
		return err
	}

	return nil
}

func (c *AppConfig) validateRetailers() error {
	if err := checkUniqueField(c.Retailers, "ID", "Retailer"); err != nil {
		return err
	}

	for _, r := range c.Retailers {
		if err := validateStruct(r, fmt.Sprintf("Retailer['%s']", r.ID)); err != nil {
			return err
		}

		if r.Signal != "" && r.Signal != "poll" && r.Signal != "mutation" {
			return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("Retailer['%s']의 페이지 변경 감지 방식(signal)은 'poll' 또는 'mutation'이어야 합니다: '%s'", r.ID, r.Signal))
		}

		if r.PollInterval != "" {
			if _, err := time.ParseDuration(r.PollInterval); err != nil {
				return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("Retailer['%s']의 분류 재평가 주기(poll_interval) 설정이 올바르지 않습니다: '%s'", r.ID, r.PollInterval))
			}
		}
	}

	return nil
}

// VerifyRecommendations 서비스 운영의 안정성을 위해 권장되는 설정 준수 여부를 진단합니다.
// 강제적인 에러를 발생시키지는 않으나, 잠재적 위험 요소에 대한 경고 메시지를 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	if c.BridgeAPI.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 이 경우 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.BridgeAPI.ListenPort))
	}

	if c.Debug {
		warnings = append(warnings, "Debug 모드가 활성화되어 있습니다. 운영 환경에서는 비활성화를 권장합니다")
	}

	return warnings
}

// BrowserConfig 내장 브라우저(헤드리스 Chrome) 세션 설정 구조체
type BrowserConfig struct {
	Headless    bool   `json:"headless"`
	UserAgent   string `json:"user_agent"`
	NavTimeout  string `json:"nav_timeout"`
	SettleDelay string `json:"settle_delay"` // 추출 전 페이지 상태가 안정화되기를 기다리는 시간
}

func (c *BrowserConfig) validate() error {
	if c.NavTimeout != "" {
		if _, err := time.ParseDuration(c.NavTimeout); err != nil {
			return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("브라우저 탐색 제한 시간(nav_timeout) 설정이 올바르지 않습니다: '%s' (예: 30s)", c.NavTimeout))
		}
	}
	if _, err := time.ParseDuration(c.SettleDelay); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("페이지 안정화 대기 시간(settle_delay) 설정이 올바르지 않습니다: '%s' (예: 500ms)", c.SettleDelay))
	}
	return nil
}

// SettleDelayDuration 파싱된 페이지 안정화 대기 시간을 반환합니다.
// validate()를 통과한 설정에서만 호출해야 합니다.
func (c *BrowserConfig) SettleDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.SettleDelay)
	return d
}

// NavTimeoutDuration 파싱된 브라우저 탐색 제한 시간을 반환합니다. 미설정 시 기본값을 사용합니다.
func (c *BrowserConfig) NavTimeoutDuration() time.Duration {
	if c.NavTimeout == "" {
		d, _ := time.ParseDuration(DefaultNavTimeout)
		return d
	}
	d, _ := time.ParseDuration(c.NavTimeout)
	return d
}

// RetailerConfig 캡처 대상 소매점 하나를 정의하는 설정 구조체
type RetailerConfig struct {
	ID       string `json:"id" validate:"required"`
	Enabled  bool   `json:"enabled"`
	StartURL string `json:"start_url" validate:"omitempty,url"`

	// Signal 페이지 변경 감지 방식 ("poll" 또는 "mutation", 기본값 "poll")
	Signal string `json:"signal"`

	// PollInterval 페이지 분류 재평가 주기 (Signal이 "poll"인 경우에만 사용)
	PollInterval string `json:"poll_interval"`
}

// PollIntervalDuration 파싱된 분류 재평가 주기를 반환합니다. 미설정 시 기본값을 사용합니다.
func (c *RetailerConfig) PollIntervalDuration() time.Duration {
	if c.PollInterval == "" {
		d, _ := time.ParseDuration(DefaultPollInterval)
		return d
	}
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// BridgeAPIConfig 호스트 수신부용 REST API 서버 설정 구조체
type BridgeAPIConfig struct {
	ListenPort int `json:"listen_port" validate:"min=1,max=65535"`

	// RateLimit 클라이언트 IP당 초당 허용 요청 수 (0: 제한 없음)
	RateLimit float64 `json:"rate_limit"`

	// RateBurst 순간적으로 허용하는 최대 요청 수
	RateBurst int `json:"rate_burst"`
}

func (c *BridgeAPIConfig) validate() error {
	if err := validateStruct(c, "BridgeAPI"); err != nil {
		return err
	}
	if c.RateLimit < 0 {
		return apperrors.New(apperrors.InvalidInput, "API 요청 제한(rate_limit)은 0 이상이어야 합니다")
	}
	if c.RateBurst < 0 {
		return apperrors.New(apperrors.InvalidInput, "API 순간 허용 요청 수(rate_burst)는 0 이상이어야 합니다")
	}
	return nil
}

// NotifierConfig 텔레그램 등 다양한 알림 채널을 정의하는 설정 구조체
type NotifierConfig struct {
	DefaultNotifierID string           `json:"default_notifier_id"`
	Telegrams         []TelegramConfig `json:"telegrams"`
}

func (c *NotifierConfig) validate() ([]string, error) {
	if err := checkUniqueField(c.Telegrams, "ID", "Notifier"); err != nil {
		return nil, err
	}

	for _, telegram := range c.Telegrams {
		if err := validateStruct(telegram, fmt.Sprintf("Telegram Notifier['%s']", telegram.ID)); err != nil {
			return nil, err
		}
	}

	var notifierIDs []string
	for _, telegram := range c.Telegrams {
		notifierIDs = append(notifierIDs, telegram.ID)
	}

	// Notifier가 하나도 정의되지 않은 경우 콘솔 알림으로 대체되므로 기본 ID 검사를 생략합니다.
	if len(notifierIDs) > 0 && !slices.Contains(notifierIDs, c.DefaultNotifierID) {
		return nil, apperrors.New(apperrors.NotFound, fmt.Sprintf("기본 NotifierID('%s')가 정의된 Notifier 목록에 존재하지 않습니다", c.DefaultNotifierID))
	}

	return notifierIDs, nil
}

// TelegramConfig 텔레그램 봇 토큰 및 채팅 ID 정보를 담는 설정 구조체
type TelegramConfig struct {
	ID       string `json:"id" validate:"required"`
	BotToken string `json:"bot_token" validate:"required,telegram_bot_token"`
	ChatID   int64  `json:"chat_id" validate:"required"`
}

// ImporterConfig 원격 상품 가져오기(Import) 서비스 연동 설정 구조체
type ImporterConfig struct {
	Endpoint string `json:"endpoint" validate:"omitempty,url"`
	Timeout  string `json:"timeout"`
	CacheTTL string `json:"cache_ttl"`

	// RateLimit 원격 서비스 호출의 초당 허용 요청 수 (0: 제한 없음)
	RateLimit float64 `json:"rate_limit"`

	Refresh struct {
		Runnable   bool   `json:"runnable"`
		TimeSpec   string `json:"time_spec"`
		NotifierID string `json:"notifier_id"`
	} `json:"refresh"`
}

func (c *ImporterConfig) validate(notifierIDs []string) error {
	if err := validateStruct(c, "Importer"); err != nil {
		return err
	}

	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("Importer 제한 시간(timeout) 설정이 올바르지 않습니다: '%s'", c.Timeout))
		}
	}
	if c.CacheTTL != "" {
		if _, err := time.ParseDuration(c.CacheTTL); err != nil {
			return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("Importer 캐시 유효 시간(cache_ttl) 설정이 올바르지 않습니다: '%s'", c.CacheTTL))
		}
	}

	if c.Refresh.Runnable {
		if _, err := cron.ParseStandard(c.Refresh.TimeSpec); err != nil {
			return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("Importer 갱신 스케줄(time_spec) 설정이 유효하지 않습니다: '%s'", c.Refresh.TimeSpec))
		}
		if c.Refresh.NotifierID != "" && !slices.Contains(notifierIDs, c.Refresh.NotifierID) {
			return apperrors.New(apperrors.NotFound, fmt.Sprintf("Importer에서 참조하는 NotifierID('%s')가 정의되지 않았습니다", c.Refresh.NotifierID))
		}
	}

	return nil
}

// TimeoutDuration 파싱된 원격 호출 제한 시간을 반환합니다. 미설정 시 기본값을 사용합니다.
func (c *ImporterConfig) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		d, _ := time.ParseDuration(DefaultImportTimeout)
		return d
	}
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// CacheTTLDuration 파싱된 캐시 유효 시간을 반환합니다. 미설정 시 기본값을 사용합니다.
func (c *ImporterConfig) CacheTTLDuration() time.Duration {
	if c.CacheTTL == "" {
		d, _ := time.ParseDuration(DefaultImportCacheTTL)
		return d
	}
	d, _ := time.ParseDuration(c.CacheTTL)
	return d
}

// StorageConfig 추출 결과 스냅샷 저장 설정 구조체
type StorageConfig struct {
	// Dir 스냅샷 파일이 저장될 디렉토리 경로 (빈 문자열: 저장 비활성화)
	Dir string `json:"dir"`
}

// ShareConfig 외부 공유 인텐트로 전달된 URL의 검증 설정 구조체
type ShareConfig struct {
	// DebugURL 검증을 우회하고 합성 데이터로 플로우를 점검하기 위한 지정된 디버그 URL
	DebugURL string `json:"debug_url"`
}

// Load 기본 설정 파일을 읽어 애플리케이션 설정을 로드합니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 지정된 경로의 설정 파일을 읽어 AppConfig 객체를 생성합니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	k := koanf.New(".")

	// 1. 기본값 로드 (가장 낮은 우선순위)
	err := k.Load(confmap.Provider(map[string]interface{}{
		"browser.headless":     true,
		"browser.settle_delay": DefaultSettleDelay,
		"importer.timeout":     DefaultImportTimeout,
		"importer.cache_ttl":   DefaultImportCacheTTL,
	}, "."), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일 로드 (기본값 덮어쓰기)
	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
		}
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
	}

	// 3. 환경 변수 로드 (최우선 순위, JSON 설정 덮어쓰기)
	// 접두사: CAPTURE_
	// 구분자: 이중 언더스코어(__)를 점(.)으로 변환 (계층 구조 표현)
	// 예: CAPTURE_BRIDGE_API__LISTEN_PORT -> bridge_api.listen_port
	if err := k.Load(env.Provider("CAPTURE_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "CAPTURE_")
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 4. 구조체 언마샬링 (Strict Validation 적용)
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			ErrorUnused:      true, // 파일에 존재하지만 구조체에 없는 필드가 있을 경우 에러를 발생시킴
			WeaklyTypedInput: true,
		},
	}
	var appConfig AppConfig
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	// 5. 유효성 검사 수행 (정합성 체크)
	if err := appConfig.validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일('%s')의 유효성 검증에 실패했습니다", filename))
	}

	return &appConfig, nil
}
