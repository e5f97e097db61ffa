package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile 테스트용 설정 파일을 임시 디렉토리에 생성합니다.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validConfigJSON = `{
	"debug": true,
	"browser": {
		"headless": true,
		"settle_delay": "500ms"
	},
	"retailers": [
		{"id": "homedepot", "enabled": true, "signal": "poll", "poll_interval": "1s"},
		{"id": "lowes", "enabled": true, "signal": "mutation"}
	],
	"bridge_api": {
		"listen_port": 8443,
		"rate_limit": 10,
		"rate_burst": 20
	},
	"notifiers": {
		"default_notifier_id": "admin",
		"telegrams": [
			{"id": "admin", "bot_token": "123456789:ABC-DEF1234ghIkl-zyx57W2v1u123ew11", "chat_id": 1}
		]
	},
	"importer": {
		"endpoint": "https://import.example.com/v1/products",
		"timeout": "5s",
		"cache_ttl": "10m",
		"refresh": {"runnable": true, "time_spec": "0 9 * * *", "notifier_id": "admin"}
	},
	"storage": {"dir": "./snapshots"},
	"share": {"debug_url": "https://debug.example.com/test-product"}
}`

func TestLoadWithFile(t *testing.T) {
	path := writeConfigFile(t, validConfigJSON)

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Len(t, cfg.Retailers, 2)
	assert.Equal(t, "homedepot", cfg.Retailers[0].ID)
	assert.Equal(t, 8443, cfg.BridgeAPI.ListenPort)
	assert.Equal(t, "admin", cfg.Notifiers.DefaultNotifierID)
	assert.Equal(t, 500*time.Millisecond, cfg.Browser.SettleDelayDuration())
	assert.Equal(t, 5*time.Second, cfg.Importer.TimeoutDuration())
}

func TestLoadWithFile_NotExist(t *testing.T) {
	_, err := LoadWithFile(filepath.Join(t.TempDir(), "없는파일.json"))
	assert.Error(t, err)
}

func TestLoadWithFile_UnknownField(t *testing.T) {
	// 구조체에 정의되지 않은 필드는 설정 오타로 간주하여 에러를 발생시켜야 합니다.
	path := writeConfigFile(t, `{
		"bridge_api": {"listen_port": 8443},
		"unknown_section": {"foo": 1}
	}`)

	_, err := LoadWithFile(path)
	assert.Error(t, err)
}

func TestLoadWithFile_EnvOverride(t *testing.T) {
	path := writeConfigFile(t, validConfigJSON)

	t.Setenv("CAPTURE_BRIDGE_API__LISTEN_PORT", "9090")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.BridgeAPI.ListenPort)
}

func TestAppConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate string
	}{
		{
			name: "중복된 Retailer ID",
			mutate: `{
				"retailers": [{"id": "homedepot"}, {"id": "homedepot"}],
				"bridge_api": {"listen_port": 8443},
				"browser": {"settle_delay": "500ms"}
			}`,
		},
		{
			name: "유효하지 않은 Signal 값",
			mutate: `{
				"retailers": [{"id": "homedepot", "signal": "webhook"}],
				"bridge_api": {"listen_port": 8443},
				"browser": {"settle_delay": "500ms"}
			}`,
		},
		{
			name: "범위를 벗어난 포트",
			mutate: `{
				"bridge_api": {"listen_port": 70000},
				"browser": {"settle_delay": "500ms"}
			}`,
		},
		{
			name: "잘못된 텔레그램 봇 토큰 형식",
			mutate: `{
				"bridge_api": {"listen_port": 8443},
				"browser": {"settle_delay": "500ms"},
				"notifiers": {
					"default_notifier_id": "admin",
					"telegrams": [{"id": "admin", "bot_token": "invalid", "chat_id": 1}]
				}
			}`,
		},
		{
			name: "정의되지 않은 기본 Notifier 참조",
			mutate: `{
				"bridge_api": {"listen_port": 8443},
				"browser": {"settle_delay": "500ms"},
				"notifiers": {
					"default_notifier_id": "missing",
					"telegrams": [{"id": "admin", "bot_token": "123456789:ABC-DEF1234ghIkl-zyx57W2v1u123ew11", "chat_id": 1}]
				}
			}`,
		},
		{
			name: "유효하지 않은 Importer 갱신 스케줄",
			mutate: `{
				"bridge_api": {"listen_port": 8443},
				"browser": {"settle_delay": "500ms"},
				"importer": {"refresh": {"runnable": true, "time_spec": "not-a-cron"}}
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.mutate)
			_, err := LoadWithFile(path)
			assert.Error(t, err)
		})
	}
}

func TestRetailerConfig_PollIntervalDuration(t *testing.T) {
	c := RetailerConfig{}
	assert.Equal(t, time.Second, c.PollIntervalDuration(), "미설정 시 기본값을 사용해야 합니다")

	c.PollInterval = "250ms"
	assert.Equal(t, 250*time.Millisecond, c.PollIntervalDuration())
}

func TestAppConfig_VerifyRecommendations(t *testing.T) {
	cfg := &AppConfig{Debug: true}
	cfg.BridgeAPI.ListenPort = 80

	warnings := cfg.VerifyRecommendations()
	assert.Len(t, warnings, 2)
}
