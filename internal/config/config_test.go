package config

import (
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/pex/internal/loader"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Upload.MaxConcurrent != 4 {
		t.Errorf("Upload.MaxConcurrent = %d, want %d", cfg.Upload.MaxConcurrent, 4)
	}
	if cfg.Upload.MaxFileSize != 52428800 {
		t.Errorf("Upload.MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 52428800)
	}
	if cfg.Loader.Sep != "," {
		t.Errorf("Loader.Sep = %q, want %q", cfg.Loader.Sep, ",")
	}
	if !cfg.Loader.HeaderExist {
		t.Error("Loader.HeaderExist = false, want true")
	}
	if !cfg.Loader.KeepDefaultNA {
		t.Error("Loader.KeepDefaultNA = false, want true")
	}
	if cfg.Loader.PreviewRows != 20 {
		t.Errorf("Loader.PreviewRows = %d, want %d", cfg.Loader.PreviewRows, 20)
	}
	if !cfg.Server.MetricsEnabled {
		t.Error("Server.MetricsEnabled = false, want true")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("PEX_SERVER_PORT", "9090")
	t.Setenv("PEX_UPLOAD_MAX_CONCURRENT", "10")
	t.Setenv("PEX_HEADER_EXIST", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Upload.MaxConcurrent != 10 {
		t.Errorf("Upload.MaxConcurrent = %d, want %d", cfg.Upload.MaxConcurrent, 10)
	}
	if cfg.Loader.HeaderExist {
		t.Error("Loader.HeaderExist = true, want false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 7070)
	}
}

func TestLoad_Duration(t *testing.T) {
	t.Setenv("PEX_SERVER_READ_TIMEOUT", "30s")
	t.Setenv("PEX_UPLOAD_MAX_WAIT_TIME", "2m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 30*time.Second)
	}
	if cfg.Upload.MaxWaitTime != 2*time.Minute {
		t.Errorf("Upload.MaxWaitTime = %v, want %v", cfg.Upload.MaxWaitTime, 2*time.Minute)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("PEX_SERVER_PORT", "eighty")

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected error for non-numeric port")
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	t.Setenv("PEX_SERVER_TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Server.TrustedProxies) != 2 || cfg.Server.TrustedProxies[1] != "192.168.1.1" {
		t.Errorf("TrustedProxies = %q", cfg.Server.TrustedProxies)
	}
}

func TestLoad_PipeSeparatedNAValues(t *testing.T) {
	t.Setenv("PEX_NA_VALUES", "-| n/a ,x |")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"-", "n/a ,x"}
	if len(cfg.Loader.NAValues) != len(want) {
		t.Fatalf("NAValues = %q, want %q", cfg.Loader.NAValues, want)
	}
	for i := range want {
		if cfg.Loader.NAValues[i] != want[i] {
			t.Errorf("NAValues[%d] = %q, want %q", i, cfg.Loader.NAValues[i], want[i])
		}
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "localhost", Port: 8080, ShutdownTimeout: time.Second, RequestsPerMinute: 60},
		Upload: UploadConfig{MaxFileSize: 1024, MaxConcurrent: 1, MaxWaitTime: time.Second},
		Loader: LoaderConfig{Sep: ",", HeaderExist: true, Sheet: "0"},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "PEX_SERVER_PORT"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "PEX_SERVER_PORT"},
		{"no concurrency", func(c *Config) { c.Upload.MaxConcurrent = 0 }, "PEX_UPLOAD_MAX_CONCURRENT"},
		{"multi-char sep", func(c *Config) { c.Loader.Sep = ";;" }, "PEX_SEP"},
		{"tab sep", func(c *Config) { c.Loader.Sep = "tab" }, ""},
		{"no rate limit", func(c *Config) { c.Server.RequestsPerMinute = 0 }, "PEX_SERVER_RATE_LIMIT"},
		{"api key required but none", func(c *Config) { c.Security.RequireAPIKey = true }, "PEX_API_KEYS"},
		{"api key required with keys", func(c *Config) {
			c.Security.RequireAPIKey = true
			c.Security.APIKeys = []string{"k1"}
		}, ""},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	if !strings.Contains(err.Error(), "PEX_SERVER_PORT") || !strings.Contains(err.Error(), "LOG_LEVEL") {
		t.Errorf("Validate() = %v, want both failures reported", err)
	}
}

func TestServerAddr(t *testing.T) {
	cfg := ServerConfig{Host: "localhost", Port: 3000}
	if got := cfg.Addr(); got != "localhost:3000" {
		t.Errorf("Addr() = %q, want %q", got, "localhost:3000")
	}
}

func TestLoaderOptions(t *testing.T) {
	c := LoaderConfig{
		Sep:           ";",
		HeaderExist:   false,
		Sheet:         "all",
		NAValues:      []string{"-"},
		KeepDefaultNA: false,
	}
	o := c.Options()

	if o.Sep != ";" || o.HeaderExist || o.KeepDefaultNA {
		t.Errorf("Options() = %+v, settings not carried over", o)
	}
	if !o.Sheet.IsAll() {
		t.Errorf("Options().Sheet = %s, want all sheets", o.Sheet)
	}
	if len(o.NAValues.Global) != 1 || o.NAValues.Global[0] != "-" {
		t.Errorf("Options().NAValues = %+v", o.NAValues)
	}

	if got := (LoaderConfig{Sheet: "2"}).Options().Sheet; got != loader.SheetIndex(2) {
		t.Errorf("Sheet \"2\" = %s, want index 2", got)
	}
}

func TestConfigString_MasksKeys(t *testing.T) {
	cfg := validConfig()
	cfg.Security.APIKeys = []string{"secret-key-1", "secret-key-2"}
	s := cfg.String()
	if strings.Contains(s, "secret-key") {
		t.Errorf("String() leaks API keys: %s", s)
	}
	if !strings.Contains(s, "[2 keys]") {
		t.Errorf("String() = %s, want key count", s)
	}
}

func TestConfigString(t *testing.T) {
	s := validConfig().String()
	for _, want := range []string{`Addr: "localhost:8080"`, `Sep: ","`, `Level: "info"`} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %s, missing %s", s, want)
		}
	}
}
