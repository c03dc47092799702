package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	os.Clearenv()
	os.Setenv("ADMIN_EMAILS", "admin@example.com")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":3001" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":3001")
	}
	if cfg.GRPCAddr != ":9090" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":9090")
	}
	if cfg.StoreDriver != StoreMemory {
		t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, StoreMemory)
	}
	if cfg.OTPLength != 5 {
		t.Errorf("OTPLength = %d, want 5", cfg.OTPLength)
	}
	if cfg.OTPHashCost != 10 {
		t.Errorf("OTPHashCost = %d, want 10", cfg.OTPHashCost)
	}
	if cfg.NotifyProvider != NotifyLog {
		t.Errorf("NotifyProvider = %q, want %q", cfg.NotifyProvider, NotifyLog)
	}
	if cfg.GrantIssuer != "portfolio-gate" {
		t.Errorf("GrantIssuer = %q, want %q", cfg.GrantIssuer, "portfolio-gate")
	}
	if cfg.GrantAudience != "portfolio-admin" {
		t.Errorf("GrantAudience = %q, want %q", cfg.GrantAudience, "portfolio-admin")
	}
	if cfg.MongoDatabase != "resume_database" {
		t.Errorf("MongoDatabase = %q, want %q", cfg.MongoDatabase, "resume_database")
	}
	if cfg.GalleryDir != "images" {
		t.Errorf("GalleryDir = %q, want %q", cfg.GalleryDir, "images")
	}
	if cfg.UploadMaxBytes != 10000000 {
		t.Errorf("UploadMaxBytes = %d, want 10000000", cfg.UploadMaxBytes)
	}
	if cfg.EventsTopic != "gate-events" {
		t.Errorf("EventsTopic = %q, want %q", cfg.EventsTopic, "gate-events")
	}
	if cfg.OTPReturnToClient {
		t.Error("OTPReturnToClient should default to false")
	}
	if cfg.SessionDuration() != 15*time.Minute {
		t.Errorf("SessionDuration() = %v, want 15m", cfg.SessionDuration())
	}
	if cfg.OTPDuration() != 10*time.Minute {
		t.Errorf("OTPDuration() = %v, want 10m", cfg.OTPDuration())
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	setBaseEnv(t)
	os.Setenv("HTTP_ADDR", ":8081")
	os.Setenv("SESSION_TTL", "30m")
	os.Setenv("OTP_LENGTH", "6")
	os.Setenv("STORE_DRIVER", "SQLite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8081" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8081")
	}
	if cfg.SessionDuration() != 30*time.Minute {
		t.Errorf("SessionDuration() = %v, want 30m", cfg.SessionDuration())
	}
	if cfg.OTPLength != 6 {
		t.Errorf("OTPLength = %d, want 6", cfg.OTPLength)
	}
	if cfg.StoreDriver != StoreSQLite {
		t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, StoreSQLite)
	}
}

func TestLoad_AdminEmailsRequired(t *testing.T) {
	os.Clearenv()
	if _, err := Load(); err == nil {
		t.Fatal("Load without ADMIN_EMAILS should fail")
	}
	os.Setenv("ADMIN_EMAILS", " , ")
	if _, err := Load(); err == nil {
		t.Fatal("Load with blank ADMIN_EMAILS entries should fail")
	}
}

func TestLoad_DevOTPForbiddenInProduction(t *testing.T) {
	setBaseEnv(t)
	os.Setenv("APP_ENV", "production")
	os.Setenv("OTP_RETURN_TO_CLIENT", "true")

	if _, err := Load(); err == nil {
		t.Fatal("Load with OTP_RETURN_TO_CLIENT in production should fail")
	}

	os.Setenv("APP_ENV", "development")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load in development: %v", err)
	}
	if !cfg.OTPReturnToClient {
		t.Error("OTPReturnToClient = false, want true")
	}
}

func TestLoad_StoreDriverValidation(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		err  bool
	}{
		{"memory", map[string]string{"STORE_DRIVER": "memory"}, false},
		{"sqlite", map[string]string{"STORE_DRIVER": "sqlite"}, false},
		{"postgres without dsn", map[string]string{"STORE_DRIVER": "postgres"}, true},
		{"postgres with dsn", map[string]string{"STORE_DRIVER": "postgres", "DATABASE_URL": "postgres://localhost/gate"}, false},
		{"redis without url", map[string]string{"STORE_DRIVER": "redis"}, true},
		{"redis with url", map[string]string{"STORE_DRIVER": "redis", "REDIS_URL": "redis://localhost:6379/0"}, false},
		{"unknown", map[string]string{"STORE_DRIVER": "etcd"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tc.env {
				os.Setenv(k, v)
			}
			_, err := Load()
			if tc.err && err == nil {
				t.Error("expected error but got nil")
			}
			if !tc.err && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad_NotifyProviderValidation(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		err  bool
	}{
		{"log", map[string]string{"NOTIFY_PROVIDER": "log"}, false},
		{"webhook without url", map[string]string{"NOTIFY_PROVIDER": "webhook"}, true},
		{"webhook with url", map[string]string{"NOTIFY_PROVIDER": "webhook", "WEBHOOK_URL": "https://hooks.example.com/mail"}, false},
		{"mailgun missing key", map[string]string{"NOTIFY_PROVIDER": "mailgun", "MAILGUN_DOMAIN": "mg.example.com"}, true},
		{"mailgun", map[string]string{"NOTIFY_PROVIDER": "mailgun", "MAILGUN_DOMAIN": "mg.example.com", "MAILGUN_API_KEY": "key"}, false},
		{"unknown", map[string]string{"NOTIFY_PROVIDER": "pigeon"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tc.env {
				os.Setenv(k, v)
			}
			_, err := Load()
			if tc.err && err == nil {
				t.Error("expected error but got nil")
			}
			if !tc.err && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad_OTPLengthRange(t *testing.T) {
	testCases := []struct {
		value string
		err   bool
	}{
		{"4", false},
		{"9", false},
		{"3", true},
		{"10", true},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			setBaseEnv(t)
			os.Setenv("OTP_LENGTH", tc.value)
			_, err := Load()
			if tc.err && err == nil {
				t.Errorf("OTP_LENGTH=%s: expected error", tc.value)
			}
			if !tc.err && err != nil {
				t.Errorf("OTP_LENGTH=%s: unexpected error: %v", tc.value, err)
			}
		})
	}
}

func TestLoad_OTPHashCostRange(t *testing.T) {
	testCases := []struct {
		value string
		err   bool
	}{
		{"4", false},
		{"31", false},
		{"3", true},
		{"32", true},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			setBaseEnv(t)
			os.Setenv("OTP_HASH_COST", tc.value)
			_, err := Load()
			if tc.err && err == nil {
				t.Errorf("OTP_HASH_COST=%s: expected error", tc.value)
			}
			if !tc.err && err != nil {
				t.Errorf("OTP_HASH_COST=%s: unexpected error: %v", tc.value, err)
			}
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	c := &Config{SessionTTL: "bogus", OTPTTL: "-1m", NotifyTimeout: "", GrantTTL: "90s"}
	if got := c.SessionDuration(); got != 15*time.Minute {
		t.Errorf("SessionDuration() = %v, want 15m", got)
	}
	if got := c.OTPDuration(); got != 10*time.Minute {
		t.Errorf("OTPDuration() = %v, want 10m", got)
	}
	if got := c.NotifyDuration(); got != 10*time.Second {
		t.Errorf("NotifyDuration() = %v, want 10s", got)
	}
	if got := c.GrantDuration(); got != 90*time.Second {
		t.Errorf("GrantDuration() = %v, want 90s", got)
	}
}

func TestConfig_Lists(t *testing.T) {
	c := &Config{
		AdminEmails:        " Admin@Example.com, second@example.com ,,",
		CORSAllowedOrigins: "",
		KafkaBrokers:       "k1:9092, k2:9092",
	}
	if got, want := c.AdminEmailList(), []string{"admin@example.com", "second@example.com"}; !reflect.DeepEqual(got, want) {
		t.Errorf("AdminEmailList() = %v, want %v", got, want)
	}
	if got, want := c.CORSOrigins(), []string{"*"}; !reflect.DeepEqual(got, want) {
		t.Errorf("CORSOrigins() = %v, want %v", got, want)
	}
	if got, want := c.KafkaBrokersList(), []string{"k1:9092", "k2:9092"}; !reflect.DeepEqual(got, want) {
		t.Errorf("KafkaBrokersList() = %v, want %v", got, want)
	}

	var nilCfg *Config
	if nilCfg.KafkaBrokersList() != nil {
		t.Error("nil config KafkaBrokersList() should be nil")
	}
	if nilCfg.IsProduction() {
		t.Error("nil config should not be production")
	}
}
