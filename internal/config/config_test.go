package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestStubConfigSplitsKafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "b1:9092, b2:9092 ,,b3:9092")

	cfg, err := LoadStubConfig()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"b1:9092", "b2:9092", "b3:9092"}
	if !reflect.DeepEqual(cfg.KafkaBrokers, want) {
		t.Fatalf("KafkaBrokers = %v, want %v", cfg.KafkaBrokers, want)
	}
	if cfg.KafkaTopic != "ride-events" {
		t.Fatalf("KafkaTopic = %q", cfg.KafkaTopic)
	}
}

func TestStubConfigDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := LoadStubConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.KafkaBrokers != nil {
		t.Fatalf("KafkaBrokers = %v, want none", cfg.KafkaBrokers)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Fatalf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
}

func TestConsoleConfigRequiresToken(t *testing.T) {
	t.Setenv("API_TOKEN", "")
	t.Setenv("API_TOKEN_FILE", "")

	if _, err := LoadConsoleConfig(); err == nil {
		t.Fatal("expected an error when no token is configured")
	}
}

func TestConsoleConfigBadDurationJoined(t *testing.T) {
	t.Setenv("API_TOKEN", "tok")
	t.Setenv("POLL_INTERVAL", "soon")
	t.Setenv("REQUEST_TIMEOUT", "later")

	_, err := LoadConsoleConfig()
	if err == nil {
		t.Fatal("expected parse errors")
	}
	// both bad values must be reported, not just the first
	msg := err.Error()
	for _, key := range []string{"POLL_INTERVAL", "REQUEST_TIMEOUT"} {
		if !strings.Contains(msg, key) {
			t.Fatalf("error %q does not mention %s", msg, key)
		}
	}
}
