package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "SEARCH_RADIUS_METERS", "MAX_RESULTS", "KAFKA_BROKERS", "ACCESS_TOKEN_MINUTES"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8780" {
		t.Errorf("Port = %q, want 8780", cfg.Port)
	}
	if cfg.SearchRadius != 1500 {
		t.Errorf("SearchRadius = %d, want 1500", cfg.SearchRadius)
	}
	if cfg.MaxResults != 50 {
		t.Errorf("MaxResults = %d, want 50", cfg.MaxResults)
	}
	if cfg.KafkaBrokers != nil {
		t.Errorf("KafkaBrokers = %v, want nil", cfg.KafkaBrokers)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 15m", cfg.AccessTokenTTL)
	}
	if cfg.GeoUserAgent != "LocalBusinessDirectory/1.0" {
		t.Errorf("GeoUserAgent = %q", cfg.GeoUserAgent)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SEARCH_RADIUS_METERS", "900")
	t.Setenv("MAX_RESULTS", "not-a-number")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := Load()

	if cfg.SearchRadius != 900 {
		t.Errorf("SearchRadius = %d, want 900", cfg.SearchRadius)
	}
	if cfg.MaxResults != 50 {
		t.Errorf("MaxResults = %d, want fallback 50", cfg.MaxResults)
	}
	want := []string{"kafka-1:9092", "kafka-2:9092"}
	if !reflect.DeepEqual(cfg.KafkaBrokers, want) {
		t.Errorf("KafkaBrokers = %v, want %v", cfg.KafkaBrokers, want)
	}
	if !cfg.MinioUseSSL {
		t.Error("MinioUseSSL = false, want true")
	}
}
