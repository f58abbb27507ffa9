package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"campus-directory/internal/models"
)

func TestFileStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "institutions.json")
	store := NewFileStore(path)

	in := []models.Institution{
		{ID: "inst_1", Name: "Bharathiar University", Type: models.InstitutionUniversity, Lat: 11.04, Lon: 76.92},
		{ID: "inst_2", Name: "PSG College of Arts", Type: models.InstitutionCollege, Lat: 11.02, Lon: 77.0, Address: "Avinashi Road"},
	}
	if err := store.Save(context.Background(), in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(raw), "\n  {") {
		t.Errorf("snapshot is not indented:\n%s", raw)
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[1].Address != "Avinashi Road" || got[0].Type != models.InstitutionUniversity {
		t.Fatalf("Load = %+v", got)
	}
}

func TestFileStore_Missing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))
	if _, err := store.Load(context.Background()); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("err = %v; want ErrSnapshotNotFound", err)
	}
}

func TestFileStore_SaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := NewFileStore(path).Save(context.Background(), nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "[]" {
		t.Fatalf("content = %q; want []", raw)
	}
}

func TestNewS3Store_RequiresSettings(t *testing.T) {
	cases := []struct {
		name string
		opts S3Options
	}{
		{"no endpoint", S3Options{AccessKey: "a", SecretKey: "s", Bucket: "b", Object: "o"}},
		{"no bucket", S3Options{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Object: "o"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewS3Store(tc.opts); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := NewS3Store(S3Options{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "b", Object: "o"}); err != nil {
		t.Fatalf("valid options: %v", err)
	}
}
