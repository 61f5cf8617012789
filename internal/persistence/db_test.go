package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteSaveLoad(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	payload := []byte(`{"year":2025}`)
	info, err := db.Save(ctx, Record{Name: "first", Year: 2025, Month: 3, Data: payload})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if info.ID == "" || info.Size != int64(len(payload)) {
		t.Errorf("info = %+v", info)
	}

	data, got, err := db.Load(ctx, info.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("payload = %s", data)
	}
	if got.Name != "first" || got.Year != 2025 || got.Month != 3 {
		t.Errorf("loaded info = %+v", got)
	}
	if !got.CreatedAt.Equal(info.CreatedAt) {
		t.Errorf("created %v, want %v", got.CreatedAt, info.CreatedAt)
	}
}

func TestSQLiteLatestAndList(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if _, err := db.Latest(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("latest on empty = %v", err)
	}

	a, err := db.Save(ctx, Record{Name: "a", Year: 2025, Month: 1, Data: []byte("{}")})
	if err != nil {
		t.Fatalf("save a: %v", err)
	}
	b, err := db.Save(ctx, Record{Name: "b", Year: 2025, Month: 2, Data: []byte("{}")})
	if err != nil {
		t.Fatalf("save b: %v", err)
	}

	latest, err := db.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != b.ID {
		t.Errorf("latest = %s, want %s", latest.ID, b.ID)
	}

	list, err := db.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %d entries", len(list))
	}
	ids := map[string]bool{list[0].ID: true, list[1].ID: true}
	if !ids[a.ID] || !ids[b.ID] {
		t.Errorf("list = %+v", list)
	}
}

func TestSQLiteMissing(t *testing.T) {
	db := openTestDB(t)
	if _, _, err := db.Load(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestOpenDriver(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, Options{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	st.Close()

	if _, err := Open(ctx, Options{Driver: "floppy"}); err == nil {
		t.Error("unknown driver accepted")
	}
	if _, err := Open(ctx, Options{Driver: DriverS3}); err == nil {
		t.Error("s3 without bucket accepted")
	}
}
