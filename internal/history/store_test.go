package history

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func newStores(t *testing.T, limit int) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(SQLiteConfig{
		Path:  filepath.Join(t.TempDir(), "nested", "history.db"),
		Limit: limit,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"memory": NewMemoryStore(limit),
	}
}

func TestStore_AppendAndRead(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t, 0) {
		t.Run(name, func(t *testing.T) {
			for _, line := range []string{"echo a", "  ", "roll 6", "list"} {
				if err := store.Append(ctx, Entry{Line: line, Source: "test"}); err != nil {
					t.Fatalf("Append(%q) error = %v", line, err)
				}
			}

			all, err := store.All(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if got, want := Lines(all), []string{"echo a", "roll 6", "list"}; !reflect.DeepEqual(got, want) {
				t.Errorf("All() = %v, want %v", got, want)
			}
			if all[0].Source != "test" || all[0].Timestamp.IsZero() || all[0].ID == 0 {
				t.Errorf("entry = %+v", all[0])
			}

			recent, err := store.Recent(ctx, 2)
			if err != nil {
				t.Fatal(err)
			}
			if got, want := Lines(recent), []string{"list", "roll 6"}; !reflect.DeepEqual(got, want) {
				t.Errorf("Recent(2) = %v, want %v", got, want)
			}

			if r, _ := store.Recent(ctx, 0); len(r) != 0 {
				t.Errorf("Recent(0) = %v, want empty", r)
			}
			if r, _ := store.Recent(ctx, 10); len(r) != 3 {
				t.Errorf("Recent(10) returned %d entries, want 3", len(r))
			}
		})
	}
}

func TestStore_Limit(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t, 3) {
		t.Run(name, func(t *testing.T) {
			for _, line := range []string{"1", "2", "3", "4", "5"} {
				if err := store.Append(ctx, Entry{Line: line}); err != nil {
					t.Fatal(err)
				}
			}
			all, _ := store.All(ctx)
			if got, want := Lines(all), []string{"3", "4", "5"}; !reflect.DeepEqual(got, want) {
				t.Errorf("All() = %v, want %v", got, want)
			}
		})
	}
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t, 0) {
		t.Run(name, func(t *testing.T) {
			_ = store.Append(ctx, Entry{Line: "x"})
			if err := store.Clear(ctx); err != nil {
				t.Fatal(err)
			}
			if all, _ := store.All(ctx); len(all) != 0 {
				t.Errorf("All() after Clear = %v", all)
			}
		})
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := NewSQLiteStore(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	_ = first.Append(ctx, Entry{Line: "persisted"})
	first.Close()

	second, err := NewSQLiteStore(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()
	all, _ := second.All(ctx)
	if got := Lines(all); !reflect.DeepEqual(got, []string{"persisted"}) {
		t.Errorf("All() after reopen = %v", got)
	}
}

func TestStore_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t, 0) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_ = store.Append(ctx, Entry{Line: "cmd"})
				}()
			}
			wg.Wait()
			if all, _ := store.All(ctx); len(all) != 20 {
				t.Errorf("All() has %d entries, want 20", len(all))
			}
		})
	}
}
