package library_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tunecast/internal/library"
	"tunecast/internal/logging"
	"tunecast/internal/services"
	"tunecast/internal/testsupport"
)

func TestOpenStartsEmptyWithoutCatalogFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	audios, playlists := store.Counts()
	if audios != 0 || playlists != 0 {
		t.Fatalf("expected empty catalog, got %d audios %d playlists", audios, playlists)
	}
}

func TestCatalogPersistsAcrossReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewAudio(t, store, "a1", "First", "Jazz", 100)
	if _, err := store.CreatePlaylist("Morning", "easy listening"); err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := library.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	audios, playlists := reopened.Counts()
	if audios != 1 || playlists != 1 {
		t.Fatalf("expected 1/1 after reopen, got %d/%d", audios, playlists)
	}
	asset, ok := reopened.GetAudio("a1")
	if !ok {
		t.Fatal("expected asset to survive reopen")
	}
	if asset.Title != "First" || asset.Category != "Jazz" {
		t.Fatalf("unexpected asset: %#v", asset)
	}
}

func TestOpenRecoversFromCorruptCatalog(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if err := os.WriteFile(cfg.CatalogPath(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt catalog: %v", err)
	}

	store := testsupport.MustOpenStore(t, cfg)
	audios, _ := store.Counts()
	if audios != 0 {
		t.Fatalf("expected empty catalog after corruption, got %d audios", audios)
	}

	entries, err := filepath.Glob(cfg.CatalogPath() + ".corrupt-*")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected damaged file to be preserved, found %v", entries)
	}
}

func TestListAudiosCategoryFilter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewAudio(t, store, "a1", "One", "Jazz", 10)
	testsupport.NewAudio(t, store, "a2", "Two", "Rock", 20)
	testsupport.NewAudio(t, store, "a3", "Three", "Jazz", 30)

	jazz := store.ListAudios("Jazz", library.SortCreatedAt, library.OrderAsc)
	if len(jazz) != 2 {
		t.Fatalf("expected 2 jazz assets, got %d", len(jazz))
	}
	for _, audio := range jazz {
		if audio.Category != "Jazz" {
			t.Fatalf("unexpected category in filtered list: %s", audio.Category)
		}
	}

	for _, filter := range []string{"", library.CategoryAll} {
		all := store.ListAudios(filter, library.SortCreatedAt, library.OrderAsc)
		if len(all) != 3 {
			t.Fatalf("filter %q: expected full set, got %d", filter, len(all))
		}
	}
}

func TestListCategoriesFirstSeenOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewAudio(t, store, "a1", "One", "Jazz", 10)
	testsupport.NewAudio(t, store, "a2", "Two", "Rock", 20)
	testsupport.NewAudio(t, store, "a3", "Three", "Jazz", 30)
	testsupport.NewAudio(t, store, "a4", "Four", "", 40)

	got := store.ListCategories()
	want := []string{"Jazz", "Rock", library.CategoryUncategorized}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestUpdateAudioCategory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewAudio(t, store, "a1", "One", "Jazz", 10)

	updated, err := store.UpdateAudioCategory("a1", "Blues")
	if err != nil {
		t.Fatalf("UpdateAudioCategory: %v", err)
	}
	if updated.Category != "Blues" {
		t.Fatalf("unexpected category: %s", updated.Category)
	}

	relabeled, err := store.UpdateAudioCategory("a1", "   ")
	if err != nil {
		t.Fatalf("UpdateAudioCategory blank: %v", err)
	}
	if relabeled.Category != library.CategoryUncategorized {
		t.Fatalf("expected sentinel category, got %s", relabeled.Category)
	}

	if _, err := store.UpdateAudioCategory("missing", "Jazz"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteAudioCascadesIntoPlaylists(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	asset := testsupport.NewAudio(t, store, "a1", "One", "Jazz", 10)
	keeper := testsupport.NewAudio(t, store, "a2", "Two", "Jazz", 20)

	first, err := store.CreatePlaylist("First", "")
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	second, err := store.CreatePlaylist("Second", "")
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	ids := []string{asset.ID, keeper.ID}
	for _, playlist := range []library.Playlist{first, second} {
		if _, err := store.PatchPlaylist(playlist.ID, library.PlaylistPatch{AudioIDs: &ids}); err != nil {
			t.Fatalf("PatchPlaylist: %v", err)
		}
	}

	backingFile := store.AssetPath(asset)
	if err := store.DeleteAudio(asset.ID); err != nil {
		t.Fatalf("DeleteAudio: %v", err)
	}

	if _, ok := store.GetAudio(asset.ID); ok {
		t.Fatal("expected asset to be gone")
	}
	if _, err := os.Stat(backingFile); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected backing file removed, stat err=%v", err)
	}
	for _, playlistID := range []string{first.ID, second.ID} {
		playlist, ok := store.GetPlaylist(playlistID)
		if !ok {
			t.Fatalf("playlist %s missing", playlistID)
		}
		if len(playlist.AudioIDs) != 1 || playlist.AudioIDs[0] != keeper.ID {
			t.Fatalf("expected cascade cleanup, got %v", playlist.AudioIDs)
		}
	}

	remaining := store.ListAudios("", library.SortCreatedAt, library.OrderAsc)
	if len(remaining) != 1 || remaining[0].ID != keeper.ID {
		t.Fatalf("unexpected remaining assets: %v", remaining)
	}
}

func TestDeleteAudioUnknownID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if err := store.DeleteAudio("missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddAudioRejectsDuplicateID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	asset := testsupport.NewAudio(t, store, "a1", "One", "Jazz", 10)

	if err := store.AddAudio(asset); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSecondStoreInstanceIsRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.MustOpenStore(t, cfg)

	if _, err := library.Open(cfg, logging.NewNop()); err == nil {
		t.Fatal("expected second open to fail while lock is held")
	}
}
