package media

import (
	"errors"
	"testing"
	"time"
)

func TestStore_AddMedia(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := &Media{Type: TypeMovie, TMDBID: 550, Status: StatusPending}

	before := time.Now()
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}
	after := time.Now()

	if m.ID == 0 {
		t.Error("ID should be set after AddMedia")
	}
	if m.CreatedAt.Before(before) || m.CreatedAt.After(after) {
		t.Errorf("CreatedAt %v not in expected range [%v, %v]", m.CreatedAt, before, after)
	}
	if m.Status4K != StatusUnknown {
		t.Errorf("Status4K = %q, want %q", m.Status4K, StatusUnknown)
	}
}

func TestStore_AddMedia_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	if err := store.AddMedia(&Media{Type: TypeMovie, TMDBID: 550}); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}
	err := store.AddMedia(&Media{Type: TypeMovie, TMDBID: 550})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	// same TMDB id is allowed for a different type
	if err := store.AddMedia(&Media{Type: TypeTV, TMDBID: 550}); err != nil {
		t.Errorf("AddMedia tv: %v", err)
	}
}

func TestStore_GetMedia_RoundTripsTierFields(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := &Media{
		Type:     TypeTV,
		TMDBID:   1399,
		TVDBID:   ptr(int64(121361)),
		Status:   StatusAvailable,
		Status4K: StatusPartiallyAvailable,
		Standard: TierFields{ServiceID: ptr(int64(0)), ExternalServiceID: ptr(int64(12)), ExternalServiceSlug: ptr("game-of-thrones"), RatingKey: ptr("100")},
		FourK:    TierFields{RatingKey: ptr("200")},
	}
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}

	got, err := store.GetMedia(m.ID)
	if err != nil {
		t.Fatalf("GetMedia: %v", err)
	}
	if got.Status != StatusAvailable || got.Status4K != StatusPartiallyAvailable {
		t.Errorf("statuses = %q/%q", got.Status, got.Status4K)
	}
	if got.Standard.RatingKey == nil || *got.Standard.RatingKey != "100" {
		t.Errorf("standard rating key = %v", got.Standard.RatingKey)
	}
	if got.FourK.RatingKey == nil || *got.FourK.RatingKey != "200" {
		t.Errorf("4k rating key = %v", got.FourK.RatingKey)
	}
	if got.FourK.ExternalServiceID != nil {
		t.Errorf("4k external service id = %v, want nil", *got.FourK.ExternalServiceID)
	}
	if got.TVDBID == nil || *got.TVDBID != 121361 {
		t.Errorf("tvdb id = %v", got.TVDBID)
	}
}

func TestStore_GetMedia_NotFound(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	_, err := store.GetMedia(9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetMediaByTMDB(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := &Media{Type: TypeMovie, TMDBID: 603}
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}

	got, err := store.GetMediaByTMDB(603, TypeMovie)
	if err != nil {
		t.Fatalf("GetMediaByTMDB: %v", err)
	}
	if got.ID != m.ID {
		t.Errorf("ID = %d, want %d", got.ID, m.ID)
	}

	if _, err := store.GetMediaByTMDB(603, TypeTV); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for tv, got %v", err)
	}
}

func TestStore_UpdateMedia_ClearTier(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := &Media{
		Type:     TypeMovie,
		TMDBID:   550,
		Status:   StatusAvailable,
		Status4K: StatusAvailable,
		Standard: TierFields{RatingKey: ptr("1"), ExternalServiceID: ptr(int64(5))},
		FourK:    TierFields{RatingKey: ptr("2")},
	}
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}

	m.SetStatus(FourK, StatusUnknown)
	m.ClearTier(FourK)
	if err := store.UpdateMedia(m); err != nil {
		t.Fatalf("UpdateMedia: %v", err)
	}

	got, err := store.GetMedia(m.ID)
	if err != nil {
		t.Fatalf("GetMedia: %v", err)
	}
	if got.Status4K != StatusUnknown || got.FourK.RatingKey != nil {
		t.Errorf("4k tier not cleared: %q %v", got.Status4K, got.FourK.RatingKey)
	}
	if got.Status != StatusAvailable || got.Standard.RatingKey == nil {
		t.Errorf("standard tier changed: %q %v", got.Status, got.Standard.RatingKey)
	}
}

func TestStore_UpdateMedia_NotFound(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	err := store.UpdateMedia(&Media{ID: 42, Type: TypeMovie, TMDBID: 1, Status: StatusUnknown, Status4K: StatusUnknown})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListAvailableMedia_KeysetPaging(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	statuses := []struct {
		std, uhd Status
	}{
		{StatusAvailable, StatusUnknown},
		{StatusUnknown, StatusUnknown},
		{StatusUnknown, StatusPartiallyAvailable},
		{StatusPending, StatusUnknown},
		{StatusPartiallyAvailable, StatusAvailable},
	}
	var want []int64
	for i, s := range statuses {
		m := &Media{Type: TypeMovie, TMDBID: int64(100 + i), Status: s.std, Status4K: s.uhd}
		if err := store.AddMedia(m); err != nil {
			t.Fatalf("AddMedia: %v", err)
		}
		if s.std.IsAvailable() || s.uhd.IsAvailable() {
			want = append(want, m.ID)
		}
	}

	var got []int64
	var after int64
	for {
		page, err := store.ListAvailableMedia(after, 2)
		if err != nil {
			t.Fatalf("ListAvailableMedia: %v", err)
		}
		if len(page) == 0 {
			break
		}
		for _, m := range page {
			got = append(got, m.ID)
		}
		after = page[len(page)-1].ID
	}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("page order: got %v, want %v", got, want)
			break
		}
	}
}

func TestStore_Seasons(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := &Media{Type: TypeTV, TMDBID: 1399}
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}
	for _, n := range []int{2, 1} {
		if err := store.AddSeason(&Season{MediaID: m.ID, SeasonNumber: n, Status: StatusAvailable}); err != nil {
			t.Fatalf("AddSeason %d: %v", n, err)
		}
	}
	if err := store.AddSeason(&Season{MediaID: m.ID, SeasonNumber: 1}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for repeated season, got %v", err)
	}

	seasons, err := store.ListSeasons(m.ID)
	if err != nil {
		t.Fatalf("ListSeasons: %v", err)
	}
	if len(seasons) != 2 || seasons[0].SeasonNumber != 1 || seasons[1].SeasonNumber != 2 {
		t.Fatalf("unexpected seasons: %+v", seasons)
	}

	seasons[1].SetStatus(Standard, StatusUnknown)
	if err := store.UpdateSeason(seasons[1]); err != nil {
		t.Fatalf("UpdateSeason: %v", err)
	}
	seasons, _ = store.ListSeasons(m.ID)
	if seasons[1].Status != StatusUnknown {
		t.Errorf("season 2 status = %q, want unknown", seasons[1].Status)
	}
}

func TestStore_UpsertSeason(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	m := &Media{Type: TypeTV, TMDBID: 1399}
	if err := store.AddMedia(m); err != nil {
		t.Fatalf("AddMedia: %v", err)
	}

	s := &Season{MediaID: m.ID, SeasonNumber: 1, Status: StatusPartiallyAvailable}
	if err := store.UpsertSeason(s); err != nil {
		t.Fatalf("UpsertSeason insert: %v", err)
	}
	firstID := s.ID

	again := &Season{MediaID: m.ID, SeasonNumber: 1, Status: StatusAvailable, Status4K: StatusAvailable}
	if err := store.UpsertSeason(again); err != nil {
		t.Fatalf("UpsertSeason update: %v", err)
	}
	if again.ID != firstID {
		t.Errorf("upsert created a second row: %d != %d", again.ID, firstID)
	}

	seasons, err := store.ListSeasons(m.ID)
	if err != nil {
		t.Fatalf("ListSeasons: %v", err)
	}
	if len(seasons) != 1 || seasons[0].Status != StatusAvailable || seasons[0].Status4K != StatusAvailable {
		t.Errorf("unexpected seasons after upsert: %+v", seasons)
	}
}
