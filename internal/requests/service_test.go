package requests

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/mediarr/internal/adapters/radarr"
	radarrmocks "github.com/vmunix/mediarr/internal/adapters/radarr/mocks"
	"github.com/vmunix/mediarr/internal/adapters/sonarr"
	sonarrmocks "github.com/vmunix/mediarr/internal/adapters/sonarr/mocks"
	"github.com/vmunix/mediarr/internal/config"
	"github.com/vmunix/mediarr/internal/events"
	"github.com/vmunix/mediarr/internal/media"
	"github.com/vmunix/mediarr/internal/tmdb"
	tmdbmocks "github.com/vmunix/mediarr/internal/tmdb/mocks"
)

type fixture struct {
	store  *media.Store
	tmdb   *tmdbmocks.MockAPI
	radarr *radarrmocks.MockAPI
	sonarr *sonarrmocks.MockAPI
	rec    *recorder
	svc    *Service
	snap   config.Snapshot

	admin *media.User
	user  *media.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		store:  media.NewStore(setupTestDB(t)),
		tmdb:   tmdbmocks.NewMockAPI(ctrl),
		radarr: radarrmocks.NewMockAPI(ctrl),
		sonarr: sonarrmocks.NewMockAPI(ctrl),
		rec:    &recorder{},
		snap: config.Snapshot{
			Radarr: []config.RadarrConfig{
				{ServarrConfig: config.ServarrConfig{ID: 0, Name: "radarr", IsDefault: true, ActiveProfileID: 1, ActiveDirectory: "/movies", Tags: []int{1}}, MinimumAvailability: "released"},
				{ServarrConfig: config.ServarrConfig{ID: 1, Name: "radarr-4k", Is4K: true, IsDefault: true, ActiveProfileID: 5, ActiveDirectory: "/movies-4k"}},
			},
			Sonarr: []config.SonarrConfig{
				{
					ServarrConfig:           config.ServarrConfig{ID: 0, Name: "sonarr", IsDefault: true, ActiveProfileID: 2, ActiveDirectory: "/tv", Tags: []int{3}},
					ActiveLanguageProfileID: 1,
					ActiveAnimeProfileID:    7,
					ActiveAnimeDirectory:    "/anime",
					AnimeTags:               []int{9},
					SeasonFolders:           true,
				},
			},
			Enable4KMovie: true,
			Enable4KTV:    true,
		},
	}
	f.svc = NewService(f.store, f.tmdb, func() config.Snapshot { return f.snap }, f.rec,
		WithLogger(testLogger()),
		WithRadarrFactory(func(config.RadarrConfig) radarr.API { return f.radarr }),
		WithSonarrFactory(func(config.SonarrConfig) sonarr.API { return f.sonarr }),
	)
	f.admin = addUser(t, f.store, "admin", media.PermissionAdmin)
	f.user = addUser(t, f.store, "user", media.PermissionRequest|media.PermissionRequest4K)
	return f
}

func (f *fixture) expectMovie(tmdbID int64) {
	f.tmdb.EXPECT().GetMovie(gomock.Any(), tmdbID).
		Return(&tmdb.Movie{ID: tmdbID, Title: "Fight Club", ReleaseDate: "1999-10-15"}, nil).AnyTimes()
}

func (f *fixture) expectShow(tmdbID int64, anime bool) {
	tv := &tmdb.TV{
		ID:          tmdbID,
		Name:        "Show",
		Seasons:     []tmdb.Season{{SeasonNumber: 0}, {SeasonNumber: 1}, {SeasonNumber: 2}, {SeasonNumber: 3}},
		ExternalIDs: tmdb.ExternalIDs{TVDBID: 81189},
	}
	if anime {
		tv.Keywords.Results = []tmdb.Keyword{{ID: tmdb.AnimeKeywordID, Name: "anime"}}
	}
	f.tmdb.EXPECT().GetTV(gomock.Any(), tmdbID).Return(tv, nil).AnyTimes()
}

func (f *fixture) mediaStatus(t *testing.T, tmdbID int64, typ media.Type, tier media.Tier) media.Status {
	t.Helper()
	m, err := f.store.GetMediaByTMDB(tmdbID, typ)
	require.NoError(t, err)
	return m.StatusFor(tier)
}

func TestCreate_MovieAutoApprovedIsSubmitted(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	f.radarr.EXPECT().AddMovie(gomock.Any(), radarr.AddOptions{
		TMDBID:              550,
		Title:               "Fight Club",
		Year:                1999,
		ProfileID:           1,
		RootFolder:          "/movies",
		MinimumAvailability: "released",
		Tags:                []int{1},
		SearchNow:           true,
	}).Return(&radarr.Movie{ID: 77, TMDBID: 550, TitleSlug: "fight-club-550"}, nil)

	req, err := f.svc.Create(context.Background(), f.admin, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	require.NoError(t, err)
	f.svc.Wait()

	assert.Equal(t, media.RequestApproved, req.Status)
	assert.Equal(t, f.admin.ID, *req.ModifiedByID)

	m, err := f.store.GetMedia(req.MediaID)
	require.NoError(t, err)
	assert.Equal(t, media.StatusProcessing, m.Status)
	assert.Equal(t, media.StatusUnknown, m.Status4K)
	require.NotNil(t, m.Standard.ExternalServiceID)
	assert.Equal(t, int64(77), *m.Standard.ExternalServiceID)
	assert.Equal(t, int64(0), *m.Standard.ServiceID)
	assert.Equal(t, "fight-club-550", *m.Standard.ExternalServiceSlug)

	assert.Equal(t, []events.NotificationKind{events.NotifyMediaAutoApproved}, f.rec.kinds())
	assert.Contains(t, f.rec.eventTypes(), events.EventSubmissionSucceeded)
}

func TestCreate_MoviePendingForRegularUser(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)

	req, err := f.svc.Create(context.Background(), f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	require.NoError(t, err)
	f.svc.Wait()

	assert.Equal(t, media.RequestPending, req.Status)
	assert.Nil(t, req.ModifiedByID)
	assert.Equal(t, media.StatusPending, f.mediaStatus(t, 550, media.TypeMovie, media.Standard))

	require.Len(t, f.rec.notes, 1)
	assert.Equal(t, events.NotifyMediaPending, f.rec.notes[0].Kind)
	assert.True(t, f.rec.notes[0].NotifyAdmin)
}

func TestCreate_AutoRequestNotifiesTwice(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)

	_, err := f.svc.Create(context.Background(), f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550, IsAutoRequest: true})
	require.NoError(t, err)

	assert.Equal(t, []events.NotificationKind{events.NotifyMediaPending, events.NotifyMediaAutoRequested}, f.rec.kinds())
	assert.False(t, f.rec.notes[1].NotifyAdmin)
}

func TestCreate_MovieDuplicateBlocked(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	t.Run("other tier is independent", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550, Is4K: true})
		assert.NoError(t, err)
	})

	t.Run("declined request does not block", func(t *testing.T) {
		_, err := f.svc.Decline(ctx, f.admin, first.ID)
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
		assert.NoError(t, err)
	})
}

func TestCreate_Permissions(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	ctx := context.Background()
	nobody := addUser(t, f.store, "nobody", 0)

	_, err := f.svc.Create(ctx, nobody, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	assert.ErrorIs(t, err, ErrPermission)

	_, err = f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550, UserID: &nobody.ID})
	assert.ErrorIs(t, err, ErrPermission, "only request managers may file for someone else")

	f.snap.Enable4KMovie = false
	_, err = f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550, Is4K: true})
	assert.ErrorIs(t, err, ErrPermission)
}

func TestCreate_TVSeasonDeduplication(t *testing.T) {
	f := newFixture(t)
	f.expectShow(1396, false)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeTV, TMDBID: 1396, Seasons: []int{1, 2}})
	require.NoError(t, err)
	require.Len(t, first.Seasons, 2)

	second, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeTV, TMDBID: 1396, AllSeasons: true})
	require.NoError(t, err)
	require.Len(t, second.Seasons, 1)
	assert.Equal(t, 3, second.Seasons[0].SeasonNumber, "season 0 and already requested seasons are dropped")

	_, err = f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeTV, TMDBID: 1396, AllSeasons: true})
	assert.ErrorIs(t, err, ErrNoSeasonsAvailable)

	m, err := f.store.GetMediaByTMDB(1396, media.TypeTV)
	require.NoError(t, err)
	require.NotNil(t, m.TVDBID)
	assert.Equal(t, int64(81189), *m.TVDBID)
}

func TestCreate_TVSkipsSeasonsAlreadyPresent(t *testing.T) {
	f := newFixture(t)
	f.expectShow(1396, false)
	ctx := context.Background()

	m := &media.Media{Type: media.TypeTV, TMDBID: 1396, Status: media.StatusPartiallyAvailable}
	require.NoError(t, f.store.AddMedia(m))
	require.NoError(t, f.store.UpsertSeason(&media.Season{MediaID: m.ID, SeasonNumber: 1, Status: media.StatusAvailable}))

	req, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeTV, TMDBID: 1396, Seasons: []int{1, 2}})
	require.NoError(t, err)
	require.Len(t, req.Seasons, 1)
	assert.Equal(t, 2, req.Seasons[0].SeasonNumber)
	assert.Equal(t, media.StatusPartiallyAvailable, f.mediaStatus(t, 1396, media.TypeTV, media.Standard),
		"a tier that is not unknown keeps its status")
}

func TestApprove_AnimeSeriesUsesAnimeDefaults(t *testing.T) {
	f := newFixture(t)
	f.expectShow(1429, true)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeTV, TMDBID: 1429, Seasons: []int{1, 2}})
	require.NoError(t, err)

	f.sonarr.EXPECT().AddSeries(gomock.Any(), sonarr.AddOptions{
		TVDBID:            81189,
		Title:             "Show",
		SeriesType:        sonarr.SeriesTypeAnime,
		ProfileID:         7,
		LanguageProfileID: 1,
		RootFolder:        "/anime",
		Tags:              []int{9},
		SeasonFolder:      true,
		Seasons:           []int{1, 2},
		SearchNow:         true,
	}).Return(&sonarr.Series{ID: 12, TitleSlug: "show"}, nil)

	approved, err := f.svc.Approve(ctx, f.admin, req.ID)
	require.NoError(t, err)
	f.svc.Wait()

	assert.Equal(t, media.RequestApproved, approved.Status)
	stored, err := f.store.GetRequest(req.ID)
	require.NoError(t, err)
	for _, sr := range stored.Seasons {
		assert.Equal(t, media.RequestApproved, sr.Status)
	}
	assert.Equal(t, media.StatusProcessing, f.mediaStatus(t, 1429, media.TypeTV, media.Standard))
	assert.Contains(t, f.rec.kinds(), events.NotifyMediaApproved)
}

func TestApprove_RequestOverridesWin(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, f.user, CreateInput{
		MediaType:  media.TypeMovie,
		TMDBID:     550,
		ProfileID:  ptr(int64(9)),
		RootFolder: ptr("/other"),
		Tags:       []int{},
	})
	require.NoError(t, err)

	f.radarr.EXPECT().AddMovie(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, opts radarr.AddOptions) (*radarr.Movie, error) {
			assert.Equal(t, int64(9), opts.ProfileID)
			assert.Equal(t, "/other", opts.RootFolder)
			assert.Empty(t, opts.Tags, "an empty override clears the instance tags")
			return &radarr.Movie{ID: 1}, nil
		})

	_, err = f.svc.Approve(ctx, f.admin, req.ID)
	require.NoError(t, err)
	f.svc.Wait()
}

func TestApprove_RequiresManagePermission(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, f.user, req.ID)
	assert.ErrorIs(t, err, ErrPermission)
	_, err = f.svc.Decline(ctx, f.user, req.ID)
	assert.ErrorIs(t, err, ErrPermission)
}

func TestApprove_DeclinedIsTerminal(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	require.NoError(t, err)
	_, err = f.svc.Decline(ctx, f.admin, req.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, f.admin, req.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSubmission_FailureMarksTierUnknown(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	f.radarr.EXPECT().AddMovie(gomock.Any(), gomock.Any()).Return(nil, errors.New("radarr down"))

	req, err := f.svc.Create(context.Background(), f.admin, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	require.NoError(t, err)
	f.svc.Wait()

	assert.Equal(t, media.StatusUnknown, f.mediaStatus(t, 550, media.TypeMovie, media.Standard))
	assert.Contains(t, f.rec.kinds(), events.NotifyMediaFailed)
	assert.Contains(t, f.rec.eventTypes(), events.EventSubmissionFailed)

	stored, err := f.store.GetRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, media.RequestApproved, stored.Status, "a failed submission keeps the request approved")
}

func TestRetry_ReturnsSubmissionError(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	ctx := context.Background()

	gomock.InOrder(
		f.radarr.EXPECT().AddMovie(gomock.Any(), gomock.Any()).Return(nil, errors.New("radarr down")),
		f.radarr.EXPECT().AddMovie(gomock.Any(), gomock.Any()).Return(nil, errors.New("still down")),
		f.radarr.EXPECT().AddMovie(gomock.Any(), gomock.Any()).Return(&radarr.Movie{ID: 5}, nil),
	)

	req, err := f.svc.Create(ctx, f.admin, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	require.NoError(t, err)
	f.svc.Wait()

	_, err = f.svc.Retry(ctx, f.admin, req.ID)
	assert.EqualError(t, err, "still down")

	_, err = f.svc.Retry(ctx, f.admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, media.StatusProcessing, f.mediaStatus(t, 550, media.TypeMovie, media.Standard))
}

func TestRetry_NoInstance(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, f.admin, CreateInput{MediaType: media.TypeMovie, TMDBID: 550, ServerID: ptr(int64(42))})
	require.NoError(t, err)
	f.svc.Wait()

	_, err = f.svc.Retry(ctx, f.admin, req.ID)
	assert.ErrorIs(t, err, ErrNoInstance)
}

func TestDecline_TVKeepsPendingWhileOthersPending(t *testing.T) {
	f := newFixture(t)
	f.expectShow(1396, false)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeTV, TMDBID: 1396, Seasons: []int{1}})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeTV, TMDBID: 1396, Seasons: []int{2}})
	require.NoError(t, err)

	_, err = f.svc.Decline(ctx, f.admin, first.ID)
	require.NoError(t, err)
	assert.Equal(t, media.StatusPending, f.mediaStatus(t, 1396, media.TypeTV, media.Standard))

	_, err = f.svc.Decline(ctx, f.admin, second.ID)
	require.NoError(t, err)
	assert.Equal(t, media.StatusUnknown, f.mediaStatus(t, 1396, media.TypeTV, media.Standard))
	assert.Equal(t, []events.NotificationKind{
		events.NotifyMediaPending, events.NotifyMediaPending,
		events.NotifyMediaDeclined, events.NotifyMediaDeclined,
	}, f.rec.kinds())
}

func TestDecline_MovieKeepsAvailableTier(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	require.NoError(t, err)
	m, err := f.store.GetMedia(req.MediaID)
	require.NoError(t, err)
	m.Status = media.StatusAvailable
	require.NoError(t, f.store.UpdateMedia(m))

	_, err = f.svc.Decline(ctx, f.admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, media.StatusAvailable, f.mediaStatus(t, 550, media.TypeMovie, media.Standard))
	assert.NotContains(t, f.rec.kinds(), events.NotifyMediaDeclined, "no decline notification for available media")
}

func TestRemove_RecomputesTiers(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	ctx := context.Background()

	std, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	require.NoError(t, err)
	fourK, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550, Is4K: true})
	require.NoError(t, err)

	m, err := f.store.GetMedia(std.MediaID)
	require.NoError(t, err)
	m.Status4K = media.StatusAvailable
	require.NoError(t, f.store.UpdateMedia(m))

	require.NoError(t, f.svc.Remove(ctx, std.ID))
	require.NoError(t, f.svc.Remove(ctx, fourK.ID))

	m, err = f.store.GetMedia(std.MediaID)
	require.NoError(t, err)
	assert.Equal(t, media.StatusUnknown, m.Status)
	assert.Equal(t, media.StatusAvailable, m.Status4K)

	assert.ErrorIs(t, f.svc.Remove(ctx, std.ID), media.ErrNotFound)
}

func TestRemoveUserRequests(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	f.expectMovie(603)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 603})
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveUserRequests(ctx, f.user.ID))

	left, err := f.store.ListRequestsByUser(f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Equal(t, media.StatusUnknown, f.mediaStatus(t, 550, media.TypeMovie, media.Standard))
	assert.Equal(t, media.StatusUnknown, f.mediaStatus(t, 603, media.TypeMovie, media.Standard))
}

func TestDeleteUser_RemovesRequestsThenUser(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	require.NoError(t, err)
	require.Equal(t, media.StatusPending, f.mediaStatus(t, 550, media.TypeMovie, media.Standard))

	require.NoError(t, f.svc.DeleteUser(ctx, f.admin, f.user.ID))

	_, err = f.store.GetUser(f.user.ID)
	assert.ErrorIs(t, err, media.ErrNotFound)
	left, err := f.store.ListRequestsByUser(f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Equal(t, media.StatusUnknown, f.mediaStatus(t, 550, media.TypeMovie, media.Standard))
	assert.Contains(t, f.rec.eventTypes(), events.EventRequestRemoved)
}

func TestDeleteUser_Refusals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := addUser(t, f.store, "other-admin", media.PermissionAdmin)

	tests := []struct {
		name   string
		actor  *media.User
		target int64
		want   error
	}{
		{name: "non-admin actor", actor: f.user, target: other.ID, want: ErrPermission},
		{name: "own account", actor: other, target: other.ID, want: ErrPermission},
		{name: "owner account", actor: other, target: f.admin.ID, want: ErrPermission},
		{name: "unknown user", actor: f.admin, target: 9999, want: media.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, f.svc.DeleteUser(ctx, tt.actor, tt.target), tt.want)
		})
	}

	_, err := f.store.GetUser(f.admin.ID)
	require.NoError(t, err)
	_, err = f.store.GetUser(other.ID)
	require.NoError(t, err)
}

func TestCompleteSeason(t *testing.T) {
	f := newFixture(t)
	f.expectShow(1396, false)
	f.sonarr.EXPECT().AddSeries(gomock.Any(), gomock.Any()).Return(&sonarr.Series{ID: 3}, nil)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, f.admin, CreateInput{MediaType: media.TypeTV, TMDBID: 1396, Seasons: []int{1, 2}})
	require.NoError(t, err)
	f.svc.Wait()

	got, err := f.svc.CompleteSeason(ctx, req.Seasons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, media.RequestApproved, got.Status)

	got, err = f.svc.CompleteSeason(ctx, req.Seasons[1].ID)
	require.NoError(t, err)
	assert.Equal(t, media.RequestCompleted, got.Status)
}

func TestMediaAvailable_ApprovesPendingAndNotifies(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	require.NoError(t, err)

	m, err := f.store.GetMedia(req.MediaID)
	require.NoError(t, err)
	m.Status = media.StatusAvailable
	require.NoError(t, f.store.UpdateMedia(m))

	require.NoError(t, f.svc.MediaAvailable(ctx, m.ID, media.Standard, media.StatusPending, nil))

	stored, err := f.store.GetRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, media.RequestApproved, stored.Status)
	assert.Equal(t, []events.NotificationKind{events.NotifyMediaPending, events.NotifyMediaAvailable}, f.rec.kinds())
	assert.True(t, f.rec.notes[1].NotifyAdmin)
}

func TestMediaAvailable_SeriesNotifiesWhenAllRequestedSeasonsAvailable(t *testing.T) {
	f := newFixture(t)
	f.expectShow(1396, false)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeTV, TMDBID: 1396, Seasons: []int{1, 2}})
	require.NoError(t, err)

	require.NoError(t, f.store.UpsertSeason(&media.Season{MediaID: req.MediaID, SeasonNumber: 1, Status: media.StatusAvailable}))
	require.NoError(t, f.svc.MediaAvailable(ctx, req.MediaID, media.Standard, media.StatusPending, []int{1}))
	assert.NotContains(t, f.rec.kinds(), events.NotifyMediaAvailable, "season 2 is still missing")

	m, err := f.store.GetMedia(req.MediaID)
	require.NoError(t, err)
	m.Status = media.StatusPartiallyAvailable
	require.NoError(t, f.store.UpdateMedia(m))
	require.NoError(t, f.store.UpsertSeason(&media.Season{MediaID: req.MediaID, SeasonNumber: 2, Status: media.StatusAvailable}))

	require.NoError(t, f.svc.MediaAvailable(ctx, req.MediaID, media.Standard, media.StatusPending, []int{2}))
	assert.Contains(t, f.rec.kinds(), events.NotifyMediaAvailable)
}

func TestApproveThenDecline_MovieReturnsToUnknown(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	f.radarr.EXPECT().AddMovie(gomock.Any(), gomock.Any()).Return(&radarr.Movie{ID: 77}, nil).MaxTimes(1)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	require.NoError(t, err)
	assert.Equal(t, media.StatusPending, f.mediaStatus(t, 550, media.TypeMovie, media.Standard))

	_, err = f.svc.Approve(ctx, f.admin, req.ID)
	require.NoError(t, err)
	_, err = f.svc.Decline(ctx, f.admin, req.ID)
	require.NoError(t, err)
	f.svc.Wait()

	assert.Equal(t, media.StatusUnknown, f.mediaStatus(t, 550, media.TypeMovie, media.Standard))
	stored, err := f.store.GetRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, media.RequestDeclined, stored.Status)
}

func TestSubmission_DeclinedWhileFetchingMetadataIsDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var gated atomic.Bool
	entered := make(chan struct{})
	release := make(chan struct{})
	f.tmdb.EXPECT().GetMovie(gomock.Any(), int64(550)).DoAndReturn(func(context.Context, int64) (*tmdb.Movie, error) {
		if gated.CompareAndSwap(true, false) {
			close(entered)
			<-release
		}
		return &tmdb.Movie{ID: 550, Title: "Fight Club", ReleaseDate: "1999-10-15"}, nil
	}).AnyTimes()
	// No AddMovie expectation: any call fails the test.

	req, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	require.NoError(t, err)

	gated.Store(true)
	_, err = f.svc.Approve(ctx, f.admin, req.ID)
	require.NoError(t, err)
	<-entered

	_, err = f.svc.Decline(ctx, f.admin, req.ID)
	require.NoError(t, err)
	close(release)
	f.svc.Wait()

	m, err := f.store.GetMediaByTMDB(550, media.TypeMovie)
	require.NoError(t, err)
	assert.Equal(t, media.StatusUnknown, m.Status)
	assert.Nil(t, m.Standard.ExternalServiceID)
	assert.NotContains(t, f.rec.eventTypes(), events.EventSubmissionSucceeded)
	assert.NotContains(t, f.rec.eventTypes(), events.EventSubmissionFailed)
}

func TestSubmission_RemovedRequestIsNotSubmitted(t *testing.T) {
	f := newFixture(t)
	f.expectMovie(550)
	ctx := context.Background()

	req, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeMovie, TMDBID: 550})
	require.NoError(t, err)
	require.NoError(t, f.store.UpdateRequestStatus(req.ID, media.RequestApproved, &f.admin.ID))
	req.Status = media.RequestApproved
	require.NoError(t, f.svc.Remove(ctx, req.ID))

	require.NoError(t, f.svc.submit(ctx, req))
}

func TestApprove_TVApprovesEverySeasonRequest(t *testing.T) {
	f := newFixture(t)
	f.expectShow(1396, false)
	f.sonarr.EXPECT().AddSeries(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, opts sonarr.AddOptions) (*sonarr.Series, error) {
			assert.ElementsMatch(t, []int{1, 2}, opts.Seasons)
			return &sonarr.Series{ID: 3}, nil
		})
	ctx := context.Background()

	req, err := f.svc.Create(ctx, f.user, CreateInput{MediaType: media.TypeTV, TMDBID: 1396, Seasons: []int{1, 2}})
	require.NoError(t, err)
	require.Len(t, req.Seasons, 2)
	for _, sr := range req.Seasons {
		assert.Equal(t, media.RequestPending, sr.Status)
	}

	_, err = f.svc.Approve(ctx, f.admin, req.ID)
	require.NoError(t, err)
	f.svc.Wait()

	stored, err := f.store.GetRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, media.RequestApproved, stored.Status)
	require.Len(t, stored.Seasons, 2)
	for _, sr := range stored.Seasons {
		assert.Equal(t, media.RequestApproved, sr.Status, "season %d", sr.SeasonNumber)
	}
	assert.Equal(t, media.StatusProcessing, f.mediaStatus(t, 1396, media.TypeTV, media.Standard))
}
