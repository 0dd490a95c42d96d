// Package animelist maintains the community AniDB mapping table used to
// resolve items matched by the Hama agent.
package animelist

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
)

//go:generate mockgen -destination=mocks/animelist_mock.go -package=mocks . Mapper

const defaultRefreshInterval = 24 * time.Hour

// specialRegexp pulls the TVDB episode out of a mapping entry like ";1-2;".
var specialRegexp = regexp.MustCompile(`;[0-9]+-([0-9]+);`)

// Item is the set of catalog ids known for one AniDB id. Zero values mean
// unknown.
type Item struct {
	TVDBID int64
	TMDBID int64
	IMDBID string
}

// Mapper is the read side of the mapping used by the resolver.
type Mapper interface {
	Loaded() bool
	ByAniDBID(anidbID int64) (Item, bool)
	SpecialEpisode(tvdbID int64, episode int) (Item, bool)
}

type table struct {
	mapping  map[int64]Item
	specials map[int64]map[int]int64 // tvdb id -> special episode -> anidb id
}

// List downloads, caches and indexes the anime list XML.
type List struct {
	url        string
	path       string
	refresh    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	retries    uint64

	syncing atomic.Bool

	mu    sync.RWMutex
	table *table
}

// Option configures a List.
type Option func(*List)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(l *List) { l.httpClient = hc }
}

// WithRefreshInterval sets how old the local file may get before it is
// downloaded again.
func WithRefreshInterval(d time.Duration) Option {
	return func(l *List) { l.refresh = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *List) { l.logger = logger }
}

// WithRetries sets how many times a failed download is retried.
func WithRetries(n uint64) Option {
	return func(l *List) { l.retries = n }
}

// New returns a List that mirrors url into the local file at path.
func New(url, path string, opts ...Option) *List {
	l := &List{
		url:        url,
		path:       path,
		refresh:    defaultRefreshInterval,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		logger:     slog.Default(),
		retries:    3,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "animelist")
	return l
}

// Sync refreshes the local copy if it is older than the refresh interval and
// (re)loads the table. Only one sync runs at a time; a concurrent call
// returns nil immediately.
func (l *List) Sync(ctx context.Context) error {
	if !l.syncing.CompareAndSwap(false, true) {
		return nil
	}
	defer l.syncing.Store(false)

	if info, err := os.Stat(l.path); err == nil && time.Since(info.ModTime()) < l.refresh {
		if l.Loaded() {
			return nil
		}
		return l.load()
	}

	if err := l.download(ctx); err != nil {
		return fmt.Errorf("download anime list: %w", err)
	}
	return l.load()
}

func (l *List) download(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := l.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status: %s", resp.Status)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		tmp, err := os.CreateTemp(filepath.Dir(l.path), ".anime-list-*.xml")
		if err != nil {
			return backoff.Permanent(err)
		}
		defer os.Remove(tmp.Name())
		if _, err := io.Copy(tmp, resp.Body); err != nil {
			tmp.Close()
			return err
		}
		if err := tmp.Close(); err != nil {
			return err
		}
		return os.Rename(tmp.Name(), l.path)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), l.retries), ctx)
	return backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		l.logger.Warn("anime list download failed, retrying", "error", err, "wait", wait)
	})
}

func (l *List) load() error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open anime list: %w", err)
	}
	defer f.Close()

	t, err := parse(f)
	if err != nil {
		return fmt.Errorf("parse anime list: %w", err)
	}

	l.mu.Lock()
	l.table = t
	l.mu.Unlock()
	l.logger.Info("anime list loaded", "entries", len(t.mapping), "specials", len(t.specials))
	return nil
}

// Loaded reports whether a table has been parsed.
func (l *List) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.table != nil && len(l.table.mapping) > 0
}

// ByAniDBID returns the ids mapped to an AniDB id.
func (l *List) ByAniDBID(anidbID int64) (Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.table == nil {
		return Item{}, false
	}
	item, ok := l.table.mapping[anidbID]
	return item, ok
}

// SpecialEpisode returns the ids of the AniDB entry that a TVDB season 0
// episode stands for.
func (l *List) SpecialEpisode(tvdbID int64, episode int) (Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.table == nil {
		return Item{}, false
	}
	anidbID, ok := l.table.specials[tvdbID][episode]
	if !ok {
		return Item{}, false
	}
	item, ok := l.table.mapping[anidbID]
	return item, ok
}

type xmlList struct {
	Anime []xmlAnime `xml:"anime"`
}

type xmlAnime struct {
	AniDBID           string          `xml:"anidbid,attr"`
	TVDBID            string          `xml:"tvdbid,attr"`
	TMDBID            string          `xml:"tmdbid,attr"`
	IMDBID            string          `xml:"imdbid,attr"`
	DefaultTVDBSeason string          `xml:"defaulttvdbseason,attr"`
	MappingLists      []xmlMappingSet `xml:"mapping-list"`
}

type xmlMappingSet struct {
	Mappings []xmlMapping `xml:"mapping"`
}

type xmlMapping struct {
	TVDBSeason string `xml:"tvdbseason,attr"`
	Text       string `xml:",chardata"`
}

func parse(r io.Reader) (*table, error) {
	var doc xmlList
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	if len(doc.Anime) == 0 {
		return nil, errors.New("no anime entries")
	}

	t := &table{
		mapping:  make(map[int64]Item, len(doc.Anime)),
		specials: make(map[int64]map[int]int64),
	}
	addSpecial := func(tvdbID int64, episode int, anidbID int64) {
		if t.specials[tvdbID] == nil {
			t.specials[tvdbID] = make(map[int]int64)
		}
		t.specials[tvdbID][episode] = anidbID
	}

	for _, a := range doc.Anime {
		anidbID, err := strconv.ParseInt(a.AniDBID, 10, 64)
		if err != nil {
			continue
		}
		// tvdbid is often "movie", "hentai" or "OVA" instead of a number
		tvdbID, _ := strconv.ParseInt(a.TVDBID, 10, 64)
		tmdbID, _ := strconv.ParseInt(a.TMDBID, 10, 64)
		imdbID := a.IMDBID
		if !strings.HasPrefix(imdbID, "tt") {
			imdbID = ""
		}
		t.mapping[anidbID] = Item{TVDBID: tvdbID, TMDBID: tmdbID, IMDBID: imdbID}

		if tvdbID == 0 {
			continue
		}
		for _, set := range a.MappingLists {
			for _, m := range set.Mappings {
				if m.TVDBSeason != "0" || m.Text == "" {
					continue
				}
				match := specialRegexp.FindStringSubmatch(m.Text)
				if match == nil {
					continue
				}
				episode, _ := strconv.Atoi(match[1])
				addSpecial(tvdbID, episode, anidbID)
			}
		}
		// A movie without a mapping list is the first special itself.
		if imdbID != "" && a.DefaultTVDBSeason == "0" && len(a.MappingLists) == 0 {
			addSpecial(tvdbID, 1, anidbID)
		}
	}
	return t, nil
}
