package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/vmunix/mediarr/internal/adapters/plex"
	"github.com/vmunix/mediarr/internal/config"
	"github.com/vmunix/mediarr/internal/resolver"
)

// scan is the state of one Run.
type scan struct {
	*Scanner
	session  string
	settings Settings
	reader   plex.LibraryReader
	resolver *resolver.Resolver
	log      *slog.Logger
}

func (sc *scan) aborted(ctx context.Context) bool {
	return ctx.Err() != nil || sc.Session() != sc.session
}

// hasHama reports whether any of libs is matched by the Hama agent.
func (sc *scan) hasHama(ctx context.Context, libs []config.PlexLibrary) bool {
	all, err := sc.reader.Libraries(ctx)
	if err != nil {
		sc.log.Warn("list plex libraries failed", "error", err)
		return false
	}
	for _, l := range all {
		if l.Agent != plex.AgentHama {
			continue
		}
		for _, want := range libs {
			if want.ID == l.Key {
				return true
			}
		}
	}
	return false
}

func (sc *scan) library(ctx context.Context, lib config.PlexLibrary) error {
	log := sc.log.With("library", lib.Name)
	if sc.recentOnly {
		return sc.recent(ctx, lib, log)
	}
	return sc.full(ctx, lib, log)
}

func (sc *scan) full(ctx context.Context, lib config.PlexLibrary, log *slog.Logger) error {
	log.Info("beginning full library scan")
	offset := 0
	for {
		if sc.aborted(ctx) {
			return ErrAborted
		}
		page, err := sc.reader.LibraryContents(ctx, lib.ID, offset, sc.pageSize)
		if err != nil {
			return fmt.Errorf("library %s contents at %d: %w", lib.Name, offset, err)
		}
		log.Debug("scanning page", "offset", offset, "items", len(page.Items), "total", page.TotalSize)
		if err := sc.items(ctx, page.Items); err != nil {
			return err
		}
		offset += len(page.Items)
		if len(page.Items) < sc.pageSize {
			break
		}
	}
	sc.markScanned(lib.ID)
	return nil
}

func (sc *scan) recent(ctx context.Context, lib config.PlexLibrary, log *slog.Logger) error {
	started := sc.now()
	since := time.Unix(0, 0)
	if last := sc.LastScan(lib.ID); !last.IsZero() {
		since = last.Add(-recentBuffer)
	}
	added, err := sc.reader.RecentlyAdded(ctx, lib.ID, since)
	if err != nil {
		return fmt.Errorf("library %s recently added: %w", lib.Name, err)
	}

	// Episodes and seasons are collapsed onto their show so each show is
	// processed once.
	seen := make(map[string]bool)
	var items []plex.Metadata
	for _, it := range added {
		key := it.RatingKey
		switch {
		case it.GrandparentRatingKey != "":
			key = it.GrandparentRatingKey
		case it.ParentRatingKey != "":
			key = it.ParentRatingKey
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, it)
	}
	log.Info("scanning recently added", "since", since, "items", len(items))
	if err := sc.items(ctx, items); err != nil {
		return err
	}

	sc.mu.Lock()
	sc.lastScan[lib.ID] = started
	sc.mu.Unlock()
	return nil
}

func (sc *scan) markScanned(libraryID string) {
	sc.mu.Lock()
	sc.lastScan[libraryID] = sc.now()
	sc.mu.Unlock()
}

// items processes one batch concurrently. Item failures are logged and
// counted; only an abort stops the batch.
func (sc *scan) items(ctx context.Context, items []plex.Metadata) error {
	sem := semaphore.NewWeighted(int64(sc.concurrency))
	var wg sync.WaitGroup
	for _, it := range items {
		if sc.aborted(ctx) {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(it plex.Metadata) {
			defer wg.Done()
			defer sem.Release(1)
			sc.item(ctx, it)
		}(it)
	}
	wg.Wait()
	if sc.aborted(ctx) {
		return ErrAborted
	}
	return nil
}

func (sc *scan) item(ctx context.Context, it plex.Metadata) {
	var err error
	switch it.Type {
	case "movie":
		err = sc.plexMovie(ctx, it)
	case "show", "season", "episode":
		err = sc.plexShow(ctx, it)
	default:
		sc.log.Debug("skipping item", "type", it.Type, "title", it.Title)
		return
	}
	switch {
	case err == nil:
		sc.metrics.ScannerItems.WithLabelValues("ok").Inc()
	case errors.Is(err, resolver.ErrUnresolvable):
		sc.metrics.ScannerItems.WithLabelValues("unresolvable").Inc()
		sc.log.Debug("item not matched", "title", it.Title, "error", err)
	default:
		sc.metrics.ScannerItems.WithLabelValues("error").Inc()
		sc.log.Error("failed to process item", "title", it.Title, "rating_key", it.RatingKey, "error", err)
	}
}
