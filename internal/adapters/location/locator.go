package location

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/anishmaharjan/caremap/internal/core/domain"
)

const (
	// acquireTimeout bounds a single position acquisition.
	acquireTimeout = 20 * time.Second
	// maxFixAge is how long a previous fix stays usable as a fallback.
	maxFixAge = 5 * time.Minute
)

// Source produces a current position. Implementations may block up to the
// context deadline.
type Source interface {
	Position(ctx context.Context) (domain.GeoPoint, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context) (domain.GeoPoint, error)

func (f SourceFunc) Position(ctx context.Context) (domain.GeoPoint, error) { return f(ctx) }

// Static is a Source pinned to a fixed point, used by the sync daemon where
// the service area center comes from configuration.
func Static(p domain.GeoPoint) Source {
	return SourceFunc(func(context.Context) (domain.GeoPoint, error) {
		if p.IsZero() {
			return domain.GeoPoint{}, domain.ErrLocationUnavailable
		}
		return p, nil
	})
}

// CachedLocator implements ports.Locator over a Source, falling back to the
// last known fix when acquisition fails.
type CachedLocator struct {
	source Source

	mu      sync.Mutex
	lastFix domain.GeoPoint
	fixedAt time.Time
}

// NewCachedLocator creates a CachedLocator.
func NewCachedLocator(source Source) *CachedLocator {
	return &CachedLocator{source: source}
}

// CurrentPosition acquires a position with a bounded timeout. When
// acquisition fails, a fix younger than maxFixAge is returned instead;
// otherwise the position is unavailable.
func (l *CachedLocator) CurrentPosition(ctx context.Context) (domain.GeoPoint, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()

	pos, err := l.source.Position(acquireCtx)
	if err == nil && !pos.IsZero() {
		l.mu.Lock()
		l.lastFix = pos
		l.fixedAt = time.Now()
		l.mu.Unlock()
		return pos, nil
	}

	l.mu.Lock()
	fix, age := l.lastFix, time.Since(l.fixedAt)
	l.mu.Unlock()

	if !fix.IsZero() && age <= maxFixAge {
		slog.Warn("position acquisition failed, using last fix",
			"error", err, "fix_age", age.Round(time.Second))
		return fix, nil
	}
	if err == nil {
		err = fmt.Errorf("empty position")
	}
	return domain.GeoPoint{}, fmt.Errorf("%w: %v", domain.ErrLocationUnavailable, err)
}
