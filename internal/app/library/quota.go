package library

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mentor-ia/mentor/internal/domain"
	"github.com/mentor-ia/mentor/internal/infra/metrics"
)

// dailyCount is the persisted per-day usage counter. It resets when the
// stored date differs from today.
type dailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Quota reports today's usage against the free limit. Premium users are
// always allowed and get Remaining -1.
func (l *Library) Quota(ctx context.Context) domain.Quota {
	l.mu.Lock()
	defer l.mu.Unlock()

	var dc dailyCount
	l.load(ctx, DailyCountKey, &dc)
	premium, err := l.readPremium(ctx)
	if err != nil {
		l.log.Warn("premium flag unreadable, treating as free", zap.Error(err))
	}
	return l.quotaFrom(dc, premium)
}

// Consume counts one explanation against today's quota. It fails with
// ErrDailyLimitReached when a free user is out of explanations, and with
// ErrStoreUnavailable when the counter cannot be read.
func (l *Library) Consume(ctx context.Context) (domain.Quota, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	dc, premium, err := l.quotaForUpdate(ctx)
	if err != nil {
		return domain.Quota{}, err
	}
	q := l.quotaFrom(dc, premium)
	if !q.Allowed {
		return q, domain.ErrDailyLimitReached
	}

	dc = dailyCount{Date: l.today(), Count: q.Used + 1}
	if err := l.save(ctx, DailyCountKey, dc); err != nil {
		return q, err
	}
	return l.quotaFrom(dc, premium), nil
}

// Refund gives back one explanation consumed today, for a request that
// failed after Consume.
func (l *Library) Refund(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var dc dailyCount
	if err := l.loadForUpdate(ctx, DailyCountKey, &dc); err != nil {
		return err
	}
	if dc.Date != l.today() || dc.Count == 0 {
		return nil
	}
	dc.Count--
	return l.save(ctx, DailyCountKey, dc)
}

// SetPremium toggles unlimited usage.
func (l *Library) SetPremium(ctx context.Context, premium bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.kv.Set(ctx, PremiumKey, strconv.FormatBool(premium)); err != nil {
		metrics.StoreFailures.WithLabelValues("set").Inc()
		return fmt.Errorf("%w: save %s: %v", domain.ErrStoreUnavailable, PremiumKey, err)
	}
	return nil
}

// IsPremium reports whether usage is unlimited. An unreadable flag reads
// as false.
func (l *Library) IsPremium(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	premium, err := l.readPremium(ctx)
	if err != nil {
		l.log.Warn("premium flag unreadable, treating as free", zap.Error(err))
	}
	return premium
}

// readPremium returns ErrStoreUnavailable on a failed read. A malformed
// flag is logged and reads as false.
func (l *Library) readPremium(ctx context.Context) (bool, error) {
	raw, ok, err := l.kv.Get(ctx, PremiumKey)
	if err != nil {
		metrics.StoreFailures.WithLabelValues("get").Inc()
		return false, fmt.Errorf("%w: read %s: %v", domain.ErrStoreUnavailable, PremiumKey, err)
	}
	if !ok {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		metrics.StoreFailures.WithLabelValues("decode").Inc()
		l.log.Warn("premium flag malformed, treating as free", zap.String("value", raw), zap.Error(err))
		return false, nil
	}
	return b, nil
}

func (l *Library) quotaForUpdate(ctx context.Context) (dailyCount, bool, error) {
	var dc dailyCount
	if err := l.loadForUpdate(ctx, DailyCountKey, &dc); err != nil {
		return dc, false, err
	}
	premium, err := l.readPremium(ctx)
	if err != nil {
		return dc, false, err
	}
	return dc, premium, nil
}

func (l *Library) quotaFrom(dc dailyCount, premium bool) domain.Quota {
	used := 0
	if dc.Date == l.today() {
		used = dc.Count
	}

	if premium {
		return domain.Quota{Allowed: true, Remaining: -1, Limit: -1, Used: used}
	}
	remaining := l.dailyLimit - used
	if remaining < 0 {
		remaining = 0
	}
	return domain.Quota{Allowed: remaining > 0, Remaining: remaining, Limit: l.dailyLimit, Used: used}
}

func (l *Library) today() string {
	return l.now().Format(time.DateOnly)
}
