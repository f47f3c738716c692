package tracker

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/dmitrijs2005/mailtrack/internal/logging"
	"github.com/dmitrijs2005/mailtrack/internal/repositories/counters"
)

// Tier identifies which step of the fallback chain produced an id.
type Tier int

const (
	TierCounter Tier = iota + 1
	TierReadModifyWrite
	TierHistory
	TierRandom
)

func (t Tier) String() string {
	switch t {
	case TierCounter:
		return "counter"
	case TierReadModifyWrite:
		return "read-modify-write"
	case TierHistory:
		return "history"
	case TierRandom:
		return "random"
	default:
		return "tier(" + strconv.Itoa(int(t)) + ")"
	}
}

type Allocation struct {
	ID   string
	Tier Tier
}

// RecentIDLister is the slice of the mails repository the allocator scans.
type RecentIDLister interface {
	RecentIDs(ctx context.Context, limit int) ([]string, error)
}

type AllocatorOptions struct {
	CounterKey string
	// Baseline is the floor of the sequence; the first id is Baseline+1.
	Baseline  int64
	ScanLimit int
	// Strict keeps the read-modify-write tier from writing the counter,
	// so only the atomic increment ever advances it.
	Strict bool
}

func DefaultAllocatorOptions() AllocatorOptions {
	return AllocatorOptions{
		CounterKey: common.TrackingCounterKey,
		Baseline:   common.TrackingBaseline,
		ScanLimit:  common.RecentScanLimit,
	}
}

// randomSpan is the width of the last-resort range #244..#1143.
const randomSpan = 900

var sequentialID = regexp.MustCompile(`^#(\d+)$`)

// Allocator issues tracking ids. It never fails: when every backend path is
// down it returns a random id, and uniqueness is left to the store's insert.
type Allocator struct {
	counters counters.Repository
	mails    RecentIDLister
	opts     AllocatorOptions
	log      logging.Logger
	randIntn func(n int) int
}

func NewAllocator(c counters.Repository, m RecentIDLister, opts AllocatorOptions, log logging.Logger) *Allocator {
	d := DefaultAllocatorOptions()
	if opts.CounterKey == "" {
		opts.CounterKey = d.CounterKey
	}
	if opts.Baseline <= 0 {
		opts.Baseline = d.Baseline
	}
	if opts.ScanLimit <= 0 {
		opts.ScanLimit = d.ScanLimit
	}
	return &Allocator{counters: c, mails: m, opts: opts, log: log, randIntn: rand.IntN}
}

// FormatID renders a sequence number as a tracking id.
func FormatID(n int64) string {
	return "#" + strconv.FormatInt(n, 10)
}

// ParseSequential extracts n from "#n"; ok is false for any other shape.
func ParseSequential(id string) (int64, bool) {
	m := sequentialID.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (a *Allocator) Allocate(ctx context.Context) Allocation {
	n, err := a.counters.Increment(ctx, a.opts.CounterKey)
	if err == nil {
		return Allocation{ID: FormatID(n), Tier: TierCounter}
	}
	a.log.Warn(ctx, "atomic counter increment failed", "key", a.opts.CounterKey, "error", err)

	id, err := a.readModifyWrite(ctx)
	if err == nil {
		return Allocation{ID: id, Tier: TierReadModifyWrite}
	}
	a.log.Warn(ctx, "counter read-modify-write failed", "key", a.opts.CounterKey, "error", err)

	id, err = a.fromHistory(ctx)
	if err == nil {
		return Allocation{ID: id, Tier: TierHistory}
	}
	a.log.Warn(ctx, "tracking id scan failed", "error", err)

	id = FormatID(a.opts.Baseline + 1 + int64(a.randIntn(randomSpan)))
	a.log.Warn(ctx, "issuing random tracking id", "id", id)
	return Allocation{ID: id, Tier: TierRandom}
}

func (a *Allocator) readModifyWrite(ctx context.Context) (string, error) {
	c, err := a.counters.Get(ctx, a.opts.CounterKey)
	if err != nil {
		return "", err
	}
	value := a.opts.Baseline
	if c.Value != nil {
		value = *c.Value
	}
	next := value + 1
	if a.opts.Strict {
		return FormatID(next), nil
	}
	if err := a.counters.Set(ctx, a.opts.CounterKey, next); err != nil {
		return "", fmt.Errorf("write back %d: %w", next, err)
	}
	return FormatID(next), nil
}

func (a *Allocator) fromHistory(ctx context.Context) (string, error) {
	if a.mails == nil {
		return "", errors.New("no record source")
	}
	ids, err := a.mails.RecentIDs(ctx, a.opts.ScanLimit)
	if err != nil {
		return "", err
	}
	return FormatID(MaxSequential(ids, a.opts.Baseline) + 1), nil
}

// MaxSequential returns the largest n among ids shaped "#n", or floor if
// that is larger. Other ids are ignored.
func MaxSequential(ids []string, floor int64) int64 {
	top := floor
	for _, id := range ids {
		if n, ok := ParseSequential(id); ok && n > top {
			top = n
		}
	}
	return top
}
