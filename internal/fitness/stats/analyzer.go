package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/fittracker/internal/fitness/records"
	"github.com/2beens/fittracker/internal/fitness/users"
	"github.com/2beens/fittracker/internal/telemetry/metrics"
	"github.com/2beens/fittracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

//go:generate mockgen -source=$GOFILE -destination=stats_mocks_test.go -package=stats_test

type recordsLister interface {
	List(ctx context.Context, userID string, modality records.Modality) ([]records.Record, error)
}

type UserStats struct {
	Series []ChartPoint `json:"series"`
	Totals Totals       `json:"totals"`
}

type UserOverview struct {
	User users.User `json:"user"`
	UserStats
}

// Best is the single largest entry of the day and who logged it.
type Best struct {
	UserName string `json:"userName"`
	Value    int    `json:"value"`
}

// DailySummary aggregates the entries logged since local midnight.
type DailySummary struct {
	ActiveUsers int   `json:"activeUsers"`
	TotalFirst  int   `json:"totalFirst"`
	TotalSecond int   `json:"totalSecond"`
	BestFirst   *Best `json:"bestFirst,omitempty"`
	BestSecond  *Best `json:"bestSecond,omitempty"`
}

type Overview struct {
	Modality records.Modality `json:"modality"`
	Users    []UserOverview   `json:"users"`
	Today    DailySummary     `json:"today"`
	// Errors lists the users whose entries could not be fetched.
	Errors []string `json:"errors,omitempty"`
}

type Analyzer struct {
	roster      users.Lister
	records     recordsLister
	concurrency int
	loc         *time.Location
	metrics     *metrics.Manager
}

func NewAnalyzer(
	roster users.Lister,
	records recordsLister,
	concurrency int,
	loc *time.Location,
	metricsManager *metrics.Manager,
) *Analyzer {
	if concurrency <= 0 {
		concurrency = 1
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Analyzer{
		roster:      roster,
		records:     records,
		concurrency: concurrency,
		loc:         loc,
		metrics:     metricsManager,
	}
}

func (a *Analyzer) Location() *time.Location {
	return a.loc
}

// UserStats computes the chart series and rolling totals of one user's entries.
func (a *Analyzer) UserStats(
	ctx context.Context,
	userID string,
	modality records.Modality,
	ref time.Time,
) (_ *UserStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.stats.user")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID))

	recs, err := a.records.List(ctx, userID, modality)
	if err != nil {
		return nil, err
	}

	return &UserStats{
		Series: ChartSeries(recs, a.loc),
		Totals: RollingTotals(recs, ref),
	}, nil
}

type userFetch struct {
	user    users.User
	records []records.Record
	err     error
}

// Overview fetches every roster member's entries concurrently and aggregates them.
// When some fetches fail, the overview covers the users that succeeded, lists
// the failures in Errors, and the combined error is returned alongside it.
// A nil overview means the roster itself could not be read.
func (a *Analyzer) Overview(
	ctx context.Context,
	modality records.Modality,
	now time.Time,
) (_ *Overview, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.stats.overview")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("modality", modality.String()))

	roster, err := a.roster.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	span.SetAttributes(attribute.Int("roster.size", len(roster)))

	fetches := make([]userFetch, len(roster))
	sem := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup
	for i, u := range roster {
		wg.Add(1)
		go func(i int, u users.User) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			recs, err := a.records.List(ctx, u.ID, modality)
			fetches[i] = userFetch{user: u, records: recs, err: err}
		}(i, u)
	}
	wg.Wait()

	overview := &Overview{
		Modality: modality,
		Users:    make([]UserOverview, 0, len(roster)),
	}

	var fetchErr error
	var succeeded []userFetch
	for _, f := range fetches {
		if f.err != nil {
			log.Errorf("overview: list entries for user [%s]: %s", f.user.ID, f.err)
			if a.metrics != nil {
				a.metrics.CounterOverviewFetchFailures.Inc()
			}
			fetchErr = multierr.Append(fetchErr, fmt.Errorf("user %s: %w", f.user.ID, f.err))
			overview.Errors = append(overview.Errors, fmt.Sprintf("failed to fetch entries for %s", f.user.Name))
			continue
		}
		succeeded = append(succeeded, f)
		overview.Users = append(overview.Users, UserOverview{
			User: f.user,
			UserStats: UserStats{
				Series: ChartSeries(f.records, a.loc),
				Totals: RollingTotals(f.records, now),
			},
		})
	}

	overview.Today = a.dailySummary(succeeded, now)
	return overview, fetchErr
}

func (a *Analyzer) dailySummary(fetches []userFetch, now time.Time) DailySummary {
	localNow := now.In(a.loc)
	midnight := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, a.loc)
	tomorrow := midnight.AddDate(0, 0, 1)

	var summary DailySummary
	bestFirst, bestSecond := Best{}, Best{}
	for _, f := range fetches {
		active := false
		for _, r := range f.records {
			if r.Timestamp.Before(midnight) || !r.Timestamp.Before(tomorrow) {
				continue
			}
			active = true

			first, second := r.Values()
			summary.TotalFirst += first
			summary.TotalSecond += second
			// strict: the first user reaching the maximum keeps it
			if first > bestFirst.Value {
				bestFirst = Best{UserName: f.user.Name, Value: first}
			}
			if second > bestSecond.Value {
				bestSecond = Best{UserName: f.user.Name, Value: second}
			}
		}
		if active {
			summary.ActiveUsers++
		}
	}

	if bestFirst.Value > 0 {
		summary.BestFirst = &bestFirst
	}
	if bestSecond.Value > 0 {
		summary.BestSecond = &bestSecond
	}
	return summary
}
