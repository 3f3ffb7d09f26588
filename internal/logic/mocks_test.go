package logic

import (
	"context"
	"reflect"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/worldscrystal/prediction-api/internal/models"
)

func assign(dest, value interface{}) {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr {
		return
	}
	vv := reflect.ValueOf(value)
	if vv.Type().ConvertibleTo(dv.Elem().Type()) {
		dv.Elem().Set(vv.Convert(dv.Elem().Type()))
	}
}

// fakePgPool satisfies PgPool with pluggable query results
type fakePgPool struct {
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	ExecCalls    int
}

func (f *fakePgPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if f.QueryFunc != nil {
		return f.QueryFunc(ctx, sql, args...)
	}
	return &fakeRows{}, nil
}

func (f *fakePgPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if f.QueryRowFunc != nil {
		return f.QueryRowFunc(ctx, sql, args...)
	}
	return &fakeRow{err: pgx.ErrNoRows}
}

func (f *fakePgPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.ExecCalls++
	return pgconn.CommandTag{}, nil
}

func (f *fakePgPool) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, nil
}

// fakeRows serves canned row data; each inner slice is one row
type fakeRows struct {
	pgx.Rows
	data [][]any
	idx  int
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	for i := range dest {
		if i < len(row) {
			assign(dest[i], row[i])
		}
	}
	return nil
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }

type fakeRow struct {
	values []any
	err    error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i := range dest {
		if i < len(r.values) {
			assign(dest[i], r.values[i])
		}
	}
	return nil
}

// fakeCHConn serves canned analytics rows
type fakeCHConn struct {
	driver.Conn
	data       [][]any
	QueryCalls int
}

func (c *fakeCHConn) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	c.QueryCalls++
	return &fakeCHRows{data: c.data}, nil
}

type fakeCHRows struct {
	driver.Rows
	data [][]any
	idx  int
}

func (r *fakeCHRows) Next() bool {
	r.idx++
	return r.idx <= len(r.data)
}

func (r *fakeCHRows) Scan(dest ...interface{}) error {
	row := r.data[r.idx-1]
	for i := range dest {
		if i < len(row) {
			assign(dest[i], row[i])
		}
	}
	return nil
}

func (r *fakeCHRows) Close() error { return nil }
func (r *fakeCHRows) Err() error   { return nil }

// stubScheduleService returns a fixed in-memory schedule
type stubScheduleService struct {
	schedule *models.TournamentSchedule
	err      error
}

func (s *stubScheduleService) GetTournamentSchedule(ctx context.Context, tournamentID int64) (*models.TournamentSchedule, error) {
	return s.schedule, s.err
}

func (s *stubScheduleService) GetTournamentScheduleBySlug(ctx context.Context, slug string) (*models.TournamentSchedule, error) {
	return s.schedule, s.err
}

func (s *stubScheduleService) RemainingGameCount(ctx context.Context, tournamentID int64) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return TotalPotentialGames(s.schedule), nil
}

// stubRatingService serves a fixed rating table, base for missing teams
type stubRatingService struct {
	ratings map[int64]float64
	base    float64
}

func (s *stubRatingService) GetRating(ctx context.Context, teamID int64) (float64, error) {
	if r, ok := s.ratings[teamID]; ok {
		return r, nil
	}
	return s.base, nil
}

func (s *stubRatingService) GetRatings(ctx context.Context, teamIDs []int64) (map[int64]float64, error) {
	out := make(map[int64]float64, len(teamIDs))
	for _, id := range teamIDs {
		if r, ok := s.ratings[id]; ok {
			out[id] = r
		} else {
			out[id] = s.base
		}
	}
	return out, nil
}

func (s *stubRatingService) SetRating(ctx context.Context, teamID int64, rating float64, source string) error {
	return nil
}

func (s *stubRatingService) RebuildTournamentElo(ctx context.Context, tournamentID int64) (*models.RebuildResult, error) {
	return &models.RebuildResult{}, nil
}

// stubOutcomeService returns a fixed champion distribution
type stubOutcomeService struct {
	outcome *models.TournamentOutcome
	err     error
}

func (s *stubOutcomeService) ComputeTournamentOutcome(ctx context.Context, tournamentID int64) (*models.TournamentOutcome, error) {
	return s.outcome, s.err
}
