package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lib/pq"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/pkg/logger"
	"github.com/eugene-kuroles/nakama-proj/pkg/metrics"
)

const (
	defaultMaxOpenConns    = 10
	defaultConnMaxLifetime = 5 * time.Minute
)

const callsQuery = `
SELECT c.id, c.project_id, COALESCE(c.external_id, ''), c.manager_id, COALESCE(m.name, ''),
       c.call_date, COALESCE(c.duration_seconds, 0), c.final_percent,
       COALESCE(c.extra_data->>'summary', '')
FROM calls c
LEFT JOIN managers m ON m.id = c.manager_id
WHERE c.call_date IS NOT NULL
  AND c.final_percent IS NOT NULL
  AND ($1::bigint = 0 OR c.project_id = $1)
  AND ($2::bigint = 0 OR c.manager_id = $2)
  AND ($3::date IS NULL OR c.call_date::date >= $3::date)
  AND ($4::date IS NULL OR c.call_date::date <= $4::date)
ORDER BY c.call_date, c.id`

const scoresQuery = `
SELECT s.call_id, s.criteria_id, COALESCE(s.score, ''), COALESCE(s.reason, ''),
       cr.number, cr.name, cr.in_final_score, LOWER(cr.score_type::text), cr."order",
       g.id, g.name, g."order"
FROM call_scores s
JOIN criteria cr ON cr.id = s.criteria_id
JOIN criteria_groups g ON g.id = cr.group_id
WHERE s.call_id = ANY($1)
ORDER BY s.call_id, s.id`

const groupAveragesQuery = `
SELECT a.call_id, a.group_id, g.name, g."order", a.average_percent
FROM call_group_averages a
JOIN criteria_groups g ON g.id = a.group_id
WHERE a.call_id = ANY($1)
ORDER BY a.call_id, a.id`

const countQuery = `SELECT COUNT(*) FROM calls WHERE call_date IS NOT NULL AND final_percent IS NOT NULL`

// PostgresStore reads calls from the analytics schema with lib/pq.
type PostgresStore struct {
	db     *sql.DB
	closed atomic.Bool

	maxOpenConns    int
	connMaxLifetime time.Duration
	logger          logger.Logger
}

// NewPostgresStore opens a connection pool for dsn.
func NewPostgresStore(dsn string, opts ...Option) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewPostgresStoreFromDB(db, opts...), nil
}

// NewPostgresStoreFromDB wraps an existing pool.
func NewPostgresStoreFromDB(db *sql.DB, opts ...Option) *PostgresStore {
	s := &PostgresStore{
		db:              db,
		maxOpenConns:    defaultMaxOpenConns,
		connMaxLifetime: defaultConnMaxLifetime,
		logger:          logger.Get().Named("repository"),
	}
	for _, opt := range opts {
		opt(s)
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	db.SetMaxIdleConns(s.maxOpenConns)
	db.SetConnMaxLifetime(s.connMaxLifetime)
	return s
}

// Ping checks the connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// LoadCalls implements Store.
func (s *PostgresStore) LoadCalls(ctx context.Context, q model.CallQuery) ([]model.Call, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if err := validate(q); err != nil {
		return nil, err
	}
	start := time.Now()
	calls, err := s.load(ctx, q)
	metrics.RecordStoreQuery(float64(time.Since(start).Microseconds())/1000, len(calls), err)
	if err != nil {
		s.logger.Error(ctx, "load calls failed", logger.Error(err))
		return nil, err
	}
	s.logger.Debug(ctx, "calls loaded",
		logger.Int("calls", len(calls)),
		logger.Duration("took", time.Since(start)),
	)
	return calls, nil
}

func (s *PostgresStore) load(ctx context.Context, q model.CallQuery) ([]model.Call, error) {
	calls, err := s.queryCalls(ctx, q)
	if err != nil || len(calls) == 0 {
		return calls, err
	}
	index := make(map[int64]int, len(calls))
	ids := make([]int64, len(calls))
	for i := range calls {
		index[calls[i].ID] = i
		ids[i] = calls[i].ID
	}
	if err := s.queryScores(ctx, ids, calls, index); err != nil {
		return nil, err
	}
	if err := s.queryGroupAverages(ctx, ids, calls, index); err != nil {
		return nil, err
	}
	return calls, nil
}

func (s *PostgresStore) queryCalls(ctx context.Context, q model.CallQuery) ([]model.Call, error) {
	rows, err := s.db.QueryContext(ctx, callsQuery, q.ProjectID, q.ManagerID, nullDate(q.Range.From), nullDate(q.Range.To))
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	var calls []model.Call
	for rows.Next() {
		var (
			c         model.Call
			managerID sql.NullInt64
			name      string
		)
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.ExternalID, &managerID, &name,
			&c.CallDate, &c.DurationSeconds, &c.FinalPercent, &c.Summary); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		if managerID.Valid {
			c.Manager = &model.Manager{ID: managerID.Int64, Name: name}
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return calls, nil
}

func (s *PostgresStore) queryScores(ctx context.Context, ids []int64, calls []model.Call, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx, scoresQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			callID    int64
			raw       string
			scoreType string
			sc        model.CallScore
		)
		if err := rows.Scan(&callID, &sc.CriteriaID, &raw, &sc.Reason,
			&sc.Criteria.Number, &sc.Criteria.Name, &sc.Criteria.InFinalScore, &scoreType, &sc.Criteria.Order,
			&sc.Criteria.Group.ID, &sc.Criteria.Group.Name, &sc.Criteria.Group.Order); err != nil {
			return fmt.Errorf("scan score: %w", err)
		}
		i, ok := index[callID]
		if !ok {
			continue
		}
		sc.Criteria.ID = sc.CriteriaID
		sc.Criteria.ScoreType = model.ScoreType(scoreType)
		sc.Score = model.ParseScore(raw, sc.Criteria.ScoreType)
		calls[i].Scores = append(calls[i].Scores, sc)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate scores: %w", err)
	}
	return nil
}

func (s *PostgresStore) queryGroupAverages(ctx context.Context, ids []int64, calls []model.Call, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx, groupAveragesQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query group averages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			callID  int64
			avg     sql.NullFloat64
			average model.CallGroupAverage
		)
		if err := rows.Scan(&callID, &average.GroupID, &average.Group.Name, &average.Group.Order, &avg); err != nil {
			return fmt.Errorf("scan group average: %w", err)
		}
		i, ok := index[callID]
		if !ok {
			continue
		}
		average.Group.ID = average.GroupID
		if avg.Valid {
			average.Average = model.NumericScore(avg.Float64)
		}
		calls[i].GroupAverages = append(calls[i].GroupAverages, average)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate group averages: %w", err)
	}
	return nil
}

// Count implements Store.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, countQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("count calls: %w", err)
	}
	return n, nil
}

// Close closes the pool. Calling it twice is a no-op.
func (s *PostgresStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

func nullDate(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: model.DateOf(t), Valid: true}
}
