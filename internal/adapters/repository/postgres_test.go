package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return NewPostgresStoreFromDB(db, WithMaxOpenConns(2)), mock
}

func TestPostgresStoreLoadCalls(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)

	Convey("Given a database with two calls", t, func() {
		store, mock := newMockStore(t)

		mock.ExpectQuery(`FROM calls c`).
			WithArgs(int64(1), int64(0), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "project_id", "external_id", "manager_id", "name",
				"call_date", "duration_seconds", "final_percent", "summary",
			}).
				AddRow(int64(10), int64(1), "ext-10", int64(3), "Anna", day, 300, 75.5, "Good call").
				AddRow(int64(11), int64(1), "", nil, "", day.AddDate(0, 0, 1), 0, 40.0, ""))

		mock.ExpectQuery(`FROM call_scores s`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{
				"call_id", "criteria_id", "score", "reason",
				"number", "name", "in_final_score", "score_type", "order",
				"group_id", "group_name", "group_order",
			}).
				AddRow(int64(10), int64(22), "85,5", "Confirmed", 4, "Budget", true, "numeric", 4, int64(2), "Discovery", 2).
				AddRow(int64(10), int64(40), "won", "", 8, "Outcome", false, "tag", 8, int64(3), "Closing", 3).
				AddRow(int64(11), int64(22), "", "", 4, "Budget", true, "numeric", 4, int64(2), "Discovery", 2).
				AddRow(int64(99), int64(22), "50", "", 4, "Budget", true, "numeric", 4, int64(2), "Discovery", 2))

		mock.ExpectQuery(`FROM call_group_averages a`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"call_id", "group_id", "name", "order", "average_percent"}).
				AddRow(int64(10), int64(2), "Discovery", 2, 85.5).
				AddRow(int64(11), int64(2), "Discovery", 2, nil))

		calls, err := store.LoadCalls(ctx, model.CallQuery{ProjectID: 1})

		Convey("Calls are assembled with their scores", func() {
			So(err, ShouldBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
			So(len(calls), ShouldEqual, 2)

			first := calls[0]
			So(first.Manager, ShouldNotBeNil)
			So(first.Manager.Name, ShouldEqual, "Anna")
			So(first.Summary, ShouldEqual, "Good call")
			v, ok := first.NumericScore(22)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 85.5)
			So(first.Scores[1].Score.Kind, ShouldEqual, model.ScoreTag)
			So(first.Scores[0].Criteria.Group.Name, ShouldEqual, "Discovery")
		})

		Convey("Null columns become unassigned or missing", func() {
			So(err, ShouldBeNil)
			second := calls[1]
			So(second.Manager, ShouldBeNil)
			So(second.Scores[0].Score.IsMissing(), ShouldBeTrue)
			So(second.GroupAverages[0].Average.IsMissing(), ShouldBeTrue)
		})
	})

	Convey("No matching calls skips the detail queries", t, func() {
		store, mock := newMockStore(t)
		mock.ExpectQuery(`FROM calls c`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		calls, err := store.LoadCalls(ctx, model.CallQuery{})
		So(err, ShouldBeNil)
		So(calls, ShouldBeEmpty)
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})

	Convey("A failing query is wrapped", t, func() {
		store, mock := newMockStore(t)
		boom := errors.New("connection reset")
		mock.ExpectQuery(`FROM calls c`).WillReturnError(boom)

		_, err := store.LoadCalls(ctx, model.CallQuery{})
		So(errors.Is(err, boom), ShouldBeTrue)
	})

	Convey("A negative manager id is rejected before querying", t, func() {
		store, mock := newMockStore(t)
		_, err := store.LoadCalls(ctx, model.CallQuery{ManagerID: -1})
		So(err, ShouldEqual, ErrInvalidQuery)
		So(mock.ExpectationsWereMet(), ShouldBeNil)
	})
}

func TestPostgresStoreLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a mock database", t, func() {
		store, mock := newMockStore(t)

		Convey("Count reads a single row", func() {
			mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
			n, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 42)
		})

		Convey("Close is idempotent and blocks further reads", func() {
			mock.ExpectClose()
			So(store.Close(), ShouldBeNil)
			So(store.Close(), ShouldBeNil)
			_, err := store.LoadCalls(ctx, model.CallQuery{})
			So(err, ShouldEqual, ErrClosed)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}
