package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
)

func job(kind model.ReportKind) *Job {
	return NewJob(model.ReportRequest{Kind: kind})
}

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with capacity two", t, func() {
		q := NewInMemoryQueue(WithCapacity(2))

		Convey("An enqueued job is stamped and dequeued in order", func() {
			first, second := job(model.ReportExecutive), job(model.ReportTeam)
			So(q.Enqueue(ctx, first), ShouldBeTrue)
			So(q.Enqueue(ctx, second), ShouldBeTrue)
			So(first.EnqueuedAt.IsZero(), ShouldBeFalse)
			So(q.Len(ctx), ShouldEqual, 2)

			ch := q.Dequeue(ctx)
			So((<-ch).ID, ShouldEqual, first.ID)
			So((<-ch).Request.Kind, ShouldEqual, model.ReportTeam)
		})

		Convey("A full queue rejects the job", func() {
			So(q.Enqueue(ctx, job(model.ReportTeam)), ShouldBeTrue)
			So(q.Enqueue(ctx, job(model.ReportTeam)), ShouldBeTrue)
			So(q.Enqueue(ctx, job(model.ReportTeam)), ShouldBeFalse)
			So(q.Len(ctx), ShouldEqual, 2)
			So(q.Cap(), ShouldEqual, 2)
		})

		Convey("Closing stops enqueues and drains the dequeue channel", func() {
			So(q.Enqueue(ctx, job(model.ReportTeam)), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)
			So(q.IsClosed(), ShouldBeTrue)
			So(q.Enqueue(ctx, job(model.ReportTeam)), ShouldBeFalse)
			So(q.Close(), ShouldBeNil)

			ch := q.Dequeue(ctx)
			_, ok := <-ch
			So(ok, ShouldBeTrue)
			select {
			case _, ok = <-ch:
				So(ok, ShouldBeFalse)
			case <-time.After(time.Second):
				So("dequeue channel still open", ShouldBeEmpty)
			}
		})
	})

	Convey("Given many producers and consumers", t, func() {
		const producers, perProducer = 8, 50
		q := NewInMemoryQueue(WithCapacity(16))

		var wg sync.WaitGroup
		for range producers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range perProducer {
					for !q.Enqueue(ctx, job(model.ReportQuickSummary)) {
						time.Sleep(time.Millisecond)
					}
				}
			}()
		}

		var mu sync.Mutex
		seen := 0
		var consumers sync.WaitGroup
		for range 4 {
			consumers.Add(1)
			go func() {
				defer consumers.Done()
				for range q.Dequeue(ctx) {
					mu.Lock()
					seen++
					mu.Unlock()
				}
			}()
		}

		wg.Wait()
		deadline := time.Now().Add(2 * time.Second)
		for q.Len(ctx) > 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		So(q.Close(), ShouldBeNil)
		consumers.Wait()

		So(seen, ShouldEqual, producers*perProducer)
	})
}

func TestJob(t *testing.T) {
	Convey("Only the first completion is delivered", t, func() {
		j := job(model.ReportTeam)
		j.Complete("first", nil)
		j.Complete(nil, errors.New("second"))

		res := <-j.Reply()
		So(res.Value, ShouldEqual, "first")
		So(res.Err, ShouldBeNil)
	})

	Convey("A job taken after the consumer stops is failed", t, func() {
		q := NewInMemoryQueue(WithCapacity(1))
		j := job(model.ReportTeam)
		So(q.Enqueue(context.Background(), j), ShouldBeTrue)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		q.Dequeue(ctx)

		select {
		case res := <-j.Reply():
			So(errors.Is(res.Err, ErrStopped), ShouldBeTrue)
		case <-time.After(time.Second):
			So("job never completed", ShouldBeEmpty)
		}
	})
}
