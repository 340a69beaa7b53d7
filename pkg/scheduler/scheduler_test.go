package scheduler_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foundrygate/gateway-validator/pkg/scheduler"
)

func TestScheduler(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Scheduler Suite")
}

var _ = Describe("Scheduler", func() {
	var s *scheduler.Scheduler[string]

	AfterEach(func() {
		if s != nil {
			s.Close()
		}
	})

	Describe("AddWork", func() {
		It("should add work and return a typed future", func() {
			s = scheduler.NewScheduler[string](1)

			work := func(ctx context.Context) (string, error) {
				return "done", nil
			}

			future := s.AddWork(work)
			Expect(future).NotTo(BeNil())

			var result scheduler.Result[string]
			Eventually(future.C(), 2*time.Second).Should(Receive(&result))
			Expect(result.Data).To(Equal("done"))
			Expect(result.Err).NotTo(HaveOccurred())
		})

		It("should propagate work errors through the future", func() {
			s = scheduler.NewScheduler[string](1)

			work := func(ctx context.Context) (string, error) {
				return "", context.DeadlineExceeded
			}

			var result scheduler.Result[string]
			Eventually(s.AddWork(work).C(), 2*time.Second).Should(Receive(&result))
			Expect(result.Err).To(MatchError(context.DeadlineExceeded))
		})
	})

	Describe("Run work", func() {
		It("should execute multiple work items", func() {
			s = scheduler.NewScheduler[string](2)

			results := make(chan int, 5)
			for i := range 5 {
				idx := i
				work := func(ctx context.Context) (string, error) {
					results <- idx
					return "", nil
				}
				s.AddWork(work)
			}

			Eventually(func() int {
				return len(results)
			}, 2*time.Second, 100*time.Millisecond).Should(Equal(5))
		})

		It("should bound parallelism by the worker count", func() {
			s = scheduler.NewScheduler[string](1)

			running := make(chan struct{}, 2)
			release := make(chan struct{})
			work := func(ctx context.Context) (string, error) {
				running <- struct{}{}
				<-release
				return "", nil
			}

			s.AddWork(work)
			s.AddWork(work)

			Eventually(running, time.Second).Should(HaveLen(1))
			Consistently(running, 300*time.Millisecond).Should(HaveLen(1))
			close(release)
		})
	})

	Describe("Cancel work", func() {
		It("should cancel work via future.Stop()", func() {
			s = scheduler.NewScheduler[string](1)

			cancelled := make(chan bool, 1)
			work := func(ctx context.Context) (string, error) {
				select {
				case <-ctx.Done():
					cancelled <- true
					return "", ctx.Err()
				case <-time.After(5 * time.Second):
					return "completed", nil
				}
			}

			future := s.AddWork(work)
			time.Sleep(100 * time.Millisecond)
			future.Stop()

			Eventually(cancelled, 2*time.Second).Should(Receive(BeTrue()))
		})

		It("should cancel work when the scheduler is closed", func() {
			s = scheduler.NewScheduler[string](1)

			cancelled := make(chan bool, 1)
			work := func(ctx context.Context) (string, error) {
				select {
				case <-ctx.Done():
					cancelled <- true
					return "", ctx.Err()
				case <-time.After(5 * time.Second):
					return "completed", nil
				}
			}

			s.AddWork(work)
			time.Sleep(100 * time.Millisecond)
			s.Close()
			s = nil // prevent AfterEach from closing again

			Eventually(cancelled, 2*time.Second).Should(Receive(BeTrue()))
		})

		It("should fail fast on work added after Close", func() {
			s = scheduler.NewScheduler[string](1)
			s.Close()
			closed := s
			s = nil

			var result scheduler.Result[string]
			future := closed.AddWork(func(ctx context.Context) (string, error) {
				return "never", nil
			})
			Eventually(future.C(), time.Second).Should(Receive(&result))
			Expect(result.Err).To(MatchError(context.Canceled))
		})
	})

	Describe("Panic recovery", func() {
		It("should surface worker panics as errors", func() {
			s = scheduler.NewScheduler[string](1)

			var result scheduler.Result[string]
			future := s.AddWork(func(ctx context.Context) (string, error) {
				panic("boom")
			})
			Eventually(future.C(), 2*time.Second).Should(Receive(&result))
			Expect(result.Err).To(HaveOccurred())
			Expect(result.Err.Error()).To(ContainSubstring("boom"))
		})
	})
})
