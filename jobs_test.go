package frontend

import (
	"reflect"
	"sync"
	"testing"
)

func TestJobsRunInSubmissionOrder(t *testing.T) {
	c, _, _ := newTestContext(t)

	var got []string
	record := func(arg any) { got = append(got, arg.(string)) }
	c.AddJob(record, "A")
	c.AddJob(record, "B")
	c.AddJob(record, "C")

	c.Frame(false)

	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if n := c.PendingJobs(); n != 0 {
		t.Errorf("PendingJobs = %d, want 0", n)
	}

	c.Frame(false)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("jobs ran again: %v", got)
	}
}

func TestJobQueuedDuringDrainRunsNextFrame(t *testing.T) {
	c, _, _ := newTestContext(t)

	var got []string
	c.AddJob(func(any) {
		got = append(got, "outer")
		c.AddJob(func(any) { got = append(got, "inner") }, nil)
	}, nil)

	c.Frame(false)
	if !reflect.DeepEqual(got, []string{"outer"}) {
		t.Fatalf("after frame 1 = %v, want [outer]", got)
	}
	if n := c.PendingJobs(); n != 1 {
		t.Errorf("PendingJobs = %d, want 1", n)
	}

	c.Frame(false)
	if !reflect.DeepEqual(got, []string{"outer", "inner"}) {
		t.Errorf("after frame 2 = %v, want [outer inner]", got)
	}
}

func TestJobArgPassedThrough(t *testing.T) {
	c, _, _ := newTestContext(t)
	type payload struct{ n int }
	var got *payload
	p := &payload{n: 42}
	c.AddJob(func(arg any) { got = arg.(*payload) }, p)
	c.Frame(false)
	if got != p {
		t.Errorf("arg = %v, want %v", got, p)
	}
}

func TestAddJobConcurrent(t *testing.T) {
	c, _, _ := newTestContext(t)

	const workers, perWorker = 8, 100
	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				c.AddJob(func(any) {
					mu.Lock()
					count++
					mu.Unlock()
				}, nil)
			}
		}()
	}
	wg.Wait()

	c.Frame(false)
	if count != workers*perWorker {
		t.Errorf("count = %d, want %d", count, workers*perWorker)
	}
}

func TestAddJobNilPanics(t *testing.T) {
	c, _, _ := newTestContext(t)
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil job")
		}
	}()
	c.AddJob(nil, nil)
}

func TestJobQueueDrainEmpty(t *testing.T) {
	var q jobQueue
	if n := q.drain(); n != 0 {
		t.Errorf("drain = %d, want 0", n)
	}
}
