package common

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func collect[T any](t *testing.T, s *Subscription[T], n int) []T {
	t.Helper()

	res := []T{}
	for len(res) < n {
		select {
		case v, ok := <-s.C():
			if !ok {
				t.Fatalf("subscription closed after %d values, expected %d", len(res), n)
			}
			res = append(res, v)
		case <-time.After(2 * time.Second):
			t.Fatalf("timeout after %d values, expected %d", len(res), n)
		}
	}
	return res
}

func TestFeedReplayLatest(t *testing.T) {
	feed := NewFeed[int](ReplayLatest)

	early := feed.Subscribe()
	defer early.Close()

	feed.Send(1)
	feed.Send(2)

	late := feed.Subscribe()
	defer late.Close()

	feed.Send(3)

	if got := collect(t, early, 3); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("early subscriber got %v", got)
	}

	if got := collect(t, late, 2); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Fatalf("late subscriber got %v", got)
	}
}

func TestFeedReplayAll(t *testing.T) {
	feed := NewFeed[string](ReplayAll)

	feed.Send("a")
	feed.Send("b")

	sub := feed.Subscribe()
	defer sub.Close()

	feed.Send("c")

	if got := collect(t, sub, 3); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("got %v", got)
	}

	if v := feed.Values(); len(v) != 3 {
		t.Fatalf("replay log should hold 3 values, not %d", len(v))
	}
}

func TestFeedSendDoesNotBlock(t *testing.T) {
	feed := NewFeed[int](ReplayNone)

	sub := feed.Subscribe()
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			feed.Send(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked on an unread subscription")
	}

	got := collect(t, sub, 10000)
	for i, v := range got {
		if v != i {
			t.Fatalf("value %d out of order: %d", i, v)
		}
	}
}

func TestFeedEnd(t *testing.T) {
	feed := NewFeed[int](ReplayLatest)
	sub := feed.Subscribe()

	feed.Send(7)
	errBoom := errors.New("boom")
	feed.End(errBoom)

	// ignored once ended
	feed.Send(8)

	if got := collect(t, sub, 1); got[0] != 7 {
		t.Fatalf("expected 7, got %d", got[0])
	}

	if _, ok := <-sub.C(); ok {
		t.Fatal("channel should be closed after End")
	}

	if !errors.Is(sub.Err(), errBoom) {
		t.Fatalf("expected end error, got %v", sub.Err())
	}

	late := feed.Subscribe()
	if got := collect(t, late, 1); got[0] != 7 {
		t.Fatalf("late subscriber should replay 7, got %d", got[0])
	}
	if _, ok := <-late.C(); ok {
		t.Fatal("late subscriber should be ended")
	}
}

func TestFeedOnEmpty(t *testing.T) {
	feed := NewFeed[int](ReplayNone)

	calls := make(chan struct{}, 2)
	feed.OnEmpty(func() { calls <- struct{}{} })

	a := feed.Subscribe()
	b := feed.Subscribe()

	a.Close()
	if feed.Len() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", feed.Len())
	}

	b.Close()
	b.Close()

	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("OnEmpty not called")
	}

	if len(calls) != 0 {
		t.Fatal("OnEmpty called more than once")
	}

	if _, ok := <-a.C(); ok {
		t.Fatal("closed subscription should close its channel")
	}
}
