package queue

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryDispatcher_FIFO(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDispatcher()
	for _, id := range []string{"a", "b", "c"} {
		if err := d.Push(ctx, id); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	for _, want := range []string{"a", "b", "c"} {
		got, err := d.Pop(ctx, time.Second)
		if err != nil || got != want {
			t.Fatalf("pop = %q, %v; want %q", got, err, want)
		}
	}
}

func TestMemoryDispatcher_PopTimesOutEmpty(t *testing.T) {
	d := NewMemoryDispatcher()
	start := time.Now()
	got, err := d.Pop(context.Background(), 20*time.Millisecond)
	if err != nil || got != "" {
		t.Fatalf("pop = %q, %v; want empty", got, err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("pop returned before the timeout")
	}
}

func TestMemoryDispatcher_PopWakesOnPush(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDispatcher()

	done := make(chan string, 1)
	go func() {
		id, _ := d.Pop(ctx, 5*time.Second)
		done <- id
	}()
	time.Sleep(10 * time.Millisecond)
	_ = d.Push(ctx, "late")

	select {
	case id := <-done:
		if id != "late" {
			t.Fatalf("got %q", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("pop did not wake up")
	}
}

func TestMemoryDispatcher_PopCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewMemoryDispatcher()
	if _, err := d.Pop(ctx, time.Second); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestMemoryDispatcher_ConcurrentConsumersGetEachIDOnce(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDispatcher()
	const n = 50
	for i := 0; i < n; i++ {
		_ = d.Push(ctx, string(rune('A'+i%26))+string(rune('0'+i/26)))
	}

	var mu sync.Mutex
	seen := map[string]int{}
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				id, _ := d.Pop(ctx, 20*time.Millisecond)
				if id == "" {
					return
				}
				mu.Lock()
				seen[id]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("expected %d distinct ids, got %d", n, len(seen))
	}
	for id, c := range seen {
		if c != 1 {
			t.Fatalf("id %s delivered %d times", id, c)
		}
	}
}
