package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_DoneOnFirstAttempt(t *testing.T) {
	p := Policy{Interval: time.Millisecond, MaxAttempts: 5, Timeout: time.Second}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) (bool, error) {
		calls++
		return true, nil
	})
	if err != nil {
		t.Fatalf("Do() failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestDo_DoneAfterSeveralAttempts(t *testing.T) {
	p := Policy{Interval: time.Millisecond, MaxAttempts: 10, Timeout: time.Second}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	if err != nil {
		t.Fatalf("Do() failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestDo_MaxAttemptsExceeded(t *testing.T) {
	p := Policy{Interval: time.Millisecond, MaxAttempts: 4, Timeout: time.Second}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) (bool, error) {
		calls++
		return false, nil
	})
	if !errors.Is(err, ErrMaxAttempts) {
		t.Fatalf("Do() = %v, want ErrMaxAttempts", err)
	}
	if calls != 4 {
		t.Errorf("fn called %d times, want 4", calls)
	}
}

func TestDo_ErrorStopsPolling(t *testing.T) {
	p := Policy{Interval: time.Millisecond, MaxAttempts: 10, Timeout: time.Second}

	boom := errors.New("boom")
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) (bool, error) {
		calls++
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Do() = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestDo_TimeoutExceeded(t *testing.T) {
	p := Policy{Interval: 50 * time.Millisecond, MaxAttempts: 100, Timeout: 20 * time.Millisecond}

	err := p.Do(context.Background(), func(ctx context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Do() = %v, want ErrTimeout", err)
	}
}

func TestDo_ContextCancellation(t *testing.T) {
	p := Policy{Interval: time.Hour, MaxAttempts: 10}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := p.Do(ctx, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() = %v, want context.Canceled", err)
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	if p.Interval != 2*time.Second {
		t.Errorf("Interval = %v, want 2s", p.Interval)
	}
	if p.MaxAttempts != 30 {
		t.Errorf("MaxAttempts = %d, want 30", p.MaxAttempts)
	}
	if p.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", p.Timeout)
	}
}
