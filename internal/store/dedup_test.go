package store

import (
	"sync"
	"testing"
	"time"
)

func TestDedupLedgerRejectsDuplicates(t *testing.T) {
	l := NewDedupLedger()
	if !l.CheckAndInsert("wamid.1") {
		t.Fatal("first delivery rejected")
	}
	if l.CheckAndInsert("wamid.1") {
		t.Fatal("duplicate delivery admitted")
	}
	if !l.CheckAndInsert("wamid.2") {
		t.Fatal("unrelated message rejected")
	}
}

func TestDedupLedgerExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewDedupLedger(
		WithTTL(30*time.Minute),
		WithClock(func() time.Time { return now }),
	)

	if !l.CheckAndInsert("wamid.1") {
		t.Fatal("first delivery rejected")
	}

	now = now.Add(29 * time.Minute)
	if l.CheckAndInsert("wamid.1") {
		t.Fatal("duplicate admitted before TTL expiry")
	}

	now = now.Add(2 * time.Minute)
	if !l.CheckAndInsert("wamid.1") {
		t.Fatal("redelivery rejected after TTL expiry")
	}
}

func TestDedupLedgerSweepsExpiredEntries(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewDedupLedger(
		WithTTL(time.Minute),
		WithClock(func() time.Time { return now }),
	)

	for _, id := range []string{"a", "b", "c"} {
		l.CheckAndInsert(id)
	}
	if l.Len() != 3 {
		t.Fatalf("len = %d, want 3", l.Len())
	}

	now = now.Add(2 * time.Minute)
	l.CheckAndInsert("d")
	if l.Len() != 1 {
		t.Fatalf("len after sweep = %d, want only the fresh entry", l.Len())
	}
}

func TestDedupLedgerConcurrentCheckAndInsert(t *testing.T) {
	l := NewDedupLedger()
	const workers = 32

	var wg sync.WaitGroup
	admitted := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			admitted <- l.CheckAndInsert("wamid.same")
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for ok := range admitted {
		if ok {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("concurrent deliveries admitted %d times, want exactly 1", count)
	}
}
