package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStorePutGetDelete(t *testing.T) {
	st := NewStore(time.Hour)

	if _, ok := st.Get(1); ok {
		t.Fatal("empty store returned a session")
	}

	s := New(1, uuid.New(), "PERSON_FULL_NAME")
	st.Put(1, s)

	got, ok := st.Get(1)
	if !ok || got != s {
		t.Fatal("stored session not returned")
	}
	if st.Len() != 1 {
		t.Fatalf("Len = %d, want 1", st.Len())
	}

	st.Delete(1)
	if _, ok := st.Get(1); ok {
		t.Fatal("deleted session still returned")
	}
}

func TestStoreEvictIdle(t *testing.T) {
	st := NewStore(time.Minute)
	st.Put(1, New(1, uuid.New(), "PERSON_FULL_NAME"))
	st.Put(2, New(2, uuid.New(), "PERSON_ADDRESS"))

	if n := st.evictIdle(time.Now()); n != 0 {
		t.Fatalf("fresh sessions evicted: %d", n)
	}

	if n := st.evictIdle(time.Now().Add(2 * time.Minute)); n != 2 {
		t.Fatalf("evicted %d, want 2", n)
	}
	if st.Len() != 0 {
		t.Fatalf("Len = %d after eviction, want 0", st.Len())
	}
}

func TestStoreGetRefreshesIdleTimer(t *testing.T) {
	st := NewStore(time.Minute)
	st.Put(1, New(1, uuid.New(), "PERSON_FULL_NAME"))

	// a Get counts as activity
	st.entries[1].touched = time.Now().Add(-50 * time.Second)
	if _, ok := st.Get(1); !ok {
		t.Fatal("session missing")
	}
	if n := st.evictIdle(time.Now().Add(30 * time.Second)); n != 0 {
		t.Fatalf("recently touched session evicted: %d", n)
	}
}

func TestHistory(t *testing.T) {
	s := New(1, uuid.New(), "PERSON_BIRTHDATE")
	if got := s.PopHistory("PERSON_FULL_NAME"); got != "PERSON_FULL_NAME" {
		t.Fatalf("empty history pop = %q, want fallback", got)
	}

	s.PushHistory("PERSON_FULL_NAME")
	s.PushHistory("PERSON_BIRTHDATE")
	if got := s.PopHistory("x"); got != "PERSON_BIRTHDATE" {
		t.Fatalf("pop = %q, want PERSON_BIRTHDATE", got)
	}
	if got := s.PopHistory("x"); got != "PERSON_FULL_NAME" {
		t.Fatalf("pop = %q, want PERSON_FULL_NAME", got)
	}
}

func TestResetPhase(t *testing.T) {
	s := New(1, uuid.New(), "EDU_CERTS")
	s.Phase = "level"
	s.Selected["ENGLISH"] = true
	s.LevelQueue = []string{"ENGLISH"}

	s.ResetPhase()
	if s.Phase != "" || len(s.Selected) != 0 || s.LevelQueue != nil {
		t.Fatal("phase state not cleared")
	}
}
