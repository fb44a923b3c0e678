package wiki

import (
	"sync"
	"testing"
	"time"
)

func TestSanitizeUser(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"underscores", "Some_User", "Some User"},
		{"whitespace", "  Some User ", "Some User"},
		{"plain", "Example", "Example"},
		// NFC: e + combining acute composes to é
		{"nfc composition", "José", "José"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeUser(tt.input); got != tt.want {
				t.Errorf("SanitizeUser(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPageEqualTo(t *testing.T) {
	a := Page{Title: "Main_Page", Site: "enwiki"}
	b := Page{Title: "Main Page", Site: "enwiki"}
	c := Page{Title: "Main Page", Site: "dewiki"}

	if !a.EqualTo(b) {
		t.Error("underscore and space titles should be equal")
	}
	if a.EqualTo(c) {
		t.Error("pages on different sites should not be equal")
	}
}

func TestUserEqualTo(t *testing.T) {
	if !(User{Name: "A_B"}).EqualTo(User{Name: "A B"}) {
		t.Error("sanitized usernames should compare equal")
	}
	if (User{Name: "A"}).EqualTo(User{Name: "B"}) {
		t.Error("different usernames compared equal")
	}
}

func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry()
	e := &Edit{Page: Page{Title: "Sandbox"}, RevID: 1, Time: time.Now()}
	r.Add(e)

	snap := r.Snapshot()
	if len(snap) != 1 || snap[0] != e {
		t.Fatalf("Snapshot = %v", snap)
	}

	// Mutating the snapshot must not affect the registry
	snap[0] = nil
	if r.Snapshot()[0] != e {
		t.Error("snapshot aliases internal slice")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			r.Add(&Edit{RevID: int64(n)})
		}(i)
		go func() {
			defer wg.Done()
			_ = r.Snapshot()
		}()
	}
	wg.Wait()

	if r.Len() != 20 {
		t.Errorf("Len = %d, want 20", r.Len())
	}
}

func TestReputationStore(t *testing.T) {
	s := NewReputationStore()

	if got := s.Add("Vandal", RevertPenalty); got != 200 {
		t.Errorf("Add = %d, want 200", got)
	}
	if got := s.Add("Vandal", RevertPenalty); got != 400 {
		t.Errorf("second Add = %d, want 400", got)
	}
	if got := s.Score("Vandal"); got != 400 {
		t.Errorf("Score = %d, want 400", got)
	}
	if got := s.Score("Unknown"); got != 0 {
		t.Errorf("Score for unknown user = %d, want 0", got)
	}
}

func TestReputationSanitizesNames(t *testing.T) {
	s := NewReputationStore()
	s.Add("Some_User", 100)

	if got := s.Score("Some User"); got != 100 {
		t.Errorf("Score under sanitized name = %d, want 100", got)
	}
}
