package runlog

import (
	"errors"
	"testing"

	"github.com/pefman/w40k-sim/internal/sim"
)

func TestLog_AddGetList(t *testing.T) {
	l, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	first, err := l.Add(Record{Summary: sim.Summary{Attacker: "A"}})
	if err != nil {
		t.Fatal(err)
	}
	second, _ := l.Add(Record{Summary: sim.Summary{Attacker: "B"}})
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("ids not unique: %q %q", first.ID, second.ID)
	}
	got, err := l.Get(first.ID)
	if err != nil || got.Summary.Attacker != "A" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	list := l.List(0)
	if len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("List should be newest first: %+v", list)
	}
	if len(l.List(1)) != 1 {
		t.Fatalf("List(1) should return one record")
	}
}

func TestLog_NotFound(t *testing.T) {
	l, _ := New("")
	for _, id := range []string{"", "../etc/passwd", "2f1c7d0e-8a43-4a8b-9c1e-2b8d5f6a7c90"} {
		if _, err := l.Get(id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get(%q) err = %v, want ErrNotFound", id, err)
		}
	}
}

func TestLog_Persistence(t *testing.T) {
	dir := t.TempDir()
	l, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := l.Add(Record{Summary: sim.Summary{Weapon: "Bolt rifle", Iterations: 10}})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	// a fresh log over the same dir loads lazily
	l2, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := l2.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get from disk: %v", err)
	}
	if got.Summary.Weapon != "Bolt rifle" || got.Summary.Iterations != 10 {
		t.Fatalf("loaded = %+v", got)
	}
	if _, err := l2.Get("2f1c7d0e-8a43-4a8b-9c1e-2b8d5f6a7c90"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
