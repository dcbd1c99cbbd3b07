package dedupe

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/matsen/bibclique/internal/reference"
)

// testFile holds two duplicate pairs, an entry without year and an empty
// entry.
func testFile() *reference.File {
	return reference.NewFile(
		newEntry("e1", "Deep Learning for Protein Structure", "Doe, John", "2020"),
		newEntry("e2", "Deep learning for protein structures", "Doe, John", "2020"),
		newEntry("e3", "Statistical Methods in Genomics", "Brown, Bob", "2018"),
		newEntry("e4", "Statistical methods in genomics", "Brown, Bob", "2018"),
		newEntry("e5", "Deep Learning for Protein Structure", "Doe, John", ""),
		reference.NewEntry("misc", "empty"),
	)
}

func cliqueIDs(cliques []*Clique) [][]string {
	var out [][]string
	for _, c := range cliques {
		var ids []string
		for _, e := range c.Entries() {
			ids = append(ids, e.ID)
		}
		out = append(out, ids)
	}
	return out
}

func TestFindDuplicates(t *testing.T) {
	var calls, lastCurrent, lastMax int
	f := NewFinder(nil)
	f.Progress = func(current, max int) {
		calls++
		lastCurrent, lastMax = current, max
	}

	cliques, err := f.FindDuplicates(context.Background(), testFile())
	if err != nil {
		t.Fatalf("FindDuplicates() error = %v", err)
	}

	want := [][]string{{"e1", "e2"}, {"e3", "e4"}}
	if diff := cmp.Diff(want, cliqueIDs(cliques)); diff != "" {
		t.Errorf("cliques mismatch (-want +got):\n%s", diff)
	}

	for _, c := range cliques {
		if len(c.CheckedEntries()) != c.Len() {
			t.Error("members should be checked by default")
		}
	}

	// e2:1, e3:1, e4:2, e5:2 comparisons; five non-empty entries.
	if calls != 6 || lastCurrent != 6 || lastMax != 10 {
		t.Errorf("progress calls=%d current=%d max=%d, want 6, 6, 10", calls, lastCurrent, lastMax)
	}
}

func TestFindDuplicatesLogsSummary(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	f := NewFinder(zap.New(core))

	if _, err := f.FindDuplicates(context.Background(), testFile()); err != nil {
		t.Fatalf("FindDuplicates() error = %v", err)
	}

	finished := logs.FilterMessage("duplicate search finished").All()
	if len(finished) != 1 {
		t.Fatalf("got %d summary logs, want 1", len(finished))
	}
	fields := finished[0].ContextMap()
	if fields["cliques"] != int64(2) || fields["comparisons"] != int64(6) {
		t.Errorf("summary fields = %v, want cliques=2 comparisons=6", fields)
	}
	if logs.FilterMessage("entry joins clique").Len() != 0 {
		t.Error("debug logs should be filtered at info level")
	}
}

func TestFindDuplicatesFirstFit(t *testing.T) {
	// "c" is just too far from "a" and starts its own clique; "b" is close
	// enough to both but joins "a", whose clique was created first.
	file := reference.NewFile(
		newEntry("a", "Protein Structure Prediction", "Doe, John", "2020"),
		newEntry("c", "Protein Structure Predictions Revisited", "Doe, John", "2020"),
		newEntry("b", "Protein Structure Predictions", "Doe, John", "2020"),
	)
	f := &Finder{Sensitivity: 1505}
	cliques, err := f.FindDuplicates(context.Background(), file)
	if err != nil {
		t.Fatalf("FindDuplicates() error = %v", err)
	}
	want := [][]string{{"a", "b"}}
	if diff := cmp.Diff(want, cliqueIDs(cliques)); diff != "" {
		t.Errorf("cliques mismatch (-want +got):\n%s", diff)
	}
}

func TestFindDuplicatesDegenerate(t *testing.T) {
	f := NewFinder(nil)
	for name, file := range map[string]*reference.File{
		"empty file": reference.NewFile(),
		"singletons": reference.NewFile(
			newEntry("x", "Alpha", "A", "2000"),
			newEntry("y", "Completely Unrelated", "B", "1950"),
		),
		"only empty entries": reference.NewFile(reference.NewEntry("a", "1"), reference.NewEntry("a", "2")),
	} {
		t.Run(name, func(t *testing.T) {
			cliques, err := f.FindDuplicates(context.Background(), file)
			if err != nil {
				t.Fatalf("FindDuplicates() error = %v", err)
			}
			if len(cliques) != 0 {
				t.Errorf("got %d cliques, want 0", len(cliques))
			}
		})
	}
}

func TestFindDuplicatesCancelled(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cliques, err := (&Finder{}).FindDuplicates(ctx, testFile())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if cliques != nil {
			t.Errorf("cliques = %v, want nil", cliques)
		}
	})

	t.Run("during comparisons", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		calls := 0
		f := &Finder{Progress: func(current, max int) {
			calls++
			cancel()
		}}
		cliques, err := f.FindDuplicates(ctx, testFile())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if cliques != nil {
			t.Errorf("cliques = %v, want nil", cliques)
		}
		if calls != 1 {
			t.Errorf("progress calls = %d, want 1", calls)
		}
	})
}

func TestFindDuplicatesSensitivityMonotone(t *testing.T) {
	build := func() *reference.File {
		file := testFile()
		file.Append(newEntry("e6", "Deep Learning for Protein Structure", "Doe, John", "2022"))
		file.Append(newEntry("e7", "Deep Learning for Protein Structure", "Doe, John", "1999"))
		return file
	}

	prev := -1
	for _, s := range []int{0, 1, 20, 50, 1001, 4000, 7000, 10000} {
		cliques, err := (&Finder{Sensitivity: s}).FindDuplicates(context.Background(), build())
		if err != nil {
			t.Fatalf("FindDuplicates() error = %v", err)
		}
		clustered := 0
		for _, c := range cliques {
			if c.Len() < 2 {
				t.Errorf("sensitivity %d: clique with %d members", s, c.Len())
			}
			clustered += c.Len()
		}
		if clustered < prev {
			t.Errorf("sensitivity %d clustered %d entries, fewer than %d before", s, clustered, prev)
		}
		prev = clustered
	}
}

func TestFindDuplicatesSensitivityTakenLiterally(t *testing.T) {
	// The two entries differ by one character of title.
	file := func() *reference.File {
		return reference.NewFile(
			newEntry("a", "Deep Learning for Protein Structure", "Doe, John", "2020"),
			newEntry("b", "Deep Learning for Protein Structures", "Doe, John", "2020"),
		)
	}
	d := EntryDistance(file().Entries()[0], file().Entries()[1])
	if d <= 0 {
		t.Fatalf("EntryDistance() = %d, want a positive distance", d)
	}

	tests := []struct {
		sensitivity int
		want        int
	}{
		{-5, 0},
		{0, 0},
		{d, 0},
		{d + 1, 1},
		{DefaultSensitivity, 1},
	}
	for _, tt := range tests {
		cliques, err := (&Finder{Sensitivity: tt.sensitivity}).FindDuplicates(context.Background(), file())
		if err != nil {
			t.Fatalf("FindDuplicates() error = %v", err)
		}
		if len(cliques) != tt.want {
			t.Errorf("sensitivity %d: got %d cliques, want %d", tt.sensitivity, len(cliques), tt.want)
		}
	}
}
