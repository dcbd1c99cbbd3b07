package dedupe

import (
	"context"

	"go.uber.org/zap"

	"github.com/matsen/bibclique/internal/reference"
)

// DefaultSensitivity is the clustering threshold NewFinder starts from:
// 40% of MaxDistance.
const DefaultSensitivity = 4000

// ProgressFunc receives the number of comparisons done and the worst-case
// total n(n-1)/2.
type ProgressFunc func(current, max int)

// Finder groups the entries of a File into cliques of likely duplicates.
type Finder struct {
	// Sensitivity is the exclusive distance threshold; entries closer than
	// this to a clique's first member join it. Zero or less clusters
	// nothing.
	Sensitivity int
	// Progress, if set, is called after each comparison.
	Progress ProgressFunc
	// Logger receives debug output; nil disables logging.
	Logger *zap.Logger
}

// NewFinder returns a Finder at DefaultSensitivity logging to logger.
func NewFinder(logger *zap.Logger) *Finder {
	return &Finder{Sensitivity: DefaultSensitivity, Logger: logger}
}

// FindDuplicates clusters all non-empty entries of file. Each entry is
// compared with the first member of every existing clique, in creation
// order, and joins the first clique it is close enough to; otherwise it
// starts a new one. Cliques with fewer than two members are dropped, and
// all members of the remaining cliques are checked.
//
// The context is checked between comparisons. On cancellation no cliques
// are returned and the error is ctx.Err().
func (f *Finder) FindDuplicates(ctx context.Context, file *reference.File) ([]*Clique, error) {
	sensitivity := f.Sensitivity
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	handles := file.EntryHandles()
	n := len(handles)
	maxProgress := n * (n - 1) / 2
	progress := 0

	type group struct {
		first   *reference.Entry
		handles []reference.Handle
	}
	var groups []*group

	for _, h := range handles {
		if err := ctx.Err(); err != nil {
			logger.Debug("duplicate search cancelled", zap.Int("comparisons", progress))
			return nil, err
		}
		entry, _ := file.Entry(h)

		var found *group
		for _, g := range groups {
			if err := ctx.Err(); err != nil {
				logger.Debug("duplicate search cancelled", zap.Int("comparisons", progress))
				return nil, err
			}
			progress++
			if f.Progress != nil {
				f.Progress(progress, maxProgress)
			}
			if d := EntryDistance(entry, g.first); d < sensitivity {
				logger.Debug("entry joins clique",
					zap.String("entry", entry.ID),
					zap.String("first", g.first.ID),
					zap.Int("distance", d))
				found = g
				break
			}
		}
		if found != nil {
			found.handles = append(found.handles, h)
		} else {
			groups = append(groups, &group{first: entry, handles: []reference.Handle{h}})
		}
	}

	var cliques []*Clique
	for _, g := range groups {
		if len(g.handles) < 2 {
			continue
		}
		c := NewClique(file)
		for _, h := range g.handles {
			c.Add(h, true)
		}
		c.Recalculate()
		cliques = append(cliques, c)
	}

	logger.Info("duplicate search finished",
		zap.Int("entries", n),
		zap.Int("comparisons", progress),
		zap.Int("cliques", len(cliques)),
		zap.Int("sensitivity", sensitivity))
	return cliques, nil
}
