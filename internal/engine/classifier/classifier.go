// Package classifier matches host library names against the known driver
// patterns and selects a single winner per library.
package classifier

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.trai.ch/glhost/internal/core/domain"
	"go.trai.ch/glhost/internal/core/ports"
	"go.trai.ch/zerr"
)

// Classifier maps candidate files to categories and resolves duplicates
// across scan directories. It is pure: same inputs, same winners.
type Classifier struct {
	rules    []rule
	catchAll bool
	logger   ports.Logger
}

// New builds a Classifier from the fixed table plus any configured extras.
func New(cfg *domain.Config, logger ports.Logger) (*Classifier, error) {
	rules := defaultRules()
	for _, p := range cfg.ExtraPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			cfgErr := zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "bad extra pattern"), "pattern", p)
			return nil, zerr.With(cfgErr, "cause", err.Error())
		}
		rules = append(rules, rule{domain.CategoryGeneric, re})
	}
	return &Classifier{rules: rules, catchAll: cfg.CatchAll, logger: logger}, nil
}

// Classify maps a file name to its category. The second return is false for
// files the table does not recognize.
func (c *Classifier) Classify(name string) (domain.Category, bool) {
	for _, r := range c.rules {
		if r.pattern.MatchString(name) {
			return r.category, true
		}
	}
	return "", false
}

// selectionKey identifies one logical library: duplicates of the same stem in
// the same category compete for a single slot in the cache.
type selectionKey struct {
	category domain.Category
	stem     string
}

// Select classifies every candidate and keeps exactly one winner per library.
// Tie-break order: highest parsed version, then most recent mtime, then the
// earliest-scanned directory. Losing names that resolve to the same bytes as
// the winner (the soname links next to a real driver object) are kept as
// aliases of the winner; losing names with different content are discarded.
// The result is sorted and deterministic.
func (c *Classifier) Select(files []domain.HostFile) ([]domain.DriverFile, error) {
	// Directories holding at least one vendor library; only there does the
	// catch-all rule apply.
	vendorDirs := make(map[string]bool)
	if c.catchAll {
		for _, f := range files {
			if cat, ok := c.Classify(f.Name); ok && isVendorCategory(cat) {
				vendorDirs[f.Dir] = true
			}
		}
	}

	winners := make(map[selectionKey]domain.DriverFile)
	for _, f := range files {
		cat, ok := c.Classify(f.Name)
		if !ok {
			if !c.catchAll || !vendorDirs[f.Dir] || !strings.Contains(f.Name, ".so") {
				continue
			}
			cat = domain.CategoryGeneric
		}
		candidate := domain.DriverFile{
			HostFile: f,
			Category: cat,
			Version:  domain.ParseVersionKey(f.Name),
		}
		key := selectionKey{category: cat, stem: f.Stem()}
		cur, exists := winners[key]
		if !exists {
			winners[key] = candidate
			continue
		}
		switch compareCandidates(candidate, cur) {
		case 1:
			c.logger.Debug("replacing candidate", "lib", key.stem, "old", cur.Path, "new", candidate.Path)
			// Loader entry names keep pointing at whatever finally wins.
			candidate.Aliases = cur.Aliases
			if candidate.Name != cur.Name && sameContent(candidate.HostFile, cur.HostFile) {
				candidate.Aliases = addAlias(candidate.Aliases, cur.Name)
			}
			winners[key] = candidate
		case -1:
			if candidate.Name != cur.Name && sameContent(candidate.HostFile, cur.HostFile) {
				c.logger.Debug("recording alias", "lib", key.stem, "alias", candidate.Name, "winner", cur.Name)
				cur.Aliases = addAlias(cur.Aliases, candidate.Name)
				winners[key] = cur
			} else {
				c.logger.Debug("discarding candidate", "lib", key.stem, "kept", cur.Path, "dropped", candidate.Path)
			}
		default:
			// Two files claiming the same visible name with nothing left to
			// tell them apart is a real conflict; a differently named sibling
			// with the same bytes is just another alias.
			if candidate.Name == cur.Name && candidate.Path != cur.Path {
				conflict := zerr.With(zerr.Wrap(domain.ErrClassificationConflict, "indistinguishable duplicates"), "lib", key.stem)
				conflict = zerr.With(conflict, "first", cur.Path)
				return nil, zerr.With(conflict, "second", candidate.Path)
			}
			if candidate.Name != cur.Name && sameContent(candidate.HostFile, cur.HostFile) {
				cur.Aliases = addAlias(cur.Aliases, candidate.Name)
				winners[key] = cur
			}
		}
	}

	out := make([]domain.DriverFile, 0, len(winners))
	for _, w := range winners {
		sort.Strings(w.Aliases)
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Stem() < out[j].Stem()
	})
	for _, w := range out {
		c.logger.Debug(fmt.Sprintf("classified %s", w.Name), "category", string(w.Category), "path", w.Path)
	}
	return out, nil
}

// sameContent reports whether two candidate names resolve to the same file
// revision. Symlinks were followed during the scan, so a soname link and its
// target carry identical size and mtime.
func sameContent(a, b domain.HostFile) bool {
	return a.Size == b.Size && a.ModTime.Equal(b.ModTime)
}

func addAlias(aliases []string, name string) []string {
	for _, a := range aliases {
		if a == name {
			return aliases
		}
	}
	return append(aliases, name)
}

// compareCandidates orders two candidates for the same selection key.
// Returns 1 when a should win over b, -1 when b stands, 0 when they are
// indistinguishable.
func compareCandidates(a, b domain.DriverFile) int {
	if cmp := a.Version.Compare(b.Version); cmp != 0 {
		return cmp
	}
	if !a.ModTime.Equal(b.ModTime) {
		if a.ModTime.After(b.ModTime) {
			return 1
		}
		return -1
	}
	// Earlier-scanned directory wins.
	switch {
	case a.ScanRank < b.ScanRank:
		return 1
	case a.ScanRank > b.ScanRank:
		return -1
	}
	return 0
}
