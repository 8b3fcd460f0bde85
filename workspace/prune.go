package workspace

import (
	"os"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/kbukum/buildprobe/errors"
	"github.com/kbukum/buildprobe/logger"
)

// Dialect selects which build-script variant survives pruning.
type Dialect string

const (
	DialectKotlin Dialect = "kotlin"
	DialectGroovy Dialect = "groovy"
	// DialectAny keeps both variants.
	DialectAny Dialect = "any"
)

const (
	groovySuffix = ".gradle"
	kotlinSuffix = ".gradle.kts"
)

// ParseDialect maps a descriptor value to a Dialect. Empty means kotlin.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DialectKotlin, nil
	case DialectKotlin, DialectGroovy, DialectAny:
		return d, nil
	default:
		return "", errors.InvalidConfig("unknown dialect " + s).WithDetail("dialect", s)
	}
}

// PruneDialect removes, wherever both X.gradle and X.gradle.kts exist under
// root, the variant that does not match dialect. It returns the removed paths.
func (s *Stager) PruneDialect(root Path, dialect Dialect) ([]Path, error) {
	if dialect == DialectAny {
		return nil, nil
	}

	var pairs []string
	err := afero.Walk(s.fs, root.String(), func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.IO("walk", p, err)
		}
		if info.IsDir() || !strings.HasSuffix(p, kotlinSuffix) {
			return nil
		}
		base := strings.TrimSuffix(p, kotlinSuffix)
		if ok, _ := afero.Exists(s.fs, base+groovySuffix); ok {
			pairs = append(pairs, base)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(pairs)

	drop := groovySuffix
	if dialect == DialectGroovy {
		drop = kotlinSuffix
	}

	removed := make([]Path, 0, len(pairs))
	for _, base := range pairs {
		target := base + drop
		if err := s.fs.Remove(target); err != nil {
			return removed, errors.IO("remove", target, err)
		}
		removed = append(removed, Path(target))
	}

	if len(removed) > 0 {
		s.log.Debug("build scripts pruned", logger.Fields(
			logger.FieldDialect, string(dialect),
			logger.FieldWorkspace, root.String(),
			"removed", len(removed),
		))
	}
	return removed, nil
}
