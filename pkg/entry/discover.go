package entry

import (
	"fmt"
	"io/fs"

	"github.com/albertocavalcante/srcsync/internal/log"
	"github.com/albertocavalcante/srcsync/pkg/matcher"
)

// DiscoverConfig describes where a group's files live.
type DiscoverConfig struct {
	// FS is rooted at the project base. Defaults to os.DirFS(Base).
	FS fs.FS
	// Base is the project base directory (the parent of Root).
	Base string
	// Root is the group directory relative to Base.
	Root string
	// Exclude is an optional match-from-start regular expression.
	Exclude string
}

// Discover scans the group root once per category and merges the results.
// A path matched by two categories' globs appears under both.
func Discover(group string, cfg DiscoverConfig) (*Store, error) {
	logger := log.Group("discover", group)

	var entries []Entry
	for _, c := range DiscoverOrder {
		m, err := matcher.New(matcher.Config{
			FS:       cfg.FS,
			Base:     cfg.Base,
			Dir:      cfg.Root,
			Patterns: c.Globs(),
			Exclude:  cfg.Exclude,
		})
		if err != nil {
			return nil, err
		}

		found, err := m.Match()
		if err != nil {
			return nil, fmt.Errorf("failed to discover %s files: %w", c, err)
		}
		logger.Debug("matched files", log.Category(c), "count", len(found))

		for _, p := range found {
			entries = append(entries, New(c, p))
		}
	}

	return NewStore(group, entries), nil
}
