package parsers

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"

	"github.com/haukened/zonedns/internal/dns/common/clock"
	logpkg "github.com/haukened/zonedns/internal/dns/common/log"
	"github.com/haukened/zonedns/internal/dns/domain"
)

// LoadDirectory parses every list file under dir in lexical order. Rules carry the file's base
// name as Source and clk.Now() as AddedAt. Unreadable files are collected into one error;
// rules from the readable ones are still returned.
func LoadDirectory(dir string, logger logpkg.Logger, clk clock.Clock) ([]domain.BlockRule, error) {
	now := clk.Now()
	var (
		rules []domain.BlockRule
		errs  error
	)
	walkErr := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		format, ok := FormatFor(path)
		if !ok {
			return nil
		}
		got, err := parseFile(path, format, logger, now)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("blocklist %s: %w", path, err))
			return nil
		}
		logger.Debug(map[string]any{"file": path, "rules": len(got)}, "blocklist file loaded")
		rules = append(rules, got...)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return rules, errs
}

func parseFile(path string, format Format, logger logpkg.Logger, now time.Time) ([]domain.BlockRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, format, filepath.Base(path), logger, now)
}
