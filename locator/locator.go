package locator

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var (
	ErrResolve  = errors.New("cannot resolve model header")
	ErrNoHeader = errors.New("no model header found")
)

// excludedSuffixes mark support headers that sit next to the model header:
// type definitions, private declarations and macro definitions.
var excludedSuffixes = []string{
	"rtwtypes.h",
	"rt_defines.h",
	"multiword_types.h",
	"_private.h",
	"_types.h",
}

type Locator struct {
	fs  afero.Fs
	log *slog.Logger
}

func New(fs afero.Fs, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Locator{fs: fs, log: logger}
}

// ByModel returns dir/<model>.h.
func (l *Locator) ByModel(dir, model string) (string, error) {
	path := filepath.Join(dir, model+".h")

	ok, err := afero.Exists(l.fs, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrResolve, path, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s does not exist", ErrResolve, path)
	}

	return path, nil
}

// Scan returns the first header in dir, by name, that is not a support
// header.
func (l *Locator) Scan(dir string) (string, error) {
	candidates, err := l.Candidates(dir)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoHeader, dir)
	}
	if len(candidates) > 1 {
		l.log.Warn("several model headers found, using the first", "dir", dir, "candidates", candidates)
	}

	return candidates[0], nil
}

func (l *Locator) Candidates(dir string) ([]string, error) {
	entries, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrResolve, dir, err)
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".h" || excluded(name) {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}

	return out, nil
}

func excluded(name string) bool {
	for _, suffix := range excludedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Resolve picks the header path: an explicit header wins, then the model
// name inside dir, then a directory scan.
func (l *Locator) Resolve(header, dir, model string) (string, error) {
	switch {
	case header != "":
		return header, nil
	case model != "":
		return l.ByModel(dir, model)
	}
	return l.Scan(dir)
}

func (l *Locator) Read(path string) (string, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrResolve, path, err)
	}
	l.log.Debug("read header", "path", path, "bytes", len(data))

	return string(data), nil
}
