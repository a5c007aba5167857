package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

const suitePattern = "**/*.csv"

// DiscoverSuites lists every test suite CSV below dir, relative to dir and sorted.
func DiscoverSuites(dir string) ([]string, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("checking test suites directory: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	suites, err := doublestar.Glob(os.DirFS(dir), suitePattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("globbing %q: %w", suitePattern, err)
	}
	slices.Sort(suites)
	return suites, nil
}
