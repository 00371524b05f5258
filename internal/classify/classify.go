// Package classify partitions repository file paths into test and unit-test files.
package classify

import "strings"

// Counts is the result of classifying one repository's files.
type Counts struct {
	Unit  int
	Total int
}

// Classify counts test files and the unit-test subset among them. Matching is
// by substring, so paths are expected to be lowercased already.
func Classify(paths []string) Counts {
	var c Counts
	for _, p := range paths {
		if !IsTest(p) {
			continue
		}
		c.Total++
		if IsUnitTest(p) {
			c.Unit++
		}
	}
	return c
}

// IsTest reports whether the path looks test-related.
func IsTest(path string) bool {
	return strings.Contains(path, "test")
}

// IsUnitTest reports whether a test path looks like a unit test.
func IsUnitTest(path string) bool {
	if !IsTest(path) {
		return false
	}
	return strings.Contains(path, "unit") ||
		strings.HasSuffix(path, "_test.go") ||
		strings.Contains(path, "src/test")
}

// Ratio returns Unit/Total, or false when there are no test files.
func (c Counts) Ratio() (float64, bool) {
	if c.Total == 0 {
		return 0, false
	}
	return float64(c.Unit) / float64(c.Total), true
}
