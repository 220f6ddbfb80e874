// Package caseid extracts work item identifiers embedded in test titles.
package caseid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// groupPattern matches a bracketed group of digits, commas and whitespace
// (e.g., [123] or [1, 2,3]).
var groupPattern = regexp.MustCompile(`\[([\d,\s]+)\]`)

// Extract returns the case identifiers found in title, in order of
// appearance. Every bracketed group is scanned and comma-separated entries
// are flattened. Entries are kept even when empty after trimming, so
// "[1,]" yields two entries. Returns nil when the title links no case.
func Extract(title string) []string {
	groups := groupPattern.FindAllStringSubmatch(title, -1)
	if len(groups) == 0 {
		return nil
	}

	var result []string
	for _, g := range groups {
		for _, entry := range strings.Split(g[1], ",") {
			result = append(result, strings.TrimSpace(entry))
		}
	}
	return result
}

// ParseID converts a case identifier to a work item id.
func ParseID(caseID string) (int, error) {
	id, err := strconv.Atoi(caseID)
	if err != nil {
		return 0, fmt.Errorf("parsing case id %q: %w", caseID, err)
	}
	return id, nil
}
