package common

import (
	"strings"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// ContainsFold reports whether substr is within s under Unicode case folding.
func ContainsFold(s, substr string) bool {
	return strings.Contains(folder.String(s), folder.String(substr))
}
