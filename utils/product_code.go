package utils

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// ProductCode builds codes like "KOS48213": the first three letters of the
// transliterated category followed by a numeric serial.
func ProductCode(category string, serial int) string {
	prefix := strings.ToUpper(strings.ReplaceAll(slug.Make(category), "-", ""))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	if prefix == "" {
		prefix = "PRD"
	}
	return fmt.Sprintf("%s%d", prefix, serial)
}
