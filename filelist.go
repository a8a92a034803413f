package signet

import "strings"

// DefaultDelimiter separates entries in a file list string.
const DefaultDelimiter = ";"

// SplitFileList parses a delimiter-separated list of file paths into an
// ordered slice. An empty delimiter selects DefaultDelimiter. Entries are
// trimmed of surrounding whitespace; empty entries are dropped, so an
// empty or whitespace-only input yields a nil slice.
func SplitFileList(input, delimiter string) []string {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	var files []string
	for _, part := range strings.Split(input, delimiter) {
		if path := strings.TrimSpace(part); path != "" {
			files = append(files, path)
		}
	}
	return files
}
