package filesystem

import "strings"

// SplitPath breaks a slash delimited path into its segments. Leading, trailing
// and repeated slashes are ignored; an empty result denotes the root.
// "." and ".." segments are rejected.
func SplitPath(p string) ([]string, error) {
	raw := strings.Split(strings.Trim(p, "/"), "/")
	parts := make([]string, 0, len(raw))
	for _, seg := range raw {
		switch seg {
		case "":
			continue
		case ".", "..":
			return nil, ErrInvalidPath
		}
		parts = append(parts, seg)
	}
	return parts, nil
}

// JoinPath is the inverse of SplitPath for already split segments
func JoinPath(parts []string) string {
	return strings.Join(parts, "/")
}

// ValidFileName reports whether name carries an extension: a dot followed by
// at least one character.
func ValidFileName(name string) bool {
	i := strings.LastIndex(name, ".")
	return i >= 0 && i < len(name)-1
}
