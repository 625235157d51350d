package stringsutil

import "strings"

func RemoveEmptyStrings(slice []string) []string {
	var result []string

	for _, s := range slice {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}

	return result
}

// SplitList splits a comma-separated value and drops blank entries.
func SplitList(raw string) []string {
	return RemoveEmptyStrings(strings.Split(raw, ","))
}

// ListFlag collects a repeatable flag whose values may also be comma-separated.
type ListFlag []string

func (l *ListFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *ListFlag) Set(value string) error {
	*l = append(*l, SplitList(value)...)
	return nil
}
