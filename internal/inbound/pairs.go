package inbound

import "strings"

// Pair is one key=value segment of a comma separated dump.
type Pair struct {
	Key   string
	Value string
}

// SplitPairs tokenizes bodies such as "app=WhatsAuto, sender=Ana, message=oi".
//
// Segments are separated by ',' (the space in ", " is removed by trimming) and split
// on their first '='. Keys and values are trimmed; segments without '=' or with an
// empty key are skipped. There is no escaping and no percent-decoding: a value
// cannot contain a literal comma, and "message=a=b" yields the value "a=b".
func SplitPairs(raw string) []Pair {
	var pairs []Pair
	for _, segment := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(segment, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		pairs = append(pairs, Pair{Key: key, Value: strings.TrimSpace(value)})
	}
	return pairs
}

// looksLikePairs reports whether raw is a comma dump rather than a form body: it
// must contain a comma and yield at least two pairs whose keys look like field
// names. A key holding '&' or whitespace, or a value that reads as "x&key=...",
// means the comma sat inside a form value.
func looksLikePairs(raw string) bool {
	if !strings.Contains(raw, ",") {
		return false
	}
	n := 0
	for _, p := range SplitPairs(raw) {
		if !isFieldName(p.Key) || joinsFormPair(p.Value) {
			return false
		}
		n++
	}
	return n >= 2
}

// joinsFormPair reports whether value swallowed a following form pair, as in
// "Ana&message=oi". A value whose text before '&' already holds '=' is left
// alone so URLs such as "?a=1&b=2" stay inside a dump value.
func joinsFormPair(value string) bool {
	head, tail, ok := strings.Cut(value, "&")
	if !ok || strings.Contains(head, "=") {
		return false
	}
	key, _, ok := strings.Cut(tail, "=")
	return ok && isFieldName(key)
}

func isFieldName(key string) bool {
	return key != "" && !strings.ContainsAny(key, "& \t\r\n")
}
