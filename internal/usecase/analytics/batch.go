package analytics

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// UnspecifiedBucket collects companies whose batch label is missing or does
// not parse as a season-year cohort.
const UnspecifiedBucket = "Unspecified"

// Season positions within a year. YC compact codes use X for spring.
var seasonOrder = map[string]int{
	"winter": 0,
	"spring": 1,
	"summer": 2,
	"fall":   3,
}

var compactSeasons = map[string]string{
	"W":  "winter",
	"X":  "spring",
	"SP": "spring",
	"S":  "summer",
	"F":  "fall",
}

// batchKey sorts cohorts chronologically: year first, season within the
// year. Unparseable labels carry the sentinel and sort after everything.
type batchKey struct {
	year   int
	season int
}

var unknownKey = batchKey{year: math.MaxInt32, season: math.MaxInt32}

func (k batchKey) less(o batchKey) bool {
	if k.year != o.year {
		return k.year < o.year
	}
	return k.season < o.season
}

// parseBatch maps a cohort label to its sort key. It accepts the compact
// form (season letter(s) plus two-digit year, "W21" or "SP25") and the named
// form ("Winter 2021"), case-insensitively.
func parseBatch(label string) (batchKey, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return unknownKey, false
	}

	if fields := strings.Fields(label); len(fields) == 2 {
		season, ok := seasonOrder[strings.ToLower(fields[0])]
		if !ok {
			return unknownKey, false
		}
		year, err := strconv.Atoi(fields[1])
		if err != nil || year < 1000 || year > 9999 {
			return unknownKey, false
		}
		return batchKey{year: year, season: season}, true
	}

	if len(label) < 3 {
		return unknownKey, false
	}
	prefix := strings.ToUpper(label[:len(label)-2])
	suffix := label[len(label)-2:]
	name, ok := compactSeasons[prefix]
	if !ok || suffix[0] < '0' || suffix[0] > '9' || suffix[1] < '0' || suffix[1] > '9' {
		return unknownKey, false
	}
	yy, _ := strconv.Atoi(suffix)
	return batchKey{year: 2000 + yy, season: seasonOrder[name]}, true
}

// bucketLabel normalizes a raw batch value to its analytics bucket.
func bucketLabel(batch string) string {
	batch = strings.TrimSpace(batch)
	if _, ok := parseBatch(batch); !ok {
		return UnspecifiedBucket
	}
	return batch
}

// sortBuckets orders bucket labels chronologically, breaking equal sort keys
// (such as "W21" against "Winter 2021") lexically.
func sortBuckets(labels []string) {
	keys := make(map[string]batchKey, len(labels))
	for _, l := range labels {
		k, _ := parseBatch(l)
		keys[l] = k
	}
	sort.Slice(labels, func(i, j int) bool {
		ki, kj := keys[labels[i]], keys[labels[j]]
		if ki != kj {
			return ki.less(kj)
		}
		return labels[i] < labels[j]
	})
}
