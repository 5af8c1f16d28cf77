package config

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
)

// maxLevenshteinDistance is the maximum edit distance for "did you mean?"
// suggestions when unknown config keys are detected.
const maxLevenshteinDistance = 3

// knownKeys are the valid keys in the config file.
var knownKeys = map[string]bool{
	"api_key": true, "token_file": true,
	"api_url": true, "upload_url": true, "auth_url": true, "user_agent": true,
	"log_level": true, "log_format": true,
}

// knownKeysList is sorted so ties in edit distance resolve deterministically.
var knownKeysList = func() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}()

// checkUnknownKeys inspects TOML metadata for undecoded keys and returns
// one error per unknown top-level name, with a suggestion where a close
// match exists. Tables are reported by their name only.
func checkUnknownKeys(md *toml.MetaData) error {
	var result *multierror.Error

	seen := make(map[string]bool)

	for _, key := range md.Undecoded() {
		if len(key) == 0 || seen[key[0]] {
			continue
		}

		seen[key[0]] = true
		result = multierror.Append(result, unknownKeyError(key[0]))
	}

	return result.ErrorOrNil()
}

func unknownKeyError(name string) error {
	if suggestion := closestMatch(name, knownKeysList); suggestion != "" {
		return fmt.Errorf("unknown config key %q, did you mean %q?", name, suggestion)
	}

	return fmt.Errorf("unknown config key %q", name)
}

// closestMatch finds the closest known key by Levenshtein distance.
// Returns empty string if no match is within maxLevenshteinDistance.
func closestMatch(unknown string, known []string) string {
	best := ""
	bestDist := maxLevenshteinDistance + 1

	for _, k := range known {
		d := levenshtein(unknown, k)
		if d < bestDist {
			bestDist = d
			best = k
		}
	}

	if bestDist <= maxLevenshteinDistance {
		return best
	}

	return ""
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}

	if b == "" {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := range len(a) {
		curr[0] = i + 1

		for j := range len(b) {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}

			curr[j+1] = min(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}
