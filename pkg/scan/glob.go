// The KEYS command checks keys against glob patterns while walking the ordered store;
// the following module implements that glob filtering.

package scan

import (
	"iter"

	"github.com/nobletooth/skipmap/pkg/utils"
	"v.io/v23/glob"
)

// MatchGlob filters the ordered `pairs` stream down to the keys matching the
// given `pattern`. Relative order is preserved; an invalid pattern yields an
// empty sequence.
func MatchGlob(pattern string, pairs iter.Seq[utils.StringPair]) iter.Seq[utils.StringPair] {
	parsedPattern, err := glob.Parse(pattern)
	if err != nil {
		return func(yield func(utils.StringPair) bool) {}
	}
	return func(yield func(utils.StringPair) bool) {
		for pair := range pairs {
			if parsedPattern.Head().Match(pair.Key) {
				if !yield(pair) {
					return
				}
			}
		}
	}
}
