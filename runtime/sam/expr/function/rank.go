// Package function holds row-at-a-time functions whose state is carried
// explicitly by the caller between calls.
package function

import (
	"fmt"

	"github.com/brimdata/superagg"
	"golang.org/x/text/cases"
)

// RankState is the running state of Rank over one ordered stream of rows.
// The zero value is ready to use.
type RankState struct {
	key     string
	null    bool
	started bool
	counter int64
}

// Rank returns the number of rows immediately preceding this one in the
// stream whose key equals key, ignoring case.  A change of key restarts
// the count at zero.  Null keys are equal to each other.
func Rank(s *RankState, key superagg.Value) (superagg.Value, error) {
	var folded string
	null := key.IsNull()
	if !null {
		switch key.Kind() {
		case superagg.KindString, superagg.KindChar:
			folded = cases.Fold().String(key.Text())
		default:
			return superagg.Null, fmt.Errorf("rank: key must be a string: %s", key.Kind())
		}
	}
	if !s.started || null != s.null || folded != s.key {
		*s = RankState{key: folded, null: null, started: true}
	}
	n := s.counter
	s.counter++
	return superagg.NewInt64(n), nil
}
