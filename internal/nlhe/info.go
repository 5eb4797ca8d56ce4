package nlhe

import (
	"fmt"

	"github.com/lox/holdem-cfr/internal/cfr"
	"github.com/lox/holdem-cfr/internal/game"
)

// Info is NlheInfo from §3: the current-street edge subgame path, the
// acting player's abstraction bucket, and the legal-choices path (itself
// packed the same way a history path is, since the set of available edges
// at a node is always small and ordered by the street's Edgify output).
// Two infos with the same Path and Bucket but a different Choices path are
// distinct info sets, matching the lifecycle note in §3.
type Info struct {
	Path        game.Path
	Bucket      int16
	ChoicesPath game.Path
	choicesList []cfr.Edge // decoded legal edges, cached for cfr.Info.Choices()
}

// Key uniquely identifies this info set for Profile lookups.
func (i Info) Key() string {
	return fmt.Sprintf("%d|%d|%d", i.Path.ToU64(), i.Bucket, i.ChoicesPath.ToU64())
}

// Choices are the edges legal from this info set.
func (i Info) Choices() []cfr.Edge { return i.choicesList }
