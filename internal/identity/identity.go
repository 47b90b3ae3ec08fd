// Package identity generates job identifiers. An identifier carries a
// human-readable origin tag plus a random 128-bit suffix, so collisions
// are negligible and IDs are not guessable or sequential.
package identity

import (
	"fmt"

	"github.com/google/uuid"
)

// DefaultPrefix tags submissions arriving through the web upload surface.
const DefaultPrefix = "web"

// NewJobID returns a fresh job identifier of the form "<prefix>-<uuid>".
// An empty prefix falls back to DefaultPrefix.
func NewJobID(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
