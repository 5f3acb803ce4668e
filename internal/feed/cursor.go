package feed

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/linkpile/linkpile/internal/apperr"
)

// Cursor anchors a page boundary to the sort key of the last row served:
// the post's creation time plus its id as a tie-break for identical
// timestamps. Anchoring to a key value rather than a row offset keeps
// already-issued pages stable under concurrent inserts.
type Cursor struct {
	CreatedAt time.Time
	LastID    int64
}

// Encode renders the cursor as an opaque token. The timestamp is encoded at
// microsecond precision, the resolution Postgres stores created_at at, so
// the decoded anchor compares equal to the stored row value.
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("%d.%d", c.CreatedAt.UnixMicro(), c.LastID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses an opaque cursor token. A malformed token is an
// InvalidArgument failure, never a silent reset to the first page.
func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, apperr.Wrap(apperr.InvalidArgument, "malformed cursor", err)
	}

	parts := strings.SplitN(string(raw), ".", 2)
	if len(parts) != 2 {
		return Cursor{}, apperr.New(apperr.InvalidArgument, "malformed cursor")
	}

	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Cursor{}, apperr.Wrap(apperr.InvalidArgument, "malformed cursor timestamp", err)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Cursor{}, apperr.Wrap(apperr.InvalidArgument, "malformed cursor id", err)
	}

	return Cursor{CreatedAt: time.UnixMicro(micros).UTC(), LastID: id}, nil
}
