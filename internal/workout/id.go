package workout

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID is an opaque identifier. New identifiers are time-ordered UUIDv7 strings. Records written by older versions of
// the app used numeric millisecond timestamps, which decode into their decimal text.
type ID string

// NewID returns a new time-ordered identifier. IDs created by the same process are strictly increasing.
func NewID() ID {
	return ID(uuid.Must(uuid.NewV7()).String())
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("unmarshal id string: %w", err)
		}
		*id = ID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("unmarshal numeric id: %w", err)
		}
		*id = ID(n.String())
		return nil
	}
}

func seedID(name string) ID {
	return ID(uuid.NewSHA1(uuid.NameSpaceURL, []byte("gymlog:library:"+name)).String())
}
