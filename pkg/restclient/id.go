package restclient

import (
	"bytes"
	"encoding/json"
	"strings"

	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
)

// DecodeID extracts an identifier from a create/update reply. The backend may
// answer with a JSON string, a raw text body, or an object carrying "id".
func DecodeID(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeUpstream, "backend returned an empty id")
	}

	switch trimmed[0] {
	case '"':
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode id string")
		}
		return nonEmptyID(id)
	case '{':
		var obj struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode id object")
		}
		if len(obj.ID) == 0 || string(obj.ID) == "null" {
			return "", pkgerrors.New(pkgerrors.CodeUpstream, "backend reply has no id")
		}
		return DecodeID(obj.ID)
	default:
		return nonEmptyID(string(trimmed))
	}
}

func nonEmptyID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeUpstream, "backend returned an empty id")
	}
	return id, nil
}
