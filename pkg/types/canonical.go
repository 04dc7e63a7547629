package types

import (
	"bytes"
	"encoding/json"
)

// CanonicalJSON re-encodes v with object keys sorted ascending and no
// insignificant whitespace, matching json.dumps(sort_keys=True) on the
// original Python source. Go's encoding/json already emits map keys in
// sorted order, so marshaling once to settle v into a generic value and
// marshaling again from that generic value canonicalizes any struct's key
// order too.
func CanonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}

	canonical, err := json.Marshal(generic)
	if err != nil {
		return nil, err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, canonical); err != nil {
		return nil, err
	}
	return compact.Bytes(), nil
}
