package constructioncarbon

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"strconv"

	"github.com/gowebpki/jcs"
)

// Fingerprint hashes the canonical JSON form of a snapshot. Snapshots with
// the same content share a fingerprint. Reports are cached under it.
//
// Non finite numbers of the declared record are hashed in their text form so
// the record can still be validated. Anywhere else they are malformed.
func Fingerprint(snapshot Snapshot) (string, error) {
	snapshot.Declared, _ = finiteRecord(snapshot.Declared)

	raw, err := json.Marshal(snapshot)
	if err != nil {
		var unsupported *json.UnsupportedValueError
		if errors.As(err, &unsupported) {
			return "", NewStructuralError("Fingerprint", snapshot.ID,
				fmt.Errorf("%w: %s", ErrMalformedNumber, unsupported.Str))
		}
		return "", fmt.Errorf("failed to encode snapshot %q: %w", snapshot.ID, err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize snapshot %q: %w", snapshot.ID, err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// finiteRecord returns record with every non finite float replaced by its
// text form, and whether anything was replaced. record itself is never
// modified.
func finiteRecord(record map[string]any) (map[string]any, bool) {
	var copied map[string]any
	for k, v := range record {
		replaced, changed := finiteValue(v)
		if !changed {
			continue
		}
		if copied == nil {
			copied = maps.Clone(record)
		}
		copied[k] = replaced
	}

	if copied == nil {
		return record, false
	}
	return copied, true
}

func finiteValue(v any) (any, bool) {
	switch value := v.(type) {
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return strconv.FormatFloat(value, 'g', -1, 64), true
		}
	case float32:
		if math.IsNaN(float64(value)) || math.IsInf(float64(value), 0) {
			return strconv.FormatFloat(float64(value), 'g', -1, 32), true
		}
	case map[string]any:
		return finiteRecord(value)
	}
	return v, false
}
