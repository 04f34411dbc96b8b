package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/mitchellh/mapstructure"
	constructioncarbon "github.com/superdango/construction-carbon"
	"gopkg.in/yaml.v3"
)

// Format of a snapshot document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf guesses the format of a document from its location and content.
func FormatOf(location Location, data []byte) Format {
	switch location.Ext() {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// Decode reads the snapshots of a document. The document holds either a list
// of snapshots, an object with a snapshots list, or a single snapshot.
// Snapshots without an id are named after the location and their position.
func Decode(location Location, data []byte) ([]constructioncarbon.Snapshot, error) {
	var raw any
	switch FormatOf(location, data) {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse json snapshot document %s: %w", location, err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse yaml snapshot document %s: %w", location, err)
		}
	}

	documents, err := split(raw)
	if err != nil {
		return nil, fmt.Errorf("snapshot document %s: %w", location, err)
	}

	snapshots := make([]constructioncarbon.Snapshot, 0, len(documents))
	for i, document := range documents {
		snapshot, err := decodeSnapshot(document)
		if err != nil {
			return nil, fmt.Errorf("snapshot %d of %s: %w", i, location, err)
		}
		if snapshot.ID == "" {
			snapshot.ID = fmt.Sprintf("%s#%d", location, i)
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

func split(raw any) ([]any, error) {
	switch v := raw.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if list, found := v["snapshots"]; found {
			documents, ok := list.([]any)
			if !ok {
				return nil, fmt.Errorf("snapshots must be a list, got %T", list)
			}
			return documents, nil
		}
		return []any{v}, nil
	case nil:
		return []any{}, nil
	default:
		return nil, fmt.Errorf("unexpected document of type %T", raw)
	}
}

func decodeSnapshot(document any) (constructioncarbon.Snapshot, error) {
	snapshot := constructioncarbon.Snapshot{}
	metadata := mapstructure.Metadata{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       factorRefHook,
		WeaklyTypedInput: true,
		Metadata:         &metadata,
		Result:           &snapshot,
	})
	if err != nil {
		return snapshot, fmt.Errorf("failed to create snapshot decoder: %w", err)
	}

	if err := decoder.Decode(document); err != nil {
		return snapshot, constructioncarbon.NewStructuralError("source.Decode", "", err)
	}

	if len(metadata.Unused) > 0 {
		slog.Debug("ignoring unknown snapshot fields", "snapshot", snapshot.ID, "fields", metadata.Unused)
	}

	return snapshot, nil
}

var factorRefType = reflect.TypeOf(constructioncarbon.FactorRef{})

// factorRefHook accepts factor references written as "category/key".
func factorRefHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != factorRefType || from.Kind() != reflect.String {
		return data, nil
	}
	return constructioncarbon.ParseFactorRef(reflect.ValueOf(data).String())
}
