package transfer

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Codec reads and writes one file format.
type Codec interface {
	// Name is the canonical extension, without the dot.
	Name() string
	// Encode writes v to w.
	Encode(w io.Writer, v any) error
	// Decode reads a generic value (maps, slices, scalars) from r.
	Decode(r io.Reader) (any, error)
}

// DefaultCodecs returns the supported codecs keyed by file extension.
func DefaultCodecs() map[string]Codec {
	return map[string]Codec{
		".json": JSONCodec{},
		".yaml": YAMLCodec{},
		".yml":  YAMLCodec{},
	}
}

// CodecFor picks the codec matching the extension of path.
func CodecFor(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if c, ok := DefaultCodecs()[ext]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unsupported file extension %q (want .json, .yaml or .yml)", ext)
}

// --- JSON ---

// JSONCodec handles indented JSON.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (JSONCodec) Decode(r io.Reader) (any, error) {
	var payload any
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return payload, nil
}

// --- YAML ---

// YAMLCodec handles YAML documents.
type YAMLCodec struct{}

func (YAMLCodec) Name() string { return "yaml" }

func (YAMLCodec) Encode(w io.Writer, v any) error {
	// Go through JSON so field names match the JSON layout.
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

func (YAMLCodec) Decode(r io.Reader) (any, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("invalid yaml: empty document")
		}
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	payload, err := fromNode(&doc, false)
	if err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return payload, nil
}

// textKeys hold free text. Unquoted scalars under them (back: 1789) keep their
// literal form instead of becoming numbers or booleans.
var textKeys = map[string]bool{
	"name": true, "description": true, "accentColor": true, "tags": true,
	"title": true, "front": true, "back": true, "status": true,
	"frontImage": true, "backImage": true,
}

// fromNode converts a YAML node into the shapes encoding/json produces, so both
// codecs feed the same validation.
func fromNode(n *yaml.Node, text bool) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0], false)
	case yaml.AliasNode:
		return fromNode(n.Alias, text)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			val, err := fromNode(n.Content[i+1], textKeys[key])
			if err != nil {
				return nil, err
			}
			m[key] = val
		}
		return m, nil
	case yaml.SequenceNode:
		l := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			val, err := fromNode(item, text)
			if err != nil {
				return nil, err
			}
			l = append(l, val)
		}
		return l, nil
	case yaml.ScalarNode:
		if text && n.ShortTag() != "!!null" {
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		switch num := v.(type) {
		case int:
			return float64(num), nil
		case int64:
			return float64(num), nil
		case uint64:
			return float64(num), nil
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
}
