package dsl

import (
	"encoding/json"

	"github.com/aclements/arrowcodec/codecerr"
	"github.com/aclements/arrowcodec/datatype"
)

// fieldJSON mirrors the wire shape of one field descriptor in the
// JSON schema form (SPEC_FULL.md / spec.md §6).
type fieldJSON struct {
	Name     string            `json:"name"`
	DataType string            `json:"data_type"`
	Nullable bool              `json:"nullable,omitempty"`
	Strategy string            `json:"strategy,omitempty"`
	Children []fieldJSON       `json:"children,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ParseSchemaJSON parses an array of field descriptors into Fields.
func ParseSchemaJSON(data []byte) ([]datatype.Field, error) {
	var raw []fieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, codecerr.Wrap(codecerr.SchemaInvalid, err, "parsing schema JSON")
	}
	fields := make([]datatype.Field, len(raw))
	for i, r := range raw {
		f, err := fieldFromJSON(r)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return fields, nil
}

func fieldFromJSON(r fieldJSON) (datatype.Field, error) {
	if r.Name == "" {
		return datatype.Field{}, codecerr.New(codecerr.SchemaInvalid, "field descriptor missing required \"name\"")
	}
	if r.DataType == "" {
		return datatype.Field{}, codecerr.New(codecerr.SchemaInvalid, "field descriptor %q missing required \"data_type\"", r.Name)
	}
	dt, err := ParseDataType(r.DataType)
	if err != nil {
		return datatype.Field{}, codecerr.Wrap(codecerr.SchemaInvalid, err, "field %q data_type", r.Name)
	}
	// Nested DataType forms (Struct/Union/List/...) already parsed
	// their children inline from the DSL text; an explicit "children"
	// array is only needed when the DSL form is bare (not used by
	// this parser's DSL grammar, which always inlines children) — kept
	// for forward/host compatibility with producers that split the two.
	_ = r.Children

	strat := datatype.NoStrategy
	if r.Strategy != "" {
		strat, err = datatype.ParseStrategy(r.Strategy)
		if err != nil {
			return datatype.Field{}, codecerr.Wrap(codecerr.SchemaInvalid, err, "field %q strategy", r.Name)
		}
	}

	f := datatype.Field{
		Name:     r.Name,
		Type:     dt,
		Nullable: r.Nullable,
		Metadata: r.Metadata,
	}
	if strat != datatype.NoStrategy {
		f, err = f.WithStrategy(strat)
		if err != nil {
			return datatype.Field{}, err
		}
	}
	return f, nil
}

// PrintSchemaJSON renders fields as the JSON schema form.
func PrintSchemaJSON(fields []datatype.Field) ([]byte, error) {
	raw := make([]fieldJSON, len(fields))
	for i, f := range fields {
		raw[i] = fieldJSON{
			Name:     f.Name,
			DataType: PrintDataType(f.Type),
			Nullable: f.Nullable,
			Metadata: f.Metadata,
		}
		if f.Strategy != datatype.NoStrategy {
			raw[i].Strategy = f.Strategy.String()
		}
	}
	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, codecerr.Wrap(codecerr.Internal, err, "marshaling schema JSON")
	}
	return out, nil
}
