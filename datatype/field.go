package datatype

// Field is a named, typed, possibly-nullable column description. Once
// constructed it is not mutated; builders and sources take a Field by
// value and never write back into it.
type Field struct {
	Name     string
	Type     DataType
	Nullable bool
	Metadata map[string]string
	Strategy Strategy // NoStrategy if unset
}

// WithStrategy returns a copy of f with Strategy set, validating that
// the strategy is legal for f's DataType.
func (f Field) WithStrategy(s Strategy) (Field, error) {
	if err := s.validFor(f.Type); err != nil {
		return Field{}, err
	}
	f.Strategy = s
	return f, nil
}

// Clone deep-copies the metadata map so the returned Field shares no
// mutable state with f.
func (f Field) Clone() Field {
	if f.Metadata == nil {
		return f
	}
	md := make(map[string]string, len(f.Metadata))
	for k, v := range f.Metadata {
		md[k] = v
	}
	f.Metadata = md
	return f
}
