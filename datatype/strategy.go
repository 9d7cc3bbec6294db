package datatype

import "github.com/aclements/arrowcodec/codecerr"

// Strategy is a metadata hint attached to a Field that changes how its
// logical value is encoded into its physical DataType, without
// widening the DataType variant itself. See SPEC_FULL.md §3.
type Strategy uint8

const (
	// NoStrategy means no hint is attached.
	NoStrategy Strategy = iota
	// UtcStrAsDate64 encodes/decodes an RFC3339 "Z"-suffixed string as
	// a Date64 or Timestamp.
	UtcStrAsDate64
	// NaiveStrAsDate64 encodes/decodes a timezone-less date-time
	// string as a Date64 or Timestamp.
	NaiveStrAsDate64
	// TupleAsStruct treats StartTuple/EndTuple events as a Struct
	// whose field names are positional.
	TupleAsStruct
	// MapAsStruct rewires a string-keyed Map into a Struct whose
	// field set is learned from the schema.
	MapAsStruct
	// UnknownVariant marks a Union variant as the catch-all target for
	// variant names the schema did not anticipate.
	UnknownVariant
)

// MetadataKey is the Field.Metadata key name reserved for a Strategy.
// No package reads or writes it: Field.Strategy holds the hint in
// memory, and the JSON schema form carries it in its own "strategy" key.
const MetadataKey = "arrowcodec.strategy"

func (s Strategy) String() string {
	switch s {
	case NoStrategy:
		return ""
	case UtcStrAsDate64:
		return "UtcStrAsDate64"
	case NaiveStrAsDate64:
		return "NaiveStrAsDate64"
	case TupleAsStruct:
		return "TupleAsStruct"
	case MapAsStruct:
		return "MapAsStruct"
	case UnknownVariant:
		return "UnknownVariant"
	default:
		return "Strategy(?)"
	}
}

// ParseStrategy looks up a Strategy by its wire name, as used in the
// JSON schema form's "strategy" key.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "None":
		return NoStrategy, nil
	case "UtcStrAsDate64":
		return UtcStrAsDate64, nil
	case "NaiveStrAsDate64":
		return NaiveStrAsDate64, nil
	case "TupleAsStruct":
		return TupleAsStruct, nil
	case "MapAsStruct":
		return MapAsStruct, nil
	case "UnknownVariant":
		return UnknownVariant, nil
	default:
		return NoStrategy, codecerr.New(codecerr.SchemaInvalid,
			"unknown strategy %q; expected one of UtcStrAsDate64, NaiveStrAsDate64, TupleAsStruct, MapAsStruct, UnknownVariant", name)
	}
}

// validFor reports whether s is a legal hint on a field of type dt.
func (s Strategy) validFor(dt DataType) error {
	switch s {
	case NoStrategy:
		return nil
	case UtcStrAsDate64, NaiveStrAsDate64:
		if dt.ID() == Date64 || dt.ID() == Timestamp {
			return nil
		}
		return codecerr.New(codecerr.SchemaInvalid,
			"%s is only legal on Date64 or Timestamp fields; got %s", s, dt.ID())
	case TupleAsStruct:
		if dt.ID() == Struct {
			return nil
		}
		return codecerr.New(codecerr.SchemaInvalid, "TupleAsStruct is only legal on Struct fields; got %s", dt.ID())
	case MapAsStruct:
		if dt.ID() == Map {
			return nil
		}
		return codecerr.New(codecerr.SchemaInvalid, "MapAsStruct is only legal on Map fields; got %s", dt.ID())
	case UnknownVariant:
		if dt.ID() == Union {
			return nil
		}
		return codecerr.New(codecerr.SchemaInvalid, "UnknownVariant is only legal on Union fields; got %s", dt.ID())
	default:
		return codecerr.New(codecerr.SchemaInvalid, "unknown strategy %v", s)
	}
}
