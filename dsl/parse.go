package dsl

import (
	"strconv"

	"github.com/aclements/arrowcodec/codecerr"
	"github.com/aclements/arrowcodec/datatype"
)

// ParseDataType parses a single DataType expression, e.g. "Int32",
// "Decimal128(5, 2)", "List(Struct([{name: \"a\", data_type: Int32}]))".
func ParseDataType(src string) (datatype.DataType, error) {
	s := newToks(src)
	dt, err := parseDataType(s)
	if err != nil {
		return nil, err
	}
	eof, err := s.atEOF()
	if err != nil {
		return nil, err
	}
	if !eof {
		t, _ := s.peek()
		return nil, codecerr.New(codecerr.SchemaInvalid, "unexpected trailing input near %q", t.text)
	}
	return dt, nil
}

func parseDataType(s *toks) (datatype.DataType, error) {
	name, err := s.expectIdent()
	if err != nil {
		return nil, err
	}

	hasArgs, err := s.tryPunct("(")
	if err != nil {
		return nil, err
	}

	switch name {
	case "Null":
		return datatype.NullType, nil
	case "Bool":
		return datatype.BoolType, nil
	case "Int8":
		return datatype.Int8Type, nil
	case "Int16":
		return datatype.Int16Type, nil
	case "Int32":
		return datatype.Int32Type, nil
	case "Int64":
		return datatype.Int64Type, nil
	case "UInt8":
		return datatype.Uint8Type, nil
	case "UInt16":
		return datatype.Uint16Type, nil
	case "UInt32":
		return datatype.Uint32Type, nil
	case "UInt64":
		return datatype.Uint64Type, nil
	case "Float16":
		return datatype.Float16Type, nil
	case "Float32":
		return datatype.Float32Type, nil
	case "Float64":
		return datatype.Float64Type, nil
	case "Utf8":
		return datatype.Utf8Type, nil
	case "LargeUtf8":
		return datatype.LargeUtf8T, nil
	case "Binary":
		return datatype.BinaryType, nil
	case "LargeBinary":
		return datatype.LargeBinT, nil
	case "Date32":
		return datatype.Date32Type, nil
	case "Date64":
		return datatype.Date64Type, nil
	}

	if !hasArgs {
		return nil, codecerr.New(codecerr.SchemaInvalid,
			"unknown type tag %q; expected one of Null, Bool, Int8/16/32/64, UInt8/16/32/64, Float16/32/64, "+
				"Utf8, LargeUtf8, Binary, LargeBinary, Date32, Date64, Time32(unit), Time64(unit), "+
				"Timestamp(unit, tz), Duration(unit), Decimal128(p, s), List(t), LargeList(t), "+
				"FixedSizeList(t, n), Struct([...]), Union([...], mode), Map(k, v), Dictionary(idx, val), "+
				"FixedSizeBinary(n)", name)
	}

	switch name {
	case "Time32":
		unit, err := parseTimeUnit(s)
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(")"); err != nil {
			return nil, err
		}
		return datatype.NewTime32(unit)

	case "Time64":
		unit, err := parseTimeUnit(s)
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(")"); err != nil {
			return nil, err
		}
		return datatype.NewTime64(unit)

	case "Duration":
		unit, err := parseTimeUnit(s)
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(")"); err != nil {
			return nil, err
		}
		return datatype.NewDuration(unit)

	case "Timestamp":
		unit, err := parseTimeUnit(s)
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(","); err != nil {
			return nil, err
		}
		tzName, err := s.expectIdent()
		if err != nil {
			return nil, err
		}
		var tz string
		var hasTZ bool
		switch tzName {
		case "None":
			hasTZ = false
		case "Some":
			hasTZ = true
			if err := s.expectPunct("("); err != nil {
				return nil, err
			}
			tz, err = s.expectString()
			if err != nil {
				return nil, err
			}
			if err := s.expectPunct(")"); err != nil {
				return nil, err
			}
		default:
			return nil, codecerr.New(codecerr.SchemaInvalid, "expected Some(tz) or None, got %q", tzName)
		}
		if err := s.expectPunct(")"); err != nil {
			return nil, err
		}
		return datatype.NewTimestamp(unit, tz, hasTZ)

	case "Decimal128":
		p, err := s.expectNumber()
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(","); err != nil {
			return nil, err
		}
		sc, err := s.expectNumber()
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(")"); err != nil {
			return nil, err
		}
		precision, err := strconv.Atoi(p)
		if err != nil {
			return nil, codecerr.Wrap(codecerr.SchemaInvalid, err, "invalid Decimal128 precision %q", p)
		}
		scale, err := strconv.Atoi(sc)
		if err != nil {
			return nil, codecerr.Wrap(codecerr.SchemaInvalid, err, "invalid Decimal128 scale %q", sc)
		}
		return datatype.NewDecimal128(int32(precision), int32(scale))

	case "FixedSizeBinary":
		n, err := s.expectNumber()
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(")"); err != nil {
			return nil, err
		}
		width, err := strconv.Atoi(n)
		if err != nil {
			return nil, codecerr.Wrap(codecerr.SchemaInvalid, err, "invalid FixedSizeBinary width %q", n)
		}
		return datatype.NewFixedSizeBinary(int32(width))

	case "List":
		child, err := parseDataType(s)
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(")"); err != nil {
			return nil, err
		}
		return datatype.NewList(child, true), nil

	case "LargeList":
		child, err := parseDataType(s)
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(")"); err != nil {
			return nil, err
		}
		return datatype.NewLargeList(child, true), nil

	case "FixedSizeList":
		child, err := parseDataType(s)
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(","); err != nil {
			return nil, err
		}
		n, err := s.expectNumber()
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(")"); err != nil {
			return nil, err
		}
		length, err := strconv.Atoi(n)
		if err != nil {
			return nil, codecerr.Wrap(codecerr.SchemaInvalid, err, "invalid FixedSizeList length %q", n)
		}
		return datatype.NewFixedSizeList(child, true, int32(length))

	case "Struct":
		fields, err := parseFieldList(s)
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(")"); err != nil {
			return nil, err
		}
		return datatype.NewStruct(fields), nil

	case "Union":
		fields, err := parseFieldList(s)
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(","); err != nil {
			return nil, err
		}
		modeName, err := s.expectIdent()
		if err != nil {
			return nil, err
		}
		var mode datatype.UnionMode
		switch modeName {
		case "Dense":
			mode = datatype.Dense
		case "Sparse":
			mode = datatype.Sparse
		default:
			return nil, codecerr.New(codecerr.SchemaInvalid, "Union mode must be Dense or Sparse; got %q", modeName)
		}
		if err := s.expectPunct(")"); err != nil {
			return nil, err
		}
		return datatype.NewUnion(fields, mode), nil

	case "Map":
		keyType, err := parseDataType(s)
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(","); err != nil {
			return nil, err
		}
		valType, err := parseDataType(s)
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(")"); err != nil {
			return nil, err
		}
		return datatype.NewMap(keyType, valType, true, false), nil

	case "Dictionary":
		idxType, err := parseDataType(s)
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(","); err != nil {
			return nil, err
		}
		valType, err := parseDataType(s)
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(")"); err != nil {
			return nil, err
		}
		return datatype.NewDictionary(idxType, valType, false)
	}

	return nil, codecerr.New(codecerr.SchemaInvalid, "unknown parameterized type tag %q", name)
}

func parseTimeUnit(s *toks) (datatype.TimeUnit, error) {
	name, err := s.expectIdent()
	if err != nil {
		return 0, err
	}
	switch name {
	case "Second":
		return datatype.Second, nil
	case "Millisecond":
		return datatype.Millisecond, nil
	case "Microsecond":
		return datatype.Microsecond, nil
	case "Nanosecond":
		return datatype.Nanosecond, nil
	default:
		return 0, codecerr.New(codecerr.SchemaInvalid,
			"unknown time unit %q; expected one of Second, Millisecond, Microsecond, Nanosecond", name)
	}
}

// parseFieldList parses "[" Field ("," Field)* "]", where Field is the
// "{name: ..., data_type: ..., ...}" object-literal form.
func parseFieldList(s *toks) ([]datatype.Field, error) {
	if err := s.expectPunct("["); err != nil {
		return nil, err
	}
	var fields []datatype.Field
	if ok, err := s.tryPunct("]"); err != nil {
		return nil, err
	} else if ok {
		return fields, nil
	}
	for {
		f, err := parseFieldLiteral(s)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		if ok, err := s.tryPunct(","); err != nil {
			return nil, err
		} else if ok {
			continue
		}
		break
	}
	if err := s.expectPunct("]"); err != nil {
		return nil, err
	}
	return fields, nil
}

// parseFieldLiteral parses "{" key ":" value ("," key ":" value)* "}"
// where keys are name, data_type, nullable, children, metadata,
// strategy, in any order.
func parseFieldLiteral(s *toks) (datatype.Field, error) {
	if err := s.expectPunct("{"); err != nil {
		return datatype.Field{}, err
	}
	var f datatype.Field
	var haveName, haveType bool
	for {
		key, err := s.expectIdent()
		if err != nil {
			return datatype.Field{}, err
		}
		if err := s.expectPunct(":"); err != nil {
			return datatype.Field{}, err
		}
		switch key {
		case "name":
			v, err := s.expectString()
			if err != nil {
				return datatype.Field{}, err
			}
			f.Name = v
			haveName = true
		case "data_type":
			dt, err := parseDataType(s)
			if err != nil {
				return datatype.Field{}, err
			}
			f.Type = dt
			haveType = true
		case "nullable":
			v, err := s.expectIdent()
			if err != nil {
				return datatype.Field{}, err
			}
			switch v {
			case "true":
				f.Nullable = true
			case "false":
				f.Nullable = false
			default:
				return datatype.Field{}, codecerr.New(codecerr.SchemaInvalid, "nullable must be true or false, got %q", v)
			}
		case "strategy":
			v, err := s.expectString()
			if err != nil {
				return datatype.Field{}, err
			}
			strat, err := datatype.ParseStrategy(v)
			if err != nil {
				return datatype.Field{}, err
			}
			f.Strategy = strat
		case "metadata":
			md, err := parseMetadata(s)
			if err != nil {
				return datatype.Field{}, err
			}
			f.Metadata = md
		case "children":
			// children is implied by data_type's own nested field
			// list for Struct/Union/List/Map; accept and discard a
			// redundant explicit children list rather than erroring,
			// since a data_type like "Struct([...])" already carries
			// its children inline.
			if _, err := parseFieldList(s); err != nil {
				return datatype.Field{}, err
			}
		default:
			return datatype.Field{}, codecerr.New(codecerr.SchemaInvalid, "unknown field literal key %q", key)
		}
		if ok, err := s.tryPunct(","); err != nil {
			return datatype.Field{}, err
		} else if ok {
			continue
		}
		break
	}
	if err := s.expectPunct("}"); err != nil {
		return datatype.Field{}, err
	}
	if !haveName {
		return datatype.Field{}, codecerr.New(codecerr.SchemaInvalid, "field literal missing required \"name\"")
	}
	if !haveType {
		return datatype.Field{}, codecerr.New(codecerr.SchemaInvalid, "field literal missing required \"data_type\"")
	}
	return f, nil
}

func parseMetadata(s *toks) (map[string]string, error) {
	if err := s.expectPunct("{"); err != nil {
		return nil, err
	}
	md := map[string]string{}
	if ok, err := s.tryPunct("}"); err != nil {
		return nil, err
	} else if ok {
		return md, nil
	}
	for {
		k, err := s.expectString()
		if err != nil {
			return nil, err
		}
		if err := s.expectPunct(":"); err != nil {
			return nil, err
		}
		v, err := s.expectString()
		if err != nil {
			return nil, err
		}
		md[k] = v
		if ok, err := s.tryPunct(","); err != nil {
			return nil, err
		} else if ok {
			continue
		}
		break
	}
	if err := s.expectPunct("}"); err != nil {
		return nil, err
	}
	return md, nil
}
