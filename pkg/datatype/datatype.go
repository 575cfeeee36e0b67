// Package datatype defines the closed set of logical column types used by
// OpenRec grids and the two-character wire codes that identify them in a
// file's schema row.
//
// Unknown is reserved for "not yet resolved", a column whose type has not
// been established by an instruction. It is never the result of decoding a
// malformed code: an unrecognized code is a configuration fault and fails
// loudly instead of degrading to Unknown.
package datatype

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openrec/openrec/pkg/constants"
)

// DataType is the logical type of a grid column.
type DataType uint8

// The closed set of column types.
const (
	// Unknown marks a column whose type has not been resolved yet.
	Unknown DataType = iota

	// Boolean is encoded as the literal strings "1" and "0".
	Boolean

	// Datetime is encoded as integer milliseconds since the Unix epoch.
	Datetime

	// Decimal is arbitrary-precision decimal text.
	Decimal

	// Integer is a signed 64-bit integer.
	Integer

	// String is UTF-8 text without embedded NUL.
	String

	// Uuid is a 16-byte identifier, textually represented.
	Uuid
)

// Wire codes, positionally aligned with the DataType constants.
var codes = [...]string{
	Unknown:  "??",
	Boolean:  "BO",
	Datetime: "DT",
	Decimal:  "DE",
	Integer:  "IN",
	String:   "ST",
	Uuid:     "ID",
}

var names = [...]string{
	Unknown:  "Unknown",
	Boolean:  "Boolean",
	Datetime: "Datetime",
	Decimal:  "Decimal",
	Integer:  "Integer",
	String:   "String",
	Uuid:     "Uuid",
}

// ParseCode decodes a two-character wire code into a DataType.
// "??" decodes to Unknown, which is only a load-time placeholder; the
// schema layer rejects it as a stored column type. Any other unrecognized
// code returns an error; codes are operator-authored, so a bad one means a
// corrupt or hand-edited file and must stop the job.
func ParseCode(code string) (DataType, error) {
	if len(code) != constants.TypeCodeLength {
		return Unknown, fmt.Errorf("unknown data type code %q", code)
	}
	for dt, c := range codes {
		if c == code {
			return DataType(dt), nil
		}
	}
	return Unknown, fmt.Errorf("unknown data type code %q", code)
}

// Code returns the two-character wire code for the type. It is the exact
// inverse of ParseCode for all seven variants.
func (dt DataType) Code() string {
	if int(dt) < len(codes) {
		return codes[dt]
	}
	return codes[Unknown]
}

// String returns the human-readable name of the type.
func (dt DataType) String() string {
	if int(dt) < len(names) {
		return names[dt]
	}
	return names[Unknown]
}

// IsValid reports whether dt is one of the defined constants.
func (dt DataType) IsValid() bool {
	return int(dt) < len(codes)
}

// DataTypes returns the six real column types, excluding Unknown.
func DataTypes() []DataType {
	return []DataType{Boolean, Datetime, Decimal, Integer, String, Uuid}
}

// ParseValue decodes a raw cell into the Go value for the type.
// An empty cell decodes to nil for every type. Concrete result types:
// bool, time.Time (UTC), decimal.Decimal, int64, string, uuid.UUID.
func ParseValue(dt DataType, raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}

	switch dt {
	case Boolean:
		switch raw {
		case "1":
			return true, nil
		case "0":
			return false, nil
		}
		return nil, fmt.Errorf("boolean cell must be \"1\" or \"0\", got %q", raw)

	case Datetime:
		millis, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("datetime cell %q: %w", raw, err)
		}
		return time.UnixMilli(millis).UTC(), nil

	case Decimal:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("decimal cell %q: %w", raw, err)
		}
		return d, nil

	case Integer:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("integer cell %q: %w", raw, err)
		}
		return n, nil

	case String:
		return raw, nil

	case Uuid:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("uuid cell %q: %w", raw, err)
		}
		return id, nil
	}

	return nil, fmt.Errorf("cannot decode cell for unresolved type %s", dt)
}

// FormatValue encodes a decoded cell value back to its wire text.
// nil encodes to the empty cell for every type.
func FormatValue(dt DataType, v any) (string, error) {
	if v == nil {
		return "", nil
	}

	switch dt {
	case Boolean:
		b, ok := v.(bool)
		if !ok {
			return "", fmt.Errorf("boolean cell: unexpected value %T", v)
		}
		if b {
			return "1", nil
		}
		return "0", nil

	case Datetime:
		t, ok := v.(time.Time)
		if !ok {
			return "", fmt.Errorf("datetime cell: unexpected value %T", v)
		}
		return strconv.FormatInt(t.UnixMilli(), 10), nil

	case Decimal:
		d, ok := v.(decimal.Decimal)
		if !ok {
			return "", fmt.Errorf("decimal cell: unexpected value %T", v)
		}
		return d.String(), nil

	case Integer:
		n, ok := v.(int64)
		if !ok {
			return "", fmt.Errorf("integer cell: unexpected value %T", v)
		}
		return strconv.FormatInt(n, 10), nil

	case String:
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("string cell: unexpected value %T", v)
		}
		return s, nil

	case Uuid:
		id, ok := v.(uuid.UUID)
		if !ok {
			return "", fmt.Errorf("uuid cell: unexpected value %T", v)
		}
		return id.String(), nil
	}

	return "", fmt.Errorf("cannot encode cell for unresolved type %s", dt)
}
