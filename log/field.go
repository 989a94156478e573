package log

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type FieldType int

const (
	InvalidType = FieldType(iota)
	IntType
	Int64Type
	StringType
	BoolType
	DurationType
	StringsType
	ErrorType
	AnyType
)

// Field is a typed key/value pair attached to a log event.
// Implementations of Logger must not retain fields after Log returns.
type Field struct {
	ftype FieldType
	key   string

	vint int64
	vstr string
	vdur time.Duration
	verr error
	vany interface{}
}

func (f Field) Type() FieldType {
	return f.ftype
}

func (f Field) Key() string {
	return f.key
}

// IntValue is only valid for fields of IntType.
func (f Field) IntValue() int {
	f.checkType(IntType)

	return int(f.vint)
}

// Int64Value is only valid for fields of Int64Type.
func (f Field) Int64Value() int64 {
	f.checkType(Int64Type)

	return f.vint
}

// StringValue is only valid for fields of StringType.
func (f Field) StringValue() string {
	f.checkType(StringType)

	return f.vstr
}

// BoolValue is only valid for fields of BoolType.
func (f Field) BoolValue() bool {
	f.checkType(BoolType)

	return f.vint != 0
}

// DurationValue is only valid for fields of DurationType.
func (f Field) DurationValue() time.Duration {
	f.checkType(DurationType)

	return f.vdur
}

// StringsValue is only valid for fields of StringsType.
func (f Field) StringsValue() []string {
	f.checkType(StringsType)
	if f.vany == nil {
		return nil
	}

	return f.vany.([]string)
}

// ErrorValue is only valid for fields of ErrorType.
func (f Field) ErrorValue() error {
	f.checkType(ErrorType)

	return f.verr
}

// AnyValue is only valid for fields of AnyType.
func (f Field) AnyValue() interface{} {
	f.checkType(AnyType)

	return f.vany
}

func (f Field) checkType(want FieldType) {
	if f.ftype != want {
		panic(fmt.Sprintf("bad type accessor for field %q: have %d, want %d", f.key, f.ftype, want))
	}
}

// String renders the field value as text.
func (f Field) String() string {
	switch f.ftype {
	case IntType, Int64Type:
		return strconv.FormatInt(f.vint, 10)
	case StringType:
		return f.vstr
	case BoolType:
		return strconv.FormatBool(f.vint != 0)
	case DurationType:
		return f.vdur.String()
	case StringsType:
		return "[" + strings.Join(f.StringsValue(), ",") + "]"
	case ErrorType:
		if f.verr == nil {
			return "<nil>"
		}

		return f.verr.Error()
	case AnyType:
		return fmt.Sprint(f.vany)
	default:
		return "<invalid>"
	}
}

func Int(k string, v int) Field {
	return Field{ftype: IntType, key: k, vint: int64(v)}
}

func Int64(k string, v int64) Field {
	return Field{ftype: Int64Type, key: k, vint: v}
}

func String(k, v string) Field {
	return Field{ftype: StringType, key: k, vstr: v}
}

func Bool(k string, v bool) Field {
	f := Field{ftype: BoolType, key: k}
	if v {
		f.vint = 1
	}

	return f
}

func Duration(k string, v time.Duration) Field {
	return Field{ftype: DurationType, key: k, vdur: v}
}

func Strings(k string, v []string) Field {
	return Field{ftype: StringsType, key: k, vany: v}
}

func Error(v error) Field {
	return Field{ftype: ErrorType, key: "error", verr: v}
}

func NamedError(k string, v error) Field {
	return Field{ftype: ErrorType, key: k, verr: v}
}

func Any(k string, v interface{}) Field {
	return Field{ftype: AnyType, key: k, vany: v}
}

func latency(start time.Time) Field {
	return Duration("latency", time.Since(start))
}
