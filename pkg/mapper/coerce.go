package mapper

import (
	"encoding/json"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noders-team/go-jsonmapper/pkg/typeexpr"
	"github.com/noders-team/go-jsonmapper/pkg/types"
)

var numericPrefixRe = regexp.MustCompile(`^[ \t\n\r\v\f]*[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?`)

// coerce converts a decoded value into the runtime representation of a scalar
// keyword using loose conversion rules.
func coerce(value any, scalar string) any {
	switch scalar {
	case typeexpr.ScalarString:
		return toString(value)
	case typeexpr.ScalarBool:
		return toBool(value)
	case typeexpr.ScalarInt:
		return toInt(value)
	case typeexpr.ScalarFloat:
		return toFloat(value)
	case typeexpr.ScalarArray:
		return toArray(value)
	case typeexpr.ScalarObject:
		return toObject(value)
	}
	return value
}

// toDecimal returns the numeric reading of value. Strings contribute their
// leading numeric prefix only, like "7 apples".
func toDecimal(value any) decimal.Decimal {
	switch v := value.(type) {
	case nil:
		return decimal.Zero
	case bool:
		if v {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	case json.Number:
		return parseNumeric(string(v))
	case string:
		return parseNumeric(v)
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int8:
		return decimal.NewFromInt(int64(v))
	case int16:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(v)), 0)
	case uint8:
		return decimal.NewFromInt(int64(v))
	case uint16:
		return decimal.NewFromInt(int64(v))
	case uint32:
		return decimal.NewFromInt(int64(v))
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
	case decimal.Decimal:
		return v
	}
	if isEmptyCollection(value) {
		return decimal.Zero
	}
	return decimal.NewFromInt(1)
}

func parseNumeric(s string) decimal.Decimal {
	prefix := numericPrefixRe.FindString(s)
	if prefix == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(normalizeNumeric(prefix))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// normalizeNumeric turns a matched prefix such as " +.5" into "0.5".
func normalizeNumeric(s string) string {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	sign := ""
	if s[0] == '+' || s[0] == '-' {
		if s[0] == '-' {
			sign = "-"
		}
		s = s[1:]
	}
	if s[0] == '.' {
		s = "0" + s
	}
	return sign + s
}

func toInt(value any) int64 {
	return toDecimal(value).IntPart()
}

func toFloat(value any) float64 {
	f, _ := toDecimal(value).Float64()
	return f
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return ""
	case json.Number:
		return parseNumeric(string(v)).String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case decimal.Decimal:
		return v.String()
	}
	if types.KindOf(value) == types.KindNumber {
		return toDecimal(value).String()
	}
	switch types.KindOf(value) {
	case types.KindArray:
		return "Array"
	case types.KindObject:
		return "Object"
	}
	if s, ok := value.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}

func toBool(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "0"
	}
	if types.KindOf(value) == types.KindNumber {
		return !toDecimal(value).IsZero()
	}
	return !isEmptyCollection(value)
}

func isEmptyCollection(value any) bool {
	switch v := value.(type) {
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	case *types.Object:
		return v == nil || v.Len() == 0
	}
	return false
}

// toArray keeps sequences and objects (an object is a keyed array) and wraps
// scalars into a one element sequence.
func toArray(value any) any {
	switch types.KindOf(value) {
	case types.KindNull:
		return []any{}
	case types.KindArray, types.KindObject:
		return value
	}
	return []any{value}
}

// toObject keeps objects, keys sequences by index and wraps scalars under
// the "scalar" key.
func toObject(value any) any {
	switch types.KindOf(value) {
	case types.KindObject:
		return value
	case types.KindNull:
		return types.NewObject()
	case types.KindArray:
		obj := types.NewObject()
		for _, e := range types.Entries(value) {
			obj.Set(e.Key, e.Value)
		}
		return obj
	}
	obj := types.NewObject()
	obj.Set("scalar", value)
	return obj
}
