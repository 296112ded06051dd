package evm

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

func FormatValues(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, FormatValue(value))
	}
	return out
}

// FormatValue turns a decoded abi value into text without interpreting it.
// Integers print in decimal, addresses in checksum hex and bytes as 0x hex.
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case *big.Int:
		if v == nil {
			return ""
		}
		return v.String()
	case big.Int:
		return v.String()
	case common.Address:
		return v.Hex()
	case common.Hash:
		return v.Hex()
	case []byte:
		return "0x" + hex.EncodeToString(v)
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			buf := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(buf), rv)
			return "0x" + hex.EncodeToString(buf)
		}
		return formatList(rv)
	case reflect.Slice:
		return formatList(rv)
	case reflect.Struct:
		fields := make([]string, 0, rv.NumField())
		for i := 0; i < rv.NumField(); i++ {
			if !rv.Type().Field(i).IsExported() {
				continue
			}
			fields = append(fields, fmt.Sprintf("%s: %s", rv.Type().Field(i).Name, FormatValue(rv.Field(i).Interface())))
		}
		return "{" + strings.Join(fields, ", ") + "}"
	case reflect.Ptr:
		if rv.IsNil() {
			return ""
		}
		return FormatValue(rv.Elem().Interface())
	}
	return fmt.Sprint(value)
}

func formatList(rv reflect.Value) string {
	items := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		items = append(items, FormatValue(rv.Index(i).Interface()))
	}
	return "[" + strings.Join(items, ", ") + "]"
}
