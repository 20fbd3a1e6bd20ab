package database

import (
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// TimeLayout is the SQL timestamp form used for time values that reach
// CellText without a database-specific rendering.
const TimeLayout = "2006-01-02 15:04:05.999999999-07"

// CellText returns the textual form of a value read from a driver.
// Drivers that can hand back the database's own text should do so; this
// only covers values that were already decoded into Go types.
func CellText(v any) string {
	switch t := v.(type) {
	case nil:
		return NullText
	case string:
		return t
	case []byte:
		if utf8.Valid(t) {
			return string(t)
		}
		return `\x` + hex.EncodeToString(t)
	case time.Time:
		return t.Format(TimeLayout)
	case [16]byte:
		// uuid columns decoded as raw bytes
		return uuid.UUID(t).String()
	case driver.Valuer:
		inner, err := t.Value()
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		if _, again := inner.(driver.Valuer); again {
			return fmt.Sprintf("%v", inner)
		}
		return CellText(inner)
	}

	if s, err := cast.ToStringE(v); err == nil {
		return s
	}

	// Composite values (json documents, arrays) print as JSON.
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return fmt.Sprintf("%v", v)
}
