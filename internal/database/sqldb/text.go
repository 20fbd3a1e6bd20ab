package sqldb

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
)

// cellValue turns a scanned value into the text the database itself would
// print for it. Values with no special spelling are returned untouched and
// left to database.CellText.
func cellValue(driverName, dbType string, v any) any {
	switch t := v.(type) {
	case []byte:
		return bytesText(driverName, dbType, t)
	case time.Time:
		return timeText(driverName, dbType, t)
	case float64:
		return floatText(driverName, dbType, t)
	}
	return v
}

// binaryTypes lists the column types whose bytes are not text.
var binaryTypes = map[string]map[string]bool{
	"mysql": {
		"BLOB": true, "TINYBLOB": true, "MEDIUMBLOB": true, "LONGBLOB": true,
		"BINARY": true, "VARBINARY": true, "BIT": true, "GEOMETRY": true,
	},
	"sqlserver": {
		"BINARY": true, "VARBINARY": true, "IMAGE": true,
	},
}

func bytesText(driverName, dbType string, b []byte) any {
	if b == nil {
		return nil
	}

	switch driverName {
	case "sqlite":
		// The sqlite driver returns TEXT as string, so bytes are always a BLOB.
		return "X'" + strings.ToUpper(hex.EncodeToString(b)) + "'"
	case "sqlserver":
		if dbType == "UNIQUEIDENTIFIER" {
			var id mssql.UniqueIdentifier
			if err := id.Scan(b); err == nil {
				return id.String()
			}
		}
	}

	if binaryTypes[driverName][dbType] {
		return "0x" + strings.ToUpper(hex.EncodeToString(b))
	}
	return string(b)
}

// timeLayouts holds per driver and column type the layout the server
// uses when it prints a value of that type.
var timeLayouts = map[string]map[string]string{
	"sqlite": {
		"DATE": "2006-01-02",
		"":     "2006-01-02 15:04:05.999999999",
	},
	"mysql": {
		"DATE": "2006-01-02",
		"TIME": "15:04:05.999999",
		"":     "2006-01-02 15:04:05.999999",
	},
	"sqlserver": {
		"DATE":           "2006-01-02",
		"TIME":           "15:04:05.0000000",
		"SMALLDATETIME":  "2006-01-02 15:04:05",
		"DATETIME":       "2006-01-02 15:04:05.000",
		"DATETIMEOFFSET": "2006-01-02 15:04:05.0000000 -07:00",
		"":               "2006-01-02 15:04:05.0000000",
	},
}

func timeText(driverName, dbType string, t time.Time) string {
	layouts := timeLayouts[driverName]
	layout, ok := layouts[dbType]
	if !ok {
		layout = layouts[""]
	}
	if layout == "" {
		layout = "2006-01-02 15:04:05.999999999"
	}

	// A sqlite DATE column may hold a full timestamp.
	if driverName == "sqlite" && dbType == "DATE" && !isMidnight(t) {
		layout = layouts[""]
	}
	if driverName != "sqlserver" && t.Location() != time.UTC {
		layout += "-07:00"
	}
	return t.Format(layout)
}

func isMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

func floatText(driverName, dbType string, f float64) string {
	bits := 64
	if dbType == "FLOAT" && driverName == "mysql" || dbType == "REAL" && driverName == "sqlserver" {
		bits = 32
	}

	switch {
	case math.IsInf(f, 1):
		return "Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	case math.IsNaN(f):
		return "NaN"
	}

	switch driverName {
	case "sqlite":
		return sqliteFloat(f)
	case "mysql":
		return mysqlFloat(strconv.FormatFloat(f, 'g', -1, bits))
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

// sqliteFloat mirrors SQLite's "%!.15g": 15 significant digits and a
// decimal point that is always present, as in 3.0 or 1.0e+20.
func sqliteFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', 15, 64)
	mantissa, exp, hasExp := strings.Cut(s, "e")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	if hasExp {
		return mantissa + "e" + exp
	}
	return mantissa
}

// mysqlFloat drops the exponent sign and padding, as in 1e20 or 1.5e-7.
func mysqlFloat(s string) string {
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := ""
	if strings.HasPrefix(exp, "-") {
		sign = "-"
	}
	exp = strings.TrimLeft(exp, "+-0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + "e" + sign + exp
}
