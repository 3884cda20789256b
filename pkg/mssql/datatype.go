package mssql

import "fmt"

// renderDataType renders a catalog type with its width arguments.
// maxLength comes from sys.columns in bytes; nchar and nvarchar halve it
// to a character count, and -1 means MAX. decimal and numeric carry
// precision and scale, the fractional-second types carry scale alone when
// it is non-zero, and every other type renders bare.
func renderDataType(name string, maxLength, precision, scale int64) string {
	switch name {
	case "varchar", "char", "varbinary", "binary":
		if maxLength == -1 {
			return name + "(MAX)"
		}
		return fmt.Sprintf("%s(%d)", name, maxLength)
	case "nvarchar", "nchar":
		if maxLength == -1 {
			return name + "(MAX)"
		}
		return fmt.Sprintf("%s(%d)", name, maxLength/2)
	case "decimal", "numeric":
		return fmt.Sprintf("%s(%d,%d)", name, precision, scale)
	case "datetime2", "time", "datetimeoffset":
		if scale > 0 {
			return fmt.Sprintf("%s(%d)", name, scale)
		}
		return name
	default:
		return name
	}
}

// onOff renders a module flag the way SET statements spell booleans.
func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}
