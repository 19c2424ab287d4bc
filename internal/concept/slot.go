// Package concept implements the unit/slot knowledge model: named knowledge
// records with typed property bags, plus the registries that hold them.
package concept

import "reflect"

// DataType classifies the values a slot may hold.
type DataType string

const (
	DataTypeAny      DataType = "any"
	DataTypeNumber   DataType = "number"
	DataTypeText     DataType = "text"
	DataTypeBit      DataType = "bit"
	DataTypeUnit     DataType = "unit"     // a unit name or list of unit names
	DataTypeFunction DataType = "function" // a callback value
)

// Slot describes the metadata of a property name: its value type, whether it
// participates in identity comparisons, and its copy/validate/inverse rules.
// Slots carry no values themselves; values live in unit property bags.
type Slot struct {
	Name        string
	DataType    DataType
	IsCriterial bool   // Participates in unit-identity/equivalence comparisons
	DontCopy    bool   // Excluded when merging or specializing units
	DoubleCheck bool   // Validate values on write
	Inverse     string // Paired slot name (e.g. isa <-> examples)
	SuperSlots  []string
	SubSlots    []string
	Description string
}

// ValidateValue reports whether a value is acceptable for this slot's
// data type. Unrecognized data types accept all values; the reference
// system was inconsistent here and accept-all matches the majority of
// its call sites.
func (s *Slot) ValidateValue(value interface{}) bool {
	switch s.DataType {
	case DataTypeNumber:
		switch value.(type) {
		case int, int32, int64, float32, float64:
			return true
		}
		return false
	case DataTypeText:
		_, ok := value.(string)
		return ok
	case DataTypeBit:
		switch v := value.(type) {
		case bool:
			return true
		case int:
			return v == 0 || v == 1
		}
		return false
	case DataTypeUnit:
		switch value.(type) {
		case string, []string:
			return true
		}
		return false
	case DataTypeFunction:
		if value == nil {
			return false
		}
		return reflect.TypeOf(value).Kind() == reflect.Func
	default:
		return true
	}
}
