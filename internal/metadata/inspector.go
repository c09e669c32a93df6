package metadata

import (
	"reflect"
	"strings"
	"time"
	"unicode"

	"infinito/internal/core/id"
	"infinito/internal/core/types"
)

var (
	idType        = reflect.TypeOf(id.ID{})
	timeType      = reflect.TypeOf(time.Time{})
	timestampType = reflect.TypeOf(types.Timestamp{})
	amountType    = reflect.TypeOf(types.Amount{})
	countType     = reflect.TypeOf(types.Count{})
	flagType      = reflect.TypeOf(types.Flag(false))
)

// Inspect analyzes a record struct and returns its fields.
// options maps JSON field names to their allowed values; those fields become enums.
func Inspect(record any, options map[string][]string) []FieldDef {
	t := reflect.TypeOf(record)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	fields := make([]FieldDef, 0, t.NumField())
	inspectStruct(t, options, &fields)
	return fields
}

func inspectStruct(t reflect.Type, options map[string][]string, out *[]FieldDef) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.PkgPath != "" { // unexported
			continue
		}

		// Embedded structs are flattened
		if field.Anonymous {
			inspectStruct(field.Type, options, out)
			continue
		}

		fDef := FieldDef{
			Name:     jsonName(field),
			Label:    guessLabel(field.Name),
			ReadOnly: isReadOnly(field),
		}
		if fDef.Name == "-" {
			continue
		}

		mapFieldType(&fDef, field)
		if opts, ok := options[fDef.Name]; ok {
			fDef.Type = TypeEnum
			fDef.Options = opts
		}

		*out = append(*out, fDef)
	}
}

func mapFieldType(def *FieldDef, field reflect.StructField) {
	t := field.Type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t {
	case idType:
		if field.Name == "ID" {
			def.Type = TypeString
			return
		}
		def.Type = TypeReference
		// "ContributionID" -> "contribution"
		def.ReferenceType = strings.ToLower(strings.TrimSuffix(field.Name, "ID"))
		return
	case timeType, timestampType:
		def.Type = TypeDate
		return
	case amountType:
		def.Type = TypeNumber
		def.Scale = 2
		if strings.Contains(field.Name, "Price") {
			def.Type = TypeMoney
		}
		return
	case countType:
		def.Type = TypeInteger
		return
	case flagType:
		def.Type = TypeBoolean
		return
	}

	switch t.Kind() {
	case reflect.String:
		def.Type = TypeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		def.Type = TypeInteger
	case reflect.Float32, reflect.Float64:
		def.Type = TypeNumber
		def.Scale = 2
	case reflect.Bool:
		def.Type = TypeBoolean
	default:
		def.Type = TypeString // fallback
	}
}

func jsonName(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("json"); ok {
		parts := strings.Split(tag, ",")
		if parts[0] != "" {
			return parts[0]
		}
	}
	runes := []rune(field.Name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func isReadOnly(field reflect.StructField) bool {
	switch field.Name {
	case "ID", "Version", "UpdatedAt", "CreatedAt", "TrackingCode", "SKU":
		return true
	}
	return false
}

// guessLabel splits CamelCase: "DonorName" -> "Donor name".
func guessLabel(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && !unicode.IsUpper(runes[i-1]) {
			b.WriteRune(' ')
			// keep acronyms such as "ID" intact
			if i+1 < len(runes) && unicode.IsUpper(runes[i+1]) {
				b.WriteRune(r)
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
