package reader

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// SchemaInfo describes one column of a parquet file as stored on disk.
type SchemaInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	PhysicalType string `json:"physical_type"`
	LogicalType  string `json:"logical_type"`
	Optional     bool   `json:"optional"`
}

// ExtractSchemaInfo reports the top-level columns of a parquet file.
// Nested groups and repeated fields cannot back a table column and are
// rejected.
func ExtractSchemaInfo(path string) ([]SchemaInfo, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return describeFields(r.Schema().Fields())
}

func describeFields(fields []parquet.Field) ([]SchemaInfo, error) {
	infos := make([]SchemaInfo, 0, len(fields))
	for _, field := range fields {
		if len(field.Fields()) > 0 || field.Repeated() {
			return nil, fmt.Errorf("column %s: nested and repeated columns are not supported", field.Name())
		}
		infos = append(infos, SchemaInfo{
			Name:         field.Name(),
			Type:         columnTypeOf(field),
			PhysicalType: physicalTypeName(field.Type().Kind()),
			LogicalType:  logicalTypeName(field),
			Optional:     field.Optional(),
		})
	}
	return infos, nil
}

// InferSchema derives a table schema from parquet column metadata
func InferSchema(infos []SchemaInfo) (Schema, error) {
	schema := make(Schema, 0, len(infos))
	for _, info := range infos {
		typ, ok := typeNames[info.Type]
		if !ok {
			return nil, fmt.Errorf("column %s: unsupported parquet type %s", info.Name, info.Type)
		}
		schema = append(schema, Column{Name: info.Name, Type: typ})
	}
	return schema, nil
}

func physicalTypeName(kind parquet.Kind) string {
	switch kind {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		return "FLOAT"
	case parquet.Double:
		return "DOUBLE"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	}
	return "UNKNOWN"
}

func logicalTypeName(field parquet.Field) string {
	lt := field.Type().LogicalType()
	if lt == nil {
		return ""
	}
	return lt.String()
}

// columnTypeOf maps a parquet leaf to the closest table type. The logical
// annotation wins over the physical kind; unknown kinds map to a type name
// that InferSchema rejects.
func columnTypeOf(field parquet.Field) string {
	logical := strings.ToUpper(logicalTypeName(field))
	switch {
	case strings.HasPrefix(logical, "STRING"), strings.HasPrefix(logical, "UTF8"),
		strings.HasPrefix(logical, "ENUM"), strings.HasPrefix(logical, "JSON"):
		return TypeString.String()
	case strings.HasPrefix(logical, "DATE"):
		return TypeDate.String()
	}

	switch field.Type().Kind() {
	case parquet.Boolean:
		return TypeBool.String()
	case parquet.Int32, parquet.Int64:
		return TypeInt.String()
	case parquet.Float, parquet.Double:
		return TypeDouble.String()
	case parquet.ByteArray:
		return TypeString.String()
	}
	return physicalTypeName(field.Type().Kind())
}
