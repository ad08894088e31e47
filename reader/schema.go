package reader

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"

	"github.com/vegasq/rql/query"
)

// SchemaInfo represents metadata about a single column in a Parquet file.
type SchemaInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	PhysicalType string `json:"physical_type"`
	LogicalType  string `json:"logical_type"`
	Required     bool   `json:"required"`
	Optional     bool   `json:"optional"`
	Repeated     bool   `json:"repeated"`
}

// leafColumn is one parquet leaf column as seen by the query engine
type leafColumn struct {
	name     string
	node     parquet.Node
	repeated bool
	dataType query.DataType
}

// ExtractSchemaInfo extracts schema information from a Parquet file.
//
// For nested types, field names use dot notation (e.g., "address.street").
// Type is the RQL type the column is exposed as.
func ExtractSchemaInfo(path string) ([]SchemaInfo, error) {
	f, err := openParquetFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return schemaInfos(f.leaves), nil
}

func schemaInfos(leaves []leafColumn) []SchemaInfo {
	infos := make([]SchemaInfo, 0, len(leaves))
	for _, leaf := range leaves {
		infos = append(infos, SchemaInfo{
			Name:         leaf.name,
			Type:         leaf.dataType.String(),
			PhysicalType: getPhysicalType(leaf.node),
			LogicalType:  getLogicalType(leaf.node),
			Required:     leaf.node.Required(),
			Optional:     leaf.node.Optional(),
			Repeated:     leaf.repeated,
		})
	}
	return infos
}

// leafColumns lists the leaf columns of a schema in column index order.
// A leaf below a repeated group counts as repeated.
func leafColumns(schema *parquet.Schema) ([]leafColumn, error) {
	paths := schema.Columns()
	leaves := make([]leafColumn, len(paths))
	for _, path := range paths {
		leaf, ok := schema.Lookup(path...)
		if !ok {
			return nil, fmt.Errorf("column %s missing from schema", strings.Join(path, "."))
		}
		repeated := leaf.MaxRepetitionLevel > 0
		dataType := TypeOfNode(leaf.Node)
		if repeated {
			dataType = query.TypeObject
		}
		leaves[leaf.ColumnIndex] = leafColumn{
			name:     strings.Join(path, "."),
			node:     leaf.Node,
			repeated: repeated,
			dataType: dataType,
		}
	}
	return leaves, nil
}

// tableDef builds the RQL schema of a set of leaf columns
func tableDef(leaves []leafColumn) query.TableDef {
	columns := make([]query.Column, len(leaves))
	for i, leaf := range leaves {
		columns[i] = query.Column{Name: leaf.name, Type: leaf.dataType}
	}
	return query.NewTableDef(columns...)
}

// TypeOfNode maps a parquet leaf to the RQL type its values convert to.
// Timestamps become strings, as RQL dates carry no time of day.
func TypeOfNode(node parquet.Node) query.DataType {
	t := node.Type()
	if t == nil {
		return query.TypeObject
	}

	if lt := t.LogicalType(); lt != nil {
		switch {
		case lt.UTF8 != nil, lt.Enum != nil, lt.UUID != nil, lt.Bson != nil, lt.Timestamp != nil, lt.Time != nil:
			return query.TypeString
		case lt.Json != nil:
			return query.TypeObject
		case lt.Date != nil:
			return query.TypeDate
		case lt.Integer != nil:
			return query.TypeNumber
		case lt.Decimal != nil:
			if isInteger(t.Kind()) {
				return query.TypeNumber
			}
			return query.TypeString
		case lt.Unknown != nil:
			return query.TypeNull
		}
	}

	switch t.Kind() {
	case parquet.Boolean:
		return query.TypeBoolean
	case parquet.Int32, parquet.Int64, parquet.Float, parquet.Double:
		return query.TypeNumber
	default:
		return query.TypeString
	}
}

func isInteger(kind parquet.Kind) bool {
	return kind == parquet.Int32 || kind == parquet.Int64
}

// getPhysicalType returns the physical type name of a Parquet field.
func getPhysicalType(node parquet.Node) string {
	if node.Type() == nil {
		return "GROUP"
	}

	switch node.Type().Kind() {
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
	default:
		return "UNKNOWN"
	}
}

// getLogicalType returns the logical type name of a Parquet field.
func getLogicalType(node parquet.Node) string {
	if node.Type() == nil {
		return ""
	}
	lt := node.Type().LogicalType()
	if lt == nil {
		return ""
	}
	return lt.String()
}

// decimalScale returns the scale of a DECIMAL column, 0 otherwise
func decimalScale(lt *format.LogicalType) int {
	if lt == nil || lt.Decimal == nil {
		return 0
	}
	return int(lt.Decimal.Scale)
}
