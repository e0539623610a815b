package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
	"github.com/parquet-go/parquet-go"

	dlog "github.com/vegasq/dinersql/internal/logging"
)

var log = logging.MustGetLogger(dlog.ReaderModule)

// Reader reads a single parquet file. It keeps the OS handle so Close can
// release it.
type Reader struct {
	file   *os.File
	pqFile *parquet.File
}

// NewReader opens path and validates its parquet footer.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	return &Reader{
		file:   file,
		pqFile: pqFile,
	}, nil
}

// ReadAll loads every row of the file as a column name to raw value map.
func (r *Reader) ReadAll() ([]map[string]interface{}, error) {
	rows := make([]map[string]interface{}, 0)

	reader := parquet.NewReader(r.pqFile)
	defer func() { _ = reader.Close() }()

	for {
		row := make(map[string]interface{})
		err := reader.Read(&row)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Schema returns the schema stored in the file footer
func (r *Reader) Schema() *parquet.Schema {
	return r.pqFile.Schema()
}

// Close releases the file handle. Later calls are no-ops.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// ReadParquet loads a parquet file as a table. Columns follow the file's
// field order. When schema is nil it is inferred from the file metadata;
// otherwise the file must hold exactly the declared columns and every value
// is coerced to its declared type.
func ReadParquet(path string, schema Schema) (*Data, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	infos, err := describeFields(r.Schema().Fields())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if schema == nil {
		if schema, err = InferSchema(infos); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	} else if err := matchFields(schema, infos); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	raw, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	data := &Data{Schema: schema, Rows: make([]map[string]interface{}, 0, len(raw))}
	for i, rawRow := range raw {
		row := make(map[string]interface{}, len(schema))
		for j, col := range schema {
			v, err := col.Type.Coerce(rawRow[infos[j].Name])
			if err != nil {
				return nil, fmt.Errorf("%s: row %d: column %s: %w", path, i+1, col.Name, err)
			}
			row[col.Name] = v
		}
		data.Rows = append(data.Rows, row)
	}

	log.Debugf("read %d rows from %s", len(data.Rows), path)
	return data, nil
}

func matchFields(schema Schema, infos []SchemaInfo) error {
	if len(schema) != len(infos) {
		return fmt.Errorf("%w: file has %d columns, schema declares %d", ErrSchemaMismatch, len(infos), len(schema))
	}
	for i, col := range schema {
		if !strings.EqualFold(col.Name, infos[i].Name) {
			return fmt.Errorf("%w: column %d is %s, schema declares %s", ErrSchemaMismatch, i+1, infos[i].Name, col.Name)
		}
	}
	return nil
}
