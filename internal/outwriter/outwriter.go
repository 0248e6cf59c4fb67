// Package outwriter has output and writer logic.
package outwriter

import "errors"

// errParquetOnlyExport is returned by writers that have no parquet form.
var errParquetOnlyExport = errors.New("parquet output is only supported by 'history export'")
