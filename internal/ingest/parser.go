package ingest

import (
	"io"

	"cooling_demand/internal/model"
)

// Parser reads an hourly outdoor temperature series from a source.
type Parser interface {
	Parse(r io.Reader) (model.Series, error)
}
