package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/pkg/errors"
)

// Template returns the CSV template of kind: the header row only.
func Template(kind Kind) (filename string, data []byte, err error) {
	header, ok := headers[kind]
	if !ok {
		return "", nil, errors.Errorf("no template for %q", kind)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", nil, errors.Wrap(err, "writing template")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, errors.Wrap(err, "writing template")
	}

	return fmt.Sprintf("plantilla_%s.csv", kind), buf.Bytes(), nil
}
