// Package output serializes finished records. The pipeline only
// guarantees schema completeness; everything here is presentation.
package output

import (
	"encoding/json"
	"os"

	"github.com/quote-harvest/termquote/pkg/models"
)

// SaveJSON writes the ordered record collection to path as indented JSON.
func SaveJSON(records []models.Record, path string) error {
	content, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}

// MarshalRecord renders one record as indented JSON, for stdout use.
func MarshalRecord(rec models.Record) ([]byte, error) {
	return json.MarshalIndent(rec, "", "  ")
}
