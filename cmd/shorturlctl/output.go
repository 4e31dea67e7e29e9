package main

import (
	"encoding/json"
	"io"

	"shorturl/internal/domain"
)

// printMapping writes m as one JSON object per line
func printMapping(w io.Writer, m *domain.Mapping) error {
	return json.NewEncoder(w).Encode(m)
}
