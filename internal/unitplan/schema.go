// Package unitplan is the portable JSON form of a design session: what
// "sessions export" writes and "sessions import" reads back.
package unitplan

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Version is the document format written by Export.
const Version = 1

// Document is the top-level JSON structure of an exported unit plan.
type Document struct {
	Version   int               `json:"version"`
	Stage     string            `json:"current_stage"`
	Completed []string          `json:"completed_stages,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	Attempts  int               `json:"attempts,omitempty"`
	Terminal  bool              `json:"terminal,omitempty"`
	Pending   *PendingDoc       `json:"pending,omitempty"`
	CreatedAt string            `json:"created_at,omitempty"`
	UpdatedAt string            `json:"updated_at,omitempty"`
}

// PendingDoc is an answer waiting for confirmation.
type PendingDoc struct {
	Value    string `json:"value"`
	Mode     string `json:"mode"`
	Attempts int    `json:"attempts"`
}

// Load reads and parses a unit plan file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a unit plan document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing unit plan: %w", err)
	}
	return &doc, nil
}

// Write encodes doc as indented JSON.
func Write(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
