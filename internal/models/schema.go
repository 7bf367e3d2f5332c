package models

import "embed"

//go:embed schema.json
var schemaFS embed.FS

// SchemaDocument returns the machine-readable description of the
// collections and their field constraints.
func SchemaDocument() (string, error) {
	b, err := schemaFS.ReadFile("schema.json")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
