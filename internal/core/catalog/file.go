package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Entries []Entry `yaml:"entries"`
}

// LoadFile reads catalog entries from a YAML file:
//
//	entries:
//	  - key: 429TooManyRequests
//	    status: 429
//	    id: 5f0c...
//	    code: throttled
//	    systemCode: TOO_MANY_REQUESTS
//	    diagnostics: ...
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Decode(data)
}

// Decode parses YAML catalog entries. Unknown fields are rejected.
func Decode(data []byte) ([]Entry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f fileFormat
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	for i := range f.Entries {
		f.Entries[i] = f.Entries[i].withDefaults()
		if err := f.Entries[i].Validate(); err != nil {
			return nil, err
		}
	}
	return f.Entries, nil
}
