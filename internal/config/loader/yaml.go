package loader

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

func decodeYAML(source string, data []byte) (*rawManifest, error) {
	var raw rawManifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty document.
			return &raw, nil
		}
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return &raw, nil
}
