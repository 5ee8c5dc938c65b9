package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// codec converts RegistryData to and from its on-disk form.
type codec interface {
	marshal(*RegistryData) ([]byte, error)
	unmarshal([]byte, *RegistryData) error
}

// codecFor picks a codec from the file extension.
func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return jsonCodec{}, nil
	case ".toml":
		return tomlCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

type jsonCodec struct{}

func (jsonCodec) marshal(rd *RegistryData) ([]byte, error) {
	return json.MarshalIndent(rd, "", "  ")
}

func (jsonCodec) unmarshal(data []byte, rd *RegistryData) error {
	return json.Unmarshal(data, rd)
}

type tomlCodec struct{}

func (tomlCodec) marshal(rd *RegistryData) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(rd); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (tomlCodec) unmarshal(data []byte, rd *RegistryData) error {
	_, err := toml.Decode(string(data), rd)
	return err
}
