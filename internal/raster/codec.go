package raster

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"
)

// DataURIPrefix prefixes every PNG payload sent to the classifier.
const DataURIPrefix = "data:image/png;base64,"

// EncodePNG encodes the raster as a PNG.
func (m *Image) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m.nrgba()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI returns the raster as a base64 PNG data URI.
func (m *Image) DataURI() (string, error) {
	data, err := m.EncodePNG()
	if err != nil {
		return "", err
	}
	return DataURIPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// DecodePNG decodes PNG bytes into a raster.
func DecodePNG(data []byte) (*Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return FromImage(img)
}

// DecodeDataURI parses a PNG data URI produced by DataURI.
func DecodeDataURI(uri string) (*Image, error) {
	payload, ok := strings.CutPrefix(uri, DataURIPrefix)
	if !ok {
		return nil, fmt.Errorf("decode data uri: missing %q prefix", DataURIPrefix)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return DecodePNG(data)
}
