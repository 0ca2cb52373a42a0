// Package storage decides where profile pictures live: inline in the user
// record or in an S3 compatible bucket.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrMalformedDataURI is returned when a picture is not a base64 image data URI.
var ErrMalformedDataURI = errors.New("malformed image data uri")

// PictureStore persists a profile picture and returns the value to store on the user.
type PictureStore interface {
	Save(ctx context.Context, userID uuid.UUID, dataURI string) (string, error)
}

// InlineStore keeps the data URI itself as the picture reference.
type InlineStore struct{}

// Save returns dataURI unchanged.
func (InlineStore) Save(_ context.Context, _ uuid.UUID, dataURI string) (string, error) {
	return dataURI, nil
}

// DataURI is a decoded "data:image/<subtype>;base64,<payload>" value.
type DataURI struct {
	ContentType string
	Data        []byte
}

// Extension returns a file extension for the image subtype.
func (d DataURI) Extension() string {
	sub := strings.TrimPrefix(d.ContentType, "image/")
	switch sub {
	case "jpeg":
		return "jpg"
	case "svg+xml":
		return "svg"
	case "":
		return "bin"
	default:
		return sub
	}
}

// ParseDataURI decodes a base64 image data URI.
func ParseDataURI(s string) (DataURI, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:image/") {
		return DataURI{}, ErrMalformedDataURI
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return DataURI{}, ErrMalformedDataURI
	}
	contentType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return DataURI{}, ErrMalformedDataURI
	}
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return DataURI{}, ErrMalformedDataURI
	}
	return DataURI{ContentType: contentType, Data: data}, nil
}
