// Package blob stores uploaded avatar images.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// AvatarPrefix is the key prefix every avatar is written under.
const AvatarPrefix = "avatars/"

var ErrInvalidName = errors.New("blob: invalid object name")

// Object describes a stored blob. It is returned to clients as-is.
type Object struct {
	URL                string `json:"url"`
	DownloadURL        string `json:"downloadUrl"`
	Pathname           string `json:"pathname"`
	ContentType        string `json:"contentType"`
	ContentDisposition string `json:"contentDisposition"`
	Size               int64  `json:"size"`
}

// Store writes blobs and reports where they can be fetched.
type Store interface {
	Put(ctx context.Context, filename string, body io.Reader, size int64, contentType string) (*Object, error)
}

// avatarKey builds a collision-resistant key under AvatarPrefix from a
// client supplied filename.
func avatarKey(filename string) (string, error) {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "", ErrInvalidName
	}
	ext := path.Ext(base)
	stem := sanitize(strings.TrimSuffix(base, ext))
	ext = sanitize(ext)
	if stem == "" {
		stem = "avatar"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s%s-%s%s", AvatarPrefix, stem, suffix, ext), nil
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func contentDisposition(key string) string {
	return fmt.Sprintf(`attachment; filename="%s"`, path.Base(key))
}

func newObject(url, key, contentType string, size int64) *Object {
	return &Object{
		URL:                url,
		DownloadURL:        url + "?download=1",
		Pathname:           key,
		ContentType:        contentType,
		ContentDisposition: contentDisposition(key),
		Size:               size,
	}
}
