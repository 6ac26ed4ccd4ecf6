package upload

import (
	"strings"

	"github.com/google/uuid"
)

// Extension returns the text after the last "." in filename, or "".
func Extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return filename[i+1:]
}

// NewKey returns a fresh object key "<uuid>.<ext>". The dot is kept even
// when the file has no extension.
func NewKey(filename string) string {
	return uuid.NewString() + "." + Extension(filename)
}
