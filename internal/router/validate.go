package router

import (
	"fmt"
	"strings"

	"github.com/hinabot/hinabot/internal/boterr"
)

const maxFileNameLen = 255

var invalidFileNameChars = `<>:"/\|?*`

var reservedFileNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// ValidateFileName rejects names Drive or downstream filesystems would
// choke on. The reserved-name check ignores any extension.
func ValidateFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: file name is empty", boterr.ErrValidation)
	}
	if len(name) > maxFileNameLen {
		return fmt.Errorf("%w: file name exceeds %d characters", boterr.ErrValidation, maxFileNameLen)
	}
	if index := strings.IndexAny(name, invalidFileNameChars); index >= 0 {
		return fmt.Errorf("%w: file name contains %q", boterr.ErrValidation, name[index])
	}
	base := name
	if dot := strings.IndexByte(base, '.'); dot >= 0 {
		base = base[:dot]
	}
	if _, reserved := reservedFileNames[strings.ToUpper(base)]; reserved {
		return fmt.Errorf("%w: %q is a reserved file name", boterr.ErrValidation, name)
	}
	return nil
}

// ValidateFileSize enforces the upload ceiling before any bytes move.
func ValidateFileSize(size, limit int64) error {
	if size <= 0 {
		return fmt.Errorf("%w: file is empty", boterr.ErrValidation)
	}
	if size > limit {
		return fmt.Errorf("%w: file is %d bytes, limit is %d", boterr.ErrValidation, size, limit)
	}
	return nil
}
