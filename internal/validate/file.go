// Package validate holds the synchronous per-step checks that run before any
// collaborator is called. Everything here is pure: no network, no database.
package validate

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxResumeSize is the upload limit for resume files.
const MaxResumeSize = 10 << 20 // 10 MiB

// mimeExtensions maps each accepted MIME type to the extension it must
// arrive with. The extension has to match the declared type, a mismatch is
// rejected even when both are individually acceptable.
var mimeExtensions = map[string]string{
	"application/pdf": ".pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

// ResumeFile validates an upload before it is forwarded to the parsing
// collaborator. Each constraint produces its own message so the UI can show
// exactly what went wrong.
func ResumeFile(filename, mimeType string, size int64) error {
	if size <= 0 {
		return fmt.Errorf("file is empty")
	}
	if size > MaxResumeSize {
		return fmt.Errorf("file size %d exceeds the 10 MiB limit", size)
	}

	wantExt, ok := mimeExtensions[mimeType]
	if !ok {
		return fmt.Errorf("unsupported file type %q, only PDF and DOCX are accepted", mimeType)
	}

	if err := checkFilename(filename); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext != wantExt {
		return fmt.Errorf("file extension %q does not match declared type %q", ext, mimeType)
	}

	return nil
}

// checkFilename rejects names that could break out of a storage path or
// smuggle control characters into logs.
func checkFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename is empty")
	}
	if strings.Contains(filename, "..") {
		return fmt.Errorf("filename must not contain path traversal sequences")
	}
	for _, r := range filename {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("filename contains control characters")
		}
		if r == '/' || r == '\\' {
			return fmt.Errorf("filename must not contain path separators")
		}
	}
	return nil
}
