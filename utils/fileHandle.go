package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageExtensions are the avatar formats accepted for upload.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// SaveUploadedFile stores file under root/subdir with a random name and
// returns the path relative to root. The extension must be one of allowed.
func SaveUploadedFile(file *multipart.FileHeader, root, subdir string, allowed []string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !hasExtension(allowed, ext) {
		return "", fmt.Errorf("file type %q is not allowed", ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	destDir := filepath.Join(root, subdir)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(destDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return filepath.ToSlash(filepath.Join(subdir, name)), nil
}

// GetFileURL returns the public URL of a file saved by SaveUploadedFile.
func GetFileURL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return "/uploads/" + relPath
}

func hasExtension(allowed []string, ext string) bool {
	for _, a := range allowed {
		if a == ext {
			return true
		}
	}
	return false
}
