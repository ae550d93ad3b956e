package uploads

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

var whitespace = regexp.MustCompile(`\s+`)

// Saver writes uploaded recipe images under the public upload directory and
// returns the path to store on the recipe record.
type Saver struct {
	dir string
}

func NewSaver(dir string) *Saver {
	return &Saver{dir: dir}
}

// Save stores the file as <unix-millis>-<sanitized-name> and returns the
// public path ("/uploads/..."). The only validation is the filename cleanup;
// content is stored as-is, matching the upload contract.
func (s *Saver) Save(ctx *gin.Context, file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	name := SanitizeFilename(file.Filename)
	name = strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + name

	if err := ctx.SaveUploadedFile(file, filepath.Join(s.dir, name)); err != nil {
		return "", err
	}

	return "/uploads/" + name, nil
}

// SanitizeFilename collapses whitespace runs to hyphens and strips any path
// components from the client-supplied name.
func SanitizeFilename(raw string) string {
	base := filepath.Base(raw)

	return whitespace.ReplaceAllString(base, "-")
}
