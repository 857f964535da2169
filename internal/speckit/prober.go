package speckit

import (
	"os"
	"path/filepath"

	"github.com/HendryAvila/speckit-mcp/internal/phase"
)

// FileProber answers document presence with a regular-file test. It
// never reads content.
type FileProber struct{}

// NewFileProber creates a FileProber.
func NewFileProber() *FileProber {
	return &FileProber{}
}

// Exists reports whether dir/doc is a regular file. Stat errors of any
// kind, permissions included, mean absent.
func (p *FileProber) Exists(dir string, doc phase.Document) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, string(doc)))
	return err == nil && info.Mode().IsRegular()
}
