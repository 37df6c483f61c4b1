package storage

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/kennygrant/sanitize"
	errs "tuniscraper/pkg/errors"
)

const tempSuffix = ".tmp"

var (
	forbiddenCharsRE = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRE     = regexp.MustCompile(`\s+`)
	dashesRE         = regexp.MustCompile(`-+`)
	ellipsisRE       = regexp.MustCompile(`-\.\.\.$`)
	extensionRE      = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)
)

// Manager handles the image tree under the output directory
type Manager struct {
	outputDir string
	// folders maps category names to their folder once AssignFolders ran
	folders map[string]string
}

// NewManager creates a new storage manager
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errs.FileIO(outputDir, fmt.Errorf("failed to create output directory: %w", err))
	}
	return &Manager{outputDir: outputDir}, nil
}

// SafeName turns a category or item caption into a file system name
func SafeName(name string) string {
	s := forbiddenCharsRE.ReplaceAllString(strings.TrimSpace(name), "-")
	s = whitespaceRE.ReplaceAllString(s, "-")
	s = dashesRE.ReplaceAllString(s, "-")
	s = ellipsisRE.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ".", "-")
	s = sanitize.BaseName(sanitize.Accents(s))
	s = dashesRE.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-.")
	if s == "" {
		return "unnamed"
	}
	return s
}

// Extension returns the lower-cased file extension of the image URL path,
// ".jpg" when it has none that looks like one.
func Extension(imageURL string) string {
	p := imageURL
	if u, err := url.Parse(imageURL); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if ext == ".jpeg" {
		return ".jpg"
	}
	if !extensionRE.MatchString(ext) {
		return ".jpg"
	}
	return ext
}

// AssignFolders fixes the folder of every category of a run. Names that
// sanitize to the same folder ("Mercedes Benz", "Mercedes-Benz") are numbered
// in the given order, so the mapping is stable as long as the site keeps its
// navigation order. Folders are compared case-insensitively.
func (m *Manager) AssignFolders(categories []string) {
	m.folders = make(map[string]string, len(categories))
	taken := make(map[string]bool, len(categories))
	for _, name := range categories {
		if _, ok := m.folders[name]; ok {
			continue
		}
		base := SafeName(name)
		folder := base
		for n := 2; taken[strings.ToLower(folder)]; n++ {
			folder = base + "-" + strconv.Itoa(n)
		}
		taken[strings.ToLower(folder)] = true
		m.folders[name] = folder
	}
}

// CategoryDir returns the category folder relative to the output directory
func (m *Manager) CategoryDir(category string) string {
	if folder, ok := m.folders[category]; ok {
		return folder
	}
	return SafeName(category)
}

// ImagePath returns <category>/<item>.<ext> relative to the output directory
func (m *Manager) ImagePath(category, item, imageURL string) string {
	return filepath.Join(m.CategoryDir(category), SafeName(item)+Extension(imageURL))
}

// AbsPath resolves a path relative to the output directory
func (m *Manager) AbsPath(relPath string) string {
	return filepath.Join(m.outputDir, relPath)
}

// Exists reports whether relPath is a non-empty regular file
func (m *Manager) Exists(relPath string) bool {
	info, err := os.Stat(m.AbsPath(relPath))
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// CategoryHasFiles reports whether the category folder holds at least one
// finished file
func (m *Manager) CategoryHasFiles(category string) bool {
	entries, err := os.ReadDir(m.AbsPath(m.CategoryDir(category)))
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() && !strings.HasSuffix(entry.Name(), tempSuffix) {
			return true
		}
	}
	return false
}

// CategoryExists reports whether the category folder was created
func (m *Manager) CategoryExists(category string) bool {
	info, err := os.Stat(m.AbsPath(m.CategoryDir(category)))
	return err == nil && info.IsDir()
}

// Save writes r to relPath. Data goes to a temporary file that is renamed
// into place, so a failed write never leaves a partial file at relPath.
func (m *Manager) Save(r io.Reader, relPath string) (int64, error) {
	filename := m.AbsPath(relPath)
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return 0, errs.FileIO(filename, fmt.Errorf("failed to create directory: %w", err))
	}

	tempFile := filename + tempSuffix
	out, err := os.Create(tempFile)
	if err != nil {
		return 0, errs.FileIO(filename, fmt.Errorf("failed to create temporary file: %w", err))
	}

	n, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return 0, errs.FileIO(filename, fmt.Errorf("failed to write data: %w", err))
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return 0, errs.FileIO(filename, fmt.Errorf("failed to close file: %w", closeErr))
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return 0, errs.FileIO(filename, fmt.Errorf("failed to rename temporary file: %w", err))
	}

	return n, nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}
