package quill

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Loader provides template sources by name
type Loader interface {
	Load(name string) (string, error)
}

// FileLoader loads templates from files under Root
type FileLoader struct {
	Root string
}

// NewFileLoader creates a loader rooted at root
func NewFileLoader(root string) *FileLoader {
	return &FileLoader{Root: root}
}

// Path returns the file path of a template. Names cannot escape Root.
func (l *FileLoader) Path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash("/" + name))
	if clean == string(filepath.Separator) || strings.Contains(name, "\x00") {
		return "", NewTemplateNotFoundError(name)
	}
	return filepath.Join(l.Root, clean), nil
}

// Load reads the template file
func (l *FileLoader) Load(name string) (string, error) {
	path, err := l.Path(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", NewTemplateNotFoundError(name)
	}
	if err != nil {
		return "", NewEngineError(ErrMsgTemplateLoad, err)
	}
	return string(data), nil
}

// MapLoader serves templates from memory
type MapLoader struct {
	mu        sync.RWMutex
	templates map[string]string
}

// NewMapLoader creates a loader over a copy of templates
func NewMapLoader(templates map[string]string) *MapLoader {
	l := &MapLoader{templates: make(map[string]string, len(templates))}
	for name, source := range templates {
		l.templates[name] = source
	}
	return l
}

// Set adds or replaces a template
func (l *MapLoader) Set(name, source string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates[name] = source
}

// Load returns the template source
func (l *MapLoader) Load(name string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	source, ok := l.templates[name]
	if !ok {
		return "", NewTemplateNotFoundError(name)
	}
	return source, nil
}
