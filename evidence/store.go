// Package evidence manages the directory of screenshots that back the report rows.
package evidence

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Criss1210/tarea-4/browser"
	"github.com/Criss1210/tarea-4/errs"
)

const captureExt = ".png"

// CaptureRef identifies a stored capture. The zero value means no capture is available.
type CaptureRef struct {
	// Name is the file stem, e.g. "login_pregunta".
	Name string `json:"name"`
	// File is the file name inside the capture directory, e.g. "login_pregunta.png".
	File string `json:"file"`
	// Path is the location of the file on disk.
	Path string `json:"-"`
}

// IsZero reports whether the ref points at nothing.
func (r CaptureRef) IsZero() bool {
	return r.File == ""
}

// Store saves captures into a single directory.
type Store struct {
	dir   string
	saved []CaptureRef
	index map[string]int
	lock  sync.Mutex
}

var createProbe = os.CreateTemp

// EnsureDirectory creates the capture directory if needed and returns a Store for it. It
// fails if path exists but is not a directory, or if the directory cannot be written to.
func EnsureDirectory(path string) (*Store, error) {
	if path == "" {
		return nil, errs.New(errs.InvalidArgument, "capture directory path is empty")
	}
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return nil, errs.New(errs.IO, fmt.Sprintf("capture path %s exists and is not a directory", path))
	case err != nil && !os.IsNotExist(err):
		return nil, errs.Wrap(errs.IO, "cannot inspect capture directory "+path, err)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, errs.Wrap(errs.IO, "cannot create capture directory "+path, err)
	}

	probe, err := createProbe(path, ".probe-*")
	if err != nil {
		return nil, errs.Wrap(errs.IO, "capture directory "+path+" is not writable", err)
	}
	closeErr := probe.Close()
	_ = os.Remove(probe.Name())
	if closeErr != nil {
		return nil, errs.Wrap(errs.IO, "capture directory "+path+" is not writable", closeErr)
	}

	return &Store{dir: path, index: make(map[string]int)}, nil
}

// Dir returns the directory captures are written to.
func (s *Store) Dir() string {
	return s.dir
}

// SaveCapture takes a screenshot from source and writes it as <name>.png, replacing any
// previous capture with that name.
func (s *Store) SaveCapture(source browser.Screenshotter, name string) (CaptureRef, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return CaptureRef{}, errs.New(errs.InvalidArgument, fmt.Sprintf("invalid capture name %q", name))
	}

	data, err := source.Screenshot()
	if err != nil {
		if errs.CodeOf(err) == errs.Capture {
			return CaptureRef{}, err
		}
		return CaptureRef{}, errs.Wrap(errs.Capture, "could not take screenshot "+name, err)
	}
	if len(data) == 0 {
		return CaptureRef{}, errs.New(errs.Capture, "browser returned no image data for "+name)
	}

	ref := CaptureRef{
		Name: name,
		File: name + captureExt,
	}
	ref.Path = filepath.Join(s.dir, ref.File)
	if err := os.WriteFile(ref.Path, data, 0644); err != nil {
		return CaptureRef{}, errs.Wrap(errs.IO, "could not write capture "+ref.Path, err)
	}

	s.lock.Lock()
	if i, ok := s.index[name]; ok {
		s.saved[i] = ref
	} else {
		s.index[name] = len(s.saved)
		s.saved = append(s.saved, ref)
	}
	s.lock.Unlock()
	return ref, nil
}

// Captures returns every capture saved so far, once per name, in the order first saved.
func (s *Store) Captures() []CaptureRef {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]CaptureRef(nil), s.saved...)
}
