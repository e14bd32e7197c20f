package render

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/sirupsen/logrus"
)

// ErrMissingTemplate is returned by Validate when a template document does not exist.
var ErrMissingTemplate = errors.New("missing required SVG files")

// Document is one template rewritten in place.
type Document struct {
	Name string
	Path string
}

// Result reports the outcome of updating one document.
type Result struct {
	Document
	Changed bool
	Err     error
}

// Updater rewrites the dark and light templates.
type Updater struct {
	docs   []Document
	logger *logrus.Logger
}

// NewUpdater creates an Updater for the dark and light template paths.
func NewUpdater(darkPath, lightPath string, logger *logrus.Logger) *Updater {
	return &Updater{
		docs: []Document{
			{Name: "dark", Path: darkPath},
			{Name: "light", Path: lightPath},
		},
		logger: logger,
	}
}

// Documents returns the documents in update order.
func (u *Updater) Documents() []Document {
	return append([]Document(nil), u.docs...)
}

// Validate confirms every template exists, naming all that are missing.
func (u *Updater) Validate() error {
	var missing []string
	for _, d := range u.docs {
		if _, err := os.Stat(d.Path); err != nil {
			missing = append(missing, d.Path)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingTemplate, strings.Join(missing, ", "))
	}
	return nil
}

// Update substitutes repl into each document. A document that cannot be read
// or written is reported in its Result and logged; the others still update.
func (u *Updater) Update(repl Replacements) []Result {
	u.logger.Info("Updating SVG files...")
	results := make([]Result, 0, len(u.docs))
	for _, d := range u.docs {
		changed, err := u.updateOne(d.Path, repl)
		if err != nil {
			u.logger.WithError(err).WithField("path", d.Path).Warn("Skipping SVG update")
		} else {
			u.logger.WithFields(logrus.Fields{"path": d.Path, "changed": changed}).Debug("SVG updated")
		}
		results = append(results, Result{Document: d, Changed: changed, Err: err})
	}
	return results
}

func (u *Updater) updateOne(path string, repl Replacements) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	before := string(raw)
	after := Substitute(before, repl)
	if err := atomic.WriteFile(path, strings.NewReader(after)); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return after != before, nil
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
