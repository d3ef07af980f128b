// Package loader owns all file system access for uploaded documents
// and question banks. Documents and banks are plain UTF-8 JSON arrays,
// one array per file, with last-writer-wins overwrite semantics.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ivyinautumn/Intelligent-question-generator/internal/model"
)

const bankSuffix = "题库"

// Loader reads and writes documents and question banks under a data
// directory. It assumes a single writer; concurrent writers race.
type Loader struct {
	docDir  string
	bankDir string
}

// New creates a Loader rooted at dataDir, creating the document and
// bank subdirectories if needed.
func New(dataDir string) (*Loader, error) {
	l := &Loader{
		docDir:  filepath.Join(dataDir, "raw_files"),
		bankDir: filepath.Join(dataDir, "question_dataset"),
	}
	for _, dir := range []string{l.docDir, l.bankDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &model.IOFailure{Op: "create dir", Path: dir, Err: err}
		}
	}
	return l, nil
}

// BankName returns the bank name derived from a source document
// filename: "doc.json" becomes "doc题库".
func BankName(sourceFile string) string {
	base := strings.TrimSuffix(sourceFile, filepath.Ext(sourceFile))
	return base + bankSuffix
}

// ValidateDocument checks that data is a JSON list of objects with
// string idx, title, and text fields.
func ValidateDocument(data []byte) ([]model.SpecItem, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	items := make([]model.SpecItem, 0, len(raw))
	for i, obj := range raw {
		var item model.SpecItem
		for _, field := range []struct {
			name string
			dst  *string
		}{
			{"idx", &item.Idx},
			{"title", &item.Title},
			{"text", &item.Text},
		} {
			v, ok := obj[field.name]
			if !ok {
				return nil, fmt.Errorf("item %d: missing field %q", i, field.name)
			}
			if err := json.Unmarshal(v, field.dst); err != nil {
				return nil, fmt.Errorf("item %d: field %q is not a string", i, field.name)
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// SaveDocument validates and stores an uploaded document.
func (l *Loader) SaveDocument(filename string, data []byte) error {
	if _, err := ValidateDocument(data); err != nil {
		return &model.FormatError{Path: filename, Err: err}
	}
	path := filepath.Join(l.docDir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &model.IOFailure{Op: "write document", Path: path, Err: err}
	}
	slog.Info("saved document", "path", path)
	return nil
}

// LoadDocument loads a technical specification document by filename.
// It fails with FormatError if the content is not a well-formed list
// of spec items.
func (l *Loader) LoadDocument(filename string) ([]model.SpecItem, error) {
	path := filepath.Join(l.docDir, filepath.Base(filename))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.IOFailure{Op: "read document", Path: path, Err: err}
	}
	items, err := ValidateDocument(data)
	if err != nil {
		return nil, &model.FormatError{Path: path, Err: err}
	}
	return items, nil
}

// ListDocuments returns the sorted names of uploaded document files.
func (l *Loader) ListDocuments() ([]string, error) {
	return listJSON(l.docDir, false)
}

// ListBanks returns the sorted names of question banks, without the
// .json extension.
func (l *Loader) ListBanks() ([]string, error) {
	return listJSON(l.bankDir, true)
}

func listJSON(dir string, stripExt bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &model.IOFailure{Op: "list dir", Path: dir, Err: err}
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := e.Name()
		if stripExt {
			name = strings.TrimSuffix(name, ".json")
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// LoadBank loads a question bank by name (without extension). A
// missing bank is not an error: an empty slice is returned. A
// corrupted bank file is logged and treated as empty so generation can
// rebuild it.
func (l *Loader) LoadBank(name string) ([]model.Question, error) {
	path := filepath.Join(l.bankDir, filepath.Base(name)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &model.IOFailure{Op: "read bank", Path: path, Err: err}
	}
	var questions []model.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		slog.Warn("bank file is corrupted, treating as empty", "path", path, "error", err)
		return nil, nil
	}
	return questions, nil
}

// SaveBank writes a bank to disk, overwriting any existing file. There
// is no atomic rename or fsync; a crash mid-write can corrupt the
// target.
func (l *Loader) SaveBank(name string, questions []model.Question) error {
	path := filepath.Join(l.bankDir, filepath.Base(name)+".json")
	if questions == nil {
		questions = []model.Question{}
	}
	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bank: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &model.IOFailure{Op: "write bank", Path: path, Err: err}
	}
	slog.Info("saved bank", "path", path, "questions", len(questions))
	return nil
}

// Merge concatenates two banks, drops questions whose (type, question)
// identity already appeared, and re-assigns contiguous 1-based idx
// values. Merging the same bank in again is a no-op.
func Merge(a, b []model.Question) []model.Question {
	seen := make(map[model.Key]bool, len(a)+len(b))
	merged := make([]model.Question, 0, len(a)+len(b))
	for _, q := range append(append([]model.Question{}, a...), b...) {
		key := q.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		q.Idx = len(merged) + 1
		merged = append(merged, q)
	}
	return merged
}
