// Package ledger persists per-file content hashes between pipeline runs
// and decides which source files actually changed.
package ledger

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/learnstack/pagegen/internal/store"
)

const formatVersion = 1

// Ledger maps source filenames to the content hash recorded when the file
// was last processed successfully.
type Ledger struct {
	Version   int               `json:"version"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Hashes    map[string]string `json:"hashes"`
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		Version: formatVersion,
		Hashes:  make(map[string]string),
	}
}

// Load reads the ledger from the store. A missing ledger file yields an
// empty ledger with no error, so the first run needs no special casing.
// A corrupt ledger also yields a usable empty ledger, plus the decode
// error so the caller can log it; every file then counts as changed.
func Load(st *store.Store) (*Ledger, error) {
	var l Ledger
	if err := st.ReadJSON(store.LedgerName, &l); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewLedger(), nil
		}
		return NewLedger(), fmt.Errorf("load hash ledger: %w", err)
	}
	if l.Hashes == nil {
		l.Hashes = make(map[string]string)
	}
	return &l, nil
}

// Save persists the ledger atomically into the store.
func (l *Ledger) Save(st *store.Store) error {
	l.Version = formatVersion
	l.UpdatedAt = time.Now().UTC()
	if err := st.WriteJSON(store.LedgerName, l); err != nil {
		return fmt.Errorf("save hash ledger: %w", err)
	}
	return nil
}

// HashBytes computes SHA-256 of content and returns the hex string.
func HashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// Status classifies a source file after change detection.
type Status int

const (
	Changed Status = iota
	Unchanged
	Failed
)

func (s Status) String() string {
	switch s {
	case Changed:
		return "changed"
	case Unchanged:
		return "unchanged"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// FileState couples one source file with its detection outcome. For
// Changed and Unchanged files Data holds the full file bytes; for Failed
// files Err holds the read error.
type FileState struct {
	Name    string
	Path    string
	Data    []byte
	Hash    string
	ModTime time.Time
	Status  Status
	Err     error

	prevHash string
	hadPrev  bool
}

// RevertEntry restores the ledger entry this file had before detection.
// Called for files that fail later in the pipeline so the next run sees
// them as changed and retries.
func (f FileState) RevertEntry(l *Ledger) {
	if f.hadPrev {
		l.Hashes[f.Name] = f.prevHash
		return
	}
	delete(l.Hashes, f.Name)
}

// Detect hashes every named file under dir and partitions the set against
// the previous run's ledger. The ledger is updated in place with each
// recomputed hash; entries for files that fail to read are left alone.
func Detect(l *Ledger, dir string, names []string) []FileState {
	states := make([]FileState, 0, len(names))
	for _, name := range names {
		st := FileState{
			Name: name,
			Path: filepath.Join(dir, name),
		}
		st.prevHash, st.hadPrev = l.Hashes[name]

		data, err := os.ReadFile(st.Path)
		if err != nil {
			st.Status = Failed
			st.Err = fmt.Errorf("read source file: %w", err)
			states = append(states, st)
			continue
		}
		st.Data = data
		st.Hash = HashBytes(data)
		if info, err := os.Stat(st.Path); err == nil {
			st.ModTime = info.ModTime()
		} else {
			st.ModTime = time.Now()
		}

		if st.hadPrev && st.prevHash == st.Hash {
			st.Status = Unchanged
		} else {
			st.Status = Changed
		}
		l.Hashes[name] = st.Hash
		states = append(states, st)
	}
	return states
}
