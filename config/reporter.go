package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/maruel/natural"

	"pgstyle/misc"
)

// maxSnapshotSize limits files captured by StoreCopy. Anything we put in the
// report is either a page style or a log, both small.
const maxSnapshotSize = 4 << 20

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty reporter. Session is written into the
// manifest to match report with log records.
func (conf *ReporterConfig) Prepare(session string) (*Report, error) {

	r := &Report{entries: make(map[string]entry), session: session}

	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

type entry struct {
	// path is file to read when report is finalized, empty for snapshots
	path    string
	stamp   time.Time
	data    []byte
	hasData bool
}

// Report accumulates information necessary to prepare full debug report.
// NOTE: presently not to be used concurrently!
type Report struct {
	entries map[string]entry
	session string
	file    *os.File
}

// Close finalizes debug report.
func (r *Report) Close() error {
	if r == nil {
		// Ignore uninitialized cases to avoid checking in many places. This means no report has been requested.
		return nil
	}
	if r.file == nil {
		return nil
	}
	defer r.file.Close()
	return r.finalize()
}

// Name returns name of underlying file.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store remembers path to a file which is read only when report is closed.
// Used for logs which keep growing until the very end.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if old, exists := r.entries[name]; exists && old.path != path {
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old.path, path))
	}
	r.entries[name] = entry{path: path}
}

// StoreData saves data to be put in the final archive later as a file under
// requested name. Empty data is stored as an empty file.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}

	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("Attempt to overwrite data in the report for [%s]", name))
	}
	r.entries[name] = entry{data: data, hasData: true, stamp: time.Now()}
}

// StoreCopy takes a snapshot of a regular file as it is at the time of the
// call. When name is already taken snapshot is stored under versioned name,
// so the same file could be captured several times.
func (r *Report) StoreCopy(name, path string) error {
	if r == nil {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("'%s' is not a regular file", path)
	}
	if info.Size() > maxSnapshotSize {
		return fmt.Errorf("'%s' is too big to be stored in report (%d bytes)", path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if _, exists := r.entries[name]; exists {
		name = fmt.Sprintf("%s-%d", name, time.Now().UnixNano())
	}
	r.entries[name] = entry{data: data, hasData: true, stamp: info.ModTime()}
	return nil
}

// finalize creates the final archive (report) with all previously stored items.
func (r *Report) finalize() error {

	arc := zip.NewWriter(r.file)
	defer arc.Close()

	names, manifest := r.prepareManifest(time.Now())
	if err := saveFile(arc, "MANIFEST", time.Now(), manifest); err != nil {
		return err
	}

	// in the same order as in manifest
	for _, name := range names {
		e := r.entries[name]
		if e.hasData {
			if err := saveFile(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				return err
			}
			continue
		}
		// ignoring absent files
		info, err := os.Stat(e.path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		f, err := os.Open(e.path)
		if err != nil {
			return err
		}
		err = saveFile(arc, name, info.ModTime(), f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) prepareManifest(now time.Time) ([]string, *bytes.Buffer) {

	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "%s %s session %s\n", misc.GetAppName(), misc.GetVersion(), r.session)

	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	// natural order keeps versioned snapshots next to each other
	slices.SortFunc(keys, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})

	for _, k := range keys {
		e := r.entries[k]
		stamp, from := e.stamp, e.path
		if stamp.IsZero() {
			stamp = now
		}
		if len(from) == 0 {
			from = fmt.Sprintf("<%d bytes>", len(e.data))
		}
		fmt.Fprintf(buf, "%s\t%s\t%s\n", stamp.UTC().Format(time.UnixDate), k, from)
	}
	return keys, buf
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
