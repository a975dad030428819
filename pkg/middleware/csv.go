package middleware

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path"
	"strings"

	"github.com/rojo-rbx/rojo-sub001/pkg/rbxvalue"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
)

// snapshotCSV implements middleware kind 4: a localization
// CSV becomes a LocalizationTable, with Contents holding the CSV's records
// written back out as CSV. Columns are neither reordered nor converted to
// another format.
func (d *Dispatcher) snapshotCSV(p string) (*snapshot.Instance, error) {
	data, err := d.VFS.Read(p)
	if err != nil {
		return nil, err
	}

	contents, err := reencodeLocalizationCSV(data)
	if err != nil {
		return nil, fmt.Errorf("middleware: %s: %w", p, err)
	}

	name := strings.TrimSuffix(path.Base(p), path.Ext(p))
	snap := snapshot.New(name, "LocalizationTable").
		WithProperty("Contents", rbxvalue.String(contents))
	snap.Metadata.InstigatingSource = p
	return snap, nil
}

// reencodeLocalizationCSV parses then re-serializes the CSV. It rejects
// input that is not valid CSV syntax or has no records at all; rows may
// have differing numbers of fields, and the header is not checked.
func reencodeLocalizationCSV(data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", fmt.Errorf("empty localization table")
	}

	var out bytes.Buffer
	w := csv.NewWriter(&out)
	if err := w.WriteAll(records); err != nil {
		return "", err
	}
	return out.String(), nil
}
