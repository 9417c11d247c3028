// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/declass/core"
)

// recordView is the serialized form of a Record in catalog files.
type recordView struct {
	Identifier  string `json:"identifier"`
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
}

func viewOf(r core.Record) recordView {
	return recordView{
		Identifier:  r.Identifier,
		URL:         r.URL,
		Title:       r.Title,
		ReleaseDate: r.ReleaseDate,
	}
}

func (v recordView) record() core.Record {
	return core.Record{
		Id:          core.IDFromURL(v.URL),
		Identifier:  v.Identifier,
		URL:         v.URL,
		Title:       v.Title,
		ReleaseDate: v.ReleaseDate,
	}
}

// WriteCSV serializes records as CSV with a header row.
func WriteCSV(w io.Writer, records []core.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"identifier", "url", "title", "release_date"}); err != nil {
		return err
	}
	for _, r := range records {
		v := viewOf(r)
		if err := cw.Write([]string{v.Identifier, v.URL, v.Title, v.ReleaseDate}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON serializes records as an indented JSON array.
func WriteJSON(w io.Writer, records []core.Record) error {
	views := make([]recordView, len(records))
	for i, r := range records {
		views[i] = viewOf(r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}

// WriteURLList writes one document URL per line, the input format the
// mirror command accepts.
func WriteURLList(w io.Writer, records []core.Record) error {
	for _, r := range records {
		if _, err := io.WriteString(w, r.URL+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteOutcomes serializes ledger entries as CSV so a run's catalog keeps
// every record, including the failed ones.
func WriteOutcomes(w io.Writer, entries []*core.MirrorEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"identifier", "url", "object_key", "status", "size", "attempts", "error"}); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			e.Identifier,
			e.URL,
			e.ObjectKey,
			e.Status.String(),
			strconv.FormatInt(e.Size, 10),
			strconv.Itoa(e.Attempts),
			e.LastError,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadJSON parses a catalog written by WriteJSON.
func ReadJSON(r io.Reader) ([]core.Record, error) {
	var views []recordView
	if err := json.NewDecoder(r).Decode(&views); err != nil {
		return nil, err
	}
	records := make([]core.Record, len(views))
	for i, v := range views {
		records[i] = v.record()
	}
	return records, nil
}

// ReadCSV parses a catalog written by WriteCSV.
func ReadCSV(r io.Reader) ([]core.Record, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	var records []core.Record
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == "identifier" {
			continue // header
		}
		if len(row) < 2 {
			continue
		}
		v := recordView{Identifier: row[0], URL: row[1]}
		if len(row) > 2 {
			v.Title = row[2]
		}
		if len(row) > 3 {
			v.ReleaseDate = row[3]
		}
		records = append(records, v.record())
	}
	return records, nil
}

// ReadURLList parses a plain-text URL list, one URL per line. Identifiers
// fall back to the URL's filename.
func ReadURLList(r io.Reader) ([]core.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var records []core.Record
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		record := core.Record{
			Id:         core.IDFromURL(line),
			Identifier: line,
			URL:        line,
		}
		record.Identifier = record.Filename()
		records = append(records, record)
	}
	return records, nil
}

// ReadFile loads a catalog in any of the three formats, picking the reader
// by file extension (.json, .csv, .txt).
func ReadFile(r io.Reader, name string) ([]core.Record, error) {
	switch {
	case strings.HasSuffix(name, ".json"):
		return ReadJSON(r)
	case strings.HasSuffix(name, ".csv"):
		return ReadCSV(r)
	case strings.HasSuffix(name, ".txt"):
		return ReadURLList(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// TimestampedName builds the conventional catalog filename for a run,
// e.g. "mlk_records_20250722_133807.csv".
func TimestampedName(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("20060102_150405"), ext)
}
