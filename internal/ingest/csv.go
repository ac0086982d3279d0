package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dewart-reps/mileage-cli/internal/model"
)

// tripRow mirrors the exporter's CSV header.
type tripRow struct {
	Category      string `csv:"Category"`
	Started       string `csv:"Started"`
	StartOdometer string `csv:"Start odometer (miles)"`
	StartAddress  string `csv:"Start address"`
	Stopped       string `csv:"Stopped"`
	EndOdometer   string `csv:"End odometer (miles)"`
	EndAddress    string `csv:"End address"`
	Distance      string `csv:"Distance (miles)"`
	UserNotes     string `csv:"User Notes"`
}

// ReadCSVFile reads a semicolon-delimited trip export. The exporter writes
// UTF-16; plain UTF-8 files are accepted too.
func ReadCSVFile(path string) ([]model.TripSegment, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, eris.Wrap(err, "ingest: open csv")
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f)
}

// ReadCSV parses a semicolon-delimited trip export from r, detecting the
// text encoding from the leading bytes. Rows whose start time is missing or
// unparsable are skipped; the skip count covers the unparsable ones.
func ReadCSV(r io.Reader) ([]model.TripSegment, int, error) {
	decoded, err := decodeText(r)
	if err != nil {
		return nil, 0, err
	}

	cr := csv.NewReader(decoded)
	cr.Comma = ';'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, eris.Wrap(err, "ingest: read csv header")
	}

	var (
		trips   []model.TripSegment
		skipped int
	)
	for {
		var row tripRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, 0, eris.Wrap(err, "ingest: decode csv row")
		}

		trip, ok := rowToSegment(row)
		if !ok {
			if strings.TrimSpace(row.Started) != "" {
				skipped++
			}
			continue
		}
		trips = append(trips, trip)
	}

	sortByStart(trips)
	return trips, skipped, nil
}

func rowToSegment(row tripRow) (model.TripSegment, bool) {
	started := strings.TrimSpace(row.Started)
	if started == "" {
		return model.TripSegment{}, false
	}
	ts, err := time.ParseInLocation(timeLayout, started, time.Local)
	if err != nil {
		zap.L().Warn("skipping row with unparsable start time",
			zap.String("started", started))
		return model.TripSegment{}, false
	}

	return model.TripSegment{
		Started:       ts,
		Stopped:       parseStopped(row.Stopped),
		StartOdometer: strings.TrimSpace(row.StartOdometer),
		StartAddress:  strings.TrimSpace(row.StartAddress),
		EndOdometer:   strings.TrimSpace(row.EndOdometer),
		EndAddress:    strings.TrimSpace(row.EndAddress),
		Distance:      parseDistance(row.Distance),
		Category:      strings.TrimSpace(row.Category),
		Notes:         strings.TrimSpace(row.UserNotes),
	}, true
}

// decodeText sniffs the byte-order mark and wraps r in the matching UTF-16
// decoder. Without a BOM, a NUL in the first two bytes still identifies
// UTF-16; anything else passes through as UTF-8.
func decodeText(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "ingest: sniff encoding")
	}

	var enc encoding.Encoding
	switch {
	case len(head) >= 2 && head[0] == 0xFF && head[1] == 0xFE:
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case len(head) >= 2 && head[0] == 0xFE && head[1] == 0xFF:
		enc = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case len(head) >= 2 && head[1] == 0x00:
		enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case len(head) >= 2 && head[0] == 0x00:
		enc = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	default:
		// UTF-8, possibly with its own BOM.
		return transform.NewReader(br, unicode.UTF8BOM.NewDecoder()), nil
	}
	return transform.NewReader(br, enc.NewDecoder()), nil
}
