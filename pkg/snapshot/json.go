package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/countygis/parcels/pkg/log"
	"github.com/countygis/parcels/pkg/record"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var logger = log.ForService("snapshot")

func decompressor(format Format, r io.Reader) (io.Reader, func(), error) {
	switch format {
	case FormatZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		return dec, dec.Close, nil
	case FormatGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return gz, func() { gz.Close() }, nil
	}
	return bufio.NewReader(r), func() {}, nil
}

func compressor(format Format, w io.Writer) (io.Writer, func() error, error) {
	switch format {
	case FormatZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
		return enc, enc.Close, nil
	case FormatGzip:
		gz := gzip.NewWriter(w)
		return gz, gz.Close, nil
	}
	bw := bufio.NewWriter(w)
	return bw, bw.Flush, nil
}

// decodeJSON streams a JSON array of records. Elements that do not decode
// into a record are skipped instead of failing the whole snapshot.
func decodeJSON(r io.Reader) ([]record.Record, int, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, 0, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, 0, fmt.Errorf("expected a JSON array, got %v", tok)
	}

	var (
		records []record.Record
		skipped int
	)
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, skipped, err
		}
		var rec record.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			skipped++
			logger.Debugf("skipping record %d: %v", len(records)+skipped, err)
			continue
		}
		records = append(records, rec)
	}

	if _, err := dec.Token(); err != nil {
		return nil, skipped, err
	}
	return records, skipped, nil
}

func encodeJSON(w io.Writer, records []record.Record) error {
	if _, err := io.WriteString(w, "[\n"); err != nil {
		return err
	}
	for i := range records {
		data, err := json.Marshal(&records[i])
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := io.WriteString(w, ",\n"); err != nil {
				return err
			}
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n]\n")
	return err
}
