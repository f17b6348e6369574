package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/countygis/parcels/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []record.Record {
	return []record.Record{
		{
			GlobalParcelUID: "fremont-1",
			PIDN:            "0100-123",
			Owner:           "Smith, John & Jane",
			MailingAddress:  "PO Box 1, Lander WY",
			PhysicalAddress: "12 Main St",
			County:          "Fremont County",
			State:           "WY",
			BBox:            record.NewBBox(-108.8, 42.8, -108.7, 42.9),
			ClerkRec:        "https://clerk.example/1",
		},
		{
			GlobalParcelUID: "teton-1",
			PIDN:            "RP003",
			Owner:           "Aspen Holdings LLC",
			County:          "Teton County",
			State:           "ID",
		},
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"search_index.json":       FormatJSON,
		"search_index.json.zst":   FormatZstd,
		"search_index.json.zstd":  FormatZstd,
		"search_index.json.gz":    FormatGzip,
		"parcels.db":              FormatSQLite,
		"/var/lib/parcels.SQLITE": FormatSQLite,
		"noextension":             FormatJSON,
	}
	for name, want := range tests {
		assert.Equal(t, want, FormatFor(name), name)
	}
	assert.Equal(t, "sqlite", FormatSQLite.String())
}

func TestRoundTripAllFormats(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"index.json", "index.json.zst", "index.json.gz", "index.db"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Write(path, sampleRecords()))

			snap, err := Read(path)
			require.NoError(t, err)
			assert.Equal(t, sampleRecords(), snap.Records)
			assert.Equal(t, 0, snap.Skipped)
			assert.Equal(t, FormatFor(name), snap.Format)
			assert.False(t, snap.ModTime.IsZero())
		})
	}
}

func TestWriteReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "index.json")
	require.NoError(t, Write(path, sampleRecords()))
	require.NoError(t, Write(path, sampleRecords()[:1]))

	snap, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, snap.Records, 1)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = Stat(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReadSkipsMalformedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	data := `[
		{"global_parcel_uid": "a", "owner": "Good Owner", "bbox": null},
		{"global_parcel_uid": "b", "owner": 42},
		{"global_parcel_uid": "c", "bbox": [1, 2]},
		{"global_parcel_uid": "d", "pidn": "X1", "mailing_address": null}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	snap, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Skipped)
	require.Len(t, snap.Records, 3)
	assert.Equal(t, "a", snap.Records[0].GlobalParcelUID)
	assert.Equal(t, "c", snap.Records[1].GlobalParcelUID)
	assert.Nil(t, snap.Records[1].BBox)
	assert.Equal(t, "d", snap.Records[2].GlobalParcelUID)
}

func TestReadKeepsRecordWithMalformedBBox(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	data := `[
		{"global_parcel_uid": "a", "owner": "John Smith", "bbox": [1, 2, 3]},
		{"global_parcel_uid": "b", "owner": "John Smith", "bbox": [-110.8, 43.4, -110.7, 43.5]}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	snap, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Skipped)
	require.Len(t, snap.Records, 2)
	assert.Nil(t, snap.Records[0].BBox)
	assert.Equal(t, "John Smith", snap.Records[0].Owner)
	require.NotNil(t, snap.Records[1].BBox)
}

func TestReadRejectsNonArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"features": []}`), 0644))

	_, err := Read(path)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestReadTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"global_parcel_uid": "a"}, {"glo`), 0644))

	_, err := Read(path)
	assert.Error(t, err)
}
