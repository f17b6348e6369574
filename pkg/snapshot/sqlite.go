package snapshot

import (
	"database/sql"
	"fmt"

	"github.com/countygis/parcels/pkg/record"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const createParcelsTable = `
CREATE TABLE IF NOT EXISTS parcels (
	position          INTEGER PRIMARY KEY,
	global_parcel_uid TEXT NOT NULL,
	pidn              TEXT,
	owner             TEXT,
	mailing_address   TEXT,
	physical_address  TEXT,
	county            TEXT,
	state             TEXT,
	min_lon           REAL,
	min_lat           REAL,
	max_lon           REAL,
	max_lat           REAL,
	clerk_rec         TEXT,
	property_det      TEXT,
	tax_info          TEXT
)`

const selectParcels = `
SELECT
	global_parcel_uid,
	COALESCE(pidn, ''),
	COALESCE(owner, ''),
	COALESCE(mailing_address, ''),
	COALESCE(physical_address, ''),
	COALESCE(county, ''),
	COALESCE(state, ''),
	min_lon, min_lat, max_lon, max_lat,
	COALESCE(clerk_rec, ''),
	COALESCE(property_det, ''),
	COALESCE(tax_info, '')
FROM parcels
ORDER BY position`

func readSQLite(path string) ([]record.Record, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(selectParcels)
	if err != nil {
		return nil, fmt.Errorf("querying parcels: %w", err)
	}
	defer rows.Close()

	var records []record.Record
	for rows.Next() {
		var (
			r                              record.Record
			minLon, minLat, maxLon, maxLat sql.NullFloat64
		)
		if err := rows.Scan(
			&r.GlobalParcelUID,
			&r.PIDN,
			&r.Owner,
			&r.MailingAddress,
			&r.PhysicalAddress,
			&r.County,
			&r.State,
			&minLon, &minLat, &maxLon, &maxLat,
			&r.ClerkRec,
			&r.PropertyDet,
			&r.TaxInfo,
		); err != nil {
			return nil, fmt.Errorf("scanning parcel: %w", err)
		}
		if minLon.Valid && minLat.Valid && maxLon.Valid && maxLat.Valid {
			r.BBox = record.NewBBox(minLon.Float64, minLat.Float64, maxLon.Float64, maxLat.Float64)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading parcels: %w", err)
	}
	return records, nil
}

func writeSQLite(path string, records []record.Record) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(createParcelsTable); err != nil {
		return fmt.Errorf("creating parcels table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				logger.Warnf("failed to rollback transaction: %v", err)
			}
		}
	}()

	if _, err := tx.Exec(`DELETE FROM parcels`); err != nil {
		return fmt.Errorf("clearing parcels: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO parcels (position, global_parcel_uid, pidn, owner, mailing_address, physical_address,
			county, state, min_lon, min_lat, max_lon, max_lat, clerk_rec, property_det, tax_info)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		var minLon, minLat, maxLon, maxLat sql.NullFloat64
		if r.BBox != nil {
			minLon = sql.NullFloat64{Float64: r.BBox.MinLon(), Valid: true}
			minLat = sql.NullFloat64{Float64: r.BBox.MinLat(), Valid: true}
			maxLon = sql.NullFloat64{Float64: r.BBox.MaxLon(), Valid: true}
			maxLat = sql.NullFloat64{Float64: r.BBox.MaxLat(), Valid: true}
		}
		if _, err := stmt.Exec(
			i,
			r.GlobalParcelUID,
			r.PIDN,
			r.Owner,
			r.MailingAddress,
			r.PhysicalAddress,
			r.County,
			r.State,
			minLon, minLat, maxLon, maxLat,
			r.ClerkRec,
			r.PropertyDet,
			r.TaxInfo,
		); err != nil {
			return fmt.Errorf("inserting parcel %s: %w", r.GlobalParcelUID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing parcels: %w", err)
	}
	committed = true
	return nil
}
