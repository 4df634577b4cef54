package journal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zakolko/zakolko/internal/models"
)

const listingsSchema = `CREATE TABLE IF NOT EXISTS inzeraty (
	id                 TEXT PRIMARY KEY,
	zdroj              TEXT NOT NULL DEFAULT '',
	ulica              TEXT NOT NULL DEFAULT '',
	mesto              TEXT NOT NULL DEFAULT '',
	okres              TEXT NOT NULL DEFAULT '',
	druh               TEXT NOT NULL DEFAULT '',
	stav               TEXT NOT NULL DEFAULT '',
	kurenie            TEXT NOT NULL DEFAULT '',
	energ_cert         TEXT NOT NULL DEFAULT '',
	orientacia         TEXT NOT NULL DEFAULT '',
	telkoint           TEXT NOT NULL DEFAULT '',
	uzit_plocha        REAL NOT NULL DEFAULT -1,
	cena_m2            REAL NOT NULL DEFAULT -1,
	cena               REAL NOT NULL DEFAULT -1,
	rok_vystavby       INTEGER NOT NULL DEFAULT -1,
	pocet_izieb        INTEGER NOT NULL DEFAULT -1,
	podlazie           INTEGER NOT NULL DEFAULT -1,
	pocet_nadz_podlazi INTEGER NOT NULL DEFAULT -1,
	latitude           REAL NOT NULL DEFAULT -1,
	longitude          REAL NOT NULL DEFAULT -1,
	timestamp          TEXT NOT NULL,
	verejne_parkovanie TEXT NOT NULL DEFAULT '',
	vytah              TEXT NOT NULL DEFAULT '',
	lodzia             REAL NOT NULL DEFAULT -1,
	balkon             REAL NOT NULL DEFAULT -1,
	garazove_statie    TEXT NOT NULL DEFAULT '',
	garaz              TEXT NOT NULL DEFAULT ''
)`

// listingColumns is the column order shared by inserts and selects
const listingColumns = `id, zdroj, ulica, mesto, okres, druh, stav, kurenie, energ_cert, orientacia,
	telkoint, uzit_plocha, cena_m2, cena, rok_vystavby, pocet_izieb, podlazie, pocet_nadz_podlazi,
	latitude, longitude, timestamp, verejne_parkovanie, vytah, lodzia, balkon, garazove_statie, garaz`

// Seen adverts are skipped, not updated
var insertListingSQL = "INSERT OR IGNORE INTO inzeraty (" + listingColumns + ") VALUES (" +
	strings.TrimSuffix(strings.Repeat("?, ", 27), ", ") + ")"

func listingValues(l *models.Listing) []interface{} {
	return []interface{}{
		l.ID, l.Zdroj, l.Ulica, l.Mesto, l.Okres, l.Druh, l.Stav, l.Kurenie, l.EnergCert, l.Orientacia,
		l.Telkoint, l.UzitPlocha, l.CenaM2, l.Cena, l.RokVystavby, l.PocetIzieb, l.Podlazie, l.PocetNadzPodlazi,
		l.Latitude, l.Longitude, l.Timestamp, l.VerejneParkovanie, l.Vytah, l.Lodzia, l.Balkon, l.GarazoveStatie, l.Garaz,
	}
}

func listingFields(l *models.Listing) []interface{} {
	return []interface{}{
		&l.ID, &l.Zdroj, &l.Ulica, &l.Mesto, &l.Okres, &l.Druh, &l.Stav, &l.Kurenie, &l.EnergCert, &l.Orientacia,
		&l.Telkoint, &l.UzitPlocha, &l.CenaM2, &l.Cena, &l.RokVystavby, &l.PocetIzieb, &l.Podlazie, &l.PocetNadzPodlazi,
		&l.Latitude, &l.Longitude, &l.Timestamp, &l.VerejneParkovanie, &l.Vytah, &l.Lodzia, &l.Balkon, &l.GarazoveStatie, &l.Garaz,
	}
}

// InsertListing stores a listing. It reports false when the id was already stored.
func (s *Store) InsertListing(l *models.Listing) (bool, error) {
	return insertListing(s.db, l)
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func insertListing(db execer, l *models.Listing) (bool, error) {
	l.ID = strings.TrimSpace(l.ID)
	if l.ID == "" {
		return false, errors.New("listing has no id")
	}
	if l.Timestamp == "" {
		l.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	res, err := db.Exec(insertListingSQL, listingValues(l)...)
	if err != nil {
		return false, fmt.Errorf("failed to insert listing %s: %w", l.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to insert listing %s: %w", l.ID, err)
	}
	return n > 0, nil
}

// ImportListings reads a stream of JSON listing objects, one per line as
// pandas writes them with orient="records", lines=True. Fields an object
// leaves out stay unknown. The import is all or nothing.
func (s *Store) ImportListings(r io.Reader) (inserted, skipped int, err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to start import: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	dec := json.NewDecoder(r)
	for n := 1; ; n++ {
		l := models.NewListing()
		if err := dec.Decode(l); err == io.EOF {
			break
		} else if err != nil {
			return 0, 0, fmt.Errorf("listing %d: %w", n, err)
		}

		ok, err := insertListing(tx, l)
		if err != nil {
			return 0, 0, fmt.Errorf("listing %d: %w", n, err)
		}
		if ok {
			inserted++
		} else {
			skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return inserted, skipped, nil
}

// Listings returns up to limit listings, most recently stored first
func (s *Store) Listings(limit int) ([]*models.Listing, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query("SELECT "+listingColumns+" FROM inzeraty ORDER BY rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	listings := []*models.Listing{}
	for rows.Next() {
		l := &models.Listing{}
		if err := rows.Scan(listingFields(l)...); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// CountListings returns the number of stored listings
func (s *Store) CountListings() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT count(*) FROM inzeraty").Scan(&n)
	return n, err
}
