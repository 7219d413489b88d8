package source

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aidangoettsch/go-tilepipe/tile"
)

// MBTiles reads tiles from an MBTiles archive. Rows are stored in TMS
// order inside the archive and flipped to XYZ on the way out.
type MBTiles struct {
	db   *sql.DB
	stmt *sql.Stmt
}

// OpenMBTiles opens an MBTiles file read-only.
//
// The returned source must be closed after use to release database
// resources.
func OpenMBTiles(filePath string) (*MBTiles, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", filePath))
	if err != nil {
		return nil, err
	}

	stmt, err := db.Prepare("SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?")
	if err != nil {
		db.Close()
		return nil, err
	}

	return &MBTiles{db: db, stmt: stmt}, nil
}

func (m *MBTiles) Close() error {
	return errors.Join(m.stmt.Close(), m.db.Close())
}

// Metadata reads the archive's metadata table.
func (m *MBTiles) Metadata() (map[string]string, error) {
	metadata := make(map[string]string)

	rows, err := m.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		metadata[name] = value
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return metadata, nil
}

func (m *MBTiles) ReadTile(coords tile.Coords) ([]byte, error) {
	tms := coords.ToTMS()

	var tileData []byte
	if err := m.stmt.QueryRow(tms.Z, tms.X, tms.Y).Scan(&tileData); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return make([]byte, 0), nil
		}
		return nil, err
	}

	return tileData, nil
}

// VisitTiles enumerates every stored tile in XYZ addressing.
func (m *MBTiles) VisitTiles(visitor TileVisitor) error {
	rows, err := m.db.Query("SELECT zoom_level, tile_column, tile_row, tile_data FROM tiles")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var coords tile.Coords
		var tileData []byte

		if err := rows.Scan(&coords.Z, &coords.X, &coords.Y, &tileData); err != nil {
			return err
		}

		if err := visitor(coords.ToTMS(), tileData); err != nil {
			return err
		}
	}

	return rows.Err()
}
