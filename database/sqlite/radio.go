package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/database/model"
)

const radioColumns = `id, name, streamurl, homepageurl, created`

// ListRadioStations returns all internet radio stations.
func (s *SqliteRepo) ListRadioStations(ctx context.Context) ([]model.RadioStation, error) {
	const query = `SELECT ` + radioColumns + ` FROM radiostations ORDER BY name`

	var stations []model.RadioStation
	if err := s.dbReadHandle.SelectContext(ctx, &stations, query); err != nil {
		return nil, err
	}
	return stations, nil
}

// CreateRadioStation stores a new internet radio station.
func (s *SqliteRepo) CreateRadioStation(ctx context.Context, station *model.RadioStation) error {
	if station.ID == uuid.Nil {
		station.ID = uuid.New()
	}
	station.Created = time.Now().UTC()

	const query = `INSERT INTO radiostations (` + radioColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := s.dbWriteHandle.ExecContext(ctx, query,
		station.ID,
		station.Name,
		station.StreamURL,
		station.HomepageURL,
		station.Created)
	return err
}

// UpdateRadioStation updates an existing internet radio station.
func (s *SqliteRepo) UpdateRadioStation(ctx context.Context, station *model.RadioStation) error {
	const query = `UPDATE radiostations SET name=?, streamurl=?, homepageurl=? WHERE id=?`
	result, err := s.dbWriteHandle.ExecContext(ctx, query,
		station.Name, station.StreamURL, station.HomepageURL, station.ID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteRadioStation removes an internet radio station.
func (s *SqliteRepo) DeleteRadioStation(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM radiostations WHERE id=?`
	result, err := s.dbWriteHandle.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return model.ErrNotFound
	}
	return nil
}
