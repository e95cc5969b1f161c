package sqlite

import (
	"database/sql"
	"time"

	"github.com/julianstephens/daybook/internal/models"
)

func scanInterest(row interface{ Scan(...any) error }) (models.InterestArea, error) {
	var a models.InterestArea
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	if err := row.Scan(&a.ID, &a.Name, &a.Color, &a.SortOrder, &createdAt, &updatedAt, &deletedAt); err != nil {
		return models.InterestArea{}, err
	}

	var err error
	if a.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.InterestArea{}, err
	}
	if a.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.InterestArea{}, err
	}
	if a.DeletedAt, err = parseNullTime("deleted_at", deletedAt); err != nil {
		return models.InterestArea{}, err
	}

	return a, nil
}

func (s *Store) UpsertInterest(area models.InterestArea) error {
	_, err := s.db.Exec(`
		INSERT INTO interest_areas (id, name, color, sort_order, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			sort_order = excluded.sort_order,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`,
		area.ID, area.Name, area.Color, area.SortOrder,
		timeString(area.CreatedAt), timeString(area.UpdatedAt), nullTimeString(area.DeletedAt))

	return err
}

func (s *Store) GetAllInterests() ([]models.InterestArea, error) {
	rows, err := s.db.Query(`
		SELECT id, name, color, sort_order, created_at, updated_at, deleted_at
		FROM interest_areas WHERE deleted_at IS NULL
		ORDER BY sort_order, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []models.InterestArea
	for rows.Next() {
		a, err := scanInterest(rows)
		if err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}

	return areas, rows.Err()
}

func (s *Store) DeleteInterest(id string) error {
	result, err := s.db.Exec(`
		UPDATE interest_areas SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		timeString(time.Now()), timeString(time.Now()), id)
	if err != nil {
		return err
	}
	return requireRows(result, "interest area not found or already deleted")
}
