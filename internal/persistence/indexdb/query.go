package indexdb

import (
	"context"
	"database/sql"
)

type CharacterRow struct {
	WorldID     int    `json:"world_id"`
	CharacterID int    `json:"character_id"`
	Name        string `json:"name"`
	Muscles     int    `json:"muscles"`
}

// ListCharacters reads the character table directly. worldID < 0 lists all worlds.
func ListCharacters(ctx context.Context, db *sql.DB, worldID int) ([]CharacterRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT c.world_id, c.character_id, c.name,
			(SELECT COUNT(*) FROM muscles m WHERE m.world_id=c.world_id AND m.character_id=c.character_id)
		FROM characters c
		WHERE ? < 0 OR c.world_id = ?
		ORDER BY c.world_id, c.character_id`, worldID, worldID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CharacterRow
	for rows.Next() {
		var r CharacterRow
		if err := rows.Scan(&r.WorldID, &r.CharacterID, &r.Name, &r.Muscles); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
