package persist

import (
	"context"

	"github.com/illago/server/internal/world"
)

// SpawnRepo loads spawn-point definitions and their monster entries.
type SpawnRepo struct {
	db *DB
}

func NewSpawnRepo(db *DB) *SpawnRepo {
	return &SpawnRepo{db: db}
}

// LoadSpawnPoints reads every spawn-point row together with its per-type
// monster quotas. A database with no rows returns an empty slice and no
// error; the caller decides whether that counts as a failed initialization.
func (r *SpawnRepo) LoadSpawnPoints(ctx context.Context) ([]world.SpawnDefinition, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT spp_id, spp_x, spp_y, spp_z,
		        spp_range, spp_spawnrange,
		        spp_minspawntime, spp_maxspawntime, spp_spawnall
		 FROM spawnpoint
		 ORDER BY spp_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []world.SpawnDefinition
	index := make(map[int]int)
	for rows.Next() {
		var d world.SpawnDefinition
		if err := rows.Scan(&d.ID, &d.Pos.X, &d.Pos.Y, &d.Pos.Z,
			&d.Leash, &d.SpawnRange,
			&d.MinSpawnTime, &d.MaxSpawnTime, &d.SpawnAll); err != nil {
			return nil, err
		}
		index[d.ID] = len(defs)
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entryRows, err := r.db.Pool.Query(ctx,
		`SELECT spm_spawnpoint, spm_race, spm_count
		 FROM spawnpoint_monster
		 ORDER BY spm_spawnpoint, spm_race`,
	)
	if err != nil {
		return nil, err
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var spawnID int
		var e world.SpawnEntryDef
		if err := entryRows.Scan(&spawnID, &e.MonsterType, &e.Count); err != nil {
			return nil, err
		}
		i, ok := index[spawnID]
		if !ok {
			continue // orphaned entry; skip rather than fail the load
		}
		defs[i].Entries = append(defs[i].Entries, e)
	}
	if err := entryRows.Err(); err != nil {
		return nil, err
	}

	return defs, nil
}
