package persist

import (
	"context"

	"github.com/illago/server/internal/world"
)

// CharacterRepo persists player state. Saves are amortized by the player
// pass: at most one player is written per tick, so a single upsert is the
// whole I/O surface of the hot path.
type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

// SavePlayer upserts the simulation-owned slice of a player's state.
func (r *CharacterRepo) SavePlayer(ctx context.Context, p *world.Player) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO characters (id, name, x, y, z, heading, hp, max_hp, mental_capacity)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   x = EXCLUDED.x, y = EXCLUDED.y, z = EXCLUDED.z,
		   heading = EXCLUDED.heading,
		   hp = EXCLUDED.hp, max_hp = EXCLUDED.max_hp,
		   mental_capacity = EXCLUDED.mental_capacity`,
		p.ID, p.Name, p.Pos.X, p.Pos.Y, p.Pos.Z, int(p.Heading),
		p.HP, p.MaxHP, p.MentalCapacity,
	)
	return err
}

// LoadPlayer reads a saved player row. The session is attached by the
// connection layer afterwards.
func (r *CharacterRepo) LoadPlayer(ctx context.Context, id int) (*world.Player, error) {
	p := &world.Player{}
	p.ID = id
	p.Kind = world.KindPlayer
	p.Alive = true
	var heading int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT name, x, y, z, heading, hp, max_hp, mental_capacity
		 FROM characters WHERE id = $1`, id,
	).Scan(&p.Name, &p.Pos.X, &p.Pos.Y, &p.Pos.Z, &heading,
		&p.HP, &p.MaxHP, &p.MentalCapacity)
	if err != nil {
		return nil, err
	}
	p.Heading = world.Direction(heading)
	return p, nil
}
