package counter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	"github.com/uptrace/bun"
)

const defaultCounterName = "dfd"

type runCounter struct {
	bun.BaseModel `bun:"table:run_counters,alias:rc"`

	Name  string `bun:"name,pk"`
	Value int    `bun:"value,notnull"`
}

// PostgresStore keeps named counters in a run_counters table. Increment is a
// single upsert, so it is safe across processes.
type PostgresStore struct {
	db   bun.IDB
	name string
}

var (
	_ contractx.CounterStore       = (*PostgresStore)(nil)
	_ contractx.CounterIncrementer = (*PostgresStore)(nil)
)

func NewPostgresStore(db bun.IDB, name string) *PostgresStore {
	if strings.TrimSpace(name) == "" {
		name = defaultCounterName
	}
	return &PostgresStore{db: db, name: name}
}

// EnsureSchema creates the run_counters table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*runCounter)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("%w: create run_counters: %v", contractx.ErrStorage, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (int, bool, error) {
	row := runCounter{Name: s.name}
	if err := s.db.NewSelect().Model(&row).WherePK().Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: load counter %s: %v", contractx.ErrStorage, s.name, err)
	}
	return row.Value, true, nil
}

func (s *PostgresStore) Save(ctx context.Context, value int) error {
	row := runCounter{Name: s.name, Value: value}
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: save counter %s: %v", contractx.ErrStorage, s.name, err)
	}
	return nil
}

func (s *PostgresStore) Increment(ctx context.Context) (int, error) {
	row := runCounter{Name: s.name, Value: 1}
	if _, err := s.incrementQuery(&row).Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: increment counter %s: %v", contractx.ErrStorage, s.name, err)
	}
	return row.Value, nil
}

func (s *PostgresStore) incrementQuery(row *runCounter) *bun.InsertQuery {
	return s.db.NewInsert().
		Model(row).
		On("CONFLICT (name) DO UPDATE").
		Set("value = rc.value + 1").
		Returning("value")
}
