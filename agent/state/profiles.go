package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// ProfileSource pre-seeds a freshly created session from a stored farmer
// record. Absence of a record is not an error.
type ProfileSource interface {
	Lookup(ctx context.Context, userID string) (FarmerProfile, bool, error)
}

// FarmerRecord is the persisted farmer profile row.
type FarmerRecord struct {
	bun.BaseModel `bun:"table:farmer_profiles"`

	UserID            string    `bun:"user_id,pk"`
	Name              string    `bun:"name"`
	Location          string    `bun:"location"`
	PreferredLanguage string    `bun:"preferred_language"`
	LandSize          string    `bun:"land_size"`
	FarmingType       string    `bun:"farming_type"`
	UpdatedAt         time.Time `bun:"updated_at"`
}

type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
}

// ProfileStore keeps farmer profiles in Postgres via bun.
type ProfileStore struct {
	db *bun.DB
}

func NewProfileStore(cfg PostgresConfig) (*ProfileStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &ProfileStore{db: db}, nil
}

// Migrate creates the farmer_profiles table if it does not exist.
func (p *ProfileStore) Migrate(ctx context.Context) error {
	_, err := p.db.NewCreateTable().
		Model((*FarmerRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create farmer_profiles table: %w", err)
	}
	return nil
}

func (p *ProfileStore) Lookup(ctx context.Context, userID string) (FarmerProfile, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return FarmerProfile{}, false, ErrInvalidUserID
	}

	rec := new(FarmerRecord)
	err := p.db.NewSelect().
		Model(rec).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FarmerProfile{}, false, nil
		}
		return FarmerProfile{}, false, fmt.Errorf("lookup farmer profile: %w", err)
	}

	return FarmerProfile{
		Name:              rec.Name,
		Location:          rec.Location,
		PreferredLanguage: rec.PreferredLanguage,
		LandSize:          rec.LandSize,
		FarmingType:       rec.FarmingType,
	}, true, nil
}

func (p *ProfileStore) Upsert(ctx context.Context, userID string, profile FarmerProfile) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUserID
	}

	rec := &FarmerRecord{
		UserID:            userID,
		Name:              profile.Name,
		Location:          profile.Location,
		PreferredLanguage: profile.PreferredLanguage,
		LandSize:          profile.LandSize,
		FarmingType:       profile.FarmingType,
		UpdatedAt:         time.Now().UTC(),
	}

	_, err := p.db.NewInsert().
		Model(rec).
		On("CONFLICT (user_id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("location = EXCLUDED.location").
		Set("preferred_language = EXCLUDED.preferred_language").
		Set("land_size = EXCLUDED.land_size").
		Set("farming_type = EXCLUDED.farming_type").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert farmer profile: %w", err)
	}
	return nil
}

func (p *ProfileStore) Close() error {
	return p.db.Close()
}
