// Package setting stores the key/value application settings. Reads go
// through an optional redis cache that is dropped on every write.
package setting

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"lunch/backend/internal/entity"
	"lunch/backend/internal/pkg/errs"
	"lunch/backend/internal/pkg/repository/postgresql"
)

const (
	cachePrefix = "lunch:setting:"
	cacheTTL    = 10 * time.Minute

	// missing marks a key known to be absent so misses are cached too.
	missing = "\x00"
)

type Repository struct {
	*postgresql.Database
	cache *redis.Client
}

// NewRepository returns the settings store. cache may be nil.
func NewRepository(database *postgresql.Database, cache *redis.Client) *Repository {
	return &Repository{Database: database, cache: cache}
}

// Get returns the value of key and whether it exists.
func (r Repository) Get(ctx context.Context, key string) (string, bool, error) {
	if r.cache != nil {
		v, err := r.cache.Get(ctx, cachePrefix+key).Result()
		if err == nil {
			return v, v != missing, nil
		}
		// A cache failure falls back to the database.
	}

	var value string
	err := r.NewSelect().Model((*entity.Setting)(nil)).Column("value").Where("key = ?", key).Scan(ctx, &value)
	if errors.Is(err, sql.ErrNoRows) {
		r.remember(ctx, key, missing)
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "selecting setting %s", key)
	}

	r.remember(ctx, key, value)
	return value, true, nil
}

func (r Repository) List(ctx context.Context) ([]entity.Setting, error) {
	list := make([]entity.Setting, 0)

	if err := r.NewSelect().Model(&list).Order("key ASC").Scan(ctx); err != nil {
		return nil, errors.Wrap(err, "selecting settings")
	}

	return list, nil
}

// GetInfo returns the settings the client renders.
func (r Repository) GetInfo(ctx context.Context) (GetInfoResponse, error) {
	info := GetInfoResponse{SchoolName: entity.DefaultSchoolName}

	list, err := r.List(ctx)
	if err != nil {
		return GetInfoResponse{}, err
	}

	for _, s := range list {
		switch s.Key {
		case entity.SettingPrintTickets:
			info.PrintTickets = entity.SettingEnabled(s.Value)
		case entity.SettingSchoolName:
			if s.Value != "" {
				info.SchoolName = s.Value
			}
		case entity.SettingLogoFilename:
			info.Logo = s.Value
		}
	}

	return info, nil
}

// Set upserts key.
func (r Repository) Set(ctx context.Context, key, value string) error {
	s := entity.Setting{Key: key, Value: value}

	_, err := r.NewInsert().Model(&s).On("CONFLICT (key) DO UPDATE").Set("value = EXCLUDED.value").Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "saving setting %s", key)
	}

	r.forget(ctx, key)
	return nil
}

func (r Repository) UpdateAll(ctx context.Context, request UpdateRequest) error {
	if request.SchoolName != nil && strings.TrimSpace(*request.SchoolName) == "" {
		return errs.New(errs.Validation, "school name cannot be empty")
	}

	if request.PrintTickets != nil {
		if err := r.Set(ctx, entity.SettingPrintTickets, strconv.FormatBool(*request.PrintTickets)); err != nil {
			return err
		}
	}
	if request.SchoolName != nil {
		if err := r.Set(ctx, entity.SettingSchoolName, strings.TrimSpace(*request.SchoolName)); err != nil {
			return err
		}
	}

	return nil
}

func (r Repository) remember(ctx context.Context, key, value string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Set(ctx, cachePrefix+key, value, cacheTTL).Err()
}

func (r Repository) forget(ctx context.Context, key string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Del(ctx, cachePrefix+key).Err()
}
