package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"jmssh/backend/internal/types"
)

// Store 封装 profiles / routes / local_auth 三张表的读写
type Store struct {
	db *gorm.DB
}

// ProfileRef 返回 profile 的 id 引用形式，例如 #12
func ProfileRef(id uint) string {
	return fmt.Sprintf("#%d", id)
}

// Open 打开（必要时创建）sqlite 数据库并迁移表结构
func Open(path string, debug bool) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Annotate(err, "create db directory")
		}
	}

	level := logger.Silent
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, errors.Annotate(err, "open database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Annotate(err, "get sql.DB")
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Annotate(err, "set WAL mode")
	}

	if err := db.AutoMigrate(&Profile{}, &Route{}, &LocalAuth{}); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Annotate(err, "auto-migrate")
	}
	return &Store{db: db}, nil
}

// Close 关闭底层连接
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction 在一个事务中执行 fn，fn 返回错误时整体回滚
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Profile helpers

func (s *Store) ProfileByID(ctx context.Context, id uint) (*Profile, error) {
	var profiles []Profile
	if err := s.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&profiles).Error; err != nil {
		return nil, errors.Annotatef(err, "find profile %s", ProfileRef(id))
	}
	if len(profiles) == 0 {
		return nil, &types.ProfileNotFoundError{Ref: ProfileRef(id)}
	}
	return &profiles[0], nil
}

func (s *Store) ProfileByLabel(ctx context.Context, label string) (*Profile, error) {
	var profiles []Profile
	if err := s.db.WithContext(ctx).Where("label = ?", label).Limit(1).Find(&profiles).Error; err != nil {
		return nil, errors.Annotatef(err, "find profile %q", label)
	}
	if len(profiles) == 0 {
		return nil, &types.ProfileNotFoundError{Ref: label}
	}
	return &profiles[0], nil
}

// ProfilesByIDs 一次查询返回 ids 中存在的 profile，顺序不保证
func (s *Store) ProfilesByIDs(ctx context.Context, ids []uint) ([]Profile, error) {
	var profiles []Profile
	if len(ids) == 0 {
		return profiles, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, errors.Annotate(err, "find profiles by id")
	}
	return profiles, nil
}

// ProfilesByLabels 一次查询返回 labels 中存在的 profile
func (s *Store) ProfilesByLabels(ctx context.Context, labels []string) ([]Profile, error) {
	var profiles []Profile
	if len(labels) == 0 {
		return profiles, nil
	}
	if err := s.db.WithContext(ctx).Where("label IN ?", labels).Find(&profiles).Error; err != nil {
		return nil, errors.Annotate(err, "find profiles by label")
	}
	return profiles, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	if err := s.db.WithContext(ctx).Order("label").Order("id").Find(&profiles).Error; err != nil {
		return nil, errors.Annotate(err, "list profiles")
	}
	return profiles, nil
}

// Labels 返回所有非空 label，按字母排序
func (s *Store) Labels(ctx context.Context) ([]string, error) {
	var labels []string
	err := s.db.WithContext(ctx).Model(&Profile{}).
		Where("label IS NOT NULL AND label <> ''").
		Order("label").
		Pluck("label", &labels).Error
	if err != nil {
		return nil, errors.Annotate(err, "list labels")
	}
	return labels, nil
}

func (s *Store) CreateProfile(ctx context.Context, p *Profile) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return errors.Annotatef(err, "create profile %q", p.LabelOrRef())
	}
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *Profile) error {
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return errors.Annotatef(err, "update profile %q", p.LabelOrRef())
	}
	return nil
}

// DeleteProfile 删除 profile 以及它拥有的 routes 和 local_auth 记录
func (s *Store) DeleteProfile(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if err := tx.DeleteRoutesByOwner(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteKeyPath(ctx, id); err != nil {
			return err
		}
		res := tx.db.WithContext(ctx).Delete(&Profile{}, id)
		if res.Error != nil {
			return errors.Annotatef(res.Error, "delete profile %s", ProfileRef(id))
		}
		if res.RowsAffected == 0 {
			return &types.ProfileNotFoundError{Ref: ProfileRef(id)}
		}
		return nil
	})
}

// Route helpers

// RoutesByOwner 返回 owner 的跳板链，按 seq 升序
func (s *Store) RoutesByOwner(ctx context.Context, ownerID uint) ([]Route, error) {
	var routes []Route
	err := s.db.WithContext(ctx).Where("profile_id = ?", ownerID).Order("seq ASC").Find(&routes).Error
	if err != nil {
		return nil, errors.Annotatef(err, "find routes of %s", ProfileRef(ownerID))
	}
	return routes, nil
}

func (s *Store) DeleteRoutesByOwner(ctx context.Context, ownerID uint) error {
	if err := s.db.WithContext(ctx).Where("profile_id = ?", ownerID).Delete(&Route{}).Error; err != nil {
		return errors.Annotatef(err, "delete routes of %s", ProfileRef(ownerID))
	}
	return nil
}

func (s *Store) InsertRoute(ctx context.Context, r *Route) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return errors.Annotatef(err, "insert route %s[%d]", ProfileRef(r.ProfileID), r.Seq)
	}
	return nil
}

// Local key helpers

// KeyPathsByProfileIDs 一次查询返回 profile id -> 私钥路径，没有记录的 id 不在结果中
func (s *Store) KeyPathsByProfileIDs(ctx context.Context, ids []uint) (map[uint]string, error) {
	paths := make(map[uint]string)
	if len(ids) == 0 {
		return paths, nil
	}
	var rows []LocalAuth
	if err := s.db.WithContext(ctx).Where("profile_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errors.Annotate(err, "find local key paths")
	}
	for _, row := range rows {
		if row.KeyPathLocal != nil && *row.KeyPathLocal != "" {
			paths[row.ProfileID] = *row.KeyPathLocal
		}
	}
	return paths, nil
}

// SetKeyPath 写入或覆盖 profile 的私钥路径
func (s *Store) SetKeyPath(ctx context.Context, profileID uint, path string) error {
	row := LocalAuth{ProfileID: profileID, KeyPathLocal: &path}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"key_path_local"}),
	}).Create(&row).Error
	if err != nil {
		return errors.Annotatef(err, "set key path of %s", ProfileRef(profileID))
	}
	return nil
}

func (s *Store) DeleteKeyPath(ctx context.Context, profileID uint) error {
	if err := s.db.WithContext(ctx).Where("profile_id = ?", profileID).Delete(&LocalAuth{}).Error; err != nil {
		return errors.Annotatef(err, "delete key path of %s", ProfileRef(profileID))
	}
	return nil
}
