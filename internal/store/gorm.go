package store

import (
	"context"
	"errors"
	"fmt"

	"article-catalog/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// GormStore persists articles in the relational "articles" table.
type GormStore struct {
	db *gorm.DB
}

// NewPostgresStore connects to Postgres and creates the articles table if absent.
func NewPostgresStore(ctx context.Context, dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return NewGormStore(ctx, db)
}

// NewGormStore wraps an open gorm handle.
func NewGormStore(ctx context.Context, db *gorm.DB) (*GormStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&model.Article{}); err != nil {
		return nil, fmt.Errorf("articles automigrate failed: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) Exists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Article{}).
		Where("code = ?", code).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) Save(ctx context.Context, article *model.Article) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"designation", "price"}),
		}).
		Create(article).Error
}

func (s *GormStore) Delete(ctx context.Context, code string) error {
	return s.db.WithContext(ctx).Delete(&model.Article{}, "code = ?", code).Error
}

func (s *GormStore) Get(ctx context.Context, code string) (*model.Article, error) {
	var article model.Article
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (s *GormStore) List(ctx context.Context) ([]model.Article, error) {
	articles := []model.Article{}
	if err := s.db.WithContext(ctx).Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}
