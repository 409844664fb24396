package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"article-catalog/internal/model"
	"article-catalog/internal/store"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrAlreadyExists = errors.New("article already exists")
	ErrNotFound      = errors.New("article not found")
)

// ArticleService guards store mutations with existence checks.
//
// Check and write are separate store calls, so two concurrent creates of
// the same code can both pass the check; the last Save wins.
type ArticleService struct {
	store    store.Store
	logger   *zap.Logger
	validate *validator.Validate
}

func New(st store.Store, logger *zap.Logger) *ArticleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so errors match the wire format.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ArticleService{
		store:    st,
		logger:   logger,
		validate: validate,
	}
}

// Validate checks the article's struct tags. Failures are validator.ValidationErrors.
func (s *ArticleService) Validate(article *model.Article) error {
	return s.validate.Struct(article)
}

// CreateArticle stores a new article. ErrAlreadyExists if the code is taken.
func (s *ArticleService) CreateArticle(ctx context.Context, article *model.Article) error {
	if err := s.Validate(article); err != nil {
		return err
	}

	exists, err := s.store.Exists(ctx, article.Code)
	if err != nil {
		return fmt.Errorf("check article existence: %w", err)
	}
	if exists {
		s.logger.Warn("article already exists", zap.String("code", article.Code))
		return ErrAlreadyExists
	}

	if err := s.store.Save(ctx, article); err != nil {
		return fmt.Errorf("save article: %w", err)
	}
	s.logger.Info("article created", zap.String("code", article.Code))
	return nil
}

// UpdateArticle overwrites every field of an existing article.
func (s *ArticleService) UpdateArticle(ctx context.Context, article *model.Article) error {
	if err := s.Validate(article); err != nil {
		return err
	}

	exists, err := s.store.Exists(ctx, article.Code)
	if err != nil {
		return fmt.Errorf("check article existence: %w", err)
	}
	if !exists {
		s.logger.Warn("article not found", zap.String("code", article.Code), zap.String("op", "update"))
		return ErrNotFound
	}

	if err := s.store.Save(ctx, article); err != nil {
		return fmt.Errorf("save article: %w", err)
	}
	s.logger.Info("article updated", zap.String("code", article.Code))
	return nil
}

func (s *ArticleService) DeleteArticle(ctx context.Context, code string) error {
	exists, err := s.store.Exists(ctx, code)
	if err != nil {
		return fmt.Errorf("check article existence: %w", err)
	}
	if !exists {
		s.logger.Warn("article not found", zap.String("code", code), zap.String("op", "delete"))
		return ErrNotFound
	}

	if err := s.store.Delete(ctx, code); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	s.logger.Info("article deleted", zap.String("code", code))
	return nil
}

func (s *ArticleService) FindAllArticles(ctx context.Context) ([]model.Article, error) {
	articles, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

func (s *ArticleService) GetArticle(ctx context.Context, code string) (*model.Article, error) {
	article, err := s.store.Get(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	return article, nil
}
