package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/0xDyno/healthy-blend/internal/model"
	"github.com/0xDyno/healthy-blend/internal/repository"
	"github.com/0xDyno/healthy-blend/pkg/logger"
)

const (
	menuProductsKey    = "menu:products"
	menuIngredientsKey = "menu:ingredients"
	menuCacheTTL       = 5 * time.Minute
)

// MenuService 顾客侧目录读取。目录读多写少，挂一层 redis 缓存，
// cache 为 nil 时直接打库（测试与无 redis 部署）。
type MenuService struct {
	products    repository.ProductRepository
	ingredients repository.IngredientRepository
	cache       *redis.Client
}

func NewMenuService(products repository.ProductRepository, ingredients repository.IngredientRepository,
	cache *redis.Client) *MenuService {
	return &MenuService{products: products, ingredients: ingredients, cache: cache}
}

// Products 菜单上的商品（含配料与营养）
func (s *MenuService) Products(ctx context.Context) ([]*model.Product, error) {
	var rows []*model.Product
	if s.cacheGet(ctx, menuProductsKey, &rows) {
		return rows, nil
	}
	rows, err := s.products.ListMenu(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, menuProductsKey, rows)
	return rows, nil
}

// Ingredients 可用于自选搭配的配料
func (s *MenuService) Ingredients(ctx context.Context) ([]*model.Ingredient, error) {
	var rows []*model.Ingredient
	if s.cacheGet(ctx, menuIngredientsKey, &rows) {
		return rows, nil
	}
	rows, err := s.ingredients.ListMenu(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, menuIngredientsKey, rows)
	return rows, nil
}

// Invalidate 目录写入后调用，丢弃缓存
func (s *MenuService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, menuProductsKey, menuIngredientsKey).Err(); err != nil {
		logger.Warn("menu cache invalidate failed", zap.Error(err))
	}
}

func (s *MenuService) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (s *MenuService) cacheSet(ctx context.Context, key string, v interface{}) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, menuCacheTTL).Err(); err != nil {
		logger.Warn("menu cache set failed", zap.Error(err))
	}
}
