package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/0xDyno/healthy-blend/internal/model"
)

// SettingRepository 全局配置与每周营业时间，结算管线只读
type SettingRepository interface {
	Get(ctx context.Context) (*model.Setting, error)
	GetDay(ctx context.Context, day int) (*model.DaySetting, error)
	Save(ctx context.Context, s *model.Setting) error
	SaveDay(ctx context.Context, d *model.DaySetting) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context) (*model.Setting, error) {
	var s model.Setting
	if err := r.db.WithContext(ctx).First(&s, 1).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingRepository) GetDay(ctx context.Context, day int) (*model.DaySetting, error) {
	var d model.DaySetting
	if err := r.db.WithContext(ctx).Where("day = ?", day).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *settingRepository) Save(ctx context.Context, s *model.Setting) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *settingRepository) SaveDay(ctx context.Context, d *model.DaySetting) error {
	return r.db.WithContext(ctx).Save(d).Error
}
