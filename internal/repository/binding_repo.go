package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"orderstack/internal/model"
)

// 绑定查询统一按 默认优先 -> sort_order 升序 -> 创建先后 排序，
// 解析产品应使用的模板时直接取第一条。
const bindingResolveOrder = "is_default DESC, sort_order ASC, id ASC"

// ==================== ProductShippingTemplate 接口定义 ====================

// ProductShippingTemplateRepository 本地产品运费模板绑定仓储接口
type ProductShippingTemplateRepository interface {
	Create(ctx context.Context, binding *model.ProductShippingTemplate) error
	Delete(ctx context.Context, id int64) error
	DeleteByTemplateID(ctx context.Context, templateID int64) error
	GetByID(ctx context.Context, id int64) (*model.ProductShippingTemplate, error)
	GetByProductID(ctx context.Context, productID int64) ([]model.ProductShippingTemplate, error)
	GetDefaultByProductID(ctx context.Context, productID int64) (*model.ProductShippingTemplate, error)
	Exists(ctx context.Context, productID, templateID int64) (bool, error)
	// SetDefault 清除产品原默认绑定并设置新的默认绑定
	// 必须在事务内调用以保证原子性
	SetDefault(ctx context.Context, productID, templateID int64) error
	DeleteOrphans(ctx context.Context) (int64, error)
}

// ==================== ProductShippingTemplate 实现 ====================

type productShippingTemplateRepo struct {
	db *gorm.DB
}

// NewProductShippingTemplateRepository 创建本地产品绑定仓储
func NewProductShippingTemplateRepository(db *gorm.DB) ProductShippingTemplateRepository {
	return &productShippingTemplateRepo{db: db}
}

func (r *productShippingTemplateRepo) getDB(ctx context.Context) *gorm.DB {
	return GetDB(ctx, r.db)
}

func (r *productShippingTemplateRepo) Create(ctx context.Context, binding *model.ProductShippingTemplate) error {
	return r.getDB(ctx).Create(binding).Error
}

func (r *productShippingTemplateRepo) Delete(ctx context.Context, id int64) error {
	return r.getDB(ctx).Delete(&model.ProductShippingTemplate{}, id).Error
}

func (r *productShippingTemplateRepo) DeleteByTemplateID(ctx context.Context, templateID int64) error {
	return r.getDB(ctx).
		Where("shipping_template_id = ?", templateID).
		Delete(&model.ProductShippingTemplate{}).Error
}

func (r *productShippingTemplateRepo) GetByID(ctx context.Context, id int64) (*model.ProductShippingTemplate, error) {
	var binding model.ProductShippingTemplate
	if err := r.getDB(ctx).Preload("ShippingTemplate").First(&binding, id).Error; err != nil {
		return nil, err
	}
	return &binding, nil
}

func (r *productShippingTemplateRepo) GetByProductID(ctx context.Context, productID int64) ([]model.ProductShippingTemplate, error) {
	var bindings []model.ProductShippingTemplate
	err := r.getDB(ctx).
		Preload("ShippingTemplate").
		Where("product_id = ?", productID).
		Order(bindingResolveOrder).
		Find(&bindings).Error
	return bindings, err
}

func (r *productShippingTemplateRepo) GetDefaultByProductID(ctx context.Context, productID int64) (*model.ProductShippingTemplate, error) {
	var binding model.ProductShippingTemplate
	err := r.getDB(ctx).
		Preload("ShippingTemplate").
		Where("product_id = ? AND is_default = ?", productID, true).
		First(&binding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &binding, nil
}

func (r *productShippingTemplateRepo) Exists(ctx context.Context, productID, templateID int64) (bool, error) {
	var count int64
	err := r.getDB(ctx).
		Model(&model.ProductShippingTemplate{}).
		Where("product_id = ? AND shipping_template_id = ?", productID, templateID).
		Count(&count).Error
	return count > 0, err
}

func (r *productShippingTemplateRepo) SetDefault(ctx context.Context, productID, templateID int64) error {
	db := r.getDB(ctx)

	// 先取消该产品所有绑定的默认状态
	if err := db.Model(&model.ProductShippingTemplate{}).
		Where("product_id = ?", productID).
		Update("is_default", false).Error; err != nil {
		return err
	}

	// 再设置指定绑定为默认
	res := db.Model(&model.ProductShippingTemplate{}).
		Where("product_id = ? AND shipping_template_id = ?", productID, templateID).
		Update("is_default", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productShippingTemplateRepo) DeleteOrphans(ctx context.Context) (int64, error) {
	res := r.getDB(ctx).
		Where("shipping_template_id NOT IN (?)", r.getDB(ctx).
			Model(&model.ShippingTemplate{}).
			Select("id")).
		Delete(&model.ProductShippingTemplate{})
	return res.RowsAffected, res.Error
}

// ==================== PlatformProductShippingTemplate 接口定义 ====================

// PlatformProductShippingTemplateRepository 平台产品运费模板绑定仓储接口
type PlatformProductShippingTemplateRepository interface {
	Create(ctx context.Context, binding *model.PlatformProductShippingTemplate) error
	Delete(ctx context.Context, id int64) error
	DeleteByTemplateID(ctx context.Context, templateID int64) error
	GetByID(ctx context.Context, id int64) (*model.PlatformProductShippingTemplate, error)
	GetByPlatformProductID(ctx context.Context, platformProductID int64) ([]model.PlatformProductShippingTemplate, error)
	GetDefaultByPlatformProductID(ctx context.Context, platformProductID int64) (*model.PlatformProductShippingTemplate, error)
	Exists(ctx context.Context, platformProductID, templateID int64) (bool, error)
	SetDefault(ctx context.Context, platformProductID, templateID int64) error
	DeleteOrphans(ctx context.Context) (int64, error)
}

// ==================== PlatformProductShippingTemplate 实现 ====================

type platformProductShippingTemplateRepo struct {
	db *gorm.DB
}

// NewPlatformProductShippingTemplateRepository 创建平台产品绑定仓储
func NewPlatformProductShippingTemplateRepository(db *gorm.DB) PlatformProductShippingTemplateRepository {
	return &platformProductShippingTemplateRepo{db: db}
}

func (r *platformProductShippingTemplateRepo) getDB(ctx context.Context) *gorm.DB {
	return GetDB(ctx, r.db)
}

func (r *platformProductShippingTemplateRepo) Create(ctx context.Context, binding *model.PlatformProductShippingTemplate) error {
	return r.getDB(ctx).Create(binding).Error
}

func (r *platformProductShippingTemplateRepo) Delete(ctx context.Context, id int64) error {
	return r.getDB(ctx).Delete(&model.PlatformProductShippingTemplate{}, id).Error
}

func (r *platformProductShippingTemplateRepo) DeleteByTemplateID(ctx context.Context, templateID int64) error {
	return r.getDB(ctx).
		Where("shipping_template_id = ?", templateID).
		Delete(&model.PlatformProductShippingTemplate{}).Error
}

func (r *platformProductShippingTemplateRepo) GetByID(ctx context.Context, id int64) (*model.PlatformProductShippingTemplate, error) {
	var binding model.PlatformProductShippingTemplate
	if err := r.getDB(ctx).Preload("ShippingTemplate").First(&binding, id).Error; err != nil {
		return nil, err
	}
	return &binding, nil
}

func (r *platformProductShippingTemplateRepo) GetByPlatformProductID(ctx context.Context, platformProductID int64) ([]model.PlatformProductShippingTemplate, error) {
	var bindings []model.PlatformProductShippingTemplate
	err := r.getDB(ctx).
		Preload("ShippingTemplate").
		Where("platform_product_id = ?", platformProductID).
		Order(bindingResolveOrder).
		Find(&bindings).Error
	return bindings, err
}

func (r *platformProductShippingTemplateRepo) GetDefaultByPlatformProductID(ctx context.Context, platformProductID int64) (*model.PlatformProductShippingTemplate, error) {
	var binding model.PlatformProductShippingTemplate
	err := r.getDB(ctx).
		Preload("ShippingTemplate").
		Where("platform_product_id = ? AND is_default = ?", platformProductID, true).
		First(&binding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &binding, nil
}

func (r *platformProductShippingTemplateRepo) Exists(ctx context.Context, platformProductID, templateID int64) (bool, error) {
	var count int64
	err := r.getDB(ctx).
		Model(&model.PlatformProductShippingTemplate{}).
		Where("platform_product_id = ? AND shipping_template_id = ?", platformProductID, templateID).
		Count(&count).Error
	return count > 0, err
}

func (r *platformProductShippingTemplateRepo) SetDefault(ctx context.Context, platformProductID, templateID int64) error {
	db := r.getDB(ctx)

	if err := db.Model(&model.PlatformProductShippingTemplate{}).
		Where("platform_product_id = ?", platformProductID).
		Update("is_default", false).Error; err != nil {
		return err
	}

	res := db.Model(&model.PlatformProductShippingTemplate{}).
		Where("platform_product_id = ? AND shipping_template_id = ?", platformProductID, templateID).
		Update("is_default", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *platformProductShippingTemplateRepo) DeleteOrphans(ctx context.Context) (int64, error) {
	res := r.getDB(ctx).
		Where("shipping_template_id NOT IN (?)", r.getDB(ctx).
			Model(&model.ShippingTemplate{}).
			Select("id")).
		Delete(&model.PlatformProductShippingTemplate{})
	return res.RowsAffected, res.Error
}
