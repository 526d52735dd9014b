package repository

import (
	"context"

	"gorm.io/gorm"

	"orderstack/internal/model"
)

// TemplateQuery 模板列表查询条件
type TemplateQuery struct {
	Page     int
	PageSize int
	Keyword  string // 按名称/物流商搜索
	Status   string // 按状态筛选
}

// ==================== ShippingTemplate 接口定义 ====================

// ShippingTemplateRepository 运费模板仓储接口
type ShippingTemplateRepository interface {
	Create(ctx context.Context, template *model.ShippingTemplate) error
	Update(ctx context.Context, template *model.ShippingTemplate) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.ShippingTemplate, error)
	GetByIDWithRules(ctx context.Context, id int64) (*model.ShippingTemplate, error)
	List(ctx context.Context, query *TemplateQuery) ([]model.ShippingTemplate, int64, error)
	ListAllActive(ctx context.Context) ([]model.ShippingTemplate, error)
	ListActiveWithoutRules(ctx context.Context) ([]model.ShippingTemplate, error)
}

// ==================== ShippingTemplate 实现 ====================

type shippingTemplateRepo struct {
	db *gorm.DB
}

// NewShippingTemplateRepository 创建运费模板仓储
func NewShippingTemplateRepository(db *gorm.DB) ShippingTemplateRepository {
	return &shippingTemplateRepo{db: db}
}

func (r *shippingTemplateRepo) getDB(ctx context.Context) *gorm.DB {
	return GetDB(ctx, r.db)
}

func (r *shippingTemplateRepo) Create(ctx context.Context, template *model.ShippingTemplate) error {
	return r.getDB(ctx).Create(template).Error
}

func (r *shippingTemplateRepo) Update(ctx context.Context, template *model.ShippingTemplate) error {
	return r.getDB(ctx).Save(template).Error
}

func (r *shippingTemplateRepo) Delete(ctx context.Context, id int64) error {
	return r.getDB(ctx).Delete(&model.ShippingTemplate{}, id).Error
}

func (r *shippingTemplateRepo) GetByID(ctx context.Context, id int64) (*model.ShippingTemplate, error) {
	var template model.ShippingTemplate
	if err := r.getDB(ctx).First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *shippingTemplateRepo) GetByIDWithRules(ctx context.Context, id int64) (*model.ShippingTemplate, error) {
	var template model.ShippingTemplate
	err := r.getDB(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB {
			return db.Order("to_region ASC, min_weight ASC")
		}).
		First(&template, id).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *shippingTemplateRepo) List(ctx context.Context, query *TemplateQuery) ([]model.ShippingTemplate, int64, error) {
	var templates []model.ShippingTemplate
	var total int64

	q := r.getDB(ctx).Model(&model.ShippingTemplate{})
	if query.Keyword != "" {
		like := "%" + query.Keyword + "%"
		q = q.Where("name LIKE ? OR carrier LIKE ?", like, like)
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.PageSize
	err := q.Preload("Rules").
		Order("id DESC").
		Offset(offset).
		Limit(query.PageSize).
		Find(&templates).Error
	if err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}

func (r *shippingTemplateRepo) ListAllActive(ctx context.Context) ([]model.ShippingTemplate, error) {
	var templates []model.ShippingTemplate
	err := r.getDB(ctx).
		Where("status = ?", model.TemplateStatusActive).
		Order("name ASC").
		Find(&templates).Error
	return templates, err
}

func (r *shippingTemplateRepo) ListActiveWithoutRules(ctx context.Context) ([]model.ShippingTemplate, error) {
	var templates []model.ShippingTemplate
	err := r.getDB(ctx).
		Where("status = ?", model.TemplateStatusActive).
		Where("id NOT IN (?)", r.getDB(ctx).
			Model(&model.ShippingTemplateRule{}).
			Distinct("template_id")).
		Find(&templates).Error
	return templates, err
}

// ==================== ShippingTemplateRule 接口定义 ====================

// ShippingTemplateRuleRepository 运费规则仓储接口
type ShippingTemplateRuleRepository interface {
	Create(ctx context.Context, rule *model.ShippingTemplateRule) error
	BatchCreate(ctx context.Context, rules []model.ShippingTemplateRule) error
	Update(ctx context.Context, rule *model.ShippingTemplateRule) error
	Delete(ctx context.Context, id int64) error
	DeleteByTemplateID(ctx context.Context, templateID int64) error
	GetByID(ctx context.Context, id int64) (*model.ShippingTemplateRule, error)
	GetByTemplateID(ctx context.Context, templateID int64) ([]model.ShippingTemplateRule, error)
	GetByTemplateAndRegion(ctx context.Context, templateID int64, toRegion string) ([]model.ShippingTemplateRule, error)
}

// ==================== ShippingTemplateRule 实现 ====================

type shippingTemplateRuleRepo struct {
	db *gorm.DB
}

// NewShippingTemplateRuleRepository 创建运费规则仓储
func NewShippingTemplateRuleRepository(db *gorm.DB) ShippingTemplateRuleRepository {
	return &shippingTemplateRuleRepo{db: db}
}

func (r *shippingTemplateRuleRepo) getDB(ctx context.Context) *gorm.DB {
	return GetDB(ctx, r.db)
}

func (r *shippingTemplateRuleRepo) Create(ctx context.Context, rule *model.ShippingTemplateRule) error {
	return r.getDB(ctx).Create(rule).Error
}

func (r *shippingTemplateRuleRepo) BatchCreate(ctx context.Context, rules []model.ShippingTemplateRule) error {
	if len(rules) == 0 {
		return nil
	}
	return r.getDB(ctx).Create(&rules).Error
}

func (r *shippingTemplateRuleRepo) Update(ctx context.Context, rule *model.ShippingTemplateRule) error {
	return r.getDB(ctx).Save(rule).Error
}

func (r *shippingTemplateRuleRepo) Delete(ctx context.Context, id int64) error {
	return r.getDB(ctx).Delete(&model.ShippingTemplateRule{}, id).Error
}

func (r *shippingTemplateRuleRepo) DeleteByTemplateID(ctx context.Context, templateID int64) error {
	return r.getDB(ctx).
		Where("template_id = ?", templateID).
		Delete(&model.ShippingTemplateRule{}).Error
}

func (r *shippingTemplateRuleRepo) GetByID(ctx context.Context, id int64) (*model.ShippingTemplateRule, error) {
	var rule model.ShippingTemplateRule
	if err := r.getDB(ctx).First(&rule, id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *shippingTemplateRuleRepo) GetByTemplateID(ctx context.Context, templateID int64) ([]model.ShippingTemplateRule, error) {
	var rules []model.ShippingTemplateRule
	err := r.getDB(ctx).
		Where("template_id = ?", templateID).
		Order("to_region ASC, min_weight ASC").
		Find(&rules).Error
	return rules, err
}

func (r *shippingTemplateRuleRepo) GetByTemplateAndRegion(ctx context.Context, templateID int64, toRegion string) ([]model.ShippingTemplateRule, error) {
	var rules []model.ShippingTemplateRule
	err := r.getDB(ctx).
		Where("template_id = ? AND to_region = ?", templateID, toRegion).
		Order("min_weight ASC").
		Find(&rules).Error
	return rules, err
}
