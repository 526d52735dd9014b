package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"orderstack/internal/api/dto"
	"orderstack/internal/model"
	"orderstack/internal/repository"
)

const (
	defaultAdditionalUnit = 0.1 // 续重单位缺省 0.1kg
	defaultCurrency       = "CNY"
	timeLayout            = "2006-01-02 15:04:05"
)

// ShippingTemplateService 运费模板管理服务
// 负责模板与规则的增删改查，所有规则写入在入库前做区间校验
type ShippingTemplateService struct {
	templateRepo        repository.ShippingTemplateRepository
	ruleRepo            repository.ShippingTemplateRuleRepository
	productBindingRepo  repository.ProductShippingTemplateRepository
	platformBindingRepo repository.PlatformProductShippingTemplateRepository
	txManager           repository.TxManager
}

// NewShippingTemplateService 创建运费模板服务
func NewShippingTemplateService(
	templateRepo repository.ShippingTemplateRepository,
	ruleRepo repository.ShippingTemplateRuleRepository,
	productBindingRepo repository.ProductShippingTemplateRepository,
	platformBindingRepo repository.PlatformProductShippingTemplateRepository,
	txManager repository.TxManager,
) *ShippingTemplateService {
	return &ShippingTemplateService{
		templateRepo:        templateRepo,
		ruleRepo:            ruleRepo,
		productBindingRepo:  productBindingRepo,
		platformBindingRepo: platformBindingRepo,
		txManager:           txManager,
	}
}

// ==================== 模板管理 ====================

// CreateTemplate 创建运费模板，可携带初始规则
// 规则先整体校验（含相互之间的区间重叠），再与模板在同一事务内入库
func (s *ShippingTemplateService) CreateTemplate(ctx context.Context, req *dto.TemplateCreateReq) (*model.ShippingTemplate, error) {
	rules := make([]model.ShippingTemplateRule, 0, len(req.Rules))
	for i := range req.Rules {
		rule := ruleFromCreateReq(&req.Rules[i])
		if err := ValidateRule(&rule); err != nil {
			return nil, err
		}
		if err := CheckRuleOverlap(rules, &rule); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	template := &model.ShippingTemplate{
		Name:        req.Name,
		Carrier:     req.Carrier,
		FromRegion:  req.FromRegion,
		Description: req.Description,
		Status:      model.TemplateStatusActive,
	}

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.templateRepo.Create(ctx, template); err != nil {
			return err
		}
		for i := range rules {
			rules[i].TemplateID = template.ID
		}
		return s.ruleRepo.BatchCreate(ctx, rules)
	})
	if err != nil {
		return nil, err
	}

	template.Rules = rules
	return template, nil
}

// UpdateTemplate 更新运费模板（空字段不更新）
func (s *ShippingTemplateService) UpdateTemplate(ctx context.Context, id int64, req *dto.TemplateUpdateReq) error {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return wrapNotFound(err, ErrTemplateNotFound)
	}

	if req.Name != "" {
		template.Name = req.Name
	}
	if req.Carrier != "" {
		template.Carrier = req.Carrier
	}
	if req.FromRegion != "" {
		template.FromRegion = req.FromRegion
	}
	if req.Description != "" {
		template.Description = req.Description
	}
	if req.Status != "" {
		if req.Status != model.TemplateStatusActive && req.Status != model.TemplateStatusInactive {
			return ErrInvalidRule
		}
		template.Status = req.Status
	}

	return s.templateRepo.Update(ctx, template)
}

// DeleteTemplate 删除运费模板
// 级联删除模板下的规则与所有产品绑定，避免绑定解析到失效模板
func (s *ShippingTemplateService) DeleteTemplate(ctx context.Context, id int64) error {
	if _, err := s.templateRepo.GetByID(ctx, id); err != nil {
		return wrapNotFound(err, ErrTemplateNotFound)
	}

	return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.ruleRepo.DeleteByTemplateID(ctx, id); err != nil {
			return err
		}
		if err := s.productBindingRepo.DeleteByTemplateID(ctx, id); err != nil {
			return err
		}
		if err := s.platformBindingRepo.DeleteByTemplateID(ctx, id); err != nil {
			return err
		}
		return s.templateRepo.Delete(ctx, id)
	})
}

// GetTemplate 获取运费模板详情（含规则）
func (s *ShippingTemplateService) GetTemplate(ctx context.Context, id int64) (*model.ShippingTemplate, error) {
	template, err := s.templateRepo.GetByIDWithRules(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrTemplateNotFound)
	}
	return template, nil
}

// ListTemplates 分页查询运费模板
func (s *ShippingTemplateService) ListTemplates(ctx context.Context, page, pageSize int, keyword, status string) ([]model.ShippingTemplate, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.templateRepo.List(ctx, &repository.TemplateQuery{
		Page:     page,
		PageSize: pageSize,
		Keyword:  keyword,
		Status:   status,
	})
}

// ListAllTemplates 获取所有启用的运费模板（下拉选择用）
func (s *ShippingTemplateService) ListAllTemplates(ctx context.Context) ([]model.ShippingTemplate, error) {
	return s.templateRepo.ListAllActive(ctx)
}

// ==================== 规则管理 ====================

// CreateRule 为模板创建运费规则
// 与该模板同区域已有规则做区间重叠校验，冲突时拒绝写入
func (s *ShippingTemplateService) CreateRule(ctx context.Context, templateID int64, req *dto.RuleCreateReq) (*model.ShippingTemplateRule, error) {
	if _, err := s.templateRepo.GetByID(ctx, templateID); err != nil {
		return nil, wrapNotFound(err, ErrTemplateNotFound)
	}

	rule := ruleFromCreateReq(req)
	rule.TemplateID = templateID
	if err := ValidateRule(&rule); err != nil {
		return nil, err
	}

	siblings, err := s.ruleRepo.GetByTemplateAndRegion(ctx, templateID, rule.ToRegion)
	if err != nil {
		return nil, err
	}
	if err := CheckRuleOverlap(siblings, &rule); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Create(ctx, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// UpdateRule 更新运费规则
// 更新后的区间重新参与重叠校验（排除自身）
func (s *ShippingTemplateService) UpdateRule(ctx context.Context, templateID, ruleID int64, req *dto.RuleUpdateReq) (*model.ShippingTemplateRule, error) {
	rule, err := s.ruleRepo.GetByID(ctx, ruleID)
	if err != nil {
		return nil, wrapNotFound(err, ErrRuleNotFound)
	}
	if rule.TemplateID != templateID {
		return nil, ErrRuleNotFound
	}

	if req.ToRegion != "" {
		rule.ToRegion = req.ToRegion
	}
	rule.MinWeight = req.MinWeight
	rule.MaxWeight = req.MaxWeight
	rule.FirstWeight = req.FirstWeight
	rule.FirstPrice = req.FirstPrice
	if req.AdditionalUnit > 0 {
		rule.AdditionalUnit = req.AdditionalUnit
	}
	rule.AdditionalPrice = req.AdditionalPrice
	if req.Currency != "" {
		rule.Currency = req.Currency
	}
	rule.EstimatedDays = req.EstimatedDays

	if err := ValidateRule(rule); err != nil {
		return nil, err
	}

	siblings, err := s.ruleRepo.GetByTemplateAndRegion(ctx, templateID, rule.ToRegion)
	if err != nil {
		return nil, err
	}
	if err := CheckRuleOverlap(siblings, rule); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteRule 删除运费规则
func (s *ShippingTemplateService) DeleteRule(ctx context.Context, templateID, ruleID int64) error {
	rule, err := s.ruleRepo.GetByID(ctx, ruleID)
	if err != nil {
		return wrapNotFound(err, ErrRuleNotFound)
	}
	if rule.TemplateID != templateID {
		return ErrRuleNotFound
	}
	return s.ruleRepo.Delete(ctx, ruleID)
}

// GetRules 获取模板的所有规则
func (s *ShippingTemplateService) GetRules(ctx context.Context, templateID int64) ([]model.ShippingTemplateRule, error) {
	if _, err := s.templateRepo.GetByID(ctx, templateID); err != nil {
		return nil, wrapNotFound(err, ErrTemplateNotFound)
	}
	return s.ruleRepo.GetByTemplateID(ctx, templateID)
}

// ==================== 辅助转换 ====================

func ruleFromCreateReq(req *dto.RuleCreateReq) model.ShippingTemplateRule {
	additionalUnit := req.AdditionalUnit
	if additionalUnit == 0 {
		additionalUnit = defaultAdditionalUnit
	}
	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	return model.ShippingTemplateRule{
		ToRegion:        req.ToRegion,
		MinWeight:       req.MinWeight,
		MaxWeight:       req.MaxWeight,
		FirstWeight:     req.FirstWeight,
		FirstPrice:      req.FirstPrice,
		AdditionalUnit:  additionalUnit,
		AdditionalPrice: req.AdditionalPrice,
		Currency:        currency,
		EstimatedDays:   req.EstimatedDays,
	}
}

// ConvertTemplateToResp 转换模板为响应 DTO
func ConvertTemplateToResp(template *model.ShippingTemplate, withRules bool) dto.TemplateResp {
	resp := dto.TemplateResp{
		ID:          template.ID,
		Name:        template.Name,
		Carrier:     template.Carrier,
		FromRegion:  template.FromRegion,
		Description: template.Description,
		Status:      template.Status,
		RuleCount:   len(template.Rules),
		CreatedAt:   template.CreatedAt.Format(timeLayout),
		UpdatedAt:   template.UpdatedAt.Format(timeLayout),
	}
	if withRules {
		rules := make([]dto.RuleResp, 0, len(template.Rules))
		for i := range template.Rules {
			rules = append(rules, ConvertRuleToResp(&template.Rules[i]))
		}
		resp.Rules = rules
	}
	return resp
}

// ConvertRuleToResp 转换规则为响应 DTO
func ConvertRuleToResp(rule *model.ShippingTemplateRule) dto.RuleResp {
	return dto.RuleResp{
		ID:              rule.ID,
		TemplateID:      rule.TemplateID,
		ToRegion:        rule.ToRegion,
		MinWeight:       rule.MinWeight,
		MaxWeight:       rule.MaxWeight,
		FirstWeight:     rule.FirstWeight,
		FirstPrice:      rule.FirstPrice,
		AdditionalUnit:  rule.AdditionalUnit,
		AdditionalPrice: rule.AdditionalPrice,
		Currency:        rule.Currency,
		EstimatedDays:   rule.EstimatedDays,
		CreatedAt:       rule.CreatedAt.Format(timeLayout),
	}
}

func wrapNotFound(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
