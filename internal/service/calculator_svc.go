package service

import (
	"context"

	"orderstack/internal/api/dto"
	"orderstack/internal/repository"
)

// 运费估算来源
const (
	EstimateSourcePlatformProduct = "platform_product"
	EstimateSourceProduct         = "product"
	EstimateSourceNone            = "none"
)

// CalculatorService 运费计算服务
// 每次计算都基于当前规则快照，不做缓存；计算本身无副作用
type CalculatorService struct {
	templateRepo repository.ShippingTemplateRepository
	ruleRepo     repository.ShippingTemplateRuleRepository
	bindingSvc   *BindingService
}

// NewCalculatorService 创建运费计算服务
func NewCalculatorService(
	templateRepo repository.ShippingTemplateRepository,
	ruleRepo repository.ShippingTemplateRuleRepository,
	bindingSvc *BindingService,
) *CalculatorService {
	return &CalculatorService{
		templateRepo: templateRepo,
		ruleRepo:     ruleRepo,
		bindingSvc:   bindingSvc,
	}
}

// Calculate 计算单笔运费
// 公式: weight <= first_weight 时收 first_price，
// 否则 first_price + ceil((weight-first_weight)/additional_unit) * additional_price
func (s *CalculatorService) Calculate(ctx context.Context, templateID int64, toRegion string, weight float64) (*dto.CalculateResp, error) {
	if weight <= 0 {
		return nil, ErrInvalidWeight
	}

	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, wrapNotFound(err, ErrTemplateNotFound)
	}

	rules, err := s.ruleRepo.GetByTemplateAndRegion(ctx, templateID, toRegion)
	if err != nil {
		return nil, err
	}

	rule, err := FindApplicableRule(rules, toRegion, weight)
	if err != nil {
		return nil, err
	}

	fee, err := ComputeFee(rule, weight)
	if err != nil {
		return nil, err
	}

	return &dto.CalculateResp{
		TemplateID:    templateID,
		TemplateName:  template.Name,
		ToRegion:      toRegion,
		Weight:        weight,
		ShippingFee:   fee,
		Currency:      rule.Currency,
		EstimatedDays: rule.EstimatedDays,
	}, nil
}

// CalculateBatch 批量计算运费
// 每一项独立求值，单项失败不影响其他项；结果与输入一一对应、顺序一致，
// 失败项保留在原位置并标记错误信息
func (s *CalculatorService) CalculateBatch(ctx context.Context, items []dto.CalculateReq) []dto.BatchCalculateItemResp {
	results := make([]dto.BatchCalculateItemResp, 0, len(items))
	for _, item := range items {
		result, err := s.Calculate(ctx, item.TemplateID, item.ToRegion, item.Weight)
		if err != nil {
			results = append(results, dto.BatchCalculateItemResp{
				CalculateResp: dto.CalculateResp{
					TemplateID: item.TemplateID,
					ToRegion:   item.ToRegion,
					Weight:     item.Weight,
				},
				Success: false,
				Error:   err.Error(),
			})
			continue
		}
		results = append(results, dto.BatchCalculateItemResp{
			CalculateResp: *result,
			Success:       true,
		})
	}
	return results
}

// ==================== 订单运费估算 ====================

// EstimateInput 运费估算输入（供订单模块调用）
type EstimateInput struct {
	PlatformProductID int64   // 平台产品ID
	ProductID         int64   // 本地产品ID
	Weight            float64 // 单件重量(kg)
	Quantity          int     // 数量
	ToRegion          string  // 收货区域/国家
}

// EstimateResult 运费估算结果
type EstimateResult struct {
	TemplateID       int64   // 使用的模板ID
	TemplateName     string  // 模板名称
	ShippingFee      float64 // 单件运费
	TotalShippingFee float64 // 总运费
	Currency         string  // 货币
	EstimatedDays    int     // 预估时效
	Source           string  // 来源: platform_product/product/none
}

// EstimateForItem 估算单个订单商品的运费
// 优先使用平台产品的默认模板，其次本地产品的默认模板，都没有时返回 none
func (s *CalculatorService) EstimateForItem(ctx context.Context, input *EstimateInput) (*EstimateResult, error) {
	var templateID int64
	var source string

	if input.PlatformProductID > 0 {
		binding, err := s.bindingSvc.GetPlatformProductDefaultBinding(ctx, input.PlatformProductID)
		if err != nil {
			return nil, err
		}
		if binding != nil {
			templateID = binding.ShippingTemplateID
			source = EstimateSourcePlatformProduct
		}
	}

	if templateID == 0 && input.ProductID > 0 {
		binding, err := s.bindingSvc.GetProductDefaultBinding(ctx, input.ProductID)
		if err != nil {
			return nil, err
		}
		if binding != nil {
			templateID = binding.ShippingTemplateID
			source = EstimateSourceProduct
		}
	}

	if templateID == 0 {
		return &EstimateResult{Source: EstimateSourceNone}, nil
	}

	result, err := s.Calculate(ctx, templateID, input.ToRegion, input.Weight)
	if err != nil {
		// 解析出的模板对该区域无规则等属于预期内的无答案，不视为估算失败
		return &EstimateResult{
			TemplateID: templateID,
			Source:     source,
		}, nil
	}

	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}

	return &EstimateResult{
		TemplateID:       templateID,
		TemplateName:     result.TemplateName,
		ShippingFee:      result.ShippingFee,
		TotalShippingFee: roundFee(result.ShippingFee * float64(quantity)),
		Currency:         result.Currency,
		EstimatedDays:    result.EstimatedDays,
		Source:           source,
	}, nil
}
