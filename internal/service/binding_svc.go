package service

import (
	"context"

	"orderstack/internal/api/dto"
	"orderstack/internal/model"
	"orderstack/internal/repository"
)

// BindingService 产品与运费模板的绑定服务
// 默认模板的切换在事务内完成：清除旧默认与设置新默认不可分割，
// 任何时刻一个产品最多只有一条默认绑定
type BindingService struct {
	templateRepo        repository.ShippingTemplateRepository
	productBindingRepo  repository.ProductShippingTemplateRepository
	platformBindingRepo repository.PlatformProductShippingTemplateRepository
	txManager           repository.TxManager
}

// NewBindingService 创建绑定服务
func NewBindingService(
	templateRepo repository.ShippingTemplateRepository,
	productBindingRepo repository.ProductShippingTemplateRepository,
	platformBindingRepo repository.PlatformProductShippingTemplateRepository,
	txManager repository.TxManager,
) *BindingService {
	return &BindingService{
		templateRepo:        templateRepo,
		productBindingRepo:  productBindingRepo,
		platformBindingRepo: platformBindingRepo,
		txManager:           txManager,
	}
}

// ==================== 本地产品绑定 ====================

// BindProduct 绑定本地产品运费模板
// 同一 (产品, 模板) 只允许一条绑定；is_default 为 true 时在同一事务内完成默认切换
func (s *BindingService) BindProduct(ctx context.Context, req *dto.ProductBindingCreateReq) (*model.ProductShippingTemplate, error) {
	if _, err := s.templateRepo.GetByID(ctx, req.ShippingTemplateID); err != nil {
		return nil, wrapNotFound(err, ErrTemplateNotFound)
	}

	exists, err := s.productBindingRepo.Exists(ctx, req.ProductID, req.ShippingTemplateID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateBinding
	}

	binding := &model.ProductShippingTemplate{
		ProductID:          req.ProductID,
		ShippingTemplateID: req.ShippingTemplateID,
		IsDefault:          false,
		SortOrder:          req.SortOrder,
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.productBindingRepo.Create(ctx, binding); err != nil {
			return err
		}
		if req.IsDefault {
			if err := s.productBindingRepo.SetDefault(ctx, req.ProductID, req.ShippingTemplateID); err != nil {
				return err
			}
			binding.IsDefault = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return binding, nil
}

// UnbindProduct 解绑本地产品运费模板
func (s *BindingService) UnbindProduct(ctx context.Context, id int64) error {
	if _, err := s.productBindingRepo.GetByID(ctx, id); err != nil {
		return wrapNotFound(err, ErrBindingNotFound)
	}
	return s.productBindingRepo.Delete(ctx, id)
}

// GetProductBindings 获取本地产品的绑定列表（解析顺序排序）
func (s *BindingService) GetProductBindings(ctx context.Context, productID int64) ([]model.ProductShippingTemplate, error) {
	return s.productBindingRepo.GetByProductID(ctx, productID)
}

// GetProductDefaultBinding 获取本地产品的默认绑定，未设置返回 nil
func (s *BindingService) GetProductDefaultBinding(ctx context.Context, productID int64) (*model.ProductShippingTemplate, error) {
	return s.productBindingRepo.GetDefaultByProductID(ctx, productID)
}

// SetProductDefault 设置本地产品的默认运费模板
func (s *BindingService) SetProductDefault(ctx context.Context, productID, templateID int64) error {
	return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		err := s.productBindingRepo.SetDefault(ctx, productID, templateID)
		return wrapNotFound(err, ErrBindingNotFound)
	})
}

// ResolveProductTemplate 解析本地产品应使用的运费模板
// 默认绑定优先，其次 sort_order 最小，再按创建先后；无绑定返回 ErrNoTemplateBound。
// 解析不考虑区域——区域是否可达由费用计算阶段的规则匹配决定，不做跨模板回退
func (s *BindingService) ResolveProductTemplate(ctx context.Context, productID int64) (int64, error) {
	bindings, err := s.productBindingRepo.GetByProductID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if len(bindings) == 0 {
		return 0, ErrNoTemplateBound
	}
	return bindings[0].ShippingTemplateID, nil
}

// ==================== 平台产品绑定 ====================

// BindPlatformProduct 绑定平台产品运费模板
func (s *BindingService) BindPlatformProduct(ctx context.Context, req *dto.PlatformProductBindingCreateReq) (*model.PlatformProductShippingTemplate, error) {
	if _, err := s.templateRepo.GetByID(ctx, req.ShippingTemplateID); err != nil {
		return nil, wrapNotFound(err, ErrTemplateNotFound)
	}

	exists, err := s.platformBindingRepo.Exists(ctx, req.PlatformProductID, req.ShippingTemplateID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateBinding
	}

	binding := &model.PlatformProductShippingTemplate{
		PlatformProductID:  req.PlatformProductID,
		ShippingTemplateID: req.ShippingTemplateID,
		IsDefault:          false,
		SortOrder:          req.SortOrder,
	}

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.platformBindingRepo.Create(ctx, binding); err != nil {
			return err
		}
		if req.IsDefault {
			if err := s.platformBindingRepo.SetDefault(ctx, req.PlatformProductID, req.ShippingTemplateID); err != nil {
				return err
			}
			binding.IsDefault = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return binding, nil
}

// UnbindPlatformProduct 解绑平台产品运费模板
func (s *BindingService) UnbindPlatformProduct(ctx context.Context, id int64) error {
	if _, err := s.platformBindingRepo.GetByID(ctx, id); err != nil {
		return wrapNotFound(err, ErrBindingNotFound)
	}
	return s.platformBindingRepo.Delete(ctx, id)
}

// GetPlatformProductBindings 获取平台产品的绑定列表
func (s *BindingService) GetPlatformProductBindings(ctx context.Context, platformProductID int64) ([]model.PlatformProductShippingTemplate, error) {
	return s.platformBindingRepo.GetByPlatformProductID(ctx, platformProductID)
}

// GetPlatformProductDefaultBinding 获取平台产品的默认绑定，未设置返回 nil
func (s *BindingService) GetPlatformProductDefaultBinding(ctx context.Context, platformProductID int64) (*model.PlatformProductShippingTemplate, error) {
	return s.platformBindingRepo.GetDefaultByPlatformProductID(ctx, platformProductID)
}

// SetPlatformProductDefault 设置平台产品的默认运费模板
func (s *BindingService) SetPlatformProductDefault(ctx context.Context, platformProductID, templateID int64) error {
	return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		err := s.platformBindingRepo.SetDefault(ctx, platformProductID, templateID)
		return wrapNotFound(err, ErrBindingNotFound)
	})
}

// ResolvePlatformProductTemplate 解析平台产品应使用的运费模板
func (s *BindingService) ResolvePlatformProductTemplate(ctx context.Context, platformProductID int64) (int64, error) {
	bindings, err := s.platformBindingRepo.GetByPlatformProductID(ctx, platformProductID)
	if err != nil {
		return 0, err
	}
	if len(bindings) == 0 {
		return 0, ErrNoTemplateBound
	}
	return bindings[0].ShippingTemplateID, nil
}

// ==================== 辅助转换 ====================

// ConvertProductBindingToResp 转换本地产品绑定为响应 DTO
func ConvertProductBindingToResp(binding *model.ProductShippingTemplate) dto.ProductBindingResp {
	resp := dto.ProductBindingResp{
		ID:                 binding.ID,
		ProductID:          binding.ProductID,
		ShippingTemplateID: binding.ShippingTemplateID,
		IsDefault:          binding.IsDefault,
		SortOrder:          binding.SortOrder,
		CreatedAt:          binding.CreatedAt.Format(timeLayout),
	}
	if binding.ShippingTemplate != nil {
		resp.TemplateName = binding.ShippingTemplate.Name
		resp.Carrier = binding.ShippingTemplate.Carrier
	}
	return resp
}

// ConvertPlatformProductBindingToResp 转换平台产品绑定为响应 DTO
func ConvertPlatformProductBindingToResp(binding *model.PlatformProductShippingTemplate) dto.PlatformProductBindingResp {
	resp := dto.PlatformProductBindingResp{
		ID:                 binding.ID,
		PlatformProductID:  binding.PlatformProductID,
		ShippingTemplateID: binding.ShippingTemplateID,
		IsDefault:          binding.IsDefault,
		SortOrder:          binding.SortOrder,
		CreatedAt:          binding.CreatedAt.Format(timeLayout),
	}
	if binding.ShippingTemplate != nil {
		resp.TemplateName = binding.ShippingTemplate.Name
		resp.Carrier = binding.ShippingTemplate.Carrier
	}
	return resp
}
