package task

import (
	"context"
	"log"

	"orderstack/internal/repository"
)

// ReconcileTask 运费数据对账任务
// 清理指向已删除模板的孤儿绑定，并对启用状态但没有任何规则的模板告警，
// 避免绑定解析到无法计费的模板而没有任何信号
type ReconcileTask struct {
	templateRepo        repository.ShippingTemplateRepository
	productBindingRepo  repository.ProductShippingTemplateRepository
	platformBindingRepo repository.PlatformProductShippingTemplateRepository
}

// NewReconcileTask 创建对账任务
func NewReconcileTask(
	templateRepo repository.ShippingTemplateRepository,
	productBindingRepo repository.ProductShippingTemplateRepository,
	platformBindingRepo repository.PlatformProductShippingTemplateRepository,
) *ReconcileTask {
	return &ReconcileTask{
		templateRepo:        templateRepo,
		productBindingRepo:  productBindingRepo,
		platformBindingRepo: platformBindingRepo,
	}
}

// Run 执行一次对账
func (t *ReconcileTask) Run(ctx context.Context) {
	if n, err := t.productBindingRepo.DeleteOrphans(ctx); err != nil {
		log.Printf("[Reconcile] 清理产品孤儿绑定失败: %v", err)
	} else if n > 0 {
		log.Printf("[Reconcile] 已清理 %d 条产品孤儿绑定", n)
	}

	if n, err := t.platformBindingRepo.DeleteOrphans(ctx); err != nil {
		log.Printf("[Reconcile] 清理平台产品孤儿绑定失败: %v", err)
	} else if n > 0 {
		log.Printf("[Reconcile] 已清理 %d 条平台产品孤儿绑定", n)
	}

	templates, err := t.templateRepo.ListActiveWithoutRules(ctx)
	if err != nil {
		log.Printf("[Reconcile] 查询无规则模板失败: %v", err)
		return
	}
	for _, template := range templates {
		log.Printf("[Reconcile] 警告: 模板 #%d (%s) 处于启用状态但没有任何规则", template.ID, template.Name)
	}
}
