package service

import (
	"context"
	"errors"
	"testing"

	"orderstack/internal/api/dto"
)

// ==================== 本地产品绑定 ====================

func TestBindingService_BindProduct(t *testing.T) {
	svcs := newTestSvcs(t)
	ctx := context.Background()

	template := mustCreateTemplate(t, svcs, "美线")

	binding, err := svcs.binding.BindProduct(ctx, &dto.ProductBindingCreateReq{
		ProductID:          100,
		ShippingTemplateID: template.ID,
		IsDefault:          true,
	})
	if err != nil {
		t.Fatalf("绑定失败: %v", err)
	}
	if !binding.IsDefault {
		t.Error("绑定应为默认")
	}

	// 同一 (产品, 模板) 重复绑定拒绝
	_, err = svcs.binding.BindProduct(ctx, &dto.ProductBindingCreateReq{
		ProductID:          100,
		ShippingTemplateID: template.ID,
	})
	if !errors.Is(err, ErrDuplicateBinding) {
		t.Errorf("err = %v, want ErrDuplicateBinding", err)
	}

	// 绑定不存在的模板拒绝
	_, err = svcs.binding.BindProduct(ctx, &dto.ProductBindingCreateReq{
		ProductID:          100,
		ShippingTemplateID: 9999,
	})
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("err = %v, want ErrTemplateNotFound", err)
	}
}

func TestBindingService_SetDefaultKeepsSingleDefault(t *testing.T) {
	svcs := newTestSvcs(t)
	ctx := context.Background()

	t1 := mustCreateTemplate(t, svcs, "模板1")
	t2 := mustCreateTemplate(t, svcs, "模板2")
	t3 := mustCreateTemplate(t, svcs, "模板3")

	for _, id := range []int64{t1.ID, t2.ID, t3.ID} {
		if _, err := svcs.binding.BindProduct(ctx, &dto.ProductBindingCreateReq{
			ProductID: 100, ShippingTemplateID: id,
		}); err != nil {
			t.Fatalf("绑定模板 %d 失败: %v", id, err)
		}
	}

	countDefaults := func() int {
		bindings, err := svcs.binding.GetProductBindings(ctx, 100)
		if err != nil {
			t.Fatalf("获取绑定失败: %v", err)
		}
		n := 0
		for _, b := range bindings {
			if b.IsDefault {
				n++
			}
		}
		return n
	}

	if n := countDefaults(); n != 0 {
		t.Fatalf("初始默认数量 = %d, want 0", n)
	}

	// 连续切换默认，任何时刻最多一条
	for _, id := range []int64{t1.ID, t2.ID, t3.ID, t1.ID} {
		if err := svcs.binding.SetProductDefault(ctx, 100, id); err != nil {
			t.Fatalf("设置默认 %d 失败: %v", id, err)
		}
		if n := countDefaults(); n != 1 {
			t.Fatalf("切换到 %d 后默认数量 = %d, want 1", id, n)
		}
		defaultBinding, err := svcs.binding.GetProductDefaultBinding(ctx, 100)
		if err != nil {
			t.Fatalf("获取默认绑定失败: %v", err)
		}
		if defaultBinding == nil || defaultBinding.ShippingTemplateID != id {
			t.Fatalf("默认绑定 = %v, want 模板 %d", defaultBinding, id)
		}
	}

	// 设置未绑定的模板为默认时报错，且不清掉已有默认
	if err := svcs.binding.SetProductDefault(ctx, 100, 9999); !errors.Is(err, ErrBindingNotFound) {
		t.Errorf("err = %v, want ErrBindingNotFound", err)
	}
	if n := countDefaults(); n != 1 {
		t.Errorf("失败的切换后默认数量 = %d, want 1", n)
	}
}

func TestBindingService_ResolveOrder(t *testing.T) {
	svcs := newTestSvcs(t)
	ctx := context.Background()

	t1 := mustCreateTemplate(t, svcs, "模板1")
	t2 := mustCreateTemplate(t, svcs, "模板2")
	t3 := mustCreateTemplate(t, svcs, "模板3")

	// sort_order: t1=5, t2=1, t3=1（t2 先创建）
	svcs.binding.BindProduct(ctx, &dto.ProductBindingCreateReq{ProductID: 100, ShippingTemplateID: t1.ID, SortOrder: 5})
	svcs.binding.BindProduct(ctx, &dto.ProductBindingCreateReq{ProductID: 100, ShippingTemplateID: t2.ID, SortOrder: 1})
	svcs.binding.BindProduct(ctx, &dto.ProductBindingCreateReq{ProductID: 100, ShippingTemplateID: t3.ID, SortOrder: 1})

	// 无默认时取 sort_order 最小，并列取先创建的
	id, err := svcs.binding.ResolveProductTemplate(ctx, 100)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if id != t2.ID {
		t.Errorf("解析结果 = %d, want %d", id, t2.ID)
	}

	// 默认绑定优先于 sort_order
	if err := svcs.binding.SetProductDefault(ctx, 100, t1.ID); err != nil {
		t.Fatalf("设置默认失败: %v", err)
	}
	id, _ = svcs.binding.ResolveProductTemplate(ctx, 100)
	if id != t1.ID {
		t.Errorf("解析结果 = %d, want 默认模板 %d", id, t1.ID)
	}

	// 无任何绑定
	_, err = svcs.binding.ResolveProductTemplate(ctx, 999)
	if !errors.Is(err, ErrNoTemplateBound) {
		t.Errorf("err = %v, want ErrNoTemplateBound", err)
	}
}

func TestBindingService_Unbind(t *testing.T) {
	svcs := newTestSvcs(t)
	ctx := context.Background()

	template := mustCreateTemplate(t, svcs, "美线")
	binding, err := svcs.binding.BindProduct(ctx, &dto.ProductBindingCreateReq{
		ProductID: 100, ShippingTemplateID: template.ID,
	})
	if err != nil {
		t.Fatalf("绑定失败: %v", err)
	}

	if err := svcs.binding.UnbindProduct(ctx, binding.ID); err != nil {
		t.Fatalf("解绑失败: %v", err)
	}

	bindings, _ := svcs.binding.GetProductBindings(ctx, 100)
	if len(bindings) != 0 {
		t.Errorf("解绑后残留 %d 条", len(bindings))
	}

	if err := svcs.binding.UnbindProduct(ctx, binding.ID); !errors.Is(err, ErrBindingNotFound) {
		t.Errorf("重复解绑 err = %v, want ErrBindingNotFound", err)
	}
}

// ==================== 平台产品绑定 ====================

func TestBindingService_PlatformProduct(t *testing.T) {
	svcs := newTestSvcs(t)
	ctx := context.Background()

	t1 := mustCreateTemplate(t, svcs, "模板1")
	t2 := mustCreateTemplate(t, svcs, "模板2")

	// 平台产品与本地产品的绑定互不影响
	if _, err := svcs.binding.BindProduct(ctx, &dto.ProductBindingCreateReq{
		ProductID: 100, ShippingTemplateID: t1.ID, IsDefault: true,
	}); err != nil {
		t.Fatalf("绑定本地产品失败: %v", err)
	}

	binding, err := svcs.binding.BindPlatformProduct(ctx, &dto.PlatformProductBindingCreateReq{
		PlatformProductID: 100, ShippingTemplateID: t2.ID, IsDefault: true,
	})
	if err != nil {
		t.Fatalf("绑定平台产品失败: %v", err)
	}
	if !binding.IsDefault {
		t.Error("平台绑定应为默认")
	}

	_, err = svcs.binding.BindPlatformProduct(ctx, &dto.PlatformProductBindingCreateReq{
		PlatformProductID: 100, ShippingTemplateID: t2.ID,
	})
	if !errors.Is(err, ErrDuplicateBinding) {
		t.Errorf("err = %v, want ErrDuplicateBinding", err)
	}

	id, err := svcs.binding.ResolvePlatformProductTemplate(ctx, 100)
	if err != nil {
		t.Fatalf("解析平台产品失败: %v", err)
	}
	if id != t2.ID {
		t.Errorf("平台解析结果 = %d, want %d", id, t2.ID)
	}

	// 本地产品的默认不受平台绑定影响
	localDefault, _ := svcs.binding.GetProductDefaultBinding(ctx, 100)
	if localDefault == nil || localDefault.ShippingTemplateID != t1.ID {
		t.Errorf("本地默认 = %v, want 模板 %d", localDefault, t1.ID)
	}
}

func TestBindingService_BindingsPreloadTemplate(t *testing.T) {
	svcs := newTestSvcs(t)
	ctx := context.Background()

	template := mustCreateTemplate(t, svcs, "美线")
	svcs.binding.BindProduct(ctx, &dto.ProductBindingCreateReq{
		ProductID: 100, ShippingTemplateID: template.ID,
	})

	bindings, err := svcs.binding.GetProductBindings(ctx, 100)
	if err != nil {
		t.Fatalf("获取绑定失败: %v", err)
	}
	if len(bindings) != 1 {
		t.Fatalf("绑定数量 = %d, want 1", len(bindings))
	}
	if bindings[0].ShippingTemplate == nil || bindings[0].ShippingTemplate.Name != "美线" {
		t.Error("绑定应预加载模板信息")
	}

	resp := ConvertProductBindingToResp(&bindings[0])
	if resp.TemplateName != "美线" {
		t.Errorf("resp.TemplateName = %s, want 美线", resp.TemplateName)
	}
}
