package repository

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orderstack/internal/model"
)

// ==================== 测试辅助 ====================

func setupRepoTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(
		&model.ShippingTemplate{}, &model.ShippingTemplateRule{},
		&model.ProductShippingTemplate{}, &model.PlatformProductShippingTemplate{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func createTestTemplate(t *testing.T, db *gorm.DB, name string) *model.ShippingTemplate {
	template := &model.ShippingTemplate{Name: name, Status: model.TemplateStatusActive}
	if err := db.Create(template).Error; err != nil {
		t.Fatalf("创建模板失败: %v", err)
	}
	return template
}

// ==================== 绑定排序 ====================

func TestProductBindingRepo_ResolveOrder(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewProductShippingTemplateRepository(db)
	ctx := context.Background()

	t1 := createTestTemplate(t, db, "模板1")
	t2 := createTestTemplate(t, db, "模板2")
	t3 := createTestTemplate(t, db, "模板3")
	t4 := createTestTemplate(t, db, "模板4")

	// 创建顺序: t1(sort 5), t2(sort 1), t3(sort 1), t4(sort 9, default)
	bindings := []*model.ProductShippingTemplate{
		{ProductID: 100, ShippingTemplateID: t1.ID, SortOrder: 5},
		{ProductID: 100, ShippingTemplateID: t2.ID, SortOrder: 1},
		{ProductID: 100, ShippingTemplateID: t3.ID, SortOrder: 1},
		{ProductID: 100, ShippingTemplateID: t4.ID, SortOrder: 9, IsDefault: true},
	}
	for _, b := range bindings {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("创建绑定失败: %v", err)
		}
	}

	got, err := repo.GetByProductID(ctx, 100)
	if err != nil {
		t.Fatalf("查询绑定失败: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("绑定数量 = %d, want 4", len(got))
	}

	// 默认优先 -> sort_order 升序 -> 创建先后
	want := []int64{t4.ID, t2.ID, t3.ID, t1.ID}
	for i, b := range got {
		if b.ShippingTemplateID != want[i] {
			t.Errorf("got[%d].ShippingTemplateID = %d, want %d", i, b.ShippingTemplateID, want[i])
		}
	}
}

// ==================== 默认切换 ====================

func TestProductBindingRepo_SetDefault(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewProductShippingTemplateRepository(db)
	ctx := context.Background()

	t1 := createTestTemplate(t, db, "模板1")
	t2 := createTestTemplate(t, db, "模板2")
	repo.Create(ctx, &model.ProductShippingTemplate{ProductID: 100, ShippingTemplateID: t1.ID, IsDefault: true})
	repo.Create(ctx, &model.ProductShippingTemplate{ProductID: 100, ShippingTemplateID: t2.ID})
	// 另一个产品的默认不受影响
	repo.Create(ctx, &model.ProductShippingTemplate{ProductID: 200, ShippingTemplateID: t1.ID, IsDefault: true})

	if err := repo.SetDefault(ctx, 100, t2.ID); err != nil {
		t.Fatalf("切换默认失败: %v", err)
	}

	var count int64
	db.Model(&model.ProductShippingTemplate{}).
		Where("product_id = ? AND is_default = ?", 100, true).
		Count(&count)
	if count != 1 {
		t.Errorf("产品100默认数量 = %d, want 1", count)
	}

	got, _ := repo.GetDefaultByProductID(ctx, 100)
	if got == nil || got.ShippingTemplateID != t2.ID {
		t.Errorf("默认绑定 = %v, want 模板 %d", got, t2.ID)
	}

	other, _ := repo.GetDefaultByProductID(ctx, 200)
	if other == nil || other.ShippingTemplateID != t1.ID {
		t.Errorf("产品200默认 = %v, 不应被影响", other)
	}

	// 未绑定的模板返回 not found
	if err := repo.SetDefault(ctx, 100, 9999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestProductBindingRepo_Exists(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewProductShippingTemplateRepository(db)
	ctx := context.Background()

	template := createTestTemplate(t, db, "模板")
	repo.Create(ctx, &model.ProductShippingTemplate{ProductID: 100, ShippingTemplateID: template.ID})

	exists, err := repo.Exists(ctx, 100, template.ID)
	if err != nil || !exists {
		t.Errorf("exists = %v, err = %v, want true", exists, err)
	}

	exists, _ = repo.Exists(ctx, 100, 9999)
	if exists {
		t.Error("不存在的绑定 exists 应为 false")
	}
}

// ==================== 孤儿清理 ====================

func TestBindingRepo_DeleteOrphans(t *testing.T) {
	db := setupRepoTestDB(t)
	productRepo := NewProductShippingTemplateRepository(db)
	platformRepo := NewPlatformProductShippingTemplateRepository(db)
	ctx := context.Background()

	alive := createTestTemplate(t, db, "存活模板")
	dead := createTestTemplate(t, db, "待删模板")

	productRepo.Create(ctx, &model.ProductShippingTemplate{ProductID: 100, ShippingTemplateID: alive.ID})
	productRepo.Create(ctx, &model.ProductShippingTemplate{ProductID: 100, ShippingTemplateID: dead.ID})
	platformRepo.Create(ctx, &model.PlatformProductShippingTemplate{PlatformProductID: 200, ShippingTemplateID: dead.ID})

	// 模板被（软）删除后，其绑定成为孤儿
	db.Delete(&model.ShippingTemplate{}, dead.ID)

	n, err := productRepo.DeleteOrphans(ctx)
	if err != nil {
		t.Fatalf("清理孤儿绑定失败: %v", err)
	}
	if n != 1 {
		t.Errorf("清理数量 = %d, want 1", n)
	}

	n, err = platformRepo.DeleteOrphans(ctx)
	if err != nil {
		t.Fatalf("清理平台孤儿绑定失败: %v", err)
	}
	if n != 1 {
		t.Errorf("平台清理数量 = %d, want 1", n)
	}

	// 存活模板的绑定不受影响
	remaining, _ := productRepo.GetByProductID(ctx, 100)
	if len(remaining) != 1 || remaining[0].ShippingTemplateID != alive.ID {
		t.Errorf("remaining = %+v, want 仅存活模板的绑定", remaining)
	}
}

// ==================== 事务管理 ====================

func TestTxManager_RollbackOnError(t *testing.T) {
	db := setupRepoTestDB(t)
	templateRepo := NewShippingTemplateRepository(db)
	txManager := NewTxManager(db)
	ctx := context.Background()

	wantErr := errors.New("业务失败")
	err := txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := templateRepo.Create(ctx, &model.ShippingTemplate{Name: "事务中", Status: model.TemplateStatusActive}); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want 业务失败", err)
	}

	var count int64
	db.Model(&model.ShippingTemplate{}).Count(&count)
	if count != 0 {
		t.Errorf("回滚后模板数量 = %d, want 0", count)
	}
}

func TestTxManager_NestedReusesTx(t *testing.T) {
	db := setupRepoTestDB(t)
	templateRepo := NewShippingTemplateRepository(db)
	txManager := NewTxManager(db)
	ctx := context.Background()

	// 嵌套调用复用外层事务，外层失败时内层写入一并回滚
	wantErr := errors.New("外层失败")
	err := txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return txManager.WithTransaction(ctx, func(ctx context.Context) error {
			if err := templateRepo.Create(ctx, &model.ShippingTemplate{Name: "内层", Status: model.TemplateStatusActive}); err != nil {
				return err
			}
			if !HasTx(ctx) {
				t.Error("嵌套调用中应持有事务")
			}
			return wantErr
		})
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want 外层失败", err)
	}

	var count int64
	db.Model(&model.ShippingTemplate{}).Count(&count)
	if count != 0 {
		t.Errorf("回滚后模板数量 = %d, want 0", count)
	}
}
