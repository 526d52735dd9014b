package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"orderstack/internal/config"
	"orderstack/internal/controller"
	"orderstack/internal/model"
	"orderstack/internal/repository"
	"orderstack/internal/router"
	"orderstack/internal/service"
	"orderstack/internal/task"
	"orderstack/pkg/database"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	gin.SetMode(cfg.Server.Mode)

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(db)

	// 4. 启动定时任务
	taskManager := initTasks(cfg, deps)
	defer taskManager.Stop()

	// 5. 初始化路由并启动服务
	r := router.SetupRouter(deps.Controllers)
	startServer(cfg, r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
}

// Repositories 仓储集合
type Repositories struct {
	Template        repository.ShippingTemplateRepository
	Rule            repository.ShippingTemplateRuleRepository
	ProductBinding  repository.ProductShippingTemplateRepository
	PlatformBinding repository.PlatformProductShippingTemplateRepository
	TxManager       repository.TxManager
}

// Services 服务集合
type Services struct {
	Template   *service.ShippingTemplateService
	Binding    *service.BindingService
	Calculator *service.CalculatorService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	db, err := database.InitDB(
		cfg.Database.Driver,
		cfg.Database.DSN,
		// Shipping
		&model.ShippingTemplate{}, &model.ShippingTemplateRule{},
		// Binding
		&model.ProductShippingTemplate{}, &model.PlatformProductShippingTemplate{},
	)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	return db
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Template:        repository.NewShippingTemplateRepository(db),
		Rule:            repository.NewShippingTemplateRuleRepository(db),
		ProductBinding:  repository.NewProductShippingTemplateRepository(db),
		PlatformBinding: repository.NewPlatformProductShippingTemplateRepository(db),
		TxManager:       repository.NewTxManager(db),
	}

	// -------- 业务服务 --------
	bindingSvc := service.NewBindingService(repos.Template, repos.ProductBinding, repos.PlatformBinding, repos.TxManager)
	services := &Services{
		Template:   service.NewShippingTemplateService(repos.Template, repos.Rule, repos.ProductBinding, repos.PlatformBinding, repos.TxManager),
		Binding:    bindingSvc,
		Calculator: service.NewCalculatorService(repos.Template, repos.Rule, bindingSvc),
	}

	// -------- 控制器 --------
	controllers := &router.Controllers{
		ShippingTemplate: controller.NewShippingTemplateController(services.Template, services.Calculator),
		Binding:          controller.NewBindingController(services.Binding),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initTasks 启动定时任务
func initTasks(cfg *config.Config, deps *Dependencies) *task.TaskManager {
	reconcileTask := task.NewReconcileTask(deps.Repos.Template, deps.Repos.ProductBinding, deps.Repos.PlatformBinding)
	manager := task.NewTaskManager(reconcileTask)
	if err := manager.Start(&task.TaskManagerConfig{
		ReconcileEnabled: cfg.Task.ReconcileEnabled,
		ReconcileSpec:    cfg.Task.ReconcileSpec,
	}); err != nil {
		log.Fatalf("启动定时任务失败: %v", err)
	}
	return manager
}

// startServer 启动 HTTP 服务并处理优雅关停
func startServer(cfg *config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("[Server] 服务启动于 :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[Server] 收到退出信号，开始关停...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务关停失败: %v", err)
	}
	log.Println("[Server] 服务已退出")
}
