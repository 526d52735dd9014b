package task

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// TaskManager 定时任务管理器
// 目前只承载运费数据对账；新任务在 Start 中追加注册
type TaskManager struct {
	reconcileTask *ReconcileTask
	scheduler     *cron.Cron
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	ReconcileEnabled bool
	ReconcileSpec    string // cron 表达式（带秒），如 "0 30 3 * * *"
}

// NewTaskManager 创建任务管理器
func NewTaskManager(reconcileTask *ReconcileTask) *TaskManager {
	return &TaskManager{
		reconcileTask: reconcileTask,
		scheduler:     cron.New(cron.WithSeconds()),
	}
}

// Start 注册并启动定时任务
func (m *TaskManager) Start(cfg *TaskManagerConfig) error {
	if cfg.ReconcileEnabled {
		spec := cfg.ReconcileSpec
		if spec == "" {
			spec = "0 30 3 * * *" // 每天凌晨 3:30
		}
		if _, err := m.scheduler.AddFunc(spec, func() {
			m.reconcileTask.Run(context.Background())
		}); err != nil {
			return err
		}
		log.Printf("[Scheduler] 运费数据对账任务已注册: %s", spec)
	}

	m.scheduler.Start()
	log.Println("[Scheduler] 定时任务调度器已启动")
	return nil
}

// Stop 停止调度器，等待运行中的任务结束
func (m *TaskManager) Stop() {
	ctx := m.scheduler.Stop()
	<-ctx.Done()
	log.Println("[Scheduler] 定时任务调度器已停止")
}
