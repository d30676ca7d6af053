package extract

import (
	"context"
	"sync"
	"time"

	"github.com/RecoveryAshes/GmgnXtract/internal/utils"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// MonitorConfig 资源监控器配置
type MonitorConfig struct {
	SafetyThresholdMB int           // 可用内存低于该值(MB)进入降级状态
	CPULoadThreshold  int           // CPU负载阈值(%), >=200视为禁用检查
	SampleInterval    time.Duration // 采样间隔
}

// ResourceMonitor 系统资源监控器
// 长等待期间周期性采样内存与CPU; 资源紧张只做软降级
// (跳过非必要工作、提前结束内容等待), 从不中断运行
type ResourceMonitor struct {
	config MonitorConfig

	mu              sync.RWMutex
	lastAvailableMB int64
	lastCPUUsage    float64
	degraded        bool

	cancelFunc context.CancelFunc
	isRunning  bool
}

// NewResourceMonitor 创建资源监控器
func NewResourceMonitor(config MonitorConfig) *ResourceMonitor {
	if config.SampleInterval <= 0 {
		config.SampleInterval = time.Second
	}

	vmStat, err := mem.VirtualMemory()
	if err != nil {
		utils.Warnf("获取系统内存失败: %v", err)
	} else {
		utils.Debugf("系统总内存: %.2f GB", float64(vmStat.Total)/(1024*1024*1024))
	}

	return &ResourceMonitor{config: config}
}

// Start 启动后台采样 (幂等)
func (rm *ResourceMonitor) Start() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.isRunning {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	rm.cancelFunc = cancel
	rm.isRunning = true

	go rm.sampleLoop(ctx)
}

// Stop 停止后台采样
func (rm *ResourceMonitor) Stop() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.isRunning && rm.cancelFunc != nil {
		rm.cancelFunc()
		rm.isRunning = false
		rm.cancelFunc = nil
	}
}

// sampleLoop 后台采样循环
func (rm *ResourceMonitor) sampleLoop(ctx context.Context) {
	ticker := time.NewTicker(rm.config.SampleInterval)
	defer ticker.Stop()

	rm.Sample()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rm.Sample()
		}
	}
}

// Sample 采样一次内存与CPU并更新降级状态
func (rm *ResourceMonitor) Sample() {
	var availableMB int64 = -1
	if vmStat, err := mem.VirtualMemory(); err != nil {
		utils.Debugf("内存采样失败: %v", err)
	} else {
		availableMB = int64(vmStat.Available / (1024 * 1024))
	}

	cpuUsage := 0.0
	// 100ms采样窗口, 避免阻塞太久
	if percentages, err := cpu.Percent(100*time.Millisecond, false); err != nil {
		utils.Debugf("CPU采样失败: %v", err)
	} else if len(percentages) > 0 {
		cpuUsage = percentages[0]
	}

	degraded := false
	if rm.config.SafetyThresholdMB > 0 && availableMB >= 0 &&
		availableMB < int64(rm.config.SafetyThresholdMB) {
		utils.Warnf("⚠️ 可用内存不足(当前%dMB, 阈值%dMB), 进入降级状态",
			availableMB, rm.config.SafetyThresholdMB)
		degraded = true
	}
	if rm.config.CPULoadThreshold > 0 && rm.config.CPULoadThreshold < 200 &&
		cpuUsage > float64(rm.config.CPULoadThreshold) {
		utils.Warnf("⚠️ CPU负载过高(当前%.1f%%, 阈值%d%%), 进入降级状态",
			cpuUsage, rm.config.CPULoadThreshold)
		degraded = true
	}

	rm.mu.Lock()
	rm.lastAvailableMB = availableMB
	rm.lastCPUUsage = cpuUsage
	rm.degraded = degraded
	rm.mu.Unlock()
}

// Degraded 是否处于资源降级状态
func (rm *ResourceMonitor) Degraded() bool {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.degraded
}

// Status 最近一次采样结果 (可用内存MB, CPU使用率%)
func (rm *ResourceMonitor) Status() (int64, float64) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.lastAvailableMB, rm.lastCPUUsage
}
