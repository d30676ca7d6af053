package extract

import (
	"testing"
	"time"
)

// TestResourceMonitor_采样 测试采样后状态可读
func TestResourceMonitor_采样(t *testing.T) {
	rm := NewResourceMonitor(MonitorConfig{
		SafetyThresholdMB: 1, // 1MB阈值, 任何正常环境都不会触发
		CPULoadThreshold:  200,
		SampleInterval:    time.Second,
	})

	rm.Sample()

	availableMB, _ := rm.Status()
	if availableMB <= 0 {
		t.Errorf("采样后可用内存应为正数, 实际: %d", availableMB)
	}
	if rm.Degraded() {
		t.Error("1MB阈值不应触发降级")
	}
}

// TestResourceMonitor_内存降级 测试阈值高于总内存时进入降级
func TestResourceMonitor_内存降级(t *testing.T) {
	rm := NewResourceMonitor(MonitorConfig{
		SafetyThresholdMB: 1 << 30, // 不可能满足的阈值
		CPULoadThreshold:  200,
		SampleInterval:    time.Second,
	})

	rm.Sample()

	if !rm.Degraded() {
		t.Error("可用内存必然低于2^30 MB, 应进入降级状态")
	}
}

// TestResourceMonitor_启停幂等 测试重复Start/Stop不panic
func TestResourceMonitor_启停幂等(t *testing.T) {
	rm := NewResourceMonitor(MonitorConfig{SampleInterval: 10 * time.Millisecond})

	rm.Start()
	rm.Start()
	time.Sleep(20 * time.Millisecond)
	rm.Stop()
	rm.Stop()
}
