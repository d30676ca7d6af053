package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RecoveryAshes/GmgnXtract/internal/config"
	"github.com/RecoveryAshes/GmgnXtract/internal/extract"
	"github.com/RecoveryAshes/GmgnXtract/internal/models"
	"github.com/RecoveryAshes/GmgnXtract/internal/session"
	"github.com/RecoveryAshes/GmgnXtract/internal/utils"
	"github.com/go-rod/rod"
)

// loginCountdownSeconds 交互式登录确认后的缓冲时间
// 登录刚完成时站点还在写token和刷新面板, 立即提取会拿到半成品页面
const loginCountdownSeconds = 10

// Runner 提取任务协调器
// 串起完整流程: 静态预检 → 浏览器接入 → 会话恢复 → 导航 → 拦截检查
// → 登录等待 → 模式分支提取 → 会话回写
//
// stdout契约: Run返回的字节就是进程stdout的全部内容, 永远是单个JSON;
// 任何失败都折叠进JSON的error字段, 进程以0退出. 日志和[STATUS]走stderr
type Runner struct {
	task      *models.ExtractTask
	cfg       *Config
	selectors *config.SelectorConfig
	store     *session.Store

	// 静态预检在SSR页面里提前拿到的地址, 页面扫描结果不足时补位
	earlyAddresses []string
}

// NewRunner 创建任务协调器
func NewRunner(task *models.ExtractTask, cfg *Config, selectors *config.SelectorConfig) *Runner {
	return &Runner{
		task:      task,
		cfg:       cfg,
		selectors: selectors,
		store:     session.NewStore(task.Config.SessionFile),
	}
}

// Run 执行提取任务, 返回应写到stdout的结果JSON
// 不返回error: 失败被折叠进模式对应的错误信封, 调用方总是得到可打印的JSON
func (r *Runner) Run(ctx context.Context) []byte {
	var payload []byte

	err := func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				utils.Errorf("❌ 任务异常中止: %v", rec)
				err = fmt.Errorf("任务异常中止: %v", rec)
			}
		}()
		payload, err = r.execute(ctx)
		return err
	}()

	if err != nil {
		r.task.Status = models.TaskStatusFailed
		r.task.ErrorMessage = err.Error()
		utils.Errorf("❌ 任务失败 [%s]: %v", r.task.ID, err)
		payload = r.errorEnvelope(err)
	}

	utils.Status(utils.StatusDone)
	return payload
}

// execute 主流程
func (r *Runner) execute(ctx context.Context) ([]byte, error) {
	startTime := time.Now()
	r.task.StartedAt = &startTime
	r.task.Status = models.TaskStatusRunning

	utils.Infof("🚀 提取任务启动 [%s]", r.task.ID)
	utils.Infof("目标URL: %s", r.task.TargetURL)
	utils.Infof("提取模式: %s", r.task.Mode)

	monitor := extract.NewResourceMonitor(extract.MonitorConfig{
		SafetyThresholdMB: r.cfg.Resource.SafetyThresholdMB,
		CPULoadThreshold:  r.cfg.Resource.CPULoadThreshold,
		SampleInterval:    r.cfg.SampleInterval(),
	})
	monitor.Start()
	defer monitor.Stop()

	scanner, err := extract.NewScanner(r.selectors.Patterns.Address)
	if err != nil {
		return nil, fmt.Errorf("编译地址正则失败: %w", err)
	}

	// 浏览器启动前先发一次普通请求探路
	if r.task.Config.StaticProbe {
		if err := r.runStaticProbe(scanner); err != nil {
			return nil, err
		}
	}

	browser, err := extract.Connect(extract.LaunchOptions{
		Headless:   r.task.Config.Headless,
		ChromePath: r.task.Config.ChromePath,
		ProfileDir: r.task.Config.ProfileDir,
		CDPURL:     r.task.Config.CDPUrl,
		Proxy:      r.task.Config.Proxy,
	})
	if err != nil {
		return nil, err
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return nil, err
	}

	// 会话恢复: cookie必须在导航前装好
	state, restored := r.store.Load()
	r.task.Stats.SessionRestored = restored
	if restored {
		if err := r.store.ApplyCookies(page, state); err != nil {
			utils.Warnf("安装历史cookie失败: %v", err)
		}
		// 先到目标源预热一次, 存储域才能归属正确的origin
		if err := extract.WarmUp(page); err != nil {
			return nil, err
		}
	}

	if err := extract.Navigate(page, r.task.TargetURL); err != nil {
		return nil, err
	}
	utils.Status(utils.StatusPageOpened)

	// 存储装入后必须刷新让站点脚本读到恢复的状态; 存储为空就不折腾
	if restored && !state.StorageEmpty() {
		if err := r.store.ApplyStorage(page, state); err != nil {
			utils.Warnf("装入历史存储失败: %v", err)
		} else if err := extract.Reload(page); err != nil {
			return nil, err
		}
	}

	if extract.DetectBlocked(page) {
		utils.Status(utils.StatusBlocked)
		r.task.Stats.Blocked = true
		return nil, extract.ErrBlocked
	}

	readiness, err := extract.NewReadiness(r.selectors)
	if err != nil {
		return nil, fmt.Errorf("初始化就绪检测失败: %w", err)
	}
	readiness.SetPollInterval(time.Duration(r.task.Config.PollInterval) * time.Millisecond)
	readiness.SetDegradationProbe(monitor.Degraded)

	utils.Status(utils.StatusWaitingLogin)
	authDeadline := time.Duration(r.task.Config.AuthTimeout) * time.Second
	ready, interactive := readiness.WaitAuthenticated(ctx, page, authDeadline)
	r.task.Stats.LoggedIn = ready
	if ready {
		utils.Status(utils.StatusLoggedIn)
		if interactive {
			// 恢复的会话首轮即命中不需要缓冲, 只有人工登录后才倒计时
			utils.Countdown(loginCountdownSeconds)
		}
	} else {
		utils.Warnf("⚠️ 未确认登录态, 以当前页面状态继续提取")
	}

	var payload []byte
	switch r.task.Mode {
	case models.ModePanels:
		payload, err = r.runPanels(ctx, page, readiness, scanner)
	default:
		payload, err = r.runAddresses(ctx, page, readiness, scanner)
	}
	if err != nil {
		return nil, err
	}

	// 本轮的登录成果写回会话文件, 下次运行免登录
	if snap, err := session.Snapshot(page); err != nil {
		utils.Warnf("采集会话快照失败: %v", err)
	} else {
		r.store.Save(snap)
	}

	completedAt := time.Now()
	r.task.CompletedAt = &completedAt
	r.task.Status = models.TaskStatusCompleted
	r.task.Stats.Duration = time.Since(startTime).Seconds()

	if monitor.Degraded() {
		availableMB, cpuUsage := monitor.Status()
		utils.Warnf("⚠️ 运行期间资源紧张: 可用内存%dMB, CPU %.1f%%", availableMB, cpuUsage)
	}

	utils.Infof("✅ 提取任务完成, 耗时%.2f秒", r.task.Stats.Duration)
	return payload, nil
}

// runStaticProbe 浏览器启动前的静态预检
// 命中防护拦截直接终止任务; 其余结果只作为补充信号, 失败不影响主流程
func (r *Runner) runStaticProbe(scanner *extract.Scanner) error {
	probe := extract.NewStaticProbe(0, scanner)
	result := probe.Probe(r.task.TargetURL, r.task.Config.Count)

	if result.Blocked {
		utils.Status(utils.StatusBlocked)
		r.task.Stats.Blocked = true
		return extract.ErrBlocked
	}
	if !result.Reachable {
		utils.Warnf("⚠️ 静态预检不可达 (状态码%d), 继续浏览器流程", result.StatusCode)
		return nil
	}
	if len(result.Addresses) > 0 {
		utils.Infof("📥 静态预检提前发现%d个地址", len(result.Addresses))
		r.earlyAddresses = result.Addresses
	}
	return nil
}

// runAddresses 地址扫描模式
func (r *Runner) runAddresses(ctx context.Context, page *rod.Page, readiness *extract.Readiness, scanner *extract.Scanner) ([]byte, error) {
	contentDeadline := time.Duration(r.task.Config.ContentTimeout) * time.Second
	readiness.WaitContent(ctx, page, scanner, contentDeadline)

	count := r.task.Config.Count
	addresses := scanner.ScanPage(page, count)

	// 页面扫描不足额时用预检结果补位, 保持页面内顺序优先
	if len(addresses) < count && len(r.earlyAddresses) > 0 {
		seen := make(map[string]bool, len(addresses))
		for _, addr := range addresses {
			seen[addr] = true
		}
		for _, addr := range r.earlyAddresses {
			if len(addresses) >= count {
				break
			}
			if !seen[addr] {
				addresses = append(addresses, addr)
				seen[addr] = true
			}
		}
	}

	r.task.Stats.Addresses = len(addresses)
	utils.Infof("🔍 共提取%d个地址 (期望%d)", len(addresses), count)

	// -o 指向.csv文件时顺带导出
	if out := r.cfg.Output.Dir; strings.HasSuffix(out, ".csv") {
		if err := utils.WriteAddressCSV(out, addresses); err != nil {
			utils.Warnf("导出地址CSV失败: %v", err)
		} else {
			utils.Infof("📊 地址已导出: %s", out)
		}
	}

	result := models.NewAddressResult()
	result.Addresses = append(result.Addresses, addresses...)
	return result.ToJSON()
}

// runPanels 面板提取模式
// 写入输出目录的完整文件集, stdout只带文件路径不带内容
func (r *Runner) runPanels(ctx context.Context, page *rod.Page, readiness *extract.Readiness, scanner *extract.Scanner) ([]byte, error) {
	contentDeadline := time.Duration(r.task.Config.ContentTimeout) * time.Second
	readiness.WaitContent(ctx, page, scanner, contentDeadline)

	writer := utils.NewOutputWriter(r.cfg.Output.Dir)
	if err := writer.EnsureDir(); err != nil {
		return nil, err
	}

	extract.DismissConsent(page, r.selectors)

	bundle := extract.CollectPanels(page, r.selectors)
	r.task.Stats.Panels = len(bundle.Cards)

	var outputFiles []string
	record := func(path string, err error) string {
		if err != nil {
			utils.Warnf("写入输出文件失败: %v", err)
			return ""
		}
		outputFiles = append(outputFiles, path)
		return path
	}

	panelsPath := record(writer.WritePanels(bundle))
	recentPnlPath := record(writer.WriteRegion("recentpnl.json", bundle.RecentPnl))
	deployedPath := record(writer.WriteRegion("deployedtokens.json", bundle.DeployedTokens))
	record(writer.WriteText("panels_data.json", bundle.Text))

	settle := time.Duration(r.task.Config.SettleTime) * time.Millisecond

	pnlTable := extract.ExtractTableByLabels(page, r.selectors.Labels.RecentPnl, settle)
	pnlRecords := extract.ShapeRows(pnlTable)
	r.task.Stats.PnlRows = len(pnlRecords)
	record(writer.WriteTableData("recentpnl", pnlTable.Headers, pnlRecords))

	tokenTable := extract.ExtractTableByLabels(page, r.selectors.Labels.DeployedTokens, settle)
	tokenRecords := extract.ShapeRows(tokenTable)
	r.task.Stats.TokenRows = len(tokenRecords)
	record(writer.WriteTableData("deployedtokens", tokenTable.Headers, tokenRecords))

	report := &models.RunReport{
		TaskID:      r.task.ID,
		TargetURL:   r.task.TargetURL,
		Domain:      r.task.Domain,
		Mode:        r.task.Mode,
		StartTime:   *r.task.StartedAt,
		EndTime:     time.Now(),
		Duration:    time.Since(*r.task.StartedAt).Seconds(),
		Stats:       r.task.Stats,
		OutputFiles: outputFiles,
		OutDir:      writer.OutDir(),
		Config:      r.task.Config,
	}
	if err := writer.WriteRunReport(report); err != nil {
		utils.Warnf("写入运行报告失败: %v", err)
	}

	utils.Infof("📊 面板提取完成: 卡片%d, PnL行%d, 代币行%d",
		r.task.Stats.Panels, r.task.Stats.PnlRows, r.task.Stats.TokenRows)

	result := &models.PanelResult{
		OK:             true,
		OutDir:         writer.OutDir(),
		Panels:         panelsPath,
		RecentPnl:      recentPnlPath,
		DeployedTokens: deployedPath,
	}
	return result.ToJSON()
}

// errorEnvelope 把错误折叠进模式对应的结果信封
// 序列化自身失败时退到手拼的最小JSON, stdout永远不为空
func (r *Runner) errorEnvelope(runErr error) []byte {
	var data []byte
	var err error

	switch r.task.Mode {
	case models.ModePanels:
		result := &models.PanelResult{OK: false, Error: runErr.Error()}
		data, err = result.ToJSON()
	default:
		result := models.NewAddressResult()
		result.Error = runErr.Error()
		data, err = result.ToJSON()
	}

	if err != nil {
		return []byte(`{"ok":false,"error":"结果序列化失败"}`)
	}
	return data
}
