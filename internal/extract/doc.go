// Package extract 提供页面内容提取的全部能力
//
// # 概述
//
// extract包覆盖一次提取运行的页面侧与解析侧: 浏览器生命周期(go-rod)、
// 登录态与内容就绪轮询、base58地址扫描、面板快照采集、表格结构解析
// 与静态预检(Colly)。页面侧只负责采集markup, 解析侧全部离线可测。
//
// # 核心组件
//
// ## Browser (浏览器会话)
//
// 按 CDP附着 → 持久化profile启动 → 普通启动 的链路建立会话, 逐级回退。
// rod对分离页面的panic在每个交互边界被捕获并转成错误。
//
//	browser, err := Connect(LaunchOptions{Headless: true})
//	defer browser.Close()
//	page, err := browser.NewPage()
//	err = Navigate(page, targetURL)
//
// ## Readiness (就绪检测)
//
// 登录态判定规则: (认证存储键 OR 头像元素 OR 认证cookie) AND NOT 未登录文案。
// 按轮询间隔(默认500ms)采信号快照, 判定核心AuthProbe是纯逻辑, 不依赖浏览器。
// 内容就绪用地址模式做探针, 每轮探测前尽力关闭同意弹层。
// 两种等待都只回答就绪/超时, 超时不升级成错误。
//
//	r, _ := NewReadiness(cfg)
//	ready, interactive := r.WaitAuthenticated(ctx, page, 120*time.Second)
//	r.WaitContent(ctx, page, scanner, 45*time.Second)
//
// ## Scanner (地址扫描器)
//
// 先扫HTML源码再扫渲染文本, 保序去重, 到达上限提前终止。
//
//	scanner, _ := NewScanner("")
//	addresses := scanner.ScanPage(page, 10)
//
// ## CollectPanels / ExtractTableByLabels (面板提取)
//
// 卡片元素命中时卡片数组是规范载荷, 否则按容器优先级回退到outerHTML。
// 表格解析走三级回退链: 语义化<table> → ARIA行角色 → 子元素数量启发式
// 分组, 全部基于golang.org/x/net/html在捕获的markup上离线完成。
//
// ## ShapeRows (行归一化)
//
// 有序(字段,关键词)表对表头做忽略大小写的子串匹配, 每个字段取首个
// 命中的列; "realized"不吞掉含"unreal"的表头; 无表头时token回退到首列。
//
// ## StaticProbe (静态预检)
//
// 浏览器启动前用Colly发一次普通请求: 探可达性、防护拦截特征、
// 以及SSR页面里可能直接带出的地址。预检失败只降级为无信号。
//
// ## ResourceMonitor (资源监控)
//
// gopsutil周期采样可用内存与CPU, 资源紧张只做软降级, 从不中断运行。
//
// # 错误处理
//
//   - rod panic: 每个页面交互边界defer+recover转为ErrBrowserCrashed
//   - 求值失败: 就绪轮询逐轮忽略, 下一轮重试
//   - 面板/表格提取: 尽力而为, 失败产出空结果而不是错误
//   - 静态预检: 请求失败不是错误, 站点大概率只认浏览器
package extract
