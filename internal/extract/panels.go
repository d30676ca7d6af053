package extract

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/RecoveryAshes/GmgnXtract/internal/config"
	"github.com/RecoveryAshes/GmgnXtract/internal/models"
	"github.com/RecoveryAshes/GmgnXtract/internal/utils"
	"github.com/go-rod/rod"
)

const (
	// settleDelay 点击标签页后等待内容重排的时间
	settleDelay = 700 * time.Millisecond

	// maxCards 单次采集的卡片元素上限
	maxCards = 50
)

// CollectPanels 采集面板原始快照
// 卡片元素命中时卡片数组是规范载荷; 否则按容器优先级取第一个命中的
// outerHTML; 都没有就退到body. 全程尽力而为, 失败的部分留空
func CollectPanels(page *rod.Page, cfg *config.SelectorConfig) *models.PanelBundle {
	bundle := &models.PanelBundle{}

	defer func() {
		if r := recover(); r != nil {
			utils.Errorf("采集面板panic(保留已采集部分): %v", r)
		}
	}()

	html := pageHTML(page)
	bundle.Text = pageText(page)

	bundle.Cards = collectCards(page, cfg.Selectors.CardClass)
	if bundle.HasCards() {
		utils.Infof("📊 采集到%d个面板卡片", len(bundle.Cards))
	} else {
		for _, sel := range cfg.Selectors.ContainerPriority {
			if markup := outerHTMLOf(page, sel); markup != "" {
				utils.Debugf("回退容器命中: %s", sel)
				bundle.OuterHTML = markup
				break
			}
		}
		if bundle.OuterHTML == "" {
			utils.Warnf("⚠️ 所有回退容器未命中, 使用整页markup")
			bundle.OuterHTML = html
		}
	}

	bundle.RecentPnl = FindByHeading(html, cfg.Labels.RecentPnl)
	bundle.DeployedTokens = FindByHeading(html, cfg.Labels.DeployedTokens)

	return bundle
}

// ExtractTableByLabels 按区域标签提取表格
// 先尝试点击命中标签的页签控件并等内容重排, 再在整页markup里
// 收缩到最内层带标签容器做离线解析; 全程失败只产出空表
// settle<=0时使用默认重排等待
func ExtractTableByLabels(page *rod.Page, labels []string, settle time.Duration) *models.TableExtract {
	if settle <= 0 {
		settle = settleDelay
	}
	if clickTab(page, labels) {
		utils.Debugf("已切换页签: %v", labels)
		time.Sleep(settle)
	}

	html := pageHTML(page)
	container := FindLabeledContainer(html, labels)
	if container == "" {
		container = html
	}

	extract := ParseTable(container)
	utils.Infof("🔍 表格提取 %v: %s", labels, describeSource(extract))
	return extract
}

// clickTab 尝试点击文本命中标签的页签控件
func clickTab(page *rod.Page, labels []string) (clicked bool) {
	defer func() {
		if r := recover(); r != nil {
			utils.Debugf("页签点击panic(已忽略): %v", r)
			clicked = false
		}
	}()

	labelJSON, err := json.Marshal(labels)
	if err != nil {
		return false
	}

	js := fmt.Sprintf(`() => {
		var labels = %s;
		var tabs = document.querySelectorAll('button,[role="tab"]');
		for (var i = 0; i < tabs.length; i++) {
			var t = (tabs[i].innerText || "").trim().toLowerCase();
			if (!t) { continue; }
			for (var j = 0; j < labels.length; j++) {
				if (t.indexOf(labels[j].toLowerCase()) !== -1) {
					tabs[i].click();
					return true;
				}
			}
		}
		return false;
	}`, string(labelJSON))

	result, err := page.Evaluate(&rod.EvalOptions{JS: js})
	if err != nil {
		utils.Debugf("页签探测失败(已忽略): %v", err)
		return false
	}
	return result.Value.Bool()
}

// collectCards 采集卡片元素的outerHTML列表
func collectCards(page *rod.Page, cardClass string) []string {
	if cardClass == "" {
		return nil
	}

	selJSON, err := json.Marshal(cardClass)
	if err != nil {
		return nil
	}

	js := fmt.Sprintf(`() => {
		try {
			var els = document.querySelectorAll(%s);
			var out = [];
			var limit = Math.min(els.length, %d);
			for (var i = 0; i < limit; i++) {
				out.push(els[i].outerHTML);
			}
			return out;
		} catch (e) {
			return [];
		}
	}`, string(selJSON), maxCards)

	result, err := page.Evaluate(&rod.EvalOptions{JS: js})
	if err != nil {
		utils.Debugf("卡片采集失败(已忽略): %v", err)
		return nil
	}

	var cards []string
	for _, c := range result.Value.Arr() {
		if markup := c.Str(); markup != "" {
			cards = append(cards, markup)
		}
	}
	return cards
}

// outerHTMLOf 取选择器首个命中元素的outerHTML (未命中返回空串)
func outerHTMLOf(page *rod.Page, selector string) string {
	selJSON, err := json.Marshal(selector)
	if err != nil {
		return ""
	}

	js := fmt.Sprintf(`() => {
		try {
			var el = document.querySelector(%s);
			return el ? el.outerHTML : "";
		} catch (e) {
			return "";
		}
	}`, string(selJSON))

	result, err := page.Evaluate(&rod.EvalOptions{JS: js})
	if err != nil {
		utils.Debugf("容器探测失败 [%s]: %v", selector, err)
		return ""
	}
	return result.Value.Str()
}
