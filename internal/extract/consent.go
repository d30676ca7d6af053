package extract

import (
	"encoding/json"
	"fmt"

	"github.com/RecoveryAshes/GmgnXtract/internal/config"
	"github.com/RecoveryAshes/GmgnXtract/internal/utils"
	"github.com/go-rod/rod"
)

// DismissConsent 尽力关闭同意/隐私弹层
// 先按固定选择器点, 再按按钮文本扫一遍; 任何失败都忽略,
// 弹层不存在是常态而不是错误
func DismissConsent(page *rod.Page, cfg *config.SelectorConfig) {
	defer func() {
		if r := recover(); r != nil {
			utils.Debugf("同意弹层处理异常(已忽略): %v", r)
		}
	}()

	selJSON, err := json.Marshal(cfg.Selectors.ConsentSelectors)
	if err != nil {
		return
	}
	textJSON, err := json.Marshal(cfg.Selectors.ConsentTexts)
	if err != nil {
		return
	}

	js := fmt.Sprintf(`() => {
		var sels = %s;
		var texts = %s;
		var clicked = 0;
		for (var i = 0; i < sels.length; i++) {
			try {
				var el = document.querySelector(sels[i]);
				if (el) { el.click(); clicked++; }
			} catch (e) {}
		}
		try {
			var buttons = document.querySelectorAll('button,[role="button"]');
			var limit = Math.min(buttons.length, 100);
			for (var j = 0; j < limit; j++) {
				var t = (buttons[j].innerText || "").trim().toLowerCase();
				for (var k = 0; k < texts.length; k++) {
					if (t === texts[k].toLowerCase()) { buttons[j].click(); clicked++; break; }
				}
			}
		} catch (e) {}
		return clicked;
	}`, string(selJSON), string(textJSON))

	result, err := page.Evaluate(&rod.EvalOptions{JS: js})
	if err != nil {
		utils.Debugf("同意弹层探测失败(已忽略): %v", err)
		return
	}

	if n := result.Value.Int(); n > 0 {
		utils.Debugf("已点击%d个同意控件", n)
	}
}
