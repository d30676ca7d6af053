package extract

import (
	"fmt"

	"github.com/go-rod/rod"
)

// stealthScript 首次导航前注入的隐匿脚本
// 覆盖无头浏览器最常被检测的几个指纹点; 站点脚本在文档级别读这些值,
// 必须通过AddScriptToEvaluateOnNewDocument在任何页面脚本之前生效
const stealthScript = `
(() => {
	Object.defineProperty(navigator, 'webdriver', {
		get: () => undefined,
	});
	Object.defineProperty(navigator, 'plugins', {
		get: () => [1, 2, 3, 4, 5],
	});
	Object.defineProperty(navigator, 'languages', {
		get: () => ['en-US', 'en'],
	});
	window.chrome = window.chrome || { runtime: {} };
	if (navigator.permissions && navigator.permissions.query) {
		const originalQuery = navigator.permissions.query.bind(navigator.permissions);
		navigator.permissions.query = (parameters) => (
			parameters && parameters.name === 'notifications'
				? Promise.resolve({ state: Notification.permission })
				: originalQuery(parameters)
		);
	}
})();
`

// ApplyStealth 给页面注入隐匿脚本
func ApplyStealth(page *rod.Page) error {
	if _, err := page.EvalOnNewDocument(stealthScript); err != nil {
		return fmt.Errorf("注入隐匿脚本失败: %w", err)
	}
	return nil
}
