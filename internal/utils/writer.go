package utils

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/GmgnXtract/internal/models"
)

// OutputWriter 面板模式输出写入器
// 负责输出目录下的完整文件集: 原始markup快照 + 归一化数据 + CSV + 运行报告
// 即使区域没提取到内容也写空占位文件, 保证下游消费者看到稳定的文件集
type OutputWriter struct {
	outDir string
}

// NewOutputWriter 创建输出写入器
func NewOutputWriter(outDir string) *OutputWriter {
	return &OutputWriter{outDir: outDir}
}

// OutDir 输出目录路径
func (w *OutputWriter) OutDir() string {
	return w.outDir
}

// EnsureDir 创建输出目录
func (w *OutputWriter) EnsureDir() error {
	if err := os.MkdirAll(w.outDir, 0755); err != nil {
		return fmt.Errorf("创建输出目录失败 [%s]: %w", w.outDir, err)
	}
	return nil
}

// WritePanels 写入panels.json
// 有卡片时为{cards:[...]}形态, 否则为{outerHTML:...}形态
func (w *OutputWriter) WritePanels(bundle *models.PanelBundle) (string, error) {
	if bundle.HasCards() {
		return w.writeJSON("panels.json", models.CardsPayload{Cards: bundle.Cards})
	}
	return w.writeJSON("panels.json", models.MarkupPayload{OuterHTML: bundle.OuterHTML})
}

// WriteRegion 写入单个区域的markup快照 ({outerHTML:...})
func (w *OutputWriter) WriteRegion(filename string, outerHTML string) (string, error) {
	return w.writeJSON(filename, models.MarkupPayload{OuterHTML: outerHTML})
}

// WriteText 写入panels_data.json ({text:...})
func (w *OutputWriter) WriteText(filename string, text string) (string, error) {
	return w.writeJSON(filename, models.TextPayload{Text: text})
}

// WriteTableData 写入归一化表格数据 (JSON + 同名CSV)
// JSON: {headers:[...], rows:[ShapedRecord,...]}
// CSV: 表头行 + 每条记录一行, RFC4180引号规则
func (w *OutputWriter) WriteTableData(baseName string, headers []string, records []models.ShapedRecord) (string, error) {
	if records == nil {
		records = make([]models.ShapedRecord, 0)
	}
	if headers == nil {
		headers = make([]string, 0)
	}

	jsonPath, err := w.writeJSON(baseName+"_data.json", models.TableData{
		Headers: headers,
		Rows:    records,
	})
	if err != nil {
		return "", err
	}

	if err := w.writeCSV(baseName+".csv", records); err != nil {
		return "", err
	}

	return jsonPath, nil
}

// WriteRunReport 写入运行报告run_report.json
func (w *OutputWriter) WriteRunReport(report *models.RunReport) error {
	data, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("序列化运行报告失败: %w", err)
	}

	path := filepath.Join(w.outDir, "run_report.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入运行报告失败: %w", err)
	}

	Debugf("保存运行报告: %s", path)
	return nil
}

// WriteAddressCSV 地址模式的CSV导出 (单列"address")
func WriteAddressCSV(path string, addresses []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建地址CSV失败: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write([]string{"address"}); err != nil {
		return fmt.Errorf("写入CSV表头失败: %w", err)
	}
	for _, addr := range addresses {
		if err := cw.Write([]string{addr}); err != nil {
			return fmt.Errorf("写入CSV行失败: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeJSON 序列化并写入单个JSON文件, 返回完整路径
func (w *OutputWriter) writeJSON(filename string, data interface{}) (string, error) {
	path := filepath.Join(w.outDir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("序列化JSON失败 [%s]: %w", filename, err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("写入文件失败 [%s]: %w", path, err)
	}

	Debugf("保存输出文件: %s", path)
	return path, nil
}

// writeCSV 写入记录CSV (固定字段顺序, encoding/csv负责引号转义)
func (w *OutputWriter) writeCSV(filename string, records []models.ShapedRecord) error {
	path := filepath.Join(w.outDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建CSV文件失败 [%s]: %w", path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)

	if err := cw.Write(models.RecordFields); err != nil {
		return fmt.Errorf("写入CSV表头失败: %w", err)
	}

	for i := range records {
		if err := cw.Write(records[i].Values()); err != nil {
			return fmt.Errorf("写入CSV行失败: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("CSV刷新失败: %w", err)
	}

	Debugf("保存输出文件: %s", path)
	return nil
}
