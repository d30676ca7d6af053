package utils

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RecoveryAshes/GmgnXtract/internal/models"
)

func TestWriteTableData_CSVRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	w := NewOutputWriter(tempDir)
	if err := w.EnsureDir(); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}

	// 含逗号和引号的token, 写出后再解析必须原样还原
	record := models.ShapedRecord{Token: `a,b"c`}
	if _, err := w.WriteTableData("deployedtokens", []string{"Token"}, []models.ShapedRecord{record}); err != nil {
		t.Fatalf("WriteTableData() error = %v", err)
	}

	file, err := os.Open(filepath.Join(tempDir, "deployedtokens.csv"))
	if err != nil {
		t.Fatalf("打开CSV失败: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("解析CSV失败: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("CSV行数 = %d, want 2 (表头+1行)", len(rows))
	}

	if rows[0][0] != "token" {
		t.Errorf("CSV表头首列 = %q, want %q", rows[0][0], "token")
	}

	if rows[1][0] != `a,b"c` {
		t.Errorf("round-trip后token = %q, want %q", rows[1][0], `a,b"c`)
	}
}

func TestWriteTableData_JSONShape(t *testing.T) {
	tempDir := t.TempDir()
	w := NewOutputWriter(tempDir)
	if err := w.EnsureDir(); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}

	records := []models.ShapedRecord{
		{Token: "ABC", RealizedProfit: "+5%"},
		{Token: "XYZ", RealizedProfit: "-2%"},
	}
	if _, err := w.WriteTableData("recentpnl", []string{"Token", "Realized Profit"}, records); err != nil {
		t.Fatalf("WriteTableData() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tempDir, "recentpnl_data.json"))
	if err != nil {
		t.Fatalf("读取JSON失败: %v", err)
	}

	var decoded models.TableData
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("解析JSON失败: %v", err)
	}

	if len(decoded.Rows) != 2 {
		t.Errorf("rows长度 = %d, want 2", len(decoded.Rows))
	}
	if decoded.Rows[0].RealizedProfit != "+5%" {
		t.Errorf("realized_profit = %q, want %q", decoded.Rows[0].RealizedProfit, "+5%")
	}
}

func TestWriteTableData_EmptyPlaceholders(t *testing.T) {
	tempDir := t.TempDir()
	w := NewOutputWriter(tempDir)
	if err := w.EnsureDir(); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}

	// 空数据也要产出完整文件集
	if _, err := w.WriteTableData("deployedtokens", nil, nil); err != nil {
		t.Fatalf("WriteTableData() error = %v", err)
	}
	if _, err := w.WriteRegion("deployedtokens.json", ""); err != nil {
		t.Fatalf("WriteRegion() error = %v", err)
	}

	for _, name := range []string{"deployedtokens_data.json", "deployedtokens.csv", "deployedtokens.json"} {
		if _, err := os.Stat(filepath.Join(tempDir, name)); err != nil {
			t.Errorf("占位文件缺失: %s", name)
		}
	}

	// 空表的JSON中rows必须是[]而不是null
	data, err := os.ReadFile(filepath.Join(tempDir, "deployedtokens_data.json"))
	if err != nil {
		t.Fatalf("读取JSON失败: %v", err)
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("空表JSON不应包含null: %s", data)
	}
}

func TestWritePanels_CardsShape(t *testing.T) {
	tempDir := t.TempDir()
	w := NewOutputWriter(tempDir)
	if err := w.EnsureDir(); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}

	tests := []struct {
		name      string
		bundle    *models.PanelBundle
		wantField string
	}{
		{
			name:      "有卡片时输出cards形态",
			bundle:    &models.PanelBundle{Cards: []string{"<div>a</div>", "<div>b</div>"}, OuterHTML: "<main>x</main>"},
			wantField: `"cards"`,
		},
		{
			name:      "无卡片时输出outerHTML形态",
			bundle:    &models.PanelBundle{OuterHTML: "<main>x</main>"},
			wantField: `"outerHTML"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := w.WritePanels(tt.bundle)
			if err != nil {
				t.Fatalf("WritePanels() error = %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("读取文件失败: %v", err)
			}
			if !strings.Contains(string(data), tt.wantField) {
				t.Errorf("panels.json缺少字段 %s: %s", tt.wantField, data)
			}
		})
	}
}

func TestWriteAddressCSV(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "addresses.csv")

	addrs := []string{"5yHhsMNgqCzH2NBNFHmXWW4YqEMHy1MCwvGk9oDMj7CM", "7dKx3q"}
	if err := WriteAddressCSV(path, addrs); err != nil {
		t.Fatalf("WriteAddressCSV() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取CSV失败: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("CSV行数 = %d, want 3", len(lines))
	}
	if lines[0] != "address" {
		t.Errorf("表头 = %q, want %q", lines[0], "address")
	}
}
