package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/notewell/cornell/dsl"
	"github.com/notewell/cornell/layout"
	"github.com/notewell/cornell/renderer"
	canvasrenderer "github.com/notewell/cornell/renderer/canvas"
	"github.com/notewell/cornell/template"
)

func main() {
	input := flag.String("in", "examples/cornell.tpl", "模板文件路径（.tpl 或 .yaml）")
	output := flag.String("out", "output/cornell.pdf", "PDF 输出路径")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到模板占位符的 JSON 数据")
	fontPath := flag.String("font", "", "字体文件路径，缺省时尝试系统字体")
	flag.Parse()

	var data map[string]any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &data); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	if err := run(*input, *output, *debug, *fontPath, data); err != nil {
		log.Fatalf("生成 PDF 失败: %v", err)
	}
	fmt.Printf("已生成 PDF：%s\n", *output)
}

// run 串联模板构建、布局求解与渲染。
func run(inputPath, outputPath, debugPath, fontPath string, data map[string]any) error {
	tpl, err := loadTemplate(inputPath, data)
	if err != nil {
		return err
	}

	opts := canvasrenderer.Options{
		Meta: renderer.DocumentMeta{
			Title:   tpl.Name,
			Author:  tpl.Meta["author"],
			Subject: tpl.Meta["subject"],
			Creator: "cornell",
		},
	}
	if fontPath != "" {
		opts.Fonts = []canvasrenderer.Resource{{Path: fontPath}}
	}
	ren := canvasrenderer.New(opts)

	result, err := tpl.Resolve(ren)
	if err != nil {
		return fmt.Errorf("布局求解失败: %w", err)
	}
	for _, w := range result.Warnings {
		log.Printf("警告: %s", w)
	}

	if debugPath != "" {
		if err := writeDebug(result, debugPath); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := ren.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

// loadTemplate 按扩展名选择前端：.yaml/.yml 走配置，其余按 DSL 解析。
func loadTemplate(path string, data map[string]any) (*template.Template, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开模板文件 %s: %w", path, err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return template.FromYAML(file, data)
	default:
		doc, err := dsl.Parse(file)
		if err != nil {
			return nil, fmt.Errorf("解析模板失败: %w", err)
		}
		return template.FromDSL(doc, data)
	}
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	f, err := os.Create(debugPath)
	if err != nil {
		return fmt.Errorf("创建调试文件失败: %w", err)
	}
	defer f.Close()
	if err := layout.WriteDebugJSON(f, result); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
