package main

// 把一段文字（通常是日报金句）渲染成分享用的 PNG 字幕卡。
// CJK 按字宽折行，卡片高度随行数自适应。

import (
	"flag"
	"log"
	"os"
	"strings"

	"wxops/card"
)

type options struct {
	text     string
	file     string // 从文件读取文字，优先于 -text
	fontPath string // TTF/OTF 字体文件（需含 CJK 字形）
	output   string
	width    int
	size     float64
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.text, "text", "", "要渲染的文字")
	flag.StringVar(&opts.file, "file", "", "从文件读取文字（优先于 -text）")
	flag.StringVar(&opts.fontPath, "font", "", "字体文件路径（TTF/OTF，需含中文字形）")
	flag.StringVar(&opts.output, "o", "card.png", "输出 PNG 路径")
	flag.IntVar(&opts.width, "width", 0, "卡片宽度像素（0 取默认）")
	flag.Float64Var(&opts.size, "size", 0, "字号（0 取默认）")
	flag.Parse()
	return opts
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	opts := parseFlags()
	if opts.fontPath == "" {
		log.Fatalf("-font 必填")
	}

	text := opts.text
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			log.Fatalf("read text file failed: %v", err)
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		log.Fatalf("-text 或 -file 必填")
	}

	co := card.DefaultOptions()
	if opts.width > 0 {
		co.Width = opts.width
	}
	if opts.size > 0 {
		co.FontSize = opts.size
	}

	face, err := card.LoadFace(opts.fontPath, co.FontSize)
	if err != nil {
		log.Fatalf("load font failed: %v", err)
	}

	img, err := card.Render(face, text, co)
	if err != nil {
		log.Fatalf("render card failed: %v", err)
	}
	if err := card.WritePNG(opts.output, img); err != nil {
		log.Fatalf("write png failed: %v", err)
	}
	b := img.Bounds()
	log.Printf("[DONE] %dx%d -> %s", b.Dx(), b.Dy(), opts.output)
}
