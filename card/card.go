package card

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Options 字幕卡渲染参数。
type Options struct {
	Width       int     // 卡片宽度（像素）
	Padding     int     // 四周留白
	FontSize    float64 // 字号（pt）
	LineSpacing float64 // 行距倍数
	Background  color.Color
	Foreground  color.Color
}

// DefaultOptions 深色字幕卡，适合公众号/朋友圈分享。
func DefaultOptions() Options {
	return Options{
		Width:       900,
		Padding:     48,
		FontSize:    36,
		LineSpacing: 1.6,
		Background:  color.RGBA{R: 0x1f, G: 0x23, B: 0x29, A: 0xff},
		Foreground:  color.RGBA{R: 0xea, G: 0xec, B: 0xef, A: 0xff},
	}
}

// LoadFace 从 TTF/OTF 文件加载字体。中文文本需要提供含 CJK 字形的字体文件。
func LoadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font failed: %w", err)
	}
	return FaceFromBytes(data, size)
}

// FaceFromBytes 解析字体字节并生成指定字号的 face。
func FaceFromBytes(data []byte, size float64) (font.Face, error) {
	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font failed: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face failed: %w", err)
	}
	return face, nil
}

// wrapText 按像素宽度折行。中文没有空格分词，逐 rune 累积测量；显式换行保留。
func wrapText(face font.Face, text string, maxWidth fixed.Int26_6) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if para == "" {
			lines = append(lines, "")
			continue
		}
		var cur []rune
		var curWidth fixed.Int26_6
		for _, r := range para {
			adv, ok := face.GlyphAdvance(r)
			if !ok {
				adv, _ = face.GlyphAdvance('?')
			}
			if len(cur) > 0 && curWidth+adv > maxWidth {
				lines = append(lines, string(cur))
				cur = cur[:0]
				curWidth = 0
			}
			cur = append(cur, r)
			curWidth += adv
		}
		if len(cur) > 0 {
			lines = append(lines, string(cur))
		}
	}
	return lines
}

// Render 渲染字幕卡。高度按折行结果自适应。
func Render(face font.Face, text string, opts Options) (*image.RGBA, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("card text is empty")
	}
	// 零值字段逐项补默认值，调用方只改想改的项
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Padding <= 0 {
		opts.Padding = def.Padding
	}
	if opts.FontSize <= 0 {
		opts.FontSize = def.FontSize
	}
	if opts.LineSpacing <= 0 {
		opts.LineSpacing = def.LineSpacing
	}
	if opts.Background == nil {
		opts.Background = def.Background
	}
	if opts.Foreground == nil {
		opts.Foreground = def.Foreground
	}

	metrics := face.Metrics()
	lineHeight := int(float64(metrics.Height.Ceil()) * opts.LineSpacing)
	maxWidth := fixed.I(opts.Width - 2*opts.Padding)

	lines := wrapText(face, text, maxWidth)
	height := 2*opts.Padding + lineHeight*len(lines)

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(opts.Foreground),
		Face: face,
	}
	y := opts.Padding + metrics.Ascent.Ceil()
	for _, line := range lines {
		d.Dot = fixed.P(opts.Padding, y)
		d.DrawString(line)
		y += lineHeight
	}
	return img, nil
}

// WritePNG 落盘 PNG。
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s failed: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png failed: %w", err)
	}
	return nil
}
