package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"wxops/echodb"
	"wxops/summarize"
)

// WriteMessages 落盘结构化消息 JSON。
func WriteMessages(dir string, msgs []echodb.Message) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal messages failed: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, MessagesFile), data, 0o644)
}

// ReadMessages 读取结构化消息 JSON。
func ReadMessages(dir string) ([]echodb.Message, error) {
	data, err := os.ReadFile(filepath.Join(dir, MessagesFile))
	if err != nil {
		return nil, err
	}
	var msgs []echodb.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("parse %s failed: %w", MessagesFile, err)
	}
	return msgs, nil
}

// WriteTranscript 落盘转写文本。
func WriteTranscript(dir, transcript string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, TranscriptFile), []byte(transcript), 0o644)
}

// WriteAnalysis 落盘分析结果 JSON。
func WriteAnalysis(dir string, a summarize.Analysis) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis failed: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, AnalysisFile), data, 0o644)
}

// ReadAnalysis 读取分析结果 JSON。
func ReadAnalysis(dir string) (summarize.Analysis, error) {
	var a summarize.Analysis
	data, err := os.ReadFile(filepath.Join(dir, AnalysisFile))
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("parse %s failed: %w", AnalysisFile, err)
	}
	return a, nil
}
