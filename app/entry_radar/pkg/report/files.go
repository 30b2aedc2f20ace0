package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// 导出文件名
const (
	MarkdownFile = "report.md"
	HTMLFile     = "report.html"
)

// WriteFiles 把 Markdown 与 HTML 报告写入目录，返回写入的路径
func WriteFiles(dir string, v View) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	writers := []struct {
		name   string
		render func(f *os.File) error
	}{
		{MarkdownFile, func(f *os.File) error { return RenderMarkdown(f, v) }},
		{HTMLFile, func(f *os.File) error { return RenderHTML(f, v) }},
	}

	paths := make([]string, 0, len(writers))
	for _, wr := range writers {
		path := filepath.Join(dir, wr.name)
		f, err := os.Create(path)
		if err != nil {
			return paths, err
		}
		err = wr.render(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return paths, fmt.Errorf("write %s: %w", wr.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
