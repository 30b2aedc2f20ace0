package report

import (
	"embed"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"join":  strings.Join,
	"score": formatScore,
}

var reportTemplate = template.Must(
	template.New("report.html.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/report.html.tmpl"),
)

// RenderHTML 独立的 HTML 报告，与页面卡片内容一致
func RenderHTML(w io.Writer, v View) error {
	return reportTemplate.Execute(w, v)
}
