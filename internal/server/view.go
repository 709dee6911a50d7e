package server

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/kyleking/filter-flow/internal/catalog"
)

var viewTemplate = template.Must(template.New(ViewRouteName).Parse(`<!DOCTYPE html>
<html lang="zh-Hant">
<head>
<meta charset="utf-8">
<title>Filter Flow</title>
<base href="{{.Base}}">
</head>
<body>
<h1>Filter Flow</h1>
<p>{{len .Tables}} tables available.</p>
{{range .Tables}}<h2>{{.Name}}</h2>
<ul>
{{range .Columns}}<li><code>{{.Name}}</code> ({{.DataType}})</li>
{{end}}</ul>
<p><a href="api/rows?table={{.Name}}">rows</a></p>
{{end}}</body>
</html>
`))

type viewData struct {
	Base   string
	Tables []catalog.TableDescriptor
}

// RenderView renders the filter-flow page shell: every table with its columns
func RenderView(ctx context.Context, provider catalog.Provider, base string) (string, error) {
	tables, err := provider.ListTables(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list tables: %w", err)
	}

	var buf bytes.Buffer
	if err := viewTemplate.Execute(&buf, viewData{Base: NormalizeBase(base), Tables: tables}); err != nil {
		return "", fmt.Errorf("failed to render view: %w", err)
	}

	return buf.String(), nil
}
