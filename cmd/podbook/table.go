package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column 表头与对齐方式
type column struct {
	title string
	align text.Align
}

func left(title string) column  { return column{title: title, align: text.AlignLeft} }
func right(title string) column { return column{title: title, align: text.AlignRight} }

// cliStyle 圆角边框，表头保持原样大小写，策略名与步骤标题按输入显示
var cliStyle = func() table.Style {
	s := table.StyleRounded
	s.Name = "podbook"
	s.Format.Header = text.FormatDefault
	s.Format.Footer = text.FormatDefault
	return s
}()

// renderTable 短行补空，多出的单元格丢弃
func renderTable(cols []column, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(cliStyle)

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		header[i] = c.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: c.align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, cells := range rows {
		r := make(table.Row, len(cols))
		for i := range r {
			r[i] = ""
			if i < len(cells) {
				r[i] = cells[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}
