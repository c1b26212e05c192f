package tui

import (
	"fmt"
	"strings"
)

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("stickyscroll"))
	b.WriteString("  ")
	b.WriteString(statusStyle.Render(a.keys.helpLine()))
	b.WriteString("\n")

	headerRows := a.visibleHeaderRows()
	for i := a.hiddenHeaderRows(); i < a.cfg.Demo.HeaderLines; i++ {
		line := fmt.Sprintf(" header %d/%d", i+1, a.cfg.Demo.HeaderLines)
		b.WriteString(headerStyle.Width(a.width).Render(line))
		b.WriteString("\n")
	}

	listRows := max(0, a.height-2-headerRows)
	first := a.list.firstRow()
	for i := 0; i < listRows; i++ {
		idx := first + i
		if idx >= len(a.list.items) {
			b.WriteString("\n")
			continue
		}
		style := itemStyle
		if a.drag == dragList {
			style = dragStyle
		}
		b.WriteString(style.Render(a.list.items[idx]))
		b.WriteString("\n")
	}

	b.WriteString(a.renderStatus())
	return b.String()
}

func (a *App) renderStatus() string {
	c := a.session.Coordinator()
	line := fmt.Sprintf("offset %d/%d  %s  list %d/%d",
		c.Offset(), c.HeaderHeight(), c.Phase(), a.list.pos, a.list.maxPos())
	if a.status != "" {
		line += "  " + a.status
	}
	out := statusStyle.Render(line)
	if a.session.Recording() {
		out = recStyle.Render(fmt.Sprintf("● REC %d ", a.session.RecordedEvents())) + out
	}
	return out
}
