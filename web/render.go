package web

import (
	"html/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/tailored-agentic-units/gichat/core/protocol"
)

// Labels shown in front of each turn.
const (
	labelUser      = "🩺 Médecin :"
	labelAssistant = "🤖 Assistant :"
)

type turnView struct {
	User  bool
	Label string
	HTML  template.HTML
}

// renderMarkdown converts answer Markdown to HTML. Raw HTML in the source
// is dropped, links open in a new tab, and only http, https, ftp, mailto and
// relative destinations become anchors.
func renderMarkdown(content string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML | html.Safelink | html.HrefTargetBlank,
	})
	return template.HTML(markdown.ToHTML([]byte(content), p, r))
}

func renderTurns(messages []protocol.Message) []turnView {
	views := make([]turnView, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case protocol.RoleUser:
			views = append(views, turnView{
				User:  true,
				Label: labelUser,
				HTML:  template.HTML(template.HTMLEscapeString(msg.Content)),
			})
		case protocol.RoleAssistant:
			views = append(views, turnView{
				Label: labelAssistant,
				HTML:  renderMarkdown(msg.Content),
			})
		}
	}
	return views
}
