package web

import "embed"

// TemplatesFS embeds the page templates rendered by internal/views.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet and the notification script.
//
//go:embed static
var StaticFS embed.FS
