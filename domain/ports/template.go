package ports

// TemplateEngine renders a raw document with host-supplied variables before
// it is parsed.
type TemplateEngine interface {
	Render(raw []byte, vars map[string]any) ([]byte, error)
}
