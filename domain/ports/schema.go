package ports

// SchemaRegistry holds the JSON schemas of host function payloads, keyed by
// host function name.
type SchemaRegistry interface {
	Register(name string, model any) error
	GetSchema(name string) ([]byte, bool)
	List() []string
}
