package helper

import "fmt"

// XmlDocBuilder provides a reusable test data builder for LSK resolution
// fixtures: XML-shaped payloads carrying PK placeholders and REF pointers.
type XmlDocBuilder struct {
	elements []string
}

// NewXmlDocBuilder starts an empty document.
func NewXmlDocBuilder() *XmlDocBuilder {
	return &XmlDocBuilder{}
}

// WithPlaceholder appends a self-closing element whose single attribute
// carries the given PK placeholder value.
func (b *XmlDocBuilder) WithPlaceholder(tag, attr, table, column, logicalID string) *XmlDocBuilder {
	b.elements = append(b.elements, fmt.Sprintf(`<%s %s="%s:%s:%s"/>`, tag, attr, table, column, logicalID))
	return b
}

// WithReference appends a self-closing element whose single attribute is a
// REF:{...} pointer at the given PK placeholder.
func (b *XmlDocBuilder) WithReference(tag, attr, table, column, logicalID string) *XmlDocBuilder {
	b.elements = append(b.elements, fmt.Sprintf(`<%s %s="REF:{%s:%s:%s}"/>`, tag, attr, table, column, logicalID))
	return b
}

// WithRaw appends an arbitrary fragment verbatim, useful for malformed or
// edge-case documents.
func (b *XmlDocBuilder) WithRaw(fragment string) *XmlDocBuilder {
	b.elements = append(b.elements, fragment)
	return b
}

// Build joins every appended element into a single document string.
func (b *XmlDocBuilder) Build() string {
	doc := ""
	for _, el := range b.elements {
		doc += el
	}
	return doc
}

// Placeholder formats a bare PK placeholder string, for assertions against
// scanner output or mapping keys.
func Placeholder(table, column, logicalID string) string {
	return fmt.Sprintf("%s:%s:%s", table, column, logicalID)
}

// ResolvedValue formats the resolved form of a placeholder for a given
// module and numeric value.
func ResolvedValue(table, column, module string, value int64) string {
	return fmt.Sprintf("%s:%s:%s:%d", table, column, module, value)
}
