package model

import "strings"

// Comment is the body of a work log comment. It is either PlainText or
// StructuredBlock; a nil Comment means the entry had none.
type Comment interface {
	isComment()
}

// PlainText is a comment sent as a bare string.
type PlainText string

// StructuredBlock is a rich-text comment reduced to its text leaves in
// document order.
type StructuredBlock []string

func (PlainText) isComment()       {}
func (StructuredBlock) isComment() {}

// FlattenComment renders any comment, including an absent one, as plain
// text. placeholder is returned for absent comments.
func FlattenComment(c Comment, placeholder string) string {
	switch v := c.(type) {
	case PlainText:
		return string(v)
	case StructuredBlock:
		return strings.Join(v, "")
	default:
		return placeholder
	}
}
