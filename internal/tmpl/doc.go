// Package tmpl parses SQL template strings into a small typed AST.
//
// Templates are SQL text carrying two kinds of markup:
//
//   - alias markers: @Person@ and @parent.Person@
//   - structural tags: <wherePart>...</wherePart>, <whereParts/>, <groupBy>...</groupBy>
//
// Tags are not XML. Only the fixed tag names listed in Tags are recognized;
// any other angle bracket (a<b, x <> y, <=) stays literal SQL text. Parse is
// lenient and never fails: a stray closing tag or an unclosed opening tag is
// kept as text. Validate reports those cases for registry checks.
package tmpl
