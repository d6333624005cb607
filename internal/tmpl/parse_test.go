package tmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"plain text",
		"a<b AND c <> d AND e<=f",
		"EXISTS (SELECT 1 FROM PERSON @Person@ WHERE @Person@.ID=@parent.Org@.PERSON_ID <whereParts/> <groupBy/>)",
		"<fromPart>ADDRESS @Address@</fromPart><wherePart>@Address@.CITY=<attribute>@Address@.CITY</attribute></wherePart>",
		"<groupBy>GROUP BY <groupByParts/> HAVING 1=1 <havingParts/></groupBy>",
		"mail like '%@example.com'",
	}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			assert.Equal(t, s, Parse(s).String())
		})
	}
}

func TestParseStructure(t *testing.T) {
	tpl := Parse("<wherePart>@A@.X=<attribute>@A@.Y</attribute></wherePart> tail")
	require.Len(t, tpl, 2)

	where, ok := tpl[0].(*Element)
	require.True(t, ok)
	assert.Equal(t, TagWherePart, where.Name)
	require.Len(t, where.Children, 3)

	m, ok := where.Children[0].(*Marker)
	require.True(t, ok)
	assert.Equal(t, "A", m.Name)
	assert.False(t, m.Parent)

	attr, ok := tpl.Find(TagAttribute)
	require.True(t, ok)
	assert.Equal(t, "@A@.Y", attr.Content())
}

func TestUnknownTagsStayText(t *testing.T) {
	tpl := Parse("<b>bold</b>")
	require.Len(t, tpl, 1)
	_, ok := tpl[0].(*Text)
	assert.True(t, ok)
}

func TestLenientParse(t *testing.T) {
	s := "x </wherePart> <attribute>y"
	tpl := Parse(s)
	assert.Equal(t, s, tpl.String())
	assert.False(t, tpl.Has(TagAttribute))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("<wherePart>a <attribute>b</attribute></wherePart>"))

	err := Validate("<wherePart>a")
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.Equal(t, TagWherePart, syn.Tag)

	err = Validate("a</fromPart>")
	require.ErrorAs(t, err, &syn)
	assert.Equal(t, TagFromPart, syn.Tag)
	assert.Equal(t, 1, syn.Offset)
}

func TestDefinitionMarkers(t *testing.T) {
	tpl := Parse("FROM PERSON @Person@, ADDRESS @Address@ WHERE @Address@.ID=@Person@.ADDRESS_ID AND @parent.Org@.ID=1 <fromPart>ORDERS @Order@</fromPart>")
	assert.Equal(t, []string{"Person", "Address", "Order"}, tpl.DefinitionMarkers())
	assert.Len(t, tpl.Markers(), 6)
}

func TestReplaceAndRemove(t *testing.T) {
	s := "SELECT 1 <whereParts/> <groupBy>GROUP BY <groupByParts/></groupBy>"

	out := Parse(s).ReplaceText(TagWhereParts, func(*Element) string { return "AND x=1" })
	assert.Equal(t, "SELECT 1 AND x=1 <groupBy>GROUP BY <groupByParts/></groupBy>", out.String())

	out = Parse(s).Remove(TagGroupBy)
	assert.Equal(t, "SELECT 1 <whereParts/> ", out.String())

	out = Parse(s).Unwrap(TagGroupBy).ReplaceText(TagGroupByParts, func(*Element) string { return "a.ID" })
	assert.Equal(t, "SELECT 1 <whereParts/> GROUP BY a.ID", out.String())
}

func TestMapMarkers(t *testing.T) {
	tpl := Parse("@A@.X=@parent.B@.Y")
	out, err := tpl.MapMarkers(func(m *Marker) (string, error) {
		if m.Parent {
			return "p1", nil
		}
		return "n1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "n1.X=p1.Y", out.String())
	require.Len(t, out, 1)
}

func TestTextHelpers(t *testing.T) {
	s := "<wherePart> a=1 </wherePart><fromPart>T @T@</fromPart><whereParts/>"

	v, ok := Tag(s, TagWherePart)
	assert.True(t, ok)
	assert.Equal(t, "a=1", v)

	v, ok = Tag(s, TagWhereParts)
	assert.True(t, ok)
	assert.Empty(t, v)

	_, ok = Tag(s, TagSelectPart)
	assert.False(t, ok)

	assert.Equal(t, "<fromPart>T @T@</fromPart><whereParts/>", RemoveTag(s, TagWherePart))
	assert.Equal(t, "<wherePart> a=1 </wherePart>[T @T@]<whereParts/>",
		ReplaceTag(s, TagFromPart, func(c string) string { return "[" + c + "]" }))
	assert.Equal(t, "<attribute>x</attribute>", Wrap(TagAttribute, "x"))
}
