package alias

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlcomposer/internal/model"
)

func TestSequence(t *testing.T) {
	s := NewSequence()
	assert.Equal(t, int64(0), s.Current())
	assert.Equal(t, int64(1), s.Next())
	assert.Equal(t, int64(2), s.Next())
	assert.Equal(t, int64(2), s.Current())

	s = NewSequenceAt(41)
	assert.Equal(t, int64(42), s.Next())
}

func TestSequenceConcurrent(t *testing.T) {
	s := NewSequence()
	seen := sync.Map{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, dup := seen.LoadOrStore(s.Next(), true)
				assert.False(t, dup)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(800), s.Current())
}

func TestNextAlias(t *testing.T) {
	m := NewMapper(nil)
	assert.Equal(t, "a00001", m.NextAlias())
	assert.Equal(t, "a00002", m.NextAlias())
}

func TestCloneSharesSequence(t *testing.T) {
	m := NewMapper(NewSequence())
	nested := m.Clone()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		for _, a := range []string{m.NextAlias(), nested.NextAlias()} {
			require.False(t, seen[a], "alias %s handed out twice", a)
			seen[a] = true
		}
	}
	assert.Same(t, m.Sequence(), nested.Sequence())

	m.SetRootAlias("Person", "p")
	_, ok := nested.RootAlias("Person")
	assert.False(t, ok)
}

func TestCleanName(t *testing.T) {
	for _, raw := range []string{"Person", "@Person@", "@parent.Person@", " person "} {
		assert.Equal(t, "PERSON", CleanName(raw), raw)
	}
}

func TestRootAndNodeAliases(t *testing.T) {
	m := NewMapper(nil)
	m.SetRootAlias("@Person@", "p")
	a, ok := m.RootAlias("PERSON")
	require.True(t, ok)
	assert.Equal(t, "p", a)

	node := model.NewEntity("Address", false)
	m.SetNodeAlias(node, "Address", "x1")
	a, ok = m.NodeAlias(node, "address")
	require.True(t, ok)
	assert.Equal(t, "x1", a)

	_, ok = m.NodeAlias(node, "Person")
	assert.False(t, ok, "node alias lookup must not see the root scope")
	a, ok = m.NodeScope(node, nil).Lookup("Person")
	require.True(t, ok, "scope lookup extends the root scope")
	assert.Equal(t, "p", a)
}

func TestCollectEntityMarkers(t *testing.T) {
	m := NewMapper(nil)
	parent := m.NodeScope(model.NewEntity("Person", false), nil)
	parent.Set("Person", "a00099")

	scope := NewScope(parent)
	text := "EXISTS (SELECT 1 FROM PERSON @Person@, ADDRESS @Address@ WHERE @Person@.MANAGER_ID=@parent.Person@.ID)"
	m.CollectEntityMarkers(scope, text, false)

	assert.Equal(t, []string{"PERSON", "ADDRESS"}, scope.Names())
	own, _ := scope.Own("Person")
	assert.Equal(t, "a00001", own, "definition shadows the inherited alias")

	m.CollectEntityMarkers(scope, "<fromPart>ADDRESS @Address@, CITY @City@</fromPart>", true)
	addr, _ := scope.Own("Address")
	assert.Equal(t, "a00002", addr, "onlyMissing keeps existing aliases")
	city, _ := scope.Own("City")
	assert.Equal(t, "a00003", city)

	out, err := m.ResolveMarkers(text, scope, parent)
	require.NoError(t, err)
	assert.Equal(t, "EXISTS (SELECT 1 FROM PERSON a00001, ADDRESS a00002 WHERE a00001.MANAGER_ID=a00099.ID)", out)
}

func TestResolveMarkersRoundTrip(t *testing.T) {
	m := NewMapper(nil)
	scope := m.RootScope()
	text := "FROM A @A@, B @B@ WHERE @A@.ID=@B@.A_ID AND @parent.A@.X=1"
	m.CollectEntityMarkers(scope, text, false)

	out, err := m.ResolveMarkers(text, scope, scope)
	require.NoError(t, err)
	assert.NotContains(t, out, "@")
}

func TestResolveMarkersMissing(t *testing.T) {
	m := NewMapper(nil)
	scope := NewScope(nil)
	scope.Set("Person", "a1")

	_, err := m.ResolveMarkers("@Person@.ID=@parent.Org@.ID", scope, NewScope(nil))
	require.Error(t, err)
	assert.True(t, IsMissingAlias(err))

	var missing *MissingAliasError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "ORG", missing.Name)
	assert.True(t, missing.Parent)
	assert.Contains(t, missing.Error(), "@parent.ORG@")
}

func TestAutoPrefix(t *testing.T) {
	one := NewScope(nil)
	one.Set("Person", "a00001")

	out, err := AutoPrefix("<attribute>LAST_NAME</attribute>", one)
	require.NoError(t, err)
	assert.Equal(t, "<attribute>@parent.PERSON@.LAST_NAME</attribute>", out)

	m := NewMapper(nil)
	resolved, err := m.ResolveMarkers(out, one, one)
	require.NoError(t, err)
	assert.Equal(t, "<attribute>a00001.LAST_NAME</attribute>", resolved)

	qualified := "<attribute>@Person@.LAST_NAME</attribute>"
	out, err = AutoPrefix(qualified, one)
	require.NoError(t, err)
	assert.Equal(t, qualified, out)

	out, err = AutoPrefix("<attribute>LAST_NAME</attribute>", NewScope(nil))
	require.NoError(t, err)
	assert.Equal(t, "<attribute>LAST_NAME</attribute>", out)

	two := NewScope(nil)
	two.Set("Person", "a00001")
	two.Set("Address", "a00002")
	_, err = AutoPrefix("<attribute>LAST_NAME</attribute>", two)
	require.Error(t, err)
	assert.True(t, IsAmbiguousAlias(err))
	assert.False(t, IsMissingAlias(err))
}
