package source_test

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/fleetpath/source"
)

// TestRoleTable locks the wire ids and sections of the full role table.
func TestRoleTable(t *testing.T) {
	cases := []struct {
		id      int
		role    source.NodeType
		section source.Section
	}{
		{1, source.Charger, source.SectionDockWaitUndock},
		{2, source.Load, source.SectionWaitPOI},
		{3, source.Unload, source.SectionWaitPOI},
		{4, source.LoadUnload, source.SectionWaitPOI},
		{5, source.LoadDock, source.SectionDockWaitUndock},
		{6, source.UnloadDock, source.SectionDockWaitUndock},
		{7, source.LoadUnloadDock, source.SectionDockWaitUndock},
		{8, source.Waiting, source.SectionNoChanges},
		{9, source.Departure, source.SectionNoChanges},
		{10, source.WaitingDeparture, source.SectionIntersection},
		{11, source.Parking, source.SectionNoChanges},
		{12, source.Queue, source.SectionNoChanges},
		{13, source.Normal, source.SectionNormal},
		{14, source.Intersection, source.SectionIntersection},
	}
	for _, c := range cases {
		got, ok := source.TypeByID(c.id)
		require.True(t, ok, "id %d must resolve", c.id)
		assert.Equal(t, c.role, got)
		assert.Equal(t, c.section, got.Section)
	}
	_, ok := source.TypeByID(15)
	assert.False(t, ok)
}

// TestOperational verifies which roles count as operational POIs.
func TestOperational(t *testing.T) {
	assert.True(t, source.Charger.Operational())
	assert.True(t, source.LoadUnloadDock.Operational())
	assert.True(t, source.Load.Operational())
	assert.True(t, source.Parking.Operational())
	assert.False(t, source.Queue.Operational())
	assert.False(t, source.Waiting.Operational())
	assert.False(t, source.Intersection.Operational())
	assert.False(t, source.Normal.Operational())
}

// TestNodeDecode_POIForms verifies every "no POI" spelling normalizes to NoPOI
// and real ids survive both string and numeric encodings.
func TestNodeDecode_POIForms(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"string zero", `{"name":"a","pos":[1,2],"type":{"id":13,"nodeSection":4},"poiId":"0"}`, source.NoPOI},
		{"number zero", `{"name":"a","pos":[1,2],"type":{"id":13,"nodeSection":4},"poiId":0}`, source.NoPOI},
		{"empty string", `{"name":"a","pos":[1,2],"type":{"id":13,"nodeSection":4},"poiId":""}`, source.NoPOI},
		{"null", `{"name":"a","pos":[1,2],"type":{"id":13,"nodeSection":4},"poiId":null}`, source.NoPOI},
		{"absent", `{"name":"a","pos":[1,2],"type":{"id":13,"nodeSection":4}}`, source.NoPOI},
		{"string id", `{"name":"a","pos":[1,2],"type":{"id":1,"nodeSection":1},"poiId":"7"}`, "7"},
		{"numeric id", `{"name":"a","pos":[1,2],"type":{"id":1,"nodeSection":1},"poiId":7}`, "7"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var n source.Node
			require.NoError(t, json.Unmarshal([]byte(c.raw), &n))
			assert.Equal(t, c.want, n.POI)
		})
	}
}

// TestNodeTypeDecode_Forms verifies the compound, bare-marker and bare-id forms.
func TestNodeTypeDecode_Forms(t *testing.T) {
	var tt source.NodeType

	require.NoError(t, json.Unmarshal([]byte(`{"id":14,"nodeSection":5}`), &tt))
	assert.Equal(t, source.Intersection, tt)

	require.NoError(t, json.Unmarshal([]byte(`"normal"`), &tt))
	assert.Equal(t, source.Normal, tt)

	require.NoError(t, json.Unmarshal([]byte(`11`), &tt))
	assert.Equal(t, source.Parking, tt)

	err := json.Unmarshal([]byte(`"queue"`), &tt)
	assert.ErrorIs(t, err, source.ErrBadNodeType)

	err = json.Unmarshal([]byte(`{"id":99,"nodeSection":1}`), &tt)
	assert.ErrorIs(t, err, source.ErrBadNodeType)
}

// TestPositionRoundTrip verifies the [x, y] wire pair survives a round trip.
func TestPositionRoundTrip(t *testing.T) {
	p := source.Position{X: 1.5, Y: -2.25}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5,-2.25]`, string(data))

	var back source.Position
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}

// TestGraphValidate covers referential integrity violations one by one.
func TestGraphValidate(t *testing.T) {
	fresh := func() *source.Graph {
		g := source.NewGraph()
		g.AddNode("1", source.Node{Name: "i1", Type: source.Intersection})
		g.AddNode("2", source.Node{Name: "i2", Type: source.Intersection})
		g.AddEdge(1, source.Edge{Start: "1", End: "2", Way: source.OneWay, Active: true})

		return g
	}

	assert.NoError(t, fresh().Validate())

	g := fresh()
	g.AddEdge(2, source.Edge{Start: "1", End: "9", Way: source.OneWay, Active: true})
	assert.ErrorIs(t, g.Validate(), source.ErrUnknownEndpoint)

	g = fresh()
	g.AddEdge(0, source.Edge{Start: "1", End: "2", Way: source.OneWay, Active: true})
	assert.ErrorIs(t, g.Validate(), source.ErrBadEdgeID)

	g = fresh()
	g.AddEdge(3, source.Edge{Start: "1", End: "2", Way: source.WayType(9), Active: true})
	assert.ErrorIs(t, g.Validate(), source.ErrBadWayType)

	g = fresh()
	g.AddNode("3", source.Node{Name: "x", Type: source.NodeType{ID: 42}})
	assert.ErrorIs(t, g.Validate(), source.ErrBadNodeType)
}

// TestGraphPOIs verifies the POI registry skips NoPOI carriers.
func TestGraphPOIs(t *testing.T) {
	g := source.NewGraph()
	g.AddNode("1", source.Node{Type: source.Charger, POI: "7"})
	g.AddNode("2", source.Node{Type: source.Parking, POI: "8"})
	g.AddNode("3", source.Node{Type: source.Intersection})

	pois := g.POIs()
	require.Len(t, pois, 2)
	assert.Equal(t, source.Charger, pois["7"])
	assert.Equal(t, source.Parking, pois["8"])
}

// TestGraphDecode verifies a whole snapshot decodes, including the
// string-keyed edge map and way-type integers.
func TestGraphDecode(t *testing.T) {
	raw := `{
		"nodes": {
			"1": {"name":"charger","pos":[0,0],"type":{"id":1,"nodeSection":1},"poiId":"10"},
			"2": {"name":"bend","pos":[3,0],"type":"normal"}
		},
		"edges": {
			"1": {"startNode":"1","endNode":"2","type":2,"isActive":true}
		}
	}`
	var g source.Graph
	require.NoError(t, json.Unmarshal([]byte(raw), &g))
	require.NoError(t, g.Validate())

	assert.Equal(t, "10", g.Nodes["1"].POI)
	assert.Equal(t, source.NoPOI, g.Nodes["2"].POI)
	assert.Equal(t, source.NarrowTwoWay, g.Edges[1].Way)
	assert.True(t, g.Edges[1].Active)
	assert.Equal(t, []string{"1", "2"}, g.NodeIDs())
	assert.Equal(t, []int{1}, g.EdgeIDs())
}
