package document

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/easel/internal/event"
)

func rect(id string, left, top float64) *Object {
	return &Object{ID: id, Type: TypeRect, Left: left, Top: top, Width: 20, Height: 10, Fill: "#ff0000"}
}

type recorder struct {
	types  []event.Type
	edited []EditedData
}

func record(m *event.Manager) *recorder {
	r := &recorder{}
	for _, t := range []event.Type{event.TypeDocumentLoaded, event.TypeDocumentEdited,
		event.TypeDocumentRestored, event.TypeSelectionChanged} {
		m.Subscribe(t, func(e event.Event) bool {
			r.types = append(r.types, e.Type)
			if d, ok := e.Data.(EditedData); ok {
				r.edited = append(r.edited, d)
			}
			return false
		})
	}
	return r
}

func TestMutateEmitsOneEditWithBeforeState(t *testing.T) {
	events := event.NewManager()
	r := record(events)
	doc := New(events, 800, 600)
	empty := doc.Serialize()

	require.NoError(t, doc.Mutate(AddObjects{Objects: []*Object{rect("a", 0, 0)}}))

	require.Len(t, r.edited, 1)
	assert.Equal(t, "add", r.edited[0].Operation)
	assert.True(t, r.edited[0].Before.Equal(empty))
	assert.Equal(t, 1, doc.Len())
}

func TestMutateFailureLeavesCanvasUntouched(t *testing.T) {
	events := event.NewManager()
	r := record(events)
	doc := New(events, 800, 600)
	require.NoError(t, doc.Mutate(AddObjects{Objects: []*Object{rect("a", 0, 0)}}))
	before := doc.Serialize()

	err := doc.Mutate(MoveObjects{IDs: []string{"a", "missing"}, DX: 5})
	assert.ErrorIs(t, err, ErrObjectNotFound)

	err = doc.Mutate(AddObjects{Objects: []*Object{rect("a", 1, 1)}})
	assert.ErrorIs(t, err, ErrInvalidSnapshot, "duplicate ids are rejected")

	assert.True(t, doc.Serialize().Equal(before))
	assert.Len(t, r.edited, 1)
}

func TestAddedObjectsAreNotAliased(t *testing.T) {
	doc := New(nil, 800, 600)
	o := rect("a", 0, 0)
	require.NoError(t, doc.Mutate(AddObjects{Objects: []*Object{o}}))

	o.Left = 999
	got, ok := doc.Object("a")
	require.True(t, ok)
	assert.Zero(t, got.Left)

	got.Fill = "blue"
	again, _ := doc.Object("a")
	assert.Equal(t, "#ff0000", again.Fill)
}

func TestLoadResetsSelectionAndRejectsInvalid(t *testing.T) {
	events := event.NewManager()
	r := record(events)
	doc := New(events, 800, 600)
	require.NoError(t, doc.Mutate(AddObjects{Objects: []*Object{rect("a", 0, 0), rect("b", 50, 50)}}))
	require.NoError(t, doc.Select("a"))
	good := doc.Serialize()

	err := doc.Load(Snapshot{})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
	_, err = ParseSnapshot([]byte(`{"version":1,"width":10,"height":10,"objects":[{"id":"x","type":"blob"}]}`))
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
	assert.Equal(t, []string{"a"}, doc.SelectedIDs(), "failed load keeps the selection")

	require.NoError(t, doc.Load(good))
	assert.Empty(t, doc.SelectedIDs())
	assert.Equal(t, 2, doc.Len())
	assert.Contains(t, r.types, event.TypeDocumentLoaded)
}

func TestLoadEmptyCanvas(t *testing.T) {
	doc := New(nil, 1, 1)
	snap, err := ParseSnapshot([]byte(`{"version":1,"width":1080,"height":1080,"objects":[]}`))
	require.NoError(t, err)
	require.NoError(t, doc.Load(snap))
	w, h := doc.Size()
	assert.Equal(t, 1080.0, w)
	assert.Equal(t, 1080.0, h)
	assert.Zero(t, doc.Len())
}

func TestRestoreDispatchesAfterSelectionReset(t *testing.T) {
	events := event.NewManager()
	doc := New(events, 800, 600)
	require.NoError(t, doc.Mutate(AddObjects{Objects: []*Object{rect("a", 0, 0)}}))
	snap := doc.Serialize()
	require.NoError(t, doc.Select("a"))

	called := false
	var selectedAtRestore []string
	events.Subscribe(event.TypeDocumentRestored, func(event.Event) bool {
		called = true
		selectedAtRestore = doc.SelectedIDs()
		return false
	})
	require.NoError(t, doc.Restore(snap))
	assert.True(t, called)
	assert.Empty(t, selectedAtRestore)
}

func TestSnapshotRoundTrip(t *testing.T) {
	doc := New(nil, 800, 600)
	group := &Object{ID: "g", Type: TypeGroup, Width: 100, Height: 100, Children: []*Object{
		{ID: "g1", Type: TypeText, Text: "hello", FontSize: 24},
		{ID: "g2", Type: TypeEllipse, Width: 5, Height: 5, Selectable: Bool(false)},
	}}
	require.NoError(t, doc.Mutate(AddObjects{Objects: []*Object{rect("a", 1.5, 2.5), group}}))
	require.NoError(t, doc.Mutate(SetBackground{Color: "#fafafa"}))
	snap := doc.Serialize()

	parsed, err := ParseSnapshot(snap.Bytes())
	require.NoError(t, err)
	assert.True(t, parsed.Equal(snap))

	other := New(nil, 1, 1)
	require.NoError(t, other.Load(parsed))
	assert.True(t, other.Serialize().Equal(snap))
	assert.Equal(t, "#fafafa", other.Background())
}

func TestValidateRejectsStructuralErrors(t *testing.T) {
	cases := map[string]*Canvas{
		"negative size": {Width: -1, Height: 10},
		"nan size":      {Width: math.NaN(), Height: 10},
		"empty id":      {Width: 1, Height: 1, Objects: []*Object{{Type: TypeRect}}},
		"nested dup": {Width: 1, Height: 1, Objects: []*Object{
			{ID: "a", Type: TypeGroup, Children: []*Object{{ID: "a", Type: TypeRect}}},
		}},
		"children on rect": {Width: 1, Height: 1, Objects: []*Object{
			{ID: "a", Type: TypeRect, Children: []*Object{{ID: "b", Type: TypeRect}}},
		}},
		"infinite left": {Width: 1, Height: 1, Objects: []*Object{{ID: "a", Type: TypeRect, Left: math.Inf(1)}}},
		"null child": {Width: 1, Height: 1, Objects: []*Object{
			{ID: "g", Type: TypeGroup, Children: []*Object{nil}},
		}},
		"null grandchild": {Width: 1, Height: 1, Objects: []*Object{
			{ID: "g", Type: TypeGroup, Children: []*Object{
				{ID: "h", Type: TypeGroup, Children: []*Object{{ID: "a", Type: TypeRect}, nil}},
			}},
		}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewSnapshot(c)
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
		})
	}

	_, err := ParseSnapshot([]byte(`{"version":2,"width":1,"height":1,"objects":[]}`))
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
	_, err = ParseSnapshot([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	require.NotPanics(t, func() {
		_, err = ParseSnapshot([]byte(`{"version":1,"width":1,"height":1,"objects":[{"id":"g","type":"group","objects":[null]}]}`))
	})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestMutateRejectsNullChild(t *testing.T) {
	doc := New(nil, 800, 600)
	group := &Object{ID: "g", Type: TypeGroup, Children: []*Object{nil}}
	var err error
	require.NotPanics(t, func() {
		err = doc.Mutate(AddObjects{Objects: []*Object{group}})
	})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
	assert.Zero(t, doc.Len())
}

func TestCanvasCloneIsDeep(t *testing.T) {
	c := NewCanvas(100, 100, "#fff")
	c.Objects = append(c.Objects, &Object{
		ID: "g", Type: TypeGroup, Selectable: Bool(true),
		Children: []*Object{{ID: "a", Type: TypeRect, Left: 5}},
	})

	out := c.Clone()
	out.Objects[0].Children[0].Left = 50
	*out.Objects[0].Selectable = false
	out.Objects = append(out.Objects, &Object{ID: "b", Type: TypeRect})

	assert.Equal(t, 5.0, c.Objects[0].Children[0].Left)
	assert.True(t, c.Objects[0].IsSelectable())
	assert.Len(t, c.Objects, 1)

	assert.NotNil(t, (&Canvas{}).Clone().Objects)
	assert.Nil(t, (*Object)(nil).Clone())
}

func TestSelectAllSkipsNonSelectable(t *testing.T) {
	events := event.NewManager()
	r := record(events)
	doc := New(events, 800, 600)
	locked := rect("locked", 0, 0)
	locked.Selectable = Bool(false)
	require.NoError(t, doc.Mutate(AddObjects{Objects: []*Object{rect("a", 0, 0), locked, rect("b", 0, 0)}}))

	assert.Equal(t, 2, doc.SelectAll())
	assert.Equal(t, []string{"a", "b"}, doc.SelectedIDs())
	assert.NotContains(t, r.types[1:], event.TypeDocumentEdited, "selection never counts as an edit")

	require.NoError(t, doc.Select("locked"))
	assert.Empty(t, doc.SelectedIDs())
	assert.ErrorIs(t, doc.Select("nope"), ErrObjectNotFound)
}

func TestRemovePrunesSelection(t *testing.T) {
	doc := New(nil, 800, 600)
	require.NoError(t, doc.Mutate(AddObjects{Objects: []*Object{rect("a", 0, 0), rect("b", 0, 0)}}))
	doc.SelectAll()

	require.NoError(t, doc.Mutate(RemoveObjects{IDs: []string{"a"}}))
	assert.Equal(t, []string{"b"}, doc.SelectedIDs())
}

func TestObjectAtPicksTopmostSelectable(t *testing.T) {
	doc := New(nil, 800, 600)
	top := rect("top", 5, 5)
	top.Selectable = Bool(false)
	require.NoError(t, doc.Mutate(AddObjects{Objects: []*Object{rect("bottom", 0, 0), rect("middle", 5, 5), top}}))

	o, ok := doc.ObjectAt(10, 8)
	require.True(t, ok)
	assert.Equal(t, "middle", o.ID)

	_, ok = doc.ObjectAt(500, 500)
	assert.False(t, ok)
}

func TestReorder(t *testing.T) {
	doc := New(nil, 800, 600)
	require.NoError(t, doc.Mutate(AddObjects{Objects: []*Object{rect("a", 0, 0), rect("b", 0, 0), rect("c", 0, 0)}}))

	order := func() []string {
		var ids []string
		for _, o := range doc.Objects() {
			ids = append(ids, o.ID)
		}
		return ids
	}

	require.NoError(t, doc.Mutate(Reorder{ID: "a", Direction: BringForward}))
	assert.Equal(t, []string{"b", "a", "c"}, order())
	require.NoError(t, doc.Mutate(Reorder{ID: "a", Direction: BringToFront}))
	assert.Equal(t, []string{"b", "c", "a"}, order())
	require.NoError(t, doc.Mutate(Reorder{ID: "a", Direction: SendToBack}))
	assert.Equal(t, []string{"a", "b", "c"}, order())
	require.NoError(t, doc.Mutate(Reorder{ID: "a", Direction: SendBackward}))
	assert.Equal(t, []string{"a", "b", "c"}, order())
}

func TestOperationsValidateInput(t *testing.T) {
	doc := New(nil, 800, 600)
	require.NoError(t, doc.Mutate(AddObjects{Objects: []*Object{rect("a", 0, 0)}}))

	assert.ErrorIs(t, doc.Mutate(SetText{ID: "a", Text: "x"}), ErrInvalidOperation)
	assert.ErrorIs(t, doc.Mutate(ResizeObject{ID: "a", Width: -1}), ErrInvalidOperation)
	assert.ErrorIs(t, doc.Mutate(ResizeCanvas{Width: 0, Height: 10}), ErrInvalidOperation)

	require.NoError(t, doc.Mutate(RotateObject{ID: "a", Angle: -90}))
	o, _ := doc.Object("a")
	assert.Equal(t, 270.0, o.Angle)

	fill := "blue"
	require.NoError(t, doc.Mutate(Restyle{IDs: []string{"a"}, Fill: &fill}))
	o, _ = doc.Object("a")
	assert.Equal(t, "blue", o.Fill)
}

func TestCoalesceKeysAreOrderIndependent(t *testing.T) {
	a := MoveObjects{IDs: []string{"x", "y"}}
	b := MoveObjects{IDs: []string{"y", "x"}}
	assert.Equal(t, a.CoalesceKey(), b.CoalesceKey())
	assert.Empty(t, AddObjects{}.CoalesceKey())
}
