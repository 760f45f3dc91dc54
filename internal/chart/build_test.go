package chart

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/scrollviz/internal/dataset"
)

func table(t *testing.T, body string) *dataset.Table {
	t.Helper()
	raw, err := dataset.ParseCSV(strings.NewReader(body))
	require.NoError(t, err)
	return dataset.CoerceTable(raw)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(strings.ToUpper(string(k)))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("sankey")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestNameValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Item
	}{
		{
			name: "single row uses numeric columns",
			body: "Label,Christians,Muslims\nworld,31.2,24.1\n",
			want: []Item{{Name: "Christians", Value: 31.2}, {Name: "Muslims", Value: 24.1}},
		},
		{
			name: "two columns value second",
			body: "Country,Population\nCanada,38\nMexico,126\n",
			want: []Item{{Name: "Canada", Value: 38}, {Name: "Mexico", Value: 126}},
		},
		{
			name: "two columns value first",
			body: "Share,Group\n40,Young\n60,Old\n",
			want: []Item{{Name: "Young", Value: 40}, {Name: "Old", Value: 60}},
		},
		{
			name: "non numeric rows skipped",
			body: "k,v\na,1\nb,n/a\nc,3\n",
			want: []Item{{Name: "a", Value: 1}, {Name: "c", Value: 3}},
		},
		{
			name: "no numeric column",
			body: "k,v\na,b\nc,d\n",
			want: nil,
		},
		{
			name: "three columns many rows",
			body: "a,b,c\n1,2,3\n4,5,6\n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NameValues(table(t, tt.body)))
		})
	}
}

func TestBuild_Items(t *testing.T) {
	for _, kind := range []Kind{KindBar, KindPie, KindDonut} {
		t.Run(string(kind), func(t *testing.T) {
			fig, err := Build(kind, table(t, "k,v\na,1\nb,3\n"))
			require.NoError(t, err)
			assert.Equal(t, kind, fig.Kind)
			assert.InDelta(t, 4.0, fig.Total(), 0)
			assert.InDelta(t, 3.0, fig.MaxValue(), 0)
		})
	}
}

func TestBuild_NothingToDraw(t *testing.T) {
	tests := []struct {
		kind Kind
		body string
	}{
		{KindBar, "k,v\na,b\nc,d\n"},
		{KindPie, "a,b\n"},
		{KindGrouped, "a,b\n1,2\n"},
		{KindDonuts, "a,b,c\nx,y,z\n"},
		{KindGauge, "a,b\nx,y\n"},
		{KindHierarchy, "name,value\na,1\n"},
		{KindStacked, "a,b\n1,2\n"},
		{KindStacked, "a,b,c\nx,y,0\nx,z,-1\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			_, err := Build(tt.kind, table(t, tt.body))
			assert.ErrorIs(t, err, ErrNothingToDraw)
		})
	}
}

func TestBuild_NonFiniteValues(t *testing.T) {
	t.Run("infinite rows skipped", func(t *testing.T) {
		for _, kind := range []Kind{KindBar, KindPie, KindDonut} {
			fig, err := Build(kind, table(t, "name,value\na,1e999\nb,5\nc,-Infinity\n"))
			require.NoError(t, err)
			assert.Equal(t, []Item{{Name: "b", Value: 5}}, fig.Items)
		}
	})

	t.Run("nothing finite left", func(t *testing.T) {
		tests := []struct {
			kind Kind
			body string
		}{
			{KindBar, "name,value\na,1e999\nb,Infinity\n"},
			{KindPie, "Christians,Muslims\n1e999,-1e999\n"},
			{KindGrouped, "a,b,c\nx,y,1e999\n"},
			{KindDonuts, "a,b,c\nx,y,Infinity\n"},
			{KindStacked, "a,b,c\nx,y,1e999\n"},
			{KindGauge, "share\n1e999\n"},
		}
		for _, tt := range tests {
			_, err := Build(tt.kind, table(t, tt.body))
			assert.ErrorIs(t, err, ErrNothingToDraw, tt.kind)
		}
	})

	t.Run("hierarchy treats infinite as zero", func(t *testing.T) {
		fig, err := Build(KindHierarchy, table(t, "id,parent id,value\nr,,\na,r,1e999\nb,r,2\n"))
		require.NoError(t, err)
		assert.InDelta(t, 2.0, fig.Root.Value, 0)
	})

	t.Run("hierarchy overflow", func(t *testing.T) {
		_, err := Build(KindHierarchy, table(t, "id,parent id,value\nr,,\na,r,1e308\nb,r,1e308\n"))
		assert.ErrorIs(t, err, ErrNothingToDraw)
	})
}

func TestBuild_UnknownKind(t *testing.T) {
	_, err := Build(Kind("radar"), table(t, "k,v\na,1\n"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestBuild_Grouped(t *testing.T) {
	fig, err := Build(KindGrouped, table(t,
		"Identity,Religion,Value\nNational,Christian,0.6\nNational,Muslim,0.3\nReligious,Christian,0.7\nReligious,Muslim,0.5\n"))
	require.NoError(t, err)

	require.Len(t, fig.Groups, 2)
	assert.Equal(t, "National", fig.Groups[0].Name)
	assert.Equal(t, []Item{{Name: "Christian", Value: 0.7}, {Name: "Muslim", Value: 0.5}}, fig.Groups[1].Items)
	assert.Equal(t, []string{"Christian", "Muslim"}, fig.Series())
	assert.InDelta(t, 0.7, fig.MaxValue(), 1e-9)
}

func TestBuild_Stacked(t *testing.T) {
	fig, err := Build(KindStacked, table(t, "Identity,Imp,Religion,Value\n"+
		"National,High,Christian,30\n"+
		"National,High,Muslim,10\n"+
		"National,Low,Christian,5\n"+
		"National,Low,Muslim,5\n"+
		"Religious,High,Christian,0\n"+
		"Religious,High,Muslim,n/a\n"))
	require.NoError(t, err)

	assert.Equal(t, KindStacked, fig.Kind)
	require.Len(t, fig.Groups, 2, "bars with nothing positive are dropped")
	assert.Equal(t, "National / High", fig.Groups[0].Name)
	assert.Equal(t, []Item{{Name: "Christian", Value: 0.75}, {Name: "Muslim", Value: 0.25}}, fig.Groups[0].Items)
	assert.Equal(t, "National / Low", fig.Groups[1].Name)
	assert.InDelta(t, 1.0, sumItems(fig.Groups[1].Items), 1e-9)
	assert.Equal(t, []string{"Christian", "Muslim"}, fig.Series())

	fig, err = Build(KindStacked, table(t, "Region,Faith,Share\nEU,A,1\nEU,B,3\n"))
	require.NoError(t, err)
	require.Len(t, fig.Groups, 1)
	assert.Equal(t, "EU", fig.Groups[0].Name)
	assert.InDelta(t, 0.75, fig.Groups[0].Items[1].Value, 1e-9)
}

func TestBuild_Donuts(t *testing.T) {
	fig, err := Build(KindDonuts, table(t, "Region,Faith,Share\nEU,A,1\nEU,B,2\nAS,A,3\n"))
	require.NoError(t, err)

	assert.Equal(t, KindDonuts, fig.Kind)
	require.Len(t, fig.Groups, 2)
	assert.Len(t, fig.Groups[0].Items, 2)
	assert.Equal(t, "AS", fig.Groups[1].Name)
}

func TestBuild_Gauge(t *testing.T) {
	tests := []struct {
		body string
		want float64
	}{
		{"label,share\nbelievers,0.6962\n", 0.6962},
		{"share\n69.62\n", 0.6962},
		{"share\n-3\n", 0},
		{"share\n500\n", 1},
	}
	for _, tt := range tests {
		fig, err := Build(KindGauge, table(t, tt.body))
		require.NoError(t, err)
		assert.InDelta(t, tt.want, fig.Fraction, 1e-9)
	}
}

func TestBuild_Hierarchy(t *testing.T) {
	fig, err := Build(KindHierarchy, table(t,
		"id,parent id,value\nworld,,\nchristian,world,\ncatholic,christian,50\nprotestant,christian,40\nmuslim,world,70\n"))
	require.NoError(t, err)

	root := fig.Root
	require.NotNil(t, root)
	assert.Equal(t, "world", root.ID)
	assert.InDelta(t, 160.0, root.Value, 0)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "christian", root.Children[0].ID, "sorted by descending value")
	assert.InDelta(t, 90.0, root.Children[0].Value, 0)
	assert.Equal(t, 2, root.Children[0].Children[0].Depth)

	count := 0
	root.Walk(func(*Node) { count++ })
	assert.Equal(t, 5, count)
}

func TestBuild_HierarchyErrors(t *testing.T) {
	tests := map[string]string{
		"no root":        "id,parent id,value\na,b,1\nb,a,1\n",
		"two roots":      "id,parent id,value\na,,1\nb,,1\n",
		"missing parent": "id,parent id,value\na,,1\nb,zz,1\n",
		"duplicate":      "id,parent id,value\na,,1\na,,1\n",
		"cycle":          "id,parent id,value\nr,,1\na,b,1\nb,a,1\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Build(KindHierarchy, table(t, body))
			assert.ErrorIs(t, err, ErrNothingToDraw)
		})
	}
}

func TestSurfaceAndRenderer(t *testing.T) {
	s := &Surface{}
	_, ok := s.Figure()
	assert.False(t, ok)

	draw := Renderer(KindBar, "Population", s, zerolog.Nop())

	draw(table(t, "k,v\na,1\n"))
	fig, ok := s.Figure()
	require.True(t, ok)
	assert.Equal(t, "Population", fig.Title)
	assert.Equal(t, uint64(2), s.Generation(), "clear then draw")

	assert.NotPanics(t, func() { draw(table(t, "k,v\na,b\nc,d\n")) })
	_, ok = s.Figure()
	assert.False(t, ok, "unchartable data leaves the surface cleared")
	assert.Equal(t, uint64(3), s.Generation())
}

func TestColors(t *testing.T) {
	assert.Equal(t, Palette[0], Color(0))
	assert.Equal(t, Palette[1], Color(len(Palette)+1))
	assert.Equal(t, Palette[1], Color(-1))
	assert.Equal(t, DepthPalette[0], DepthColor(-2))
	assert.Equal(t, DepthPalette[len(DepthPalette)-1], DepthColor(9))
}
