package sos

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/sosgridgo/internal/array"
	"github.com/vk/sosgridgo/internal/convert"
	"github.com/vk/sosgridgo/internal/dag"
	"github.com/vk/sosgridgo/internal/metadata"
	"github.com/vk/sosgridgo/internal/model"
	"github.com/vk/sosgridgo/internal/resolution"
	"github.com/vk/sosgridgo/internal/resultstore"
)

func identity(in, out string) func(map[string]float64) map[string]float64 {
	return func(v map[string]float64) map[string]float64 { return map[string]float64{out: v[in]} }
}

func TestAddModel_DuplicateName(t *testing.T) {
	s := newComposite(t, "sos")
	a := newFake("a", nil, []string{"x"}, nil, nil)
	require.NoError(t, s.AddModel(a))

	err := s.AddModel(newFake("a", nil, []string{"y"}, nil, nil))
	assert.ErrorIs(t, err, ErrDuplicateName)

	err = s.AddModel(newFake("sos", nil, nil, nil, nil))
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, []string{"a"}, s.Models())
}

func TestAddDependency_Validation(t *testing.T) {
	s := newComposite(t, "sos")
	mustAdd(t, s,
		newFake("source", nil, []string{"out"}, nil, nil),
		newFake("sink", []string{"in"}, nil, nil, nil),
	)

	tests := []struct {
		name   string
		source string
		output string
		sink   string
		input  string
		side   Side
		port   string
		model  string
	}{
		{"unknown source output", "source", "nope", "sink", "in", SourceSide, "nope", "source"},
		{"unknown sink input", "source", "out", "sink", "nope", SinkSide, "nope", "sink"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := s.AddDependency(tc.source, tc.output, tc.sink, tc.input)
			require.ErrorIs(t, err, ErrUnknownPort)

			var portErr *UnknownPortError
			require.True(t, errors.As(err, &portErr))
			assert.Equal(t, tc.model, portErr.Model)
			assert.Equal(t, tc.side, portErr.Side)
			assert.Equal(t, tc.port, portErr.Port)
		})
	}

	t.Run("unknown model", func(t *testing.T) {
		assert.ErrorIs(t, s.AddDependency("ghost", "out", "sink", "in"), ErrUnknownModel)
		assert.ErrorIs(t, s.AddDependency("source", "out", "ghost", "in"), ErrUnknownModel)
	})

	t.Run("input bound twice", func(t *testing.T) {
		require.NoError(t, s.AddDependency("source", "out", "sink", "in"))
		assert.ErrorIs(t, s.AddDependency("source", "out", "sink", "in"), ErrInputAlreadyBound)
	})
	assert.Len(t, s.Dependencies(), 1)
}

func TestAddDependency_UnitsMismatch(t *testing.T) {
	s := newComposite(t, "sos")
	src := newFake("source", nil, []string{"out"}, nil, nil)
	dst := &fakeModel{name: "sink", inputs: metadata.MustSet(metadata.Spec{
		Name: "in", SpatialResolution: "national", TemporalResolution: "annual", Units: "litres",
	}), outputs: &metadata.Set{}}
	mustAdd(t, s, src, dst)

	err := s.AddDependency("source", "out", "sink", "in")
	assert.ErrorIs(t, err, convert.ErrInconsistentUnits)
}

func TestFreeInputs(t *testing.T) {
	s := newComposite(t, "sos")
	mustAdd(t, s,
		newFake("a", []string{"p", "q"}, []string{"x"}, nil, nil),
		newFake("b", []string{"x", "r"}, []string{"y"}, nil, nil),
	)

	names := func() []string {
		var out []string
		for _, p := range s.FreeInputs() {
			out = append(out, p.Model+"."+p.Spec.Name)
		}
		return out
	}
	assert.Equal(t, []string{"a.p", "a.q", "b.x", "b.r"}, names())

	require.NoError(t, s.AddDependency("a", "x", "b", "x"))
	require.NoError(t, s.CheckDependencies())
	assert.Equal(t, []string{"a.p", "a.q", "b.r"}, names())
	assert.Equal(t, []string{"p", "q", "r"}, s.Inputs().Names())
	assert.Equal(t, []string{"x", "y"}, s.Outputs().Names())
}

func TestRun_AcyclicOrder(t *testing.T) {
	var calls []string
	s := newComposite(t, "sos")
	// Inserted consumer first so that ordering has to come from the graph.
	mustAdd(t, s,
		newFake("c", []string{"y"}, []string{"z"}, &calls, func(v map[string]float64) map[string]float64 {
			return map[string]float64{"z": v["y"] * 10}
		}),
		newFake("a", []string{"seed"}, []string{"x"}, &calls, func(v map[string]float64) map[string]float64 {
			return map[string]float64{"x": v["seed"] + 1}
		}),
		newFake("b", []string{"x"}, []string{"y"}, &calls, func(v map[string]float64) map[string]float64 {
			return map[string]float64{"y": v["x"] * 2}
		}),
		newFake("d", nil, []string{"w"}, &calls, func(map[string]float64) map[string]float64 {
			return map[string]float64{"w": 7}
		}),
	)
	require.NoError(t, s.AddDependency("a", "x", "b", "x"))
	require.NoError(t, s.AddDependency("b", "y", "c", "y"))

	order, err := s.ExecutionOrder()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}, {"d"}}, order)

	results, err := s.Run(context.Background(), 2010, array.Data{"seed": array.Scalar(1)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, calls)
	assert.Equal(t, 2.0, results["a"]["x"][0][0])
	assert.Equal(t, 4.0, results["b"]["y"][0][0])
	assert.Equal(t, 40.0, results["c"]["z"][0][0])
	assert.Equal(t, 7.0, results["d"]["w"][0][0])

	// Same inputs, same order and results.
	calls = nil
	s2 := newComposite(t, "sos")
	for _, name := range s.Models() {
		m, _ := s.Model(name)
		require.NoError(t, s2.AddModel(m))
	}
	for _, d := range s.Dependencies() {
		require.NoError(t, s2.AddDependency(d.Source, d.Output, d.Sink, d.Input))
	}
	again, err := s2.Run(context.Background(), 2010, array.Data{"seed": array.Scalar(1)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, calls)
	assert.Equal(t, results, again)
}

func TestRun_MissingDependency(t *testing.T) {
	s := newComposite(t, "sos")
	mustAdd(t, s, newFake("a", []string{"rainfall"}, []string{"x"}, nil, identity("rainfall", "x")))

	_, err := s.Run(context.Background(), 2010, nil)
	require.ErrorIs(t, err, ErrMissingDependency)

	var missing *MissingDependencyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "a", missing.Model)
	assert.Equal(t, "rainfall", missing.Input)
}

func TestRun_RecordsResults(t *testing.T) {
	s := newComposite(t, "sos")
	mustAdd(t, s, newFake("a", nil, []string{"x"}, nil, func(map[string]float64) map[string]float64 {
		return map[string]float64{"x": 3}
	}))
	ctx := context.Background()

	_, err := s.Run(ctx, 2010, nil)
	require.NoError(t, err)
	_, err = s.Run(ctx, 2015, nil)
	require.NoError(t, err)

	steps, err := s.Store().Timesteps(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2010, 2015}, steps)

	out, ok, err := s.Store().GetOutputs(ctx, 2015, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, array.Data{"x": array.Scalar(3)}, out)

	_, err = s.Run(ctx, 2015, nil)
	assert.ErrorIs(t, err, resultstore.ErrAlreadyRecorded)
}

func TestRun_ConvertsBetweenResolutions(t *testing.T) {
	days := []float64{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	monthly := &fakeModel{
		name:    "monthly",
		inputs:  &metadata.Set{},
		outputs: metadata.MustSet(metadata.Spec{Name: "days", SpatialResolution: "national", TemporalResolution: "months", Units: "days"}),
		fn: func(int, array.Data) (array.Data, error) {
			return array.Data{"days": array.Array{days}}, nil
		},
	}
	var seen array.Array
	seasonal := &fakeModel{
		name:    "seasonal",
		inputs:  metadata.MustSet(metadata.Spec{Name: "days", SpatialResolution: "national", TemporalResolution: "seasons", Units: "days"}),
		outputs: &metadata.Set{},
		fn: func(_ int, in array.Data) (array.Data, error) {
			seen = in["days"]
			return array.Data{}, nil
		},
	}

	s := newComposite(t, "sos")
	mustAdd(t, s, monthly, seasonal)
	require.NoError(t, s.AddDependency("monthly", "days", "seasonal", "days"))

	_, err := s.Run(context.Background(), 2010, nil)
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.InDeltaSlice(t, []float64{31 + 31 + 28, 31 + 30 + 31, 30 + 31 + 31, 30 + 31 + 30}, seen[0], 1e-9)
}

func TestRun_UnknownResolutionOnEdge(t *testing.T) {
	src := &fakeModel{
		name: "src", inputs: &metadata.Set{},
		outputs: metadata.MustSet(metadata.Spec{Name: "v", SpatialResolution: "national", TemporalResolution: "fortnights", Units: "u"}),
		fn: func(int, array.Data) (array.Data, error) {
			return array.Data{"v": array.Scalar(1)}, nil
		},
	}
	dst := &fakeModel{
		name: "dst", outputs: &metadata.Set{},
		inputs: metadata.MustSet(metadata.Spec{Name: "v", SpatialResolution: "national", TemporalResolution: "annual", Units: "u"}),
		fn: func(int, array.Data) (array.Data, error) { return array.Data{}, nil },
	}
	s := newComposite(t, "sos")
	mustAdd(t, s, src, dst)
	require.NoError(t, s.AddDependency("src", "v", "dst", "v"))

	_, err := s.Run(context.Background(), 2010, nil)
	assert.ErrorIs(t, err, resolution.ErrUnknownResolution)
}

func TestRun_ChildError(t *testing.T) {
	boom := errors.New("boom")
	s := newComposite(t, "sos")
	mustAdd(t, s, &fakeModel{
		name: "broken", inputs: &metadata.Set{}, outputs: &metadata.Set{},
		fn: func(int, array.Data) (array.Data, error) { return nil, boom },
	})
	_, err := s.Run(context.Background(), 2010, nil)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `model "broken" at timestep 2010`)
}

func TestNestedComposite(t *testing.T) {
	inner := newComposite(t, "inner")
	mustAdd(t, inner,
		newFake("double", []string{"x"}, []string{"y"}, nil, func(v map[string]float64) map[string]float64 {
			return map[string]float64{"y": v["x"] * 2}
		}),
		newFake("inc", []string{"y"}, []string{"z"}, nil, func(v map[string]float64) map[string]float64 {
			return map[string]float64{"z": v["y"] + 1}
		}),
	)
	require.NoError(t, inner.AddDependency("double", "y", "inc", "y"))

	outer := newComposite(t, "outer")
	mustAdd(t, outer,
		newFake("producer", nil, []string{"x"}, nil, func(map[string]float64) map[string]float64 {
			return map[string]float64{"x": 5}
		}),
		inner,
	)
	assert.Equal(t, []string{"x"}, inner.Inputs().Names())
	require.NoError(t, outer.AddDependency("producer", "x", "inner", "x"))

	results, err := outer.Run(context.Background(), 2010, nil)
	require.NoError(t, err)
	assert.Equal(t, 10.0, results["inner"]["y"][0][0])
	assert.Equal(t, 11.0, results["inner"]["z"][0][0])

	out, ok, err := inner.Store().GetOutputs(context.Background(), 2010, "inc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 11.0, out["z"][0][0])
}

func TestNestedComposite_Unsupported(t *testing.T) {
	t.Run("ambiguous outputs", func(t *testing.T) {
		inner := newComposite(t, "inner")
		mustAdd(t, inner,
			newFake("a", nil, []string{"x"}, nil, nil),
			newFake("b", nil, []string{"x"}, nil, nil),
		)
		outer := newComposite(t, "outer")
		assert.ErrorIs(t, outer.AddModel(inner), ErrUnsupportedComposition)
	})

	t.Run("ambiguous inputs", func(t *testing.T) {
		inner := newComposite(t, "inner")
		mustAdd(t, inner,
			newFake("a", []string{"x"}, nil, nil, nil),
			&fakeModel{name: "b", outputs: &metadata.Set{}, inputs: metadata.MustSet(metadata.Spec{
				Name: "x", SpatialResolution: "rect", TemporalResolution: "annual", Units: "unit",
			})},
		)
		outer := newComposite(t, "outer")
		assert.ErrorIs(t, outer.AddModel(inner), ErrUnsupportedComposition)
	})

	t.Run("shared input on the same basis", func(t *testing.T) {
		inner := newComposite(t, "inner")
		mustAdd(t, inner,
			newFake("a", []string{"x"}, []string{"p"}, nil, nil),
			newFake("b", []string{"x"}, []string{"q"}, nil, nil),
		)
		outer := newComposite(t, "outer")
		assert.NoError(t, outer.AddModel(inner))
		assert.Equal(t, []string{"x"}, inner.Inputs().Names())
	})

	t.Run("cycle through nested composite", func(t *testing.T) {
		inner := newComposite(t, "inner")
		mustAdd(t, inner, newFake("a", []string{"x"}, []string{"y"}, nil, identity("x", "y")))
		outer := newComposite(t, "outer")
		mustAdd(t, outer, inner, newFake("b", []string{"y"}, []string{"x"}, nil, identity("y", "x")))
		require.NoError(t, outer.AddDependency("inner", "y", "b", "y"))
		require.NoError(t, outer.AddDependency("b", "x", "inner", "x"))

		assert.ErrorIs(t, outer.CheckDependencies(), ErrUnsupportedComposition)
		_, err := outer.Run(context.Background(), 2010, nil)
		assert.ErrorIs(t, err, ErrUnsupportedComposition)
	})
}

func TestNestedComposite_GrowsAfterNesting(t *testing.T) {
	constant := func(name string, v float64) *fakeModel {
		return newFake(name, nil, []string{"x"}, nil, func(map[string]float64) map[string]float64 {
			return map[string]float64{"x": v}
		})
	}
	inner := newComposite(t, "inner")
	mustAdd(t, inner, constant("a", 1))

	outer := newComposite(t, "outer")
	mustAdd(t, outer, inner, newFake("sink", []string{"x"}, []string{"y"}, nil, identity("x", "y")))
	require.NoError(t, outer.AddDependency("inner", "x", "sink", "x"))

	results, err := outer.Run(context.Background(), 2010, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, results["sink"]["y"][0][0])

	// A second producer of x makes the nested composite ambiguous.
	mustAdd(t, inner, constant("b", 2))

	assert.ErrorIs(t, outer.CheckDependencies(), ErrUnsupportedComposition)
	for range 20 {
		_, err := outer.Run(context.Background(), 2015, nil)
		require.ErrorIs(t, err, ErrUnsupportedComposition)
	}
}

func TestSimulate_DuplicateOutputs(t *testing.T) {
	s := newComposite(t, "sos")
	mustAdd(t, s,
		newFake("a", nil, []string{"x"}, nil, func(map[string]float64) map[string]float64 {
			return map[string]float64{"x": 1}
		}),
		newFake("b", nil, []string{"x"}, nil, func(map[string]float64) map[string]float64 {
			return map[string]float64{"x": 2}
		}),
	)

	_, err := s.Simulate(context.Background(), 2010, nil)
	require.ErrorIs(t, err, ErrUnsupportedComposition)
	assert.Contains(t, err.Error(), `output "x" from both "a" and "b"`)
}

func TestRun_WrongShapeOnSameBasisEdge(t *testing.T) {
	s := newComposite(t, "sos")
	mustAdd(t, s,
		&fakeModel{
			name:    "wide",
			inputs:  &metadata.Set{},
			outputs: ports("x"),
			fn: func(int, array.Data) (array.Data, error) {
				return array.Data{"x": {{1, 2}}}, nil
			},
		},
		newFake("sink", []string{"x"}, []string{"y"}, nil, identity("x", "y")),
	)
	require.NoError(t, s.AddDependency("wide", "x", "sink", "x"))

	_, err := s.Run(context.Background(), 2010, nil)
	require.ErrorIs(t, err, model.ErrBadOutput)
	assert.Contains(t, err.Error(), "national/annual")
}

func TestDependencyGraph_IsACopy(t *testing.T) {
	s := newComposite(t, "sos")
	mustAdd(t, s,
		newFake("a", nil, []string{"x"}, nil, nil),
		newFake("b", []string{"x"}, nil, nil, nil),
	)
	require.NoError(t, s.AddDependency("a", "x", "b", "x"))

	g, err := s.DependencyGraph()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, g.Nodes())
	assert.Equal(t, []dag.Edge{{From: "a", To: "b"}}, g.Edges())

	g.AddNode("intruder")
	again, err := s.DependencyGraph()
	require.NoError(t, err)
	assert.NotContains(t, again.Nodes(), "intruder")
}

func TestSimulate_FlattensOutputs(t *testing.T) {
	s := newComposite(t, "sos")
	mustAdd(t, s,
		newFake("a", []string{"seed"}, []string{"x"}, nil, identity("seed", "x")),
		newFake("b", []string{"x"}, []string{"y"}, nil, identity("x", "y")),
	)
	require.NoError(t, s.AddDependency("a", "x", "b", "x"))

	var m model.Model = s
	out, err := m.Simulate(context.Background(), 2010, array.Data{"seed": array.Scalar(4)})
	require.NoError(t, err)
	assert.Equal(t, array.Data{"x": array.Scalar(4), "y": array.Scalar(4)}, out)
}

func TestObserver(t *testing.T) {
	obs := &recordingObserver{}
	s := newComposite(t, "sos", WithObserver(obs))
	mustAdd(t, s,
		newFake("a", nil, []string{"x"}, nil, func(map[string]float64) map[string]float64 {
			return map[string]float64{"x": 1}
		}),
		newFake("b", []string{"x"}, nil, nil, func(map[string]float64) map[string]float64 { return nil }),
	)
	require.NoError(t, s.AddDependency("a", "x", "b", "x"))

	_, err := s.Run(context.Background(), 2020, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, obs.simulated)
	assert.Equal(t, []int{2020}, obs.timesteps)
	assert.Empty(t, obs.groups)
}
