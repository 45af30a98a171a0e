package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/pprof/profile"
	"github.com/stretchr/testify/require"

	"github.com/intprof/intprof/pkg/profiler"
	"github.com/intprof/intprof/pkg/report"
)

func testProfile() *profiler.Profile {
	return &profiler.Profile{
		Samples: []profiler.Sample{
			{
				Frames: []profiler.ResolvedFrame{
					{Name: "f", Filename: "app.vm", Line: 30},
					{Name: "main", Filename: "app.vm", Line: 10},
				},
				Count: 3,
			},
			{
				Frames: []profiler.ResolvedFrame{
					{Name: "g", Filename: "app.vm", Line: 40},
					{Name: "main", Filename: "app.vm", Line: 10},
				},
				Count: 2,
			},
		},
		Duration: 10 * time.Second,
		Period:   10 * time.Millisecond,
	}
}

func TestBuildSampleValues(t *testing.T) {
	prof := report.NewBuilder().Build(testProfile())

	require.Len(t, prof.Sample, 2)
	require.Equal(t, []int64{3, 3 * (10 * time.Millisecond).Nanoseconds()}, prof.Sample[0].Value)
	require.Equal(t, []int64{2, 2 * (10 * time.Millisecond).Nanoseconds()}, prof.Sample[1].Value)
}

func TestBuildMetadata(t *testing.T) {
	prof := report.NewBuilder().Build(testProfile())

	require.Equal(t, (10 * time.Second).Nanoseconds(), prof.DurationNanos)
	require.Equal(t, (10 * time.Millisecond).Nanoseconds(), prof.Period)
	require.Equal(t, "cpu", prof.PeriodType.Type)
	require.Equal(t, "nanoseconds", prof.PeriodType.Unit)
	require.Len(t, prof.SampleType, 2)
	require.Equal(t, "samples", prof.SampleType[0].Type)
	require.Equal(t, "count", prof.SampleType[0].Unit)
}

func TestBuildInternsFunctionsAndLocations(t *testing.T) {
	prof := report.NewBuilder().Build(testProfile())

	// f, g and main: the shared main frame must not be duplicated.
	require.Len(t, prof.Function, 3)
	require.Len(t, prof.Location, 3)

	require.Same(t, prof.Sample[0].Location[1], prof.Sample[1].Location[1])
}

func TestBuildSampleTypeOverride(t *testing.T) {
	prof := report.NewBuilder(
		report.WithSampleType("wall"),
		report.WithSampleUnit("microseconds"),
	).Build(testProfile())

	require.Equal(t, "wall", prof.PeriodType.Type)
	require.Equal(t, "microseconds", prof.PeriodType.Unit)
}

func TestWriteReportRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	err := report.NewBuilder().WriteReport(&buf, testProfile())
	require.NoError(t, err)

	parsed, err := profile.Parse(&buf)
	require.NoError(t, err)
	require.NoError(t, parsed.CheckValid())
	require.Len(t, parsed.Sample, 2)

	names := make(map[string]struct{})
	for _, fn := range parsed.Function {
		names[fn.Name] = struct{}{}
	}
	require.Contains(t, names, "f")
	require.Contains(t, names, "g")
	require.Contains(t, names, "main")
}

func TestBuildEmptyProfile(t *testing.T) {
	prof := report.NewBuilder().Build(&profiler.Profile{
		Duration: time.Second,
		Period:   10 * time.Millisecond,
	})

	require.Empty(t, prof.Sample)
	require.NoError(t, prof.CheckValid())
}
