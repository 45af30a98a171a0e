package report

type BuilderOption func(*Builder)

// WithSampleType overrides the profile's value type, "cpu" by default.
func WithSampleType(sampleType string) BuilderOption {
	return func(b *Builder) {
		b.sampleType = sampleType
	}
}

// WithSampleUnit overrides the measurement unit of the sampling period,
// "nanoseconds" by default.
func WithSampleUnit(unit string) BuilderOption {
	return func(b *Builder) {
		b.sampleUnit = unit
	}
}
