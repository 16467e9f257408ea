package mesh

// ConfigurationError reports an unsupported or inconsistent configuration
// detected before any construction or transfer work has begun.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// GeometricConsistencyError reports a refinement step whose children fail to
// tile their parent, or vertex deduplication that did not produce exactly
// coincident vertices. It indicates a defective base mesh or refinement rule
// and is fatal.
type GeometricConsistencyError struct {
	Reason string
}

func (e *GeometricConsistencyError) Error() string {
	return "geometric consistency error: " + e.Reason
}
