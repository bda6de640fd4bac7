package model

// Worker performs tasks during the slots it is available.
type Worker struct {
	WorkerID           string `json:"WorkerID" yaml:"WorkerID" mapstructure:"WorkerID"`
	WorkerName         string `json:"WorkerName,omitempty" yaml:"WorkerName,omitempty" mapstructure:"WorkerName"`
	WorkerGroup        string `json:"WorkerGroup,omitempty" yaml:"WorkerGroup,omitempty" mapstructure:"WorkerGroup"`
	Skills             any    `json:"Skills,omitempty" yaml:"Skills,omitempty" mapstructure:"Skills"`
	AvailableSlots     any    `json:"AvailableSlots,omitempty" yaml:"AvailableSlots,omitempty" mapstructure:"AvailableSlots"`
	MaxLoadPerPhase    any    `json:"MaxLoadPerPhase,omitempty" yaml:"MaxLoadPerPhase,omitempty" mapstructure:"MaxLoadPerPhase"`
	QualificationLevel any    `json:"QualificationLevel,omitempty" yaml:"QualificationLevel,omitempty" mapstructure:"QualificationLevel"`
}
