package model

// Task is a unit of work requested by clients.
type Task struct {
	TaskID          string `json:"TaskID" yaml:"TaskID" mapstructure:"TaskID"`
	TaskName        string `json:"TaskName,omitempty" yaml:"TaskName,omitempty" mapstructure:"TaskName"`
	Duration        any    `json:"Duration,omitempty" yaml:"Duration,omitempty" mapstructure:"Duration"`
	RequiredSkills  any    `json:"RequiredSkills,omitempty" yaml:"RequiredSkills,omitempty" mapstructure:"RequiredSkills"`
	PreferredPhases any    `json:"PreferredPhases,omitempty" yaml:"PreferredPhases,omitempty" mapstructure:"PreferredPhases"`
	MaxConcurrent   any    `json:"MaxConcurrent,omitempty" yaml:"MaxConcurrent,omitempty" mapstructure:"MaxConcurrent"`
}
