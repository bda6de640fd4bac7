package model

// Client is a requester of tasks. Field names match the ingested column
// headers exactly.
type Client struct {
	ClientID         string `json:"ClientID" yaml:"ClientID" mapstructure:"ClientID"`
	ClientName       string `json:"ClientName,omitempty" yaml:"ClientName,omitempty" mapstructure:"ClientName"`
	PriorityLevel    any    `json:"PriorityLevel,omitempty" yaml:"PriorityLevel,omitempty" mapstructure:"PriorityLevel"`
	GroupTag         string `json:"GroupTag,omitempty" yaml:"GroupTag,omitempty" mapstructure:"GroupTag"`
	AttributesJSON   string `json:"AttributesJSON,omitempty" yaml:"AttributesJSON,omitempty" mapstructure:"AttributesJSON"`
	RequestedTaskIDs string `json:"RequestedTaskIDs,omitempty" yaml:"RequestedTaskIDs,omitempty" mapstructure:"RequestedTaskIDs"`
	// AvailableSlots is a phase-like field: range text, JSON array text,
	// comma list or an already decoded array.
	AvailableSlots any `json:"AvailableSlots,omitempty" yaml:"AvailableSlots,omitempty" mapstructure:"AvailableSlots"`
}
