package types

// Company is the input record for a hiring check. Website may be empty,
// in which case the check short-circuits to a negative no-career-page
// result: discovery is anchored to a domain, never to the name alone.
type Company struct {
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
}
