package node

import "encoding/json"

// MarshalJSON encodes the conditional with a kind discriminator.
func (n *Logic) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind      string `json:"kind"`
		Prefix    string `json:"prefix,omitempty"`
		Condition Node   `json:"condition"`
		Then      Node   `json:"then"`
		Else      Node   `json:"else"`
		Suffix    string `json:"suffix,omitempty"`
	}{KindLogic.String(), n.Prefix, n.Condition, n.Then, n.Else, n.Suffix})
}

// MarshalJSON encodes the leaf with a kind discriminator.
func (n *Return) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Text string `json:"text"`
	}{KindReturn.String(), n.Text})
}

// MarshalJSON encodes the wrapper with a kind discriminator.
func (n *Wrapper) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind   string   `json:"kind"`
		Chunks []string `json:"chunks"`
		Args   []Node   `json:"args"`
		Tail   string   `json:"tail,omitempty"`
	}{KindWrapper.String(), n.Chunks, n.Args, n.Tail})
}

// MarshalJSON encodes the combination with a kind discriminator.
func (n *Combination) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string `json:"kind"`
		Parts []Node `json:"parts"`
	}{KindCombination.String(), n.Parts})
}
