// Package split divides a large class hierarchy into diagram-sized groups.
package split

// Edge is an inheritance link from a derived class to its base.
type Edge struct {
	Child  string
	Parent string
}

// Graph is the class hierarchy to split. Node keys have the form
// "file:Name".
type Graph struct {
	Nodes []string
	Edges []Edge
}

// Group represents one slide's content: hub nodes (repeated on every slide)
// plus spoke nodes (unique to this slide).
type Group struct {
	Title     string
	HubKeys   []string // base classes shown on this slide
	SpokeKeys []string // classes unique to this slide
}

// Splitter splits a class graph into groups for slide generation.
type Splitter interface {
	Split(g Graph) []Group
}

// Options controls splitting behavior.
type Options struct {
	HubThreshold int // min connections to be a hub; default 3
	ChunkSize    int // max spokes per slide; default 3
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{HubThreshold: 3, ChunkSize: 3}
}
