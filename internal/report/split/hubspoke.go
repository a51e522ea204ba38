package split

import (
	"sort"
	"strings"
)

// HubAndSpoke implements the hub-and-spoke splitting strategy.
// Widely extended base classes (hubs) repeat on every detail slide, while
// the remaining classes (spokes) are chunked into groups of ChunkSize.
type HubAndSpoke struct {
	opts Options
}

// NewHubAndSpoke creates a hub-and-spoke splitter with the given options.
func NewHubAndSpoke(opts Options) *HubAndSpoke {
	if opts.HubThreshold <= 0 {
		opts.HubThreshold = DefaultOptions().HubThreshold
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultOptions().ChunkSize
	}
	return &HubAndSpoke{opts: opts}
}

// Split implements Splitter. Classes that something inherits from are base
// classes; those with at least HubThreshold connections are hubs. Classes
// nobody inherits from are spokes, chunked in key order. A non-hub base
// class joins the first chunk holding one of its subclasses.
func (h *HubAndSpoke) Split(g Graph) []Group {
	connCount := make(map[string]int)
	isBase := make(map[string]bool)
	for _, e := range g.Edges {
		connCount[e.Child]++
		connCount[e.Parent]++
		isBase[e.Parent] = true
	}

	hubKeys := make(map[string]bool)
	nonHubBaseKeys := make(map[string]bool)
	var spokeKeys []string
	for _, n := range g.Nodes {
		switch {
		case !isBase[n]:
			spokeKeys = append(spokeKeys, n)
		case connCount[n] >= h.opts.HubThreshold:
			hubKeys[n] = true
		default:
			nonHubBaseKeys[n] = true
		}
	}
	sort.Strings(spokeKeys)

	// Only base classes: one group holding all of them.
	if len(spokeKeys) == 0 {
		allKeys := append(sortedKeys(hubKeys), sortedKeys(nonHubBaseKeys)...)
		sort.Strings(allKeys)
		if len(allKeys) == 0 {
			return nil
		}
		return []Group{{
			Title:   "All Base Classes",
			HubKeys: allKeys,
		}}
	}

	sortedHubKeys := sortedKeys(hubKeys)

	// Which spokes does each non-hub base connect to?
	baseToSpokes := make(map[string]map[string]bool)
	for _, e := range g.Edges {
		if nonHubBaseKeys[e.Parent] {
			if baseToSpokes[e.Parent] == nil {
				baseToSpokes[e.Parent] = make(map[string]bool)
			}
			baseToSpokes[e.Parent][e.Child] = true
		}
	}

	chunks := chunkSlice(spokeKeys, h.opts.ChunkSize)

	var groups []Group
	attached := make(map[string]bool)

	for _, chunk := range chunks {
		chunkSet := make(map[string]bool, len(chunk))
		for _, k := range chunk {
			chunkSet[k] = true
		}

		var extra []string
		for base, children := range baseToSpokes {
			if attached[base] {
				continue
			}
			for child := range children {
				if chunkSet[child] {
					extra = append(extra, base)
					attached[base] = true
					break
				}
			}
		}
		sort.Strings(extra)

		keys := make([]string, len(sortedHubKeys), len(sortedHubKeys)+len(extra))
		copy(keys, sortedHubKeys)
		keys = append(keys, extra...)

		groups = append(groups, Group{
			Title:     buildTitle(chunk),
			HubKeys:   keys,
			SpokeKeys: chunk,
		})
	}

	// Bases whose subclasses are all bases themselves go on the first slide.
	for _, base := range sortedKeys(nonHubBaseKeys) {
		if !attached[base] {
			groups[0].HubKeys = append(groups[0].HubKeys, base)
		}
	}

	return groups
}

// chunkSlice splits a slice into chunks of at most size n.
func chunkSlice(items []string, n int) [][]string {
	var chunks [][]string
	for i := 0; i < len(items); i += n {
		end := min(i+n, len(items))
		chunks = append(chunks, items[i:end])
	}
	return chunks
}

// sortedKeys returns sorted keys from a bool map.
func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildTitle extracts the class name from keys (file:Name) and joins them.
func buildTitle(keys []string) string {
	names := make([]string, len(keys))
	for i, k := range keys {
		if idx := strings.LastIndex(k, ":"); idx >= 0 {
			names[i] = k[idx+1:]
		} else {
			names[i] = k
		}
	}
	return strings.Join(names, ", ")
}
