package peers

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"sync"
)

const (
	jsonSeedsPath = "seeds.json"
)

// Seeds provides the nodes used to bootstrap discovery.
type Seeds interface {
	Seeds(ctx context.Context) ([]Node, error)
}

// StaticSeeds is used to provide a static list of seed nodes.
type StaticSeeds struct {
	l     sync.Mutex
	nodes []Node
}

// NewStaticSeeds ...
func NewStaticSeeds(nodes ...Node) *StaticSeeds {
	return &StaticSeeds{nodes: nodes}
}

// Seeds implements the Seeds interface.
func (s *StaticSeeds) Seeds(ctx context.Context) ([]Node, error) {
	s.l.Lock()
	defer s.l.Unlock()

	res := make([]Node, len(s.nodes))
	copy(res, s.nodes)
	return res, nil
}

// SetSeeds ...
func (s *StaticSeeds) SetSeeds(nodes []Node) {
	s.l.Lock()
	s.nodes = nodes
	s.l.Unlock()
}

// JSONSeeds reads seed nodes from a JSON file on disk. This allows human
// operators to manipulate the file.
type JSONSeeds struct {
	l    sync.Mutex
	path string
}

// NewJSONSeeds creates a JSONSeeds reading seeds.json in base.
func NewJSONSeeds(base string) *JSONSeeds {
	return &JSONSeeds{
		path: filepath.Join(base, jsonSeedsPath),
	}
}

// Path ...
func (j *JSONSeeds) Path() string {
	return j.path
}

// Seeds implements the Seeds interface.
func (j *JSONSeeds) Seeds(ctx context.Context) ([]Node, error) {
	j.l.Lock()
	defer j.l.Unlock()

	// Read the file
	buf, err := ioutil.ReadFile(j.path)
	if err != nil {
		return nil, err
	}

	// Check for no seeds
	if len(buf) == 0 {
		return nil, nil
	}

	var nodes []Node
	dec := json.NewDecoder(bytes.NewReader(buf))
	if err := dec.Decode(&nodes); err != nil {
		return nil, err
	}

	return nodes, nil
}

// SetSeeds writes nodes to the file.
func (j *JSONSeeds) SetSeeds(nodes []Node) error {
	j.l.Lock()
	defer j.l.Unlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "\t")
	if err := enc.Encode(nodes); err != nil {
		return err
	}

	return ioutil.WriteFile(j.path, buf.Bytes(), 0644)
}
