// ABOUTME: Data types exchanged with the Anypoint control plane
// ABOUTME: Credentials, ordered name/id maps, deployments and allocations

package client

import "log/slog"

// Credentials is a connected app's client id and secret
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Complete reports whether both halves are present
func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// LogValue keeps the secret out of structured logs
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("client_id", c.ClientID),
		slog.String("client_secret", "[redacted]"),
	)
}

// NamedID pairs a display name with its control plane id
type NamedID struct {
	Name string `json:"name" yaml:"name"`
	ID   string `json:"id" yaml:"id"`
}

// IDMap is a name to id mapping that remembers insertion order.
// Setting an existing name replaces its id but keeps its position.
type IDMap struct {
	names []string
	ids   map[string]string
}

// NewIDMap creates an empty mapping
func NewIDMap() *IDMap {
	return &IDMap{ids: make(map[string]string)}
}

// Set adds or overwrites a name
func (m *IDMap) Set(name, id string) {
	if _, ok := m.ids[name]; !ok {
		m.names = append(m.names, name)
	}
	m.ids[name] = id
}

// Lookup returns the id for a name
func (m *IDMap) Lookup(name string) (string, bool) {
	id, ok := m.ids[name]
	return id, ok
}

// Names returns the names in insertion order
func (m *IDMap) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Entries returns name/id pairs in insertion order
func (m *IDMap) Entries() []NamedID {
	out := make([]NamedID, 0, len(m.names))
	for _, name := range m.names {
		out = append(out, NamedID{Name: name, ID: m.ids[name]})
	}
	return out
}

// Len returns the number of distinct names
func (m *IDMap) Len() int {
	return len(m.names)
}

// StatusRunning is the application status that counts towards usage
const StatusRunning = "RUNNING"

// Deployment is one application deployment in an environment
type Deployment struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// IsRunning reports whether the deployment consumes vCores
func (d Deployment) IsRunning() bool {
	return d.Status == StatusRunning
}

// ResourceAllocation is the sizing of a single deployment
type ResourceAllocation struct {
	DeploymentID string  `json:"deployment_id"`
	VCores       float64 `json:"vcores"`
	Replicas     int     `json:"replicas"`
}
