package models

// EnvironmentVariable is one configured key/value pair
type EnvironmentVariable struct {
	Key      string `json:"key" yaml:"key"`
	Value    any    `json:"value" yaml:"value"`
	IsSystem bool   `json:"isSystem,omitempty" yaml:"isSystem,omitempty"`
}

// TaskSchedule runs a task worker on a cron expression
type TaskSchedule struct {
	Worker   string         `json:"worker" yaml:"worker"`
	Schedule string         `json:"schedule" yaml:"schedule"`
	Args     map[string]any `json:"args,omitempty" yaml:"args,omitempty"`
}

// ServerSettings is the document loaded by a config worker
type ServerSettings struct {
	EnvironmentVariables []EnvironmentVariable `json:"environmentVariables" yaml:"environmentVariables"`
	Workers              []WorkerConfig        `json:"workers" yaml:"workers"`
	Features             map[string]any        `json:"features,omitempty" yaml:"features,omitempty"`
	Tasks                []TaskSchedule        `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// Env returns the value for key, or nil
func (s *ServerSettings) Env(key string) any {
	for _, v := range s.EnvironmentVariables {
		if v.Key == key {
			return v.Value
		}
	}
	return nil
}

// SetEnv replaces or appends the value for key
func (s *ServerSettings) SetEnv(key string, value any, system bool) {
	for i, v := range s.EnvironmentVariables {
		if v.Key == key {
			s.EnvironmentVariables[i].Value = value
			return
		}
	}
	s.EnvironmentVariables = append(s.EnvironmentVariables, EnvironmentVariable{Key: key, Value: value, IsSystem: system})
}

// Clone returns a deep enough copy for safe mutation of lists
func (s *ServerSettings) Clone() *ServerSettings {
	out := &ServerSettings{
		EnvironmentVariables: append([]EnvironmentVariable(nil), s.EnvironmentVariables...),
		Workers:              append([]WorkerConfig(nil), s.Workers...),
		Tasks:                append([]TaskSchedule(nil), s.Tasks...),
		Features:             make(map[string]any, len(s.Features)),
	}
	for k, v := range s.Features {
		out.Features[k] = v
	}
	return out
}
