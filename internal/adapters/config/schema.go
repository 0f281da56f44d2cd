package config

// Descriptor represents the structure of the crate.yaml descriptor file.
type Descriptor struct {
	Name           string        `yaml:"name"`
	Version        string        `yaml:"version"`
	Description    string        `yaml:"description"`
	License        string        `yaml:"license"`
	URL            string        `yaml:"url"`
	RepoURL        string        `yaml:"repo_url"`
	Author         string        `yaml:"author"`
	ExportsSources []string      `yaml:"exports_sources"`
	Package        []CopyRuleDTO `yaml:"package"`
	Ignore         []string      `yaml:"ignore"`
	Source         *SourceDTO    `yaml:"source"`
}

// CopyRuleDTO represents a package copy rule in the descriptor.
type CopyRuleDTO struct {
	Pattern  string `yaml:"pattern"`
	Dst      string `yaml:"dst"`
	Flatten  bool   `yaml:"flatten"`
	Optional bool   `yaml:"optional"`
}

// SourceDTO represents the source step in the descriptor.
type SourceDTO struct {
	Kind    string `yaml:"kind"`
	URL     string `yaml:"url"`
	Ref     string `yaml:"ref"`
	Retries int    `yaml:"retries"`
}
