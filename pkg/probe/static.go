package probe

import "fmt"

// Static is an in-memory prober. Files absent from both maps are Missing.
type Static struct {
	Results map[string]Result
	Sizes   map[string]int64
}

// Probe returns the recorded result for a path.
func (s *Static) Probe(p string) Result {
	if Escapes(p) {
		return Result{Status: LeavesFolder}
	}
	if r, ok := s.Results[Clean(p)]; ok {
		return r
	}
	return Result{Status: Missing}
}

// Size returns the recorded size for a path.
func (s *Static) Size(p string) (int64, error) {
	if n, ok := s.Sizes[Clean(p)]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("%s: no such file", p)
}

// StaticFile describes one file of a Static prober in fixture documents.
type StaticFile struct {
	Path   string `yaml:"path"             json:"path"`
	Size   int64  `yaml:"size,omitempty"   json:"size,omitempty"`
	Status string `yaml:"status,omitempty" json:"status,omitempty" jsonschema:"enum=ok,enum=failed"`
	Error  string `yaml:"error,omitempty"  json:"error,omitempty"`

	HasVideo      bool `yaml:"has_video,omitempty"      json:"has_video,omitempty"`
	AudioChannels int  `yaml:"audio_channels,omitempty" json:"audio_channels,omitempty"`
	Width         int  `yaml:"width,omitempty"          json:"width,omitempty"`
	Height        int  `yaml:"height,omitempty"         json:"height,omitempty"`
}

// NewStatic builds a Static prober from fixture file descriptions.
func NewStatic(files []StaticFile) *Static {
	s := &Static{Results: map[string]Result{}, Sizes: map[string]int64{}}
	for _, f := range files {
		key := Clean(f.Path)
		s.Sizes[key] = f.Size
		if f.Status == "failed" {
			msg := f.Error
			if msg == "" {
				msg = "probe failed"
			}
			s.Results[key] = Failure("%s", msg)
			continue
		}
		s.Results[key] = Result{Status: OK, Properties: Properties{
			HasVideo:      f.HasVideo,
			AudioChannels: f.AudioChannels,
			Width:         f.Width,
			Height:        f.Height,
		}}
	}
	return s
}
