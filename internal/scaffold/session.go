package scaffold

import (
	"github.com/tacogips/forge/internal/template/generator"
	"github.com/tacogips/forge/internal/template/render"
)

// session is the mutable state of one Create call, exposed to hooks as a
// config.Session.
type session struct {
	projectName string
	targetDir   string
	doNotCopy   *generator.DoNotCopySet
	data        render.Context
}

func newSession(projectName, targetDir string) *session {
	return &session{
		projectName: projectName,
		targetDir:   targetDir,
		doNotCopy:   generator.NewDoNotCopySet(),
		data:        render.Context{"projectName": projectName},
	}
}

func (s *session) ProjectName() string { return s.projectName }

func (s *session) TargetDir() string { return s.targetDir }

func (s *session) AddDoNotCopy(paths ...string) { s.doNotCopy.Add(paths...) }

func (s *session) SetData(key string, value any) { s.data[key] = value }

func (s *session) Data() map[string]any { return s.data.Clone() }
