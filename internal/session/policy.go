package session

import (
	"fmt"

	"folio/internal/config"
	"folio/internal/log"
)

// reloadPolicy implements filelist.ReloadHooks for the configured
// reload.policy. While the UI is inactive a modified file is remembered
// and handled when the UI becomes active again.
type reloadPolicy struct {
	policy   config.ReloadPolicy
	renderer Renderer
	logger   *log.Logger

	active  bool
	pending string
	// prompted is the file the user is being asked about.
	prompted string
}

func newReloadPolicy(policy config.ReloadPolicy, r Renderer, l *log.Logger) *reloadPolicy {
	return &reloadPolicy{policy: policy, renderer: r, logger: l, active: true}
}

func (p *reloadPolicy) OnActiveFileModified(name string) {
	if p.policy == config.ReloadIgnore {
		p.logger.With(log.F("name", name)).Debug("ignoring change to open file")
		return
	}
	if !p.active {
		p.pending = name
		return
	}
	p.handle(name)
}

func (p *reloadPolicy) OnActiveFileRemoved(name string) {
	if p.pending == name {
		p.pending = ""
	}
	if p.prompted == name {
		p.prompted = ""
	}
	p.renderer.Render(Notice{Kind: NoticeRemoved, Name: name})
}

func (p *reloadPolicy) OnActiveFileRenamed(oldName, newName string) {
	if p.pending == oldName {
		p.pending = newName
	}
	if p.prompted == oldName {
		p.prompted = newName
	}
	p.renderer.Render(Notice{Kind: NoticeRenamed, Name: oldName, NewName: newName})
}

func (p *reloadPolicy) handle(name string) {
	switch p.policy {
	case config.ReloadAuto:
		p.renderer.Render(Notice{Kind: NoticeReload, Name: name})
	case config.ReloadPrompt:
		p.prompted = name
		p.renderer.Render(Notice{
			Kind:    NoticePrompt,
			Name:    name,
			Message: fmt.Sprintf("%s changed on disk, reload?", name),
		})
	}
}

// setActive flips the UI activity flag and replays a deferred change.
func (p *reloadPolicy) setActive(active bool) {
	p.active = active
	if !active || p.pending == "" {
		return
	}
	name := p.pending
	p.pending = ""
	p.handle(name)
}

// answer resolves an outstanding prompt. It reports whether there was one.
func (p *reloadPolicy) answer(reload bool) bool {
	if p.prompted == "" {
		return false
	}
	name := p.prompted
	p.prompted = ""
	if reload {
		p.renderer.Render(Notice{Kind: NoticeReload, Name: name})
	}
	return true
}
