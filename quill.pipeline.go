package quill

import (
	"time"

	"go.uber.org/zap"
)

// Pipeline applies a frozen pass table to a template tree, once, in table order
type Pipeline struct {
	passes *Table[PassFunc]
	logger *zap.Logger
}

// NewPipeline creates a pipeline over passes
func NewPipeline(passes *Table[PassFunc], logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{passes: passes, logger: logger}
}

// Run applies every pass to root. A pass may return a replacement root; a nil
// root with a nil error keeps the current one. If any pass fails, Run returns
// no tree at all.
func (p *Pipeline) Run(root *TemplateNode) (*TemplateNode, error) {
	current := root
	for _, name := range p.passes.Names() {
		pass, _ := p.passes.Get(name)
		start := time.Now()
		next, err := pass(current)
		if err != nil {
			p.logger.Debug(LogMsgPassFailed, zap.String(LogFieldPass, name), zap.Error(err))
			return nil, NewPassError(name, err)
		}
		if next != nil {
			current = next
		}
		p.logger.Debug(LogMsgPassRun,
			zap.String(LogFieldPass, name),
			zap.Duration(LogFieldDuration, time.Since(start)),
		)
	}
	return current, nil
}
