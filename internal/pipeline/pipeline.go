package pipeline

// Pipeline is a sequence of processing stages run over one module.
type Pipeline struct {
	processors []Processor
}

// Processor is one stage: parse, resolve, evaluate, freeze.
type Processor interface {
	Process(ctx *Context) *Context
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the stages in order. Stages that need clean input
// skip themselves when the context already carries errors, so one
// run still collects diagnostics from every stage that can produce
// them (check mode reports parse and resolve errors together).
func (p *Pipeline) Run(initial *Context) *Context {
	ctx := initial
	for _, proc := range p.processors {
		ctx = proc.Process(ctx)
	}
	return ctx
}
