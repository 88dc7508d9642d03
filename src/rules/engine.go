package rules

// Options tunes an Engine. Zero values fall back to package defaults.
type Options struct {
	Limits  Limits
	Workers int
}

// Engine wires the rule repository, dispatcher, batch runner and audit log
// around a single store.
type Engine struct {
	Rules      *Repository
	Dispatcher *Dispatcher
	Batch      *Runner
	Audit      *AuditLog
}

func New(store Store, cache RuleCache, opts Options) *Engine {
	repo := NewRepository(store, cache)
	dispatcher := NewDispatcher(repo, store, store)
	return &Engine{
		Rules:      repo,
		Dispatcher: dispatcher,
		Batch:      NewRunner(dispatcher, repo, store, opts.Limits, opts.Workers),
		Audit:      NewAuditLog(store),
	}
}
