package usecase

type serviceFactory struct {
	deps Params
}

func newServiceFactory(deps Params) *serviceFactory {
	return &serviceFactory{
		deps: deps,
	}
}

func (f *serviceFactory) CreatePlanner() *Planner {
	return NewPlanner(PlannerParams{
		Config: f.deps.Config,
		Logger: f.deps.Logger,
		AI:     f.deps.AI,
	})
}

func (f *serviceFactory) CreateExecutor() *Executor {
	return NewExecutor(ExecutorParams{
		Config:  f.deps.Config,
		Logger:  f.deps.Logger,
		Delayer: f.deps.Delayer,
		Metrics: f.deps.Metrics,
	})
}

func (f *serviceFactory) CreateSearcher() *Searcher {
	return NewSearcher(SearcherParams{
		Config:  f.deps.Config,
		Logger:  f.deps.Logger,
		Delayer: f.deps.Delayer,
		Metrics: f.deps.Metrics,
	})
}

func (f *serviceFactory) CreateSummarizer() *Summarizer {
	return NewSummarizer(SummarizerParams{
		Config: f.deps.Config,
		Logger: f.deps.Logger,
		AI:     f.deps.AI,
	})
}

func (f *serviceFactory) CreateAutomationService(planner *Planner) *AutomationService {
	return NewAutomationService(AutomationServiceParams{
		Logger:     f.deps.Logger,
		Browser:    f.deps.Browser,
		Profiles:   f.deps.Profiles,
		Planner:    planner,
		Executor:   f.CreateExecutor(),
		Searcher:   f.CreateSearcher(),
		Summarizer: f.CreateSummarizer(),
		Assembler:  NewAssembler(),
		Metrics:    f.deps.Metrics,
	})
}
