package processing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/systemstart/paychain/pkg/acquiring"
	"github.com/systemstart/paychain/pkg/api"
	"github.com/systemstart/paychain/pkg/assert"
	"github.com/systemstart/paychain/pkg/dcc"
	"github.com/systemstart/paychain/pkg/endpoints"
	"github.com/systemstart/paychain/pkg/results"
	"golang.org/x/sync/errgroup"
)

// Recorder receives one record per executed step. Implementations must be safe
// for concurrent use.
type Recorder interface {
	Write(results.Record) error
}

// Runner executes chains of test steps against the acquiring API.
type Runner struct {
	Registry *endpoints.Registry
	Tables   *api.Tables
	Clients  *Clients
	DCC      *dcc.Manager
	Refs     *endpoints.References
	Sink     Recorder
	// Seed is copied into the dependency context of every chain.
	Seed    map[string]string
	Threads int
	RunID   string
	Logger  *slog.Logger
}

// Summary counts the outcomes of a run.
type Summary struct {
	RunID    string
	Steps    map[api.StepStatus]int
	Chains   map[api.ChainState]int
	Duration time.Duration

	mu sync.Mutex
}

func newSummary(runID string) *Summary {
	return &Summary{RunID: runID, Steps: map[api.StepStatus]int{}, Chains: map[api.ChainState]int{}}
}

func (s *Summary) addStep(status api.StepStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Steps[status]++
}

func (s *Summary) addChain(state api.ChainState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Chains[state]++
}

// TotalSteps is the number of executed steps.
func (s *Summary) TotalSteps() int {
	n := 0
	for _, c := range s.Steps {
		n += c
	}
	return n
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Run groups steps into chains and executes them on a pool of r.Threads
// workers. Steps within a chain run in order; a failing chain never stops
// the others.
func (r *Runner) Run(ctx context.Context, steps []api.TestStep) *Summary {
	start := time.Now()
	summary := newSummary(r.RunID)
	chains := api.GroupChains(steps)

	threads := max(r.Threads, 1)
	r.logger().Info("starting run", "run", r.RunID, "chains", len(chains), "steps", len(steps), "threads", threads)

	// worker ids are handed out from a pool sized to the group limit
	workers := make(chan int, threads)
	for i := 1; i <= threads; i++ {
		workers <- i
	}

	var g errgroup.Group
	g.SetLimit(threads)
	for _, chain := range chains {
		g.Go(func() error {
			id := <-workers
			defer func() { workers <- id }()

			logger := r.logger().With("worker", id, "chain", chain.ID)
			summary.addChain(r.runChain(ctx, chain, id, logger, summary))
			return nil
		})
	}
	_ = g.Wait()

	summary.Duration = time.Since(start)
	r.logger().Info("run finished", "run", r.RunID, "steps", summary.TotalSteps(), "duration", summary.Duration)
	return summary
}

// chainRun is the mutable state owned by one executing chain.
type chainRun struct {
	chain  api.Chain
	worker int
	deps   map[string]string
	logger *slog.Logger
}

func (r *Runner) runChain(ctx context.Context, chain api.Chain, worker int, logger *slog.Logger, summary *Summary) api.ChainState {
	cr := &chainRun{
		chain:  chain,
		worker: worker,
		deps:   MergeContext(r.Seed, nil),
		logger: logger,
	}
	if r.DCC != nil {
		defer r.DCC.Release(chain.ID)
	}

	state := api.ChainPending
	logger.Debug("chain state", "state", state, "steps", len(chain.Steps))
	state = api.ChainRunning
	logger.Info("chain started", "state", state, "steps", len(chain.Steps))

	failed := false
	for _, step := range chain.Steps {
		rec := r.runStep(ctx, cr, step)
		summary.addStep(rec.Status)
		if rec.Status != api.StepSucceeded {
			failed = true
		}
		if r.Sink != nil {
			if err := r.Sink.Write(rec); err != nil {
				logger.Error("failed to write result record", "step", step.StepOrder, "error", err)
			}
		}
	}

	state = api.ChainCompleted
	if failed {
		state = api.ChainPartiallyFailed
	}
	logger.Info("chain finished", "state", state)
	return state
}

func (r *Runner) runStep(ctx context.Context, cr *chainRun, step api.TestStep) (rec results.Record) {
	start := time.Now()
	rec = results.Record{
		RunID:      r.RunID,
		ChainID:    step.ChainID,
		StepOrder:  step.StepOrder,
		CallType:   step.CallType,
		TestID:     step.TestID,
		StartedAt:  start,
		WorkerID:   cr.worker,
		Assertions: "[]",
	}
	logger := cr.logger.With("step", step.StepOrder, "callType", step.CallType, "test", step.TestID)
	defer func() {
		rec.Duration = time.Since(start)
		logger.Info("step finished", "status", rec.Status, "httpStatus", rec.HTTPStatus, "duration", rec.Duration)
	}()

	handler, err := r.Registry.Lookup(step.CallType)
	if err != nil {
		logger.Warn("skipping step", "error", err)
		return skipped(rec, api.StepSkippedUnknownCallType, err)
	}

	if missing := missingKeys(handler.RequiredKeys(), cr.deps); len(missing) > 0 {
		err := &api.DependencyError{CallType: step.CallType, Missing: missing}
		logger.Warn("skipping step", "error", err)
		return skipped(rec, api.StepSkippedMissingDependency, err)
	}

	env, target, err := r.resolve(step, &rec)
	if err != nil {
		logger.Warn("skipping step", "error", err)
		return skipped(rec, api.StepSkippedMissingConfiguration, err)
	}
	caller, err := r.Clients.Get(ctx, env)
	if err != nil {
		logger.Warn("skipping step", "error", err)
		return skipped(rec, api.StepSkippedMissingConfiguration, err)
	}

	in := r.input(cr, step, logger)
	switch {
	case step.CallType == api.CallGetDCCRate:
		in.TargetCurrency = r.rateCurrency(step)
		if r.DCC != nil {
			in.DCC = r.DCC.Get(step.ChainID)
		}
	case r.DCC == nil:
		// conversion disabled
	case r.DCC.ShouldInquire(step, handler.SupportsDCC()):
		in.DCC, rec.DCCNote = r.inquire(ctx, cr, step, r.DCC.TargetCurrency(step), caller, target, logger)
	case r.DCC.TargetCurrency(step) != "":
		logger.Debug("call type does not support DCC, skipping conversion")
	}

	req, err := handler.BuildRequest(in)
	if err != nil {
		logger.Error("failed to build request", "error", err)
		rec.Status = api.StepFailedAPIError
		rec.Error = fmt.Sprintf("building request: %v", err)
		return rec
	}
	if req.Body != nil {
		if data, err := json.Marshal(req.Body); err == nil {
			rec.Request = string(data)
		}
	}

	resp, err := handler.Invoke(ctx, caller, target, req)
	if err != nil {
		return r.failed(rec, cr, step, err, logger)
	}
	fillResponse(&rec, resp)

	if handler.SupportsChaining() {
		maps.Copy(cr.deps, handler.Extract(req, resp))
	}
	if step.CallType == api.CallGetDCCRate && r.DCC != nil {
		if err := r.DCC.UpdateFromResponse(step.ChainID, resp); err != nil {
			logger.Warn("failed to update DCC context", "error", err)
			rec.DCCNote = fmt.Sprintf("DCC context not updated: %v", err)
		}
	}
	rec.PaymentID = cr.deps[api.KeyPaymentID]
	rec.RefundID = cr.deps[api.KeyRefundID]

	r.evaluate(&rec, step, resp, cr.deps, logger)
	return rec
}

// failed records an API error. When the row declares an expected HTTP status
// and an error answer was received, the answer is asserted instead.
func (r *Runner) failed(rec results.Record, cr *chainRun, step api.TestStep, err error, logger *slog.Logger) results.Record {
	rec.Status = api.StepFailedAPIError
	rec.Error = err.Error()

	var apiErr *acquiring.APIError
	if !errors.As(err, &apiErr) {
		logger.Error("API call failed", "error", err)
		return rec
	}
	rec.HTTPStatus = apiErr.StatusCode
	rec.ErrorTitle = apiErr.Title
	rec.ErrorDetail = apiErr.Detail
	rec.TraceID = apiErr.TraceID
	rec.Response = apiErr.Body

	if step.Expect.HTTPStatus != nil && apiErr.Response != nil {
		fillResponse(&rec, apiErr.Response)
		rec.Error = ""
		r.evaluate(&rec, step, apiErr.Response, cr.deps, logger)
		return rec
	}
	logger.Error("API call failed", "error", err, "traceId", apiErr.TraceID)
	return rec
}

func (r *Runner) evaluate(rec *results.Record, step api.TestStep, resp *acquiring.Response, deps map[string]string, logger *slog.Logger) {
	res := assert.Evaluate(step, resp, deps)
	rec.Assertions = res.JSON()
	rec.Passed = res.Passed()
	if rec.Passed {
		rec.Status = api.StepSucceeded
		return
	}
	rec.Status = api.StepFailedAssertion
	for _, o := range res.Failures() {
		logger.Warn("assertion failed", "check", o.Name, "expected", o.Expected, "actual", o.Actual)
	}
}

// inquire performs the DCC rate inquiry preceding step. It returns the
// conversion to apply to this step, nil when the inquiry failed, and the note
// recorded on the step's result.
func (r *Runner) inquire(ctx context.Context, cr *chainRun, step api.TestStep, currency string, caller acquiring.Caller, target acquiring.Target, logger *slog.Logger) (*dcc.Context, string) {
	fail := func(err error) (*dcc.Context, string) {
		logger.Warn("DCC inquiry failed", "error", err)
		return nil, fmt.Sprintf("DCC inquiry failed: %v", err)
	}

	handler, err := r.Registry.Lookup(api.CallGetDCCRate)
	if err != nil {
		return fail(err)
	}

	// the chain's previous rate reference is reused by the inquiry only
	in := r.input(cr, step, logger)
	in.DCC = r.DCC.Get(step.ChainID)
	in.TargetCurrency = currency
	in.TransactionType = dcc.TransactionType(step.CallType)

	req, err := handler.BuildRequest(in)
	if err != nil {
		return fail(err)
	}
	resp, err := handler.Invoke(ctx, caller, target, req)
	if err != nil {
		return fail(err)
	}
	if err := r.DCC.UpdateFromResponse(step.ChainID, resp); err != nil {
		return fail(err)
	}
	maps.Copy(cr.deps, handler.Extract(req, resp))

	c := r.DCC.Get(step.ChainID)
	logger.Info("DCC rate received", "rateReference", c.RateReferenceID, "currency", currency, "rate", c.InvertedExchangeRate)
	return c, fmt.Sprintf("DCC rate %s applied (%s, rate %s)", c.RateReferenceID, currency, c.InvertedExchangeRate)
}

// rateCurrency is the target currency of a get_dcc_rate row: its own
// dcc_target_currency, else the configured default.
func (r *Runner) rateCurrency(step api.TestStep) string {
	if step.DCCTargetCurrency != "" || r.DCC == nil {
		return step.DCCTargetCurrency
	}
	return r.DCC.DefaultCurrency
}

// input carries no conversion; callers attach one when this step asked for it.
func (r *Runner) input(cr *chainRun, step api.TestStep, logger *slog.Logger) endpoints.Input {
	return endpoints.Input{
		Step:    step,
		Tables:  r.Tables,
		Context: cr.deps,
		Refs:    r.Refs,
		Logger:  logger,
	}
}

// resolve finds the environment and merchant of step. Ping needs no merchant.
func (r *Runner) resolve(step api.TestStep, rec *results.Record) (api.Environment, acquiring.Target, error) {
	env, ok := r.Tables.Environments[step.Env]
	if !ok {
		return env, acquiring.Target{}, fmt.Errorf("environment %q not configured", step.Env)
	}
	if card, ok := r.Tables.Cards[step.CardID]; ok {
		rec.CardDescription = card.Description
	}

	merchant, ok := r.Tables.Merchant(step.Env, step.Merchant)
	if !ok {
		if step.CallType == api.CallPing && step.Merchant == "" {
			return env, acquiring.Target{}, nil
		}
		return env, acquiring.Target{}, fmt.Errorf("merchant %q not configured for environment %q", step.Merchant, step.Env)
	}
	rec.MerchantDescription = merchant.Description
	return env, acquiring.Target{AcquirerID: merchant.AcquirerID, MerchantID: merchant.MerchantID}, nil
}

func fillResponse(rec *results.Record, resp *acquiring.Response) {
	rec.HTTPStatus = resp.StatusCode
	rec.ResponseCode = resp.ResponseCode()
	rec.BusinessStatus = resp.Status()
	rec.TraceID = resp.TraceID
	rec.Response = string(resp.Raw)
}

func skipped(rec results.Record, status api.StepStatus, err error) results.Record {
	rec.Status = status
	rec.Error = err.Error()
	return rec
}

func missingKeys(required []string, deps map[string]string) []string {
	var missing []string
	for _, k := range required {
		if deps[k] == "" {
			missing = append(missing, k)
		}
	}
	return missing
}
