package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/copyleftdev/HELIX/internal/config"
	apperrors "github.com/copyleftdev/HELIX/internal/errors"
	"github.com/copyleftdev/HELIX/internal/logging"
	"github.com/copyleftdev/HELIX/internal/optimization"
	"github.com/copyleftdev/HELIX/internal/optimization/genetic"
	"github.com/copyleftdev/HELIX/internal/store"
)

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// RunState tracks one optimization run: its status, progress, and result.
// Access is guarded by the server's run mutex.
type RunState struct {
	ID           string
	Status       string // "pending", "running", "completed", "failed", "cancelled"
	StartTime    time.Time
	EndTime      *time.Time
	Parameters   []string
	BestSolution *optimization.Solution
	History      []float64
	Error        string
	CancelFunc   context.CancelFunc
	LastUpdated  time.Time
}

// Server implements the HTTP and JSON-RPC server for the optimization
// service. It manages optimization runs and provides endpoints to start,
// monitor, and cancel them, and to fetch persisted run reports.
type Server struct {
	cfg     *config.Config
	logger  Logger
	reports *store.FSStore

	// Run state management
	runs   map[string]*RunState
	runsMu sync.RWMutex // Protects the runs map
}

// NewServer creates a new server instance with the given config, logger,
// and report store. The report store may be nil, in which case completed
// runs are not persisted.
func NewServer(cfg *config.Config, logger Logger, reports *store.FSStore) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		reports: reports,
		runs:    make(map[string]*RunState),
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/optimize", s.handleOptimize)
		r.Get("/status/{id}", s.handleStatus)
		r.Delete("/optimization/{id}", s.handleCancel)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// optimizeRequest is the payload for starting an optimization run.
// Zero-valued engine settings fall back to the service defaults.
type optimizeRequest struct {
	Objective      string      `json:"objective"`
	Mode           string      `json:"mode"`
	Parameters     []string    `json:"parameters,omitempty"`
	Bounds         [][]float64 `json:"bounds"`
	Selection      string      `json:"selection,omitempty"`
	Adaptive       *bool       `json:"adaptive,omitempty"`
	Generations    int         `json:"generations,omitempty"`
	Exploration    float64     `json:"exploration,omitempty"`
	KeepTop        int         `json:"keep_top,omitempty"`
	PopulationSize int         `json:"population_size,omitempty"`
	Seed           int64       `json:"seed,omitempty"`
}

// handleJSONRPC handles JSON-RPC 2.0 requests
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request struct {
		JSONRPC string        `json:"jsonrpc"`
		ID      interface{}   `json:"id"`
		Method  string        `json:"method"`
		Params  []interface{} `json:"params,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, -32700, "Parse error", nil)
		return
	}

	// Validate JSON-RPC 2.0 request
	if request.JSONRPC != "2.0" {
		s.respondWithError(w, -32600, "Invalid Request", nil)
		return
	}

	// Route to appropriate handler
	var result interface{}
	var err error

	switch request.Method {
	case "optimization.start":
		result, err = s.handleOptimizeStart(request.Params)
	case "optimization.status":
		result, err = s.handleOptimizationStatus(request.Params)
	case "optimization.cancel":
		err = s.handleOptimizationCancel(request.Params)
	default:
		s.respondWithError(w, -32601, "Method not found", request.ID)
		return
	}

	if err != nil {
		s.respondWithError(w, -32000, err.Error(), request.ID)
		return
	}

	// Send successful response
	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// decodeRequest converts loosely-typed JSON-RPC params into an
// optimizeRequest via a marshal round trip.
func decodeRequest(params []interface{}) (*optimizeRequest, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("missing required parameters")
	}

	paramMap, ok := params[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid parameter format, expected object")
	}

	data, err := json.Marshal(paramMap)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %v", err)
	}

	var req optimizeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid parameters: %v", err)
	}
	return &req, nil
}

// handleOptimizeStart handles the optimization.start JSON-RPC method.
// It starts a new optimization run with the specified parameters.
// Expected parameters: {"objective": "sphere", "mode": "minimize", "bounds": [[-5, 5]]}
// Returns: {"run_id": "run_123", "status": "pending"}
func (s *Server) handleOptimizeStart(params []interface{}) (interface{}, error) {
	req, err := decodeRequest(params)
	if err != nil {
		return nil, err
	}

	if req.Objective == "" {
		return nil, fmt.Errorf("objective function name is required")
	}
	objective, err := lookupObjective(req.Objective)
	if err != nil {
		return nil, err
	}

	if len(req.Bounds) == 0 {
		return nil, fmt.Errorf("bounds are required")
	}
	bounds := make([][2]float64, len(req.Bounds))
	for i, b := range req.Bounds {
		if len(b) != 2 {
			return nil, fmt.Errorf("invalid bounds format, expected [[min1, max1], [min2, max2], ...]")
		}
		bounds[i] = [2]float64{b[0], b[1]}
	}

	// Default parameter names when the caller gives none
	names := req.Parameters
	if len(names) == 0 {
		names = make([]string, len(bounds))
		for i := range names {
			names[i] = fmt.Sprintf("p%d", i+1)
		}
	}

	evaluator, err := optimization.NewFunctionEvaluator(objective)
	if err != nil {
		return nil, err
	}

	popSize := req.PopulationSize
	if popSize < 1 {
		popSize = s.cfg.Optimization.PopulationSize
	}

	opt, err := genetic.NewGeneticOptimizer(genetic.Config{
		Evaluator:      evaluator,
		Parameters:     names,
		Bounds:         bounds,
		PopulationSize: popSize,
		Precision:      s.cfg.Optimization.Precision,
		RandomSeed:     req.Seed,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create optimizer").
			WithOperation("optimization.start").
			WithComponent("server")
	}

	rc := s.runConfig(req)

	// Generate a unique ID for this run
	id := fmt.Sprintf("run_%d", time.Now().UnixNano())

	// Create a cancellable context
	ctx, cancel := context.WithCancel(context.Background())

	state := &RunState{
		ID:          id,
		Status:      "pending",
		StartTime:   time.Now(),
		Parameters:  names,
		CancelFunc:  cancel,
		LastUpdated: time.Now(),
	}

	s.runsMu.Lock()
	s.runs[id] = state
	s.runsMu.Unlock()

	runsStarted.Inc()

	// Start the run in a goroutine
	go s.runOptimization(ctx, id, opt, rc, popSize)

	return map[string]interface{}{
		"run_id": id,
		"status": "pending",
	}, nil
}

// runConfig builds the engine run configuration from the request, falling
// back to the service defaults for unset fields.
func (s *Server) runConfig(req *optimizeRequest) optimization.RunConfig {
	rc := optimization.DefaultRunConfig()
	rc.Selection = s.cfg.Optimization.Selection
	rc.Generations = s.cfg.Optimization.Generations
	rc.Exploration = s.cfg.Optimization.Exploration
	rc.KeepTop = s.cfg.Optimization.KeepTop

	if req.Mode != "" {
		rc.Objective = req.Mode
	}
	if req.Selection != "" {
		rc.Selection = req.Selection
	}
	if req.Adaptive != nil {
		rc.Adaptive = *req.Adaptive
	}
	if req.Generations > 0 {
		rc.Generations = req.Generations
	}
	if req.Exploration > 0 {
		rc.Exploration = req.Exploration
	}
	if req.KeepTop > 0 {
		rc.KeepTop = req.KeepTop
	}
	return rc
}

// handleOptimizationStatus handles the optimization.status JSON-RPC method.
// Expected parameters: {"run_id": "run_123"}
// Returns: Status object with progress, best solution, and history
func (s *Server) handleOptimizationStatus(params []interface{}) (interface{}, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("missing required parameters")
	}

	paramMap, ok := params[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid parameter format, expected object")
	}

	runID, ok := paramMap["run_id"].(string)
	if !ok || runID == "" {
		return nil, fmt.Errorf("run_id is required")
	}

	s.runsMu.RLock()
	defer s.runsMu.RUnlock()

	state, exists := s.runs[runID]
	if !exists {
		return nil, fmt.Errorf("run not found")
	}

	response := map[string]interface{}{
		"status":      state.Status,
		"start_time":  state.StartTime.Format(time.RFC3339),
		"last_update": state.LastUpdated.Format(time.RFC3339),
	}

	if state.EndTime != nil {
		response["end_time"] = state.EndTime.Format(time.RFC3339)
	}

	if state.Error != "" {
		response["error"] = state.Error
	}

	if state.BestSolution != nil {
		response["best_solution"] = map[string]interface{}{
			"parameters": optimization.ParamMap(state.Parameters, state.BestSolution.Parameters),
			"value":      state.BestSolution.Value,
		}
	}

	if len(state.History) > 0 {
		response["history"] = state.History
	}

	return response, nil
}

// handleOptimizationCancel handles the optimization.cancel JSON-RPC method.
// Expected parameters: {"run_id": "run_123"}
// Returns: nil on success, error on failure
func (s *Server) handleOptimizationCancel(params []interface{}) error {
	if len(params) == 0 {
		return fmt.Errorf("missing required parameters")
	}

	paramMap, ok := params[0].(map[string]interface{})
	if !ok {
		return fmt.Errorf("invalid parameter format, expected object")
	}

	runID, ok := paramMap["run_id"].(string)
	if !ok || runID == "" {
		return fmt.Errorf("run_id is required")
	}

	s.runsMu.Lock()
	defer s.runsMu.Unlock()

	state, exists := s.runs[runID]
	if !exists {
		return fmt.Errorf("run not found")
	}

	switch state.Status {
	case "completed", "failed", "cancelled":
		// Already in a terminal state
		return fmt.Errorf("cannot cancel run with status: %s", state.Status)
	}

	if state.CancelFunc != nil {
		state.CancelFunc()
	}

	state.Status = "cancelled"
	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now

	runsFinished.WithLabelValues("cancelled").Inc()

	s.logger.Info("Run cancelled", map[string]interface{}{
		"run_id": runID,
	})

	return nil
}

// respondWithError sends a JSON-RPC 2.0 error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Error("Request error", map[string]interface{}{
		"status":  code,
		"message": message,
	})

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// runOptimization executes one optimization run in a goroutine and, on
// success, persists the run report.
func (s *Server) runOptimization(ctx context.Context, id string, opt *genetic.GeneticOptimizer, rc optimization.RunConfig, popSize int) {
	s.runsMu.Lock()
	state := s.runs[id]
	// A cancel can land before the goroutine is scheduled; a cancelled run
	// must stay cancelled.
	if state.Status == "cancelled" {
		s.runsMu.Unlock()
		return
	}
	state.Status = "running"
	state.LastUpdated = time.Now()
	s.runsMu.Unlock()

	started := time.Now()
	result, err := opt.Optimize(ctx, rc)
	elapsed := time.Since(started)

	s.runsMu.Lock()
	defer s.runsMu.Unlock()

	// A cancelled run already reached its terminal state
	if state.Status == "cancelled" {
		return
	}

	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		runErr := apperrors.Wrap(err, "optimization run failed").
			WithOperation("runOptimization").
			WithComponent("server")
		s.logger.Error("Run failed", map[string]interface{}{
			"run_id": id,
			"error":  runErr.Error(),
			"stack":  runErr.StackTrace(),
		})
		state.Status = "failed"
		state.Error = runErr.Error()
		runsFinished.WithLabelValues("failed").Inc()
		return
	}

	state.Status = "completed"
	state.BestSolution = result.BestSolution
	state.History = result.History

	runsFinished.WithLabelValues("completed").Inc()
	runDuration.Observe(elapsed.Seconds())

	s.logger.Info("Run completed", map[string]interface{}{
		"run_id":      id,
		"best":        result.BestSolution.Value,
		"generations": result.Generations,
		"duration":    elapsed.String(),
	})

	if s.reports == nil {
		return
	}
	report := &store.RunReport{
		RunID:          id,
		Objective:      rc.Objective,
		Selection:      rc.Selection,
		Adaptive:       rc.Adaptive,
		PopulationSize: popSize,
		Generations:    result.Generations,
		Exploration:    rc.Exploration,
		KeepTop:        rc.KeepTop,
		BestParameters: optimization.ParamMap(state.Parameters, result.BestSolution.Parameters),
		Prediction:     result.BestSolution.Value,
		History:        result.History,
		CreatedAt:      now.UTC(),
	}
	if err := s.reports.SaveReport(report); err != nil {
		saveErr := apperrors.Wrap(err, "failed to persist run report").
			WithOperation("runOptimization").
			WithComponent("server")
		s.logger.Error("Failed to persist run report", map[string]interface{}{
			"run_id": id,
			"error":  saveErr.Error(),
			"stack":  saveErr.StackTrace(),
		})
	}
}

// Close cleans up resources
func (s *Server) Close() error {
	// Cancel all running optimizations
	s.runsMu.Lock()
	defer s.runsMu.Unlock()

	for _, run := range s.runs {
		if run.CancelFunc != nil {
			run.CancelFunc()
		}
	}
	return nil
}

// handleOptimize handles the HTTP POST /optimize endpoint for starting a new run
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	data, err := json.Marshal(req)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	var paramMap map[string]interface{}
	if err := json.Unmarshal(data, &paramMap); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := s.handleOptimizeStart([]interface{}{paramMap})

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(result)
}

// handleStatus handles the HTTP GET /status/:id endpoint
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	if runID == "" {
		http.Error(w, "Missing run ID", http.StatusBadRequest)
		return
	}

	result, err := s.handleOptimizationStatus([]interface{}{map[string]interface{}{
		"run_id": runID,
	}})

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// handleCancel handles the HTTP DELETE /optimization/:id endpoint
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	if runID == "" {
		http.Error(w, "Missing run ID", http.StatusBadRequest)
		return
	}

	err := s.handleOptimizationCancel([]interface{}{map[string]interface{}{
		"run_id": runID,
	}})

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "cancellation requested",
	})
}

// handleListRuns handles the HTTP GET /runs endpoint for listing persisted
// run reports
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.reports == nil {
		json.NewEncoder(w).Encode(map[string]interface{}{"runs": []string{}})
		return
	}

	ids, err := s.reports.ListRuns()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": err.Error()})
		return
	}
	if ids == nil {
		ids = []string{}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"runs": ids})
}

// handleGetRun handles the HTTP GET /runs/:id endpoint for fetching a
// persisted run report
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	w.Header().Set("Content-Type", "application/json")

	if s.reports == nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "report store disabled"})
		return
	}

	report, err := s.reports.LoadReport(runID)
	if err != nil {
		var notFound *store.NotFoundError
		if errors.As(err, &notFound) {
			w.WriteHeader(http.StatusNotFound)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"error": err.Error()})
		return
	}

	json.NewEncoder(w).Encode(report)
}
