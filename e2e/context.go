// Package e2e runs the ledger's Gherkin features against an in-process
// server wired the same way cmd/server wires production.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"chronoledger/internal/admin"
	"chronoledger/internal/allocator"
	anomalyhandler "chronoledger/internal/anomaly/handler"
	anomalyservice "chronoledger/internal/anomaly/service"
	anomalystore "chronoledger/internal/anomaly/store"
	"chronoledger/internal/platform/metrics"
	"chronoledger/internal/platform/middleware"
	"chronoledger/internal/policy"
	timelinehandler "chronoledger/internal/timeline/handler"
	timelineservice "chronoledger/internal/timeline/service"
	timelinestore "chronoledger/internal/timeline/store"
	httptransport "chronoledger/internal/transport/http"
	"chronoledger/pkg/platform/audit/publisher"
	auditmemory "chronoledger/pkg/platform/audit/store/memory"
)

const Owner = "CONTRACT_OWNER"

// TestContext carries one scenario's server, caller and last response.
type TestContext struct {
	server    *httptest.Server
	principal string
	status    int
	body      []byte
	aliases   map[string]uint64
}

func NewTestContext() *TestContext {
	return &TestContext{aliases: make(map[string]uint64)}
}

// Start boots a fresh ledger. attested selects attested voting.
func (tc *TestContext) Start(attested bool) error {
	tc.Close()
	tc.aliases = make(map[string]uint64)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())
	pol := policy.NewOwnerPolicy(Owner)
	ids := allocator.NewCounter()
	auditStore := auditmemory.NewInMemoryStore()
	pub := publisher.NewPublisher(auditStore)

	timelines, err := timelineservice.New(timelinestore.NewInMemory(), ids, pol,
		timelineservice.WithLogger(logger),
		timelineservice.WithMetrics(m),
		timelineservice.WithAuditPublisher(pub),
	)
	if err != nil {
		return err
	}
	opts := []anomalyservice.Option{
		anomalyservice.WithLogger(logger),
		anomalyservice.WithMetrics(m),
		anomalyservice.WithAuditPublisher(pub),
	}
	if attested {
		opts = append(opts, anomalyservice.WithAttestedVoting())
	}
	anomalies, err := anomalyservice.New(anomalystore.NewInMemory(), ids, pol, opts...)
	if err != nil {
		return err
	}

	tc.server = httptest.NewServer(httptransport.NewRouter(httptransport.Deps{
		Logger:  logger,
		Metrics: m,
		Handlers: []httptransport.Registrar{
			timelinehandler.New(timelines, logger),
			anomalyhandler.New(anomalies, logger),
			admin.New(auditStore, pol, logger),
		},
	}))
	return nil
}

func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
		tc.server = nil
	}
}

// ActAs sets the principal sent with following requests. Empty means anonymous.
func (tc *TestContext) ActAs(principal string) {
	tc.principal = principal
}

// Do sends a JSON request as the current principal and records the response.
func (tc *TestContext) Do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, tc.server.URL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.principal != "" {
		req.Header.Set(middleware.PrincipalHeader, tc.principal)
	}

	resp, err := tc.server.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.status = resp.StatusCode
	tc.body, err = io.ReadAll(resp.Body)
	return err
}

// Remember binds alias to the id in the last response.
func (tc *TestContext) Remember(alias string) error {
	v, err := tc.Field("id")
	if err != nil {
		return err
	}
	n, ok := v.(float64)
	if !ok {
		return fmt.Errorf("response id is %T, not a number", v)
	}
	tc.aliases[alias] = uint64(n)
	return nil
}

// Lookup resolves an alias bound by Remember. A bare number is used as is.
func (tc *TestContext) Lookup(alias string) (uint64, error) {
	if v, ok := tc.aliases[alias]; ok {
		return v, nil
	}
	if n, err := strconv.ParseUint(alias, 10, 64); err == nil {
		return n, nil
	}
	return 0, fmt.Errorf("unknown record %q", alias)
}

// Field returns a top-level field of the last JSON response.
func (tc *TestContext) Field(name string) (any, error) {
	var decoded map[string]any
	if err := json.Unmarshal(tc.body, &decoded); err != nil {
		return nil, fmt.Errorf("decode response %q: %w", tc.body, err)
	}
	v, ok := decoded[name]
	if !ok {
		return nil, fmt.Errorf("response has no field %q: %s", name, tc.body)
	}
	return v, nil
}

func (tc *TestContext) Status() int {
	return tc.status
}
