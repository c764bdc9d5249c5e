package anomaly

import (
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext is the part of the scenario context the anomaly steps use.
type TestContext interface {
	Do(method, path string, body any) error
	Remember(alias string) error
	Lookup(alias string) (uint64, error)
}

// RegisterSteps registers anomaly and resolution step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	s := &anomalySteps{tc: tc}
	ctx.Step(`^I report anomaly "([^"]*)" with severity (-?\d+)$`, s.report)
	ctx.Step(`^I propose resolution "([^"]*)" for anomaly "([^"]*)"$`, s.propose)
	ctx.Step(`^I vote for resolution "([^"]*)"$`, s.vote)
	ctx.Step(`^I implement resolution "([^"]*)"$`, s.implement)
	ctx.Step(`^I fetch anomaly "([^"]*)"$`, s.fetchAnomaly)
	ctx.Step(`^I fetch resolution "([^"]*)"$`, s.fetchResolution)
}

type anomalySteps struct {
	tc TestContext
}

func (s *anomalySteps) report(alias string, severity int64) error {
	if err := s.tc.Do(http.MethodPost, "/anomalies", map[string]any{
		"description": alias,
		"severity":    severity,
	}); err != nil {
		return err
	}
	return s.tc.Remember(alias)
}

// propose only binds the alias when the proposal succeeds.
func (s *anomalySteps) propose(alias, anomalyAlias string) error {
	id, err := s.tc.Lookup(anomalyAlias)
	if err != nil {
		return err
	}
	if err := s.tc.Do(http.MethodPost, fmt.Sprintf("/anomalies/%d/resolutions", id),
		map[string]string{"description": alias}); err != nil {
		return err
	}
	_ = s.tc.Remember(alias)
	return nil
}

func (s *anomalySteps) vote(alias string) error {
	return s.resolutionCall(http.MethodPost, alias, "/votes")
}

func (s *anomalySteps) implement(alias string) error {
	return s.resolutionCall(http.MethodPost, alias, "/implement")
}

func (s *anomalySteps) fetchAnomaly(alias string) error {
	id, err := s.tc.Lookup(alias)
	if err != nil {
		return err
	}
	return s.tc.Do(http.MethodGet, fmt.Sprintf("/anomalies/%d", id), nil)
}

func (s *anomalySteps) fetchResolution(alias string) error {
	return s.resolutionCall(http.MethodGet, alias, "")
}

func (s *anomalySteps) resolutionCall(method, alias, suffix string) error {
	id, err := s.tc.Lookup(alias)
	if err != nil {
		return err
	}
	return s.tc.Do(method, fmt.Sprintf("/resolutions/%d%s", id, suffix), nil)
}
