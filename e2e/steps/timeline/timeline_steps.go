package timeline

import (
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext is the part of the scenario context the timeline steps use.
type TestContext interface {
	Do(method, path string, body any) error
	Remember(alias string) error
	Lookup(alias string) (uint64, error)
}

// RegisterSteps registers timeline step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	s := &timelineSteps{tc: tc}
	ctx.Step(`^I create timeline "([^"]*)" with state "([^"]*)"$`, s.create)
	ctx.Step(`^I update timeline "([^"]*)" to state "([^"]*)"$`, s.updateState)
	ctx.Step(`^I set the consistency of timeline "([^"]*)" to (-?\d+)$`, s.evaluate)
	ctx.Step(`^I resolve timeline "([^"]*)"$`, s.resolve)
	ctx.Step(`^I fetch timeline "([^"]*)"$`, s.fetch)
}

type timelineSteps struct {
	tc TestContext
}

func (s *timelineSteps) create(alias, state string) error {
	if err := s.tc.Do(http.MethodPost, "/timelines", map[string]string{
		"description":   alias,
		"initial_state": state,
	}); err != nil {
		return err
	}
	return s.tc.Remember(alias)
}

func (s *timelineSteps) updateState(alias, state string) error {
	path, err := s.path(alias, "/state")
	if err != nil {
		return err
	}
	return s.tc.Do(http.MethodPut, path, map[string]string{"state": state})
}

func (s *timelineSteps) evaluate(alias string, score int64) error {
	path, err := s.path(alias, "/consistency")
	if err != nil {
		return err
	}
	return s.tc.Do(http.MethodPost, path, map[string]int64{"score": score})
}

func (s *timelineSteps) resolve(alias string) error {
	path, err := s.path(alias, "/resolve")
	if err != nil {
		return err
	}
	return s.tc.Do(http.MethodPost, path, nil)
}

func (s *timelineSteps) fetch(alias string) error {
	path, err := s.path(alias, "")
	if err != nil {
		return err
	}
	return s.tc.Do(http.MethodGet, path, nil)
}

func (s *timelineSteps) path(alias, suffix string) (string, error) {
	id, err := s.tc.Lookup(alias)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/timelines/%d%s", id, suffix), nil
}
