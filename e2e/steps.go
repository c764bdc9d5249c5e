package e2e

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"chronoledger/e2e/steps/anomaly"
	"chronoledger/e2e/steps/timeline"
)

// RegisterSteps registers all step definitions from modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Step(`^a running ledger$`, func() error { return tc.Start(false) })
	ctx.Step(`^a running ledger with attested voting$`, func() error { return tc.Start(true) })
	ctx.Step(`^I am "([^"]*)"$`, func(p string) error { tc.ActAs(p); return nil })
	ctx.Step(`^I am the owner$`, func() error { tc.ActAs(Owner); return nil })
	ctx.Step(`^I am anonymous$`, func() error { tc.ActAs(""); return nil })
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response error should be "([^"]*)"$`, tc.responseErrorShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^I list the audit trail$`, func() error { return tc.Do("GET", "/admin/audit", nil) })

	timeline.RegisterSteps(ctx, tc)
	anomaly.RegisterSteps(ctx, tc)

	ctx.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		tc.Close()
		return ctx, err
	})
}

func (tc *TestContext) responseStatusShouldBe(want int) error {
	if tc.status != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, tc.status, tc.body)
	}
	return nil
}

func (tc *TestContext) responseErrorShouldBe(code string) error {
	return tc.responseFieldShouldEqual("error", code)
}

func (tc *TestContext) responseFieldShouldEqual(field, want string) error {
	v, err := tc.Field(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("expected %s=%q, got %q", field, want, got)
	}
	return nil
}
