package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScenarioRunsStepsInOrder(t *testing.T) {
	var order []string
	NewScenario(t).
		Given("a", func(*testing.T) { order = append(order, "a") }).
		When("b", func(*testing.T) { order = append(order, "b") }).
		Then("c", func(*testing.T) { order = append(order, "c") })

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestScenarioSkipsAfterFailure(t *testing.T) {
	sc := &Scenario{t: t, broken: "Given a failing step"}
	ran := false
	sc.Then("later", func(*testing.T) { ran = true })

	assert.False(t, ran)
	assert.Equal(t, "Given a failing step", sc.broken)
}
